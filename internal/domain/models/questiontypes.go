// internal/domain/models/questiontypes.go
package models

// Canonical question type identifiers.
//
// These values are stored in the Question.Type field. Each type decides which
// answer field on Question is authoritative when grading a quiz attempt.
const (
	QuestionTypeChoose     = "choose"     // multiple choice, answer in ChooseAnswer
	QuestionTypeTrueFalse  = "true_false" // answer in TrueFalseAnswer
	QuestionTypeParagraph  = "paragraph"  // free-form written answer
	QuestionTypeExpressive = "expressive" // spoken answer, graded externally
	QuestionTypeComplete   = "complete"   // fill-in-the-blank, answer in CompleteAnswer
)

// QuestionTypes is the full set of allowed question type identifiers.
//
// This slice is the single source of truth for validation. Any new type must
// be added here to be considered valid.
var QuestionTypes = []string{
	QuestionTypeChoose,
	QuestionTypeTrueFalse,
	QuestionTypeParagraph,
	QuestionTypeExpressive,
	QuestionTypeComplete,
}

// IsValidQuestionType checks if a value is a known question type.
func IsValidQuestionType(value string) bool {
	for _, t := range QuestionTypes {
		if t == value {
			return true
		}
	}
	return false
}
