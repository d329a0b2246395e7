// internal/domain/models/question.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Question represents a quiz question attached to a video at a playback
// timestamp. Questions sharing the same (video, time) pair form one quiz
// checkpoint; the checkpoint may carry a shared revision video that is
// deleted when its last question is removed.
//
// Only the answer field matching Type is meaningful; the rest stay empty.
type Question struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VideoID    primitive.ObjectID `bson:"video_id" json:"video_id"`
	Time       string             `bson:"time" json:"time"` // playback offset, e.g. "04:30"
	QuizNumber int                `bson:"quiz_number" json:"quiz_number"`
	Type       string             `bson:"type" json:"type"`
	Prompt     string             `bson:"prompt" json:"prompt"`

	Choice1 string `bson:"choice1,omitempty" json:"choice1,omitempty"`
	Choice2 string `bson:"choice2,omitempty" json:"choice2,omitempty"`
	Choice3 string `bson:"choice3,omitempty" json:"choice3,omitempty"`
	Choice4 string `bson:"choice4,omitempty" json:"choice4,omitempty"`

	ChooseAnswer     string `bson:"choose_answer,omitempty" json:"choose_answer,omitempty"`
	TrueFalseAnswer  *bool  `bson:"true_false_answer,omitempty" json:"true_false_answer,omitempty"`
	ParagraphAnswer  string `bson:"paragraph_answer,omitempty" json:"paragraph_answer,omitempty"`
	ExpressiveAnswer string `bson:"expressive_answer,omitempty" json:"expressive_answer,omitempty"`
	CompleteAnswer   string `bson:"complete_answer,omitempty" json:"complete_answer,omitempty"`

	RevisionVideoID *primitive.ObjectID `bson:"revision_video_id,omitempty" json:"revision_video_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
