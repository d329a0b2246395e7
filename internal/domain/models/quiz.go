// internal/domain/models/quiz.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Quiz records one quiz attempt: a student answering the questions of one
// quiz checkpoint within a video. Grade is the percentage of questions
// answered correctly. Repeat attempts insert new rows.
type Quiz struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID  primitive.ObjectID `bson:"student_id" json:"student_id"`
	CourseID   primitive.ObjectID `bson:"course_id" json:"course_id"`
	VideoID    primitive.ObjectID `bson:"video_id" json:"video_id"`
	QuizNumber int                `bson:"quiz_number" json:"quiz_number"`
	Grade      float64            `bson:"grade" json:"grade"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
