// internal/domain/models/enrollment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enrollment status values.
const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
)

// Enrollment links a student to a course and tracks their progress through
// it. The (student_id, course_id) pair is unique, enforced by a compound
// index so concurrent duplicate enrollments cannot both land.
//
// Active starts false and flips to true when the student redeems an
// activation code. Progress is a 0..100 percentage derived from the highest
// completed video index; Status becomes "completed" when it reaches 100.
type Enrollment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	CourseID  primitive.ObjectID `bson:"course_id" json:"course_id"`

	Active   bool    `bson:"active" json:"active"`
	Status   string  `bson:"status" json:"status"`
	Progress float64 `bson:"progress" json:"progress"`
	Grade    float64 `bson:"grade" json:"grade"`

	CompletionDate *time.Time `bson:"completion_date,omitempty" json:"completion_date,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
