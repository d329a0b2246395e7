// internal/domain/models/instructor.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Instructor represents a teaching account that owns courses.
//
// CourseIDs is the ordered list of courses the instructor has created.
// It is maintained transactionally alongside the courses collection so a
// course create/delete either updates both records or neither.
type Instructor struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FirstName      string               `bson:"first_name" json:"first_name"`
	LastName       string               `bson:"last_name" json:"last_name"`
	Email          string               `bson:"email" json:"email"`
	EmailCI        string               `bson:"email_ci" json:"-"` // lowercase, diacritics-stripped
	PasswordHash   string               `bson:"password_hash" json:"-"`
	Phone          string               `bson:"phone" json:"phone"`
	Specialization string               `bson:"specialization" json:"specialization"`
	Subject        string               `bson:"subject" json:"subject"`
	Description    string               `bson:"description" json:"description"`
	CourseIDs      []primitive.ObjectID `bson:"course_ids,omitempty" json:"course_ids,omitempty"`
	Role           string               `bson:"role" json:"role"` // always "instructor"

	RegisteredAt time.Time `bson:"registered_at" json:"registered_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName returns the display name for the instructor.
func (i *Instructor) FullName() string {
	if i.LastName == "" {
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}
