// internal/domain/models/admin.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin represents an administrative account. Admins can own courses the
// same way instructors do, so CourseIDs follows the same transactional
// maintenance rules as Instructor.CourseIDs.
type Admin struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FirstName    string               `bson:"first_name" json:"first_name"`
	LastName     string               `bson:"last_name" json:"last_name"`
	Email        string               `bson:"email" json:"email"`
	EmailCI      string               `bson:"email_ci" json:"-"` // lowercase, diacritics-stripped
	PasswordHash string               `bson:"password_hash,omitempty" json:"-"`
	Phone        string               `bson:"phone" json:"phone"`
	CourseIDs    []primitive.ObjectID `bson:"course_ids,omitempty" json:"course_ids,omitempty"`
	Role         string               `bson:"role" json:"role"` // always "admin"

	RegisteredAt time.Time `bson:"registered_at" json:"registered_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
