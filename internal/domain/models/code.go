// internal/domain/models/code.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Code is a one-time enrollment activation code. Redeeming it deletes the
// record and activates the enrollment in the same transaction, so a code can
// never be used twice.
type Code struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code string             `bson:"code" json:"code"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
