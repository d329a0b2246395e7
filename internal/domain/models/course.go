// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course represents a published course.
//
// The actual video assets live on the external video host inside a folder
// named after the course. VideoIDs is the ordered list of video documents
// belonging to the course and is kept consistent with the videos collection
// through transactional updates.
type Course struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped

	Description  string `bson:"description" json:"description"`
	WhatYouLearn string `bson:"what_you_learn" json:"what_you_learn"`
	CoverImage   string `bson:"cover_image,omitempty" json:"cover_image,omitempty"` // storage path
	Category     string `bson:"category" json:"category"`
	SubCategory  string `bson:"sub_category" json:"sub_category"`

	InstructorID primitive.ObjectID   `bson:"instructor_id" json:"instructor_id"`
	VideoIDs     []primitive.ObjectID `bson:"video_ids,omitempty" json:"video_ids,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
