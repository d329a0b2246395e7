// internal/domain/models/video.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video represents the metadata record for a video asset hosted externally.
//
// Two kinds of videos share this collection:
//  1. Course videos: CourseID is set and Index gives the playback order
//     within the course.
//  2. Revision videos: MainVideoID points at the course video whose quiz the
//     revision remediates; CourseID is unset and the video is reachable only
//     through Question.RevisionVideoID.
type Video struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HostVideoID string             `bson:"host_video_id" json:"host_video_id"` // opaque ID on the video host
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Index       int                `bson:"index" json:"index"` // 1-based position within the course
	URL         string             `bson:"url,omitempty" json:"url,omitempty"`

	CourseID    *primitive.ObjectID  `bson:"course_id,omitempty" json:"course_id,omitempty"`
	MainVideoID *primitive.ObjectID  `bson:"main_video_id,omitempty" json:"main_video_id,omitempty"`
	QuestionIDs []primitive.ObjectID `bson:"question_ids,omitempty" json:"question_ids,omitempty"`

	// Notes is optional free-form lesson notes text.
	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`
	// PDFPath is the storage path of an optional notes attachment.
	PDFPath string `bson:"pdf_path,omitempty" json:"pdf_path,omitempty"`

	UploadedAt time.Time `bson:"uploaded_at" json:"uploaded_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// IsRevision returns true if this video remediates a quiz rather than
// belonging to a course's playback sequence.
func (v *Video) IsRevision() bool {
	return v.MainVideoID != nil
}
