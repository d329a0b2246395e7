package videostore

import (
	"context"
	"errors"
	"time"

	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("videos")}
}

// ErrNotFound is returned when no video matches the lookup.
var ErrNotFound = errors.New("video not found")

// ErrDuplicateHostVideo is returned when a video with the same host ID
// already exists.
var ErrDuplicateHostVideo = errors.New("video already exists")

// GetByID loads a video by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	var v models.Video
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ExistsByHostID reports whether any video already references this host
// asset. Saving the same host upload twice is rejected on it.
func (s *Store) ExistsByHostID(ctx context.Context, hostVideoID string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"host_video_id": hostVideoID}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// Create inserts a new video record. For course videos the caller wraps
// this together with the course's AddVideo in a transaction; revision
// videos are standalone.
func (s *Store) Create(ctx context.Context, v models.Video) (models.Video, error) {
	v.ID = primitive.NewObjectID()

	now := time.Now()
	v.UploadedAt = now
	v.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, v); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Video{}, ErrDuplicateHostVideo
		}
		return models.Video{}, err
	}
	return v, nil
}

// Update holds the video fields that can be edited after upload.
type Update struct {
	Title       string
	Description string
	Index       int
}

// UpdateDetails updates a video's editable fields.
func (s *Store) UpdateDetails(ctx context.Context, id primitive.ObjectID, upd Update) error {
	set := bson.M{
		"title":       upd.Title,
		"description": upd.Description,
		"index":       upd.Index,
		"updated_at":  time.Now(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPDFPath records the storage path of the video's notes attachment.
func (s *Store) SetPDFPath(ctx context.Context, id primitive.ObjectID, path string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"pdf_path": path, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetNotes records the video's free-form notes text.
func (s *Store) SetNotes(ctx context.Context, id primitive.ObjectID, notes string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"notes": notes, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddQuestion appends a question to the video's list. Used inside the
// question-creation transaction.
func (s *Store) AddQuestion(ctx context.Context, videoID, questionID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": videoID}, bson.M{
		"$push": bson.M{"question_ids": questionID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveQuestion pulls a question from the video's list.
func (s *Store) RemoveQuestion(ctx context.Context, videoID, questionID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": videoID}, bson.M{
		"$pull": bson.M{"question_ids": questionID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

// ListByCourse returns a course's videos in playback order.
func (s *Store) ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Video, error) {
	opts := options.Find().SetSort(bson.D{{Key: "index", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Video
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByCourse returns the number of videos in a course's playback
// sequence. Progress percentages divide by this.
func (s *Store) CountByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"course_id": courseID})
}

// ListRevisionsOf returns the revision videos attached to a course video's
// quiz checkpoints.
func (s *Store) ListRevisionsOf(ctx context.Context, mainVideoID primitive.ObjectID) ([]models.Video, error) {
	cur, err := s.c.Find(ctx, bson.M{"main_video_id": mainVideoID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Video
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a video document. The caller handles the cascade
// (questions, course list, host asset).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByCourse removes all of a course's videos and their revision
// videos, returning the host IDs of everything removed so the caller can
// clean up the external assets afterwards.
func (s *Store) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) ([]string, error) {
	videos, err := s.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var hostIDs []string
	ids := make([]primitive.ObjectID, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
		hostIDs = append(hostIDs, v.HostVideoID)

		revs, err := s.ListRevisionsOf(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		for _, r := range revs {
			ids = append(ids, r.ID)
			hostIDs = append(hostIDs, r.HostVideoID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if _, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, err
	}
	return hostIDs, nil
}
