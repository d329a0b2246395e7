package coursestore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/normalize"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/paging"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("courses")}
}

// ErrNotFound is returned when no course matches the lookup.
var ErrNotFound = errors.New("course not found")

// GetByID loads a course by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var c models.Course
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a new course. The caller wraps this together with the
// owner's AddCourse in a transaction.
func (s *Store) Create(ctx context.Context, c models.Course) (models.Course, error) {
	c.ID = primitive.NewObjectID()
	c.Name = normalize.Name(c.Name)
	c.NameCI = text.Fold(c.Name)

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Course{}, err
	}
	return c, nil
}

// Update holds the course fields that can be edited after creation.
type Update struct {
	Name         string
	Description  string
	WhatYouLearn string
	Category     string
	SubCategory  string
}

// UpdateDetails updates a course's editable fields.
func (s *Store) UpdateDetails(ctx context.Context, id primitive.ObjectID, upd Update) error {
	name := normalize.Name(upd.Name)
	set := bson.M{
		"name":           name,
		"name_ci":        text.Fold(name),
		"description":    upd.Description,
		"what_you_learn": upd.WhatYouLearn,
		"category":       upd.Category,
		"sub_category":   upd.SubCategory,
		"updated_at":     time.Now(),
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

// SetCoverImage records the storage path of a newly uploaded cover image.
func (s *Store) SetCoverImage(ctx context.Context, id primitive.ObjectID, path string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"cover_image": path, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVideo appends a video to the course's ordered list. Used inside the
// video-save transaction.
func (s *Store) AddVideo(ctx context.Context, courseID, videoID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": courseID}, bson.M{
		"$push": bson.M{"video_ids": videoID},
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

// RemoveVideo pulls a video from the course's list.
func (s *Store) RemoveVideo(ctx context.Context, courseID, videoID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": courseID}, bson.M{
		"$pull": bson.M{"video_ids": videoID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

// Delete removes a course document. The caller is responsible for the rest
// of the cascade (videos, questions, enrollments, owner's course list).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Filter narrows List results. Zero values mean "no filter".
type Filter struct {
	Category    string
	SubCategory string
	Name        string // case-insensitive prefix match
}

// List returns one page of courses matching the filter, newest first.
func (s *Store) List(ctx context.Context, f Filter, p paging.Params) ([]models.Course, error) {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.SubCategory != "" {
		q["sub_category"] = f.SubCategory
	}
	if f.Name != "" {
		q["name_ci"] = bson.M{"$regex": "^" + regexp.QuoteMeta(text.Fold(f.Name))}
	}

	opts := options.Find()
	p.ApplyToFind(opts, "created_at")
	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Course
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByInstructor returns all courses owned by one instructor, newest first.
func (s *Store) ListByInstructor(ctx context.Context, instructorID primitive.ObjectID) ([]models.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"instructor_id": instructorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Course
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
