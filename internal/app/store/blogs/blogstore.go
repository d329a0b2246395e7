package blogstore

import (
	"context"
	"errors"
	"time"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/htmlsanitize"
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
	return &Store{c: db.Collection("blogs")}
}

// ErrNotFound is returned when no post matches the lookup.
var ErrNotFound = errors.New("blog post not found")

// GetByID loads a post by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	var b models.Blog
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Create inserts a new post. Details passes through the HTML sanitizer so
// stored markup is always safe to serve.
func (s *Store) Create(ctx context.Context, b models.Blog) (models.Blog, error) {
	b.ID = primitive.NewObjectID()
	b.TitleCI = text.Fold(b.Title)
	b.Details = htmlsanitize.Sanitize(b.Details)

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Blog{}, err
	}
	return b, nil
}

// Update replaces a post's title and body. Image changes go through
// SetImage because the old file has to be cleaned up first.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, title, details string) error {
	set := bson.M{
		"title":      title,
		"title_ci":   text.Fold(title),
		"details":    htmlsanitize.Sanitize(details),
		"updated_at": time.Now(),
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

// SetImage records the storage path of a newly uploaded header image.
func (s *Store) SetImage(ctx context.Context, id primitive.ObjectID, path string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"image": path, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// List returns one page of posts, newest first.
func (s *Store) List(ctx context.Context, p paging.Params) ([]models.Blog, error) {
	opts := options.Find()
	p.ApplyToFind(opts, "created_at")
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Blog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
