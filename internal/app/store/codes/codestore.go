package codestore

import (
	"context"
	"errors"
	"time"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/paging"
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
	return &Store{c: db.Collection("codes")}
}

var (
	// ErrDuplicateCode is returned when generating a code that already exists.
	ErrDuplicateCode = errors.New("activation code already exists")
	// ErrNotFound is returned when the code does not exist or was already redeemed.
	ErrNotFound = errors.New("activation code not found")
)

// Create inserts a new activation code. The unique index on the code value
// rejects collisions so the caller can regenerate and retry.
func (s *Store) Create(ctx context.Context, code string) (models.Code, error) {
	now := time.Now()
	c := models.Code{
		ID:        primitive.NewObjectID(),
		Code:      code,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Code{}, ErrDuplicateCode
		}
		return models.Code{}, err
	}
	return c, nil
}

// Redeem atomically finds and deletes a code. A code only ever redeems
// once; the second concurrent caller gets ErrNotFound. Used inside the
// activation transaction so the deletion rolls back if activation fails.
func (s *Store) Redeem(ctx context.Context, code string) (*models.Code, error) {
	var c models.Code
	err := s.c.FindOneAndDelete(ctx, bson.M{"code": code}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns one page of outstanding codes, newest first.
func (s *Store) List(ctx context.Context, p paging.Params) ([]models.Code, error) {
	opts := options.Find()
	p.ApplyToFind(opts, "created_at")
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Code
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
