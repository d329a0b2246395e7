package contactstore

import (
	"context"
	"errors"
	"time"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/normalize"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/paging"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("contacts")}
}

// ErrNotFound is returned when no submission matches the lookup.
var ErrNotFound = errors.New("contact message not found")

// GetByID loads one submission by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Contact, error) {
	var m models.Contact
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Delete removes a handled submission.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Create records a contact-form submission.
func (s *Store) Create(ctx context.Context, m models.Contact) (models.Contact, error) {
	m.ID = primitive.NewObjectID()
	m.Name = normalize.Name(m.Name)
	m.Email = normalize.Email(m.Email)

	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Contact{}, err
	}
	return m, nil
}

// List returns one page of submissions, newest first.
func (s *Store) List(ctx context.Context, p paging.Params) ([]models.Contact, error) {
	opts := options.Find()
	p.ApplyToFind(opts, "created_at")
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Contact
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
