package adminstore

import (
	"context"
	"errors"
	"time"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/normalize"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/paging"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
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
	return &Store{c: db.Collection("admins")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create an admin with an email that already exists.
	ErrDuplicateEmail = errors.New("an admin with this email already exists")
	// ErrNotFound is returned when no admin matches the lookup.
	ErrNotFound = errors.New("admin not found")
)

// GetByID loads an admin by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var a models.Admin
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetByEmail looks up an admin by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new admin after normalizing fields.
func (s *Store) Create(ctx context.Context, a models.Admin) (models.Admin, error) {
	a.ID = primitive.NewObjectID()
	a.FirstName = normalize.Name(a.FirstName)
	a.LastName = normalize.Name(a.LastName)
	a.Email = normalize.Email(a.Email)
	a.EmailCI = text.Fold(a.Email)
	a.Phone = normalize.Phone(a.Phone)
	a.Role = models.RoleAdmin

	now := time.Now()
	a.RegisteredAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Admin{}, ErrDuplicateEmail
		}
		return models.Admin{}, err
	}
	return a, nil
}

// ProfileUpdate holds the admin fields that can be edited after signup.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Phone     string
}

// UpdateProfile updates an admin's editable fields.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{
		"first_name": normalize.Name(upd.FirstName),
		"last_name":  normalize.Name(upd.LastName),
		"phone":      normalize.Phone(upd.Phone),
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

// UpdatePassword replaces an admin's password hash by email.
func (s *Store) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email_ci": text.Fold(normalize.Email(email))},
		bson.M{"$set": bson.M{"password_hash": passwordHash, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddCourse appends a course to the admin's owned list.
func (s *Store) AddCourse(ctx context.Context, adminID, courseID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": adminID}, bson.M{
		"$push": bson.M{"course_ids": courseID},
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

// RemoveCourse pulls a course from the admin's owned list.
func (s *Store) RemoveCourse(ctx context.Context, adminID, courseID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": adminID}, bson.M{
		"$pull": bson.M{"course_ids": courseID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

// List returns one page of admins, newest first.
func (s *Store) List(ctx context.Context, p paging.Params) ([]models.Admin, error) {
	opts := options.Find()
	p.ApplyToFind(opts, "registered_at")

	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var admins []models.Admin
	if err := cur.All(ctx, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

// EmailExists reports whether an admin with this email already exists.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}
