package instructorstore

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
	return &Store{c: db.Collection("instructors")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create an instructor with an email that already exists.
	ErrDuplicateEmail = errors.New("an instructor with this email already exists")
	// ErrNotFound is returned when no instructor matches the lookup.
	ErrNotFound = errors.New("instructor not found")
)

// GetByID loads an instructor by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Instructor, error) {
	var i models.Instructor
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&i); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

// GetByEmail looks up an instructor by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Instructor, error) {
	var i models.Instructor
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))}).Decode(&i); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

// Create inserts a new instructor after normalizing fields.
func (s *Store) Create(ctx context.Context, i models.Instructor) (models.Instructor, error) {
	i.ID = primitive.NewObjectID()
	i.FirstName = normalize.Name(i.FirstName)
	i.LastName = normalize.Name(i.LastName)
	i.Email = normalize.Email(i.Email)
	i.EmailCI = text.Fold(i.Email)
	i.Phone = normalize.Phone(i.Phone)
	i.Role = models.RoleInstructor

	now := time.Now()
	i.RegisteredAt = now
	i.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, i); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Instructor{}, ErrDuplicateEmail
		}
		return models.Instructor{}, err
	}
	return i, nil
}

// ProfileUpdate holds the instructor fields that can be edited after signup.
type ProfileUpdate struct {
	FirstName      string
	LastName       string
	Phone          string
	Specialization string
	Subject        string
	Description    string
}

// UpdateProfile updates an instructor's editable fields.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{
		"first_name":     normalize.Name(upd.FirstName),
		"last_name":      normalize.Name(upd.LastName),
		"phone":          normalize.Phone(upd.Phone),
		"specialization": upd.Specialization,
		"subject":        upd.Subject,
		"description":    upd.Description,
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

// UpdatePassword replaces an instructor's password hash by email.
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

// AddCourse appends a course to the instructor's owned list. Used inside the
// course-creation transaction so the two writes commit together.
func (s *Store) AddCourse(ctx context.Context, instructorID, courseID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": instructorID}, bson.M{
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

// RemoveCourse pulls a course from the instructor's owned list. Part of the
// course-deletion transaction.
func (s *Store) RemoveCourse(ctx context.Context, instructorID, courseID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": instructorID}, bson.M{
		"$pull": bson.M{"course_ids": courseID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

// Delete removes an instructor by ID.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// List returns one page of instructors, newest first.
func (s *Store) List(ctx context.Context, p paging.Params) ([]models.Instructor, error) {
	opts := options.Find()
	p.ApplyToFind(opts, "registered_at")
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Instructor
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EmailExists reports whether an instructor with this email already exists.
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
