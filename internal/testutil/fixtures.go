package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert test %s: %v", coll, err)
	}
}

// CreateStudent creates a test student account.
func (f *Fixtures) CreateStudent(ctx context.Context, firstName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FirstName:    firstName,
		LastName:     "Test",
		Email:        email,
		EmailCI:      text.Fold(email),
		Phone:        "+201000000000",
		Role:         models.RoleStudent,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateInstructor creates a test instructor account.
func (f *Fixtures) CreateInstructor(ctx context.Context, firstName, email string) models.Instructor {
	f.t.Helper()

	now := time.Now().UTC()
	i := models.Instructor{
		ID:             primitive.NewObjectID(),
		FirstName:      firstName,
		LastName:       "Test",
		Email:          email,
		EmailCI:        text.Fold(email),
		Phone:          "+201000000001",
		Specialization: "Languages",
		Subject:        "English",
		Role:           models.RoleInstructor,
		RegisteredAt:   now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "instructors", i)
	return i
}

// CreateCourse creates a test course owned by the given instructor.
func (f *Fixtures) CreateCourse(ctx context.Context, name string, instructorID primitive.ObjectID) models.Course {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Course{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Description:  "A test course",
		Category:     "Language",
		SubCategory:  "English",
		InstructorID: instructorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "courses", c)
	return c
}

// CreateVideo creates a test course video at the given playback index.
func (f *Fixtures) CreateVideo(ctx context.Context, courseID primitive.ObjectID, title string, index int) models.Video {
	f.t.Helper()

	now := time.Now().UTC()
	v := models.Video{
		ID:          primitive.NewObjectID(),
		HostVideoID: primitive.NewObjectID().Hex(),
		Title:       title,
		Index:       index,
		CourseID:    &courseID,
		UploadedAt:  now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "videos", v)
	return v
}

// CreateQuestion creates a test multiple-choice question on a video.
func (f *Fixtures) CreateQuestion(ctx context.Context, videoID primitive.ObjectID, at string, quizNumber int) models.Question {
	f.t.Helper()

	now := time.Now().UTC()
	q := models.Question{
		ID:           primitive.NewObjectID(),
		VideoID:      videoID,
		Time:         at,
		QuizNumber:   quizNumber,
		Type:         models.QuestionTypeChoose,
		Prompt:       "Pick the right answer",
		Choice1:      "a",
		Choice2:      "b",
		Choice3:      "c",
		Choice4:      "d",
		ChooseAnswer: "a",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "questions", q)
	return q
}

// CreateEnrollment creates an inactive enrollment for a student in a course.
func (f *Fixtures) CreateEnrollment(ctx context.Context, studentID, courseID primitive.ObjectID) models.Enrollment {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.Enrollment{
		ID:        primitive.NewObjectID(),
		StudentID: studentID,
		CourseID:  courseID,
		Active:    false,
		Status:    models.EnrollmentStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "enrollments", e)
	return e
}

// CreateCode creates an activation code record.
func (f *Fixtures) CreateCode(ctx context.Context, code string) models.Code {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Code{
		ID:        primitive.NewObjectID(),
		Code:      code,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "codes", c)
	return c
}
