package quizstore

import (
	"context"
	"time"

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
	return &Store{c: db.Collection("quizzes")}
}

// Create records one quiz attempt. Repeat attempts insert new rows rather
// than overwriting, so the attempt history is preserved.
func (s *Store) Create(ctx context.Context, q models.Quiz) (models.Quiz, error) {
	q.ID = primitive.NewObjectID()

	now := time.Now()
	q.CreatedAt = now
	q.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, q); err != nil {
		return models.Quiz{}, err
	}
	return q, nil
}

// ListByStudentAndCourse returns a student's attempts across one course,
// newest first.
func (s *Store) ListByStudentAndCourse(ctx context.Context, studentID, courseID primitive.ObjectID) ([]models.Quiz, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"student_id": studentID, "course_id": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Quiz
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByStudentAndVideo returns a student's attempts on one video's
// checkpoints, newest first.
func (s *Store) ListByStudentAndVideo(ctx context.Context, studentID, videoID primitive.ObjectID) ([]models.Quiz, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"student_id": studentID, "video_id": videoID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Quiz
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AttemptWithCourse pairs a quiz attempt with the name of the course it
// was taken in.
type AttemptWithCourse struct {
	Attempt models.Quiz `bson:"attempt" json:"attempt"`
	Course  struct {
		ID   primitive.ObjectID `bson:"_id" json:"id"`
		Name string             `bson:"name" json:"name"`
	} `bson:"course" json:"course"`
}

// ListByStudentWithCourses returns all of a student's attempts with course
// names joined in, newest first.
func (s *Store) ListByStudentWithCourses(ctx context.Context, studentID primitive.ObjectID) ([]AttemptWithCourse, error) {
	pipe := []bson.M{
		{"$match": bson.M{"student_id": studentID}},
		{"$sort": bson.M{"created_at": -1}},
		{"$lookup": bson.M{
			"from":         "courses",
			"localField":   "course_id",
			"foreignField": "_id",
			"as":           "course",
		}},
		{"$unwind": "$course"},
		{"$project": bson.M{
			"attempt":     "$$ROOT",
			"course._id":  1,
			"course.name": 1,
		}},
		{"$project": bson.M{
			"attempt.course": 0,
		}},
	}

	cur, err := s.c.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []AttemptWithCourse
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AverageGrade computes the mean grade of a student's attempts in a course.
// Returns 0 with no error when the student has no attempts yet.
func (s *Store) AverageGrade(ctx context.Context, studentID, courseID primitive.ObjectID) (float64, error) {
	pipe := []bson.M{
		{"$match": bson.M{"student_id": studentID, "course_id": courseID}},
		{"$group": bson.M{
			"_id":   nil,
			"grade": bson.M{"$avg": "$grade"},
		}},
	}

	cur, err := s.c.Aggregate(ctx, pipe)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Grade float64 `bson:"grade"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Grade, nil
}

// DeleteByCourse removes all attempts recorded in a course. Part of the
// course-deletion cascade.
func (s *Store) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
