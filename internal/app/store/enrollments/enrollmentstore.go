package enrollmentstore

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
	return &Store{c: db.Collection("enrollments")}
}

var (
	// ErrAlreadyEnrolled is returned when the student already has an enrollment in the course.
	ErrAlreadyEnrolled = errors.New("student is already enrolled in this course")
	// ErrNotFound is returned when no enrollment matches the lookup.
	ErrNotFound = errors.New("enrollment not found")
)

// GetByStudentAndCourse loads the student's enrollment in a course.
func (s *Store) GetByStudentAndCourse(ctx context.Context, studentID, courseID primitive.ObjectID) (*models.Enrollment, error) {
	var e models.Enrollment
	err := s.c.FindOne(ctx, bson.M{"student_id": studentID, "course_id": courseID}).Decode(&e)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Create inserts a new inactive enrollment. The unique (student, course)
// index rejects a second enrollment even under concurrent requests.
func (s *Store) Create(ctx context.Context, studentID, courseID primitive.ObjectID) (models.Enrollment, error) {
	now := time.Now()
	e := models.Enrollment{
		ID:        primitive.NewObjectID(),
		StudentID: studentID,
		CourseID:  courseID,
		Active:    false,
		Status:    models.EnrollmentStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Enrollment{}, ErrAlreadyEnrolled
		}
		return models.Enrollment{}, err
	}
	return e, nil
}

// Activate flips an enrollment to active. Used inside the code-redemption
// transaction so the code deletion and the activation commit together.
func (s *Store) Activate(ctx context.Context, studentID, courseID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"student_id": studentID, "course_id": courseID},
		bson.M{"$set": bson.M{"active": true, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Progress holds a recomputed progress snapshot.
type Progress struct {
	Percent   float64
	Grade     float64
	Completed bool
}

// UpdateProgress stores a new progress percentage. Completion stamps the
// date once; a later update never clears it.
func (s *Store) UpdateProgress(ctx context.Context, studentID, courseID primitive.ObjectID, p Progress) error {
	set := bson.M{
		"progress":   p.Percent,
		"grade":      p.Grade,
		"updated_at": time.Now(),
	}
	if p.Completed {
		set["status"] = models.EnrollmentStatusCompleted
		set["completion_date"] = time.Now()
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"student_id": studentID, "course_id": courseID},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStudent returns all of a student's enrollments, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Enrollment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Enrollment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnrolledCourse pairs an enrollment with its joined course document.
type EnrolledCourse struct {
	Enrollment models.Enrollment `bson:"enrollment" json:"enrollment"`
	Course     models.Course     `bson:"course" json:"course"`
}

// ListByStudentWithCourses returns one page of a student's enrollments
// with their course details joined in, newest enrollment first.
func (s *Store) ListByStudentWithCourses(ctx context.Context, studentID primitive.ObjectID, p paging.Params) ([]EnrolledCourse, error) {
	pipe := []bson.M{
		{"$match": bson.M{"student_id": studentID}},
		{"$sort": bson.M{"created_at": -1}},
		{"$skip": p.Skip()},
		{"$limit": p.Limit64()},
		{"$lookup": bson.M{
			"from":         "courses",
			"localField":   "course_id",
			"foreignField": "_id",
			"as":           "course",
		}},
		{"$unwind": "$course"},
		{"$project": bson.M{
			"enrollment": "$$ROOT",
			"course":     1,
		}},
		{"$project": bson.M{
			"enrollment.course": 0,
		}},
	}

	cur, err := s.c.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []EnrolledCourse
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnrolledStudent pairs an enrollment with its joined student document.
type EnrolledStudent struct {
	Enrollment models.Enrollment `bson:"enrollment" json:"enrollment"`
	Student    models.User       `bson:"student" json:"student"`
}

// ListByCourseWithStudents returns one page of a course's enrollments with
// their student details joined in, newest enrollment first.
func (s *Store) ListByCourseWithStudents(ctx context.Context, courseID primitive.ObjectID, p paging.Params) ([]EnrolledStudent, error) {
	pipe := []bson.M{
		{"$match": bson.M{"course_id": courseID}},
		{"$sort": bson.M{"created_at": -1}},
		{"$skip": p.Skip()},
		{"$limit": p.Limit64()},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "student_id",
			"foreignField": "_id",
			"as":           "student",
		}},
		{"$unwind": "$student"},
		{"$project": bson.M{
			"enrollment": "$$ROOT",
			"student":    1,
		}},
		{"$project": bson.M{
			"enrollment.student":    0,
			"student.password_hash": 0,
		}},
	}

	cur, err := s.c.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []EnrolledStudent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnrollmentDetail is an enrollment with both sides of the relation
// joined in.
type EnrollmentDetail struct {
	Enrollment models.Enrollment `bson:"enrollment" json:"enrollment"`
	Course     models.Course     `bson:"course" json:"course"`
	Student    models.User       `bson:"student" json:"student"`
}

// ListByActive returns one page of enrollments filtered on the active
// flag, with course and student joined in, newest first.
func (s *Store) ListByActive(ctx context.Context, active bool, p paging.Params) ([]EnrollmentDetail, error) {
	pipe := []bson.M{
		{"$match": bson.M{"active": active}},
		{"$sort": bson.M{"created_at": -1}},
		{"$skip": p.Skip()},
		{"$limit": p.Limit64()},
		{"$lookup": bson.M{
			"from":         "courses",
			"localField":   "course_id",
			"foreignField": "_id",
			"as":           "course",
		}},
		{"$unwind": "$course"},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "student_id",
			"foreignField": "_id",
			"as":           "student",
		}},
		{"$unwind": "$student"},
		{"$project": bson.M{
			"enrollment": "$$ROOT",
			"course":     1,
			"student":    1,
		}},
		{"$project": bson.M{
			"enrollment.course":     0,
			"enrollment.student":    0,
			"student.password_hash": 0,
		}},
	}

	cur, err := s.c.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []EnrollmentDetail
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one student's enrollment in a course.
func (s *Store) Delete(ctx context.Context, studentID, courseID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"student_id": studentID, "course_id": courseID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByCourse returns a course's enrollments, newest first.
func (s *Store) ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Enrollment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Enrollment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByCourse removes all enrollments in a course. Part of the
// course-deletion cascade.
func (s *Store) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
