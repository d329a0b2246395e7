package questionstore

import (
	"context"
	"errors"
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
	return &Store{c: db.Collection("questions")}
}

var (
	// ErrNotFound is returned when no question matches the lookup.
	ErrNotFound = errors.New("question not found")
	// ErrBadType is returned when the question type is not a known value.
	ErrBadType = errors.New("unknown question type")
)

// GetByID loads a question by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Question, error) {
	var q models.Question
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// Create inserts a new question after validating its type. The caller
// wraps this together with the video's AddQuestion in a transaction.
func (s *Store) Create(ctx context.Context, q models.Question) (models.Question, error) {
	if !models.IsValidQuestionType(q.Type) {
		return models.Question{}, ErrBadType
	}

	q.ID = primitive.NewObjectID()

	now := time.Now()
	q.CreatedAt = now
	q.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, q); err != nil {
		return models.Question{}, err
	}
	return q, nil
}

// UpdatePrompt updates a question's prompt, choices, and answer fields.
// Type, video, and timestamp are fixed at creation.
func (s *Store) UpdatePrompt(ctx context.Context, id primitive.ObjectID, q models.Question) error {
	set := bson.M{
		"prompt":            q.Prompt,
		"choice1":           q.Choice1,
		"choice2":           q.Choice2,
		"choice3":           q.Choice3,
		"choice4":           q.Choice4,
		"choose_answer":     q.ChooseAnswer,
		"true_false_answer": q.TrueFalseAnswer,
		"paragraph_answer":  q.ParagraphAnswer,
		"expressive_answer": q.ExpressiveAnswer,
		"complete_answer":   q.CompleteAnswer,
		"updated_at":        time.Now(),
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

// SetRevisionVideo attaches a revision video to every question in one quiz
// checkpoint. All questions at the same (video, time) share the revision.
func (s *Store) SetRevisionVideo(ctx context.Context, videoID primitive.ObjectID, at string, revisionVideoID primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"video_id": videoID, "time": at},
		bson.M{"$set": bson.M{"revision_video_id": revisionVideoID, "updated_at": time.Now()}})
	return err
}

// ListByVideo returns a video's questions ordered by timestamp then quiz
// number, so grouping by checkpoint is a single pass.
func (s *Store) ListByVideo(ctx context.Context, videoID primitive.ObjectID) ([]models.Question, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "time", Value: 1},
		{Key: "quiz_number", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{"video_id": videoID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Question
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCheckpoint returns the questions of one quiz checkpoint.
func (s *Store) ListCheckpoint(ctx context.Context, videoID primitive.ObjectID, at string) ([]models.Question, error) {
	cur, err := s.c.Find(ctx, bson.M{"video_id": videoID, "time": at})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Question
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountCheckpoint returns how many questions remain at one checkpoint.
// A checkpoint's revision video is deleted when this reaches zero.
func (s *Store) CountCheckpoint(ctx context.Context, videoID primitive.ObjectID, at string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"video_id": videoID, "time": at})
}

// CountByQuizNumber returns how many questions a video's quiz has. Quiz
// grades are normalized against this total.
func (s *Store) CountByQuizNumber(ctx context.Context, videoID primitive.ObjectID, quizNumber int) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"video_id": videoID, "quiz_number": quizNumber})
}

// Delete removes a question document. The caller handles the cascade.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByVideo removes all questions attached to a video. Used by the
// video and course deletion cascades.
func (s *Store) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"video_id": videoID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
