// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(name string, fn func(context.Context, *mongo.Database) error) {
		if err := fn(ctx, db); err != nil {
			problems = append(problems, name+": "+err.Error())
		}
	}

	ensure("users", ensureUsers)
	ensure("instructors", ensureInstructors)
	ensure("admins", ensureAdmins)
	ensure("courses", ensureCourses)
	ensure("videos", ensureVideos)
	ensure("questions", ensureQuestions)
	ensure("enrollments", ensureEnrollments)
	ensure("quizzes", ensureQuizzes)
	ensure("codes", ensureCodes)
	ensure("contacts", ensureContacts)
	ensure("blogs", ensureBlogs)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolOf(p *bool) bool { return p != nil && *p }

// isDuplicateKeyErr is a best-effort duplicate detector that works across
// Mongo-compatible vendors.
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// ensureIndexSet reconciles one collection toward the desired index models.
// For each desired index: reuse an existing index with the same key pattern
// and uniqueness, drop and recreate one whose options differ, create it if
// absent. A unique index that cannot be created because duplicate data is
// already present is reported rather than silently skipped.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	var errs []string
	for _, m := range models {
		var desiredName string
		var desiredUnique bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = boolOf(m.Options.Unique)
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if boolOf(ex.Unique) == desiredUnique {
				continue // already as desired
			}
			// Options mismatch (e.g. upgrading to unique). Drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && desiredUnique {
				errs = append(errs, fmt.Sprintf(
					"%s(%s): cannot create unique index, duplicates present in existing data", coll.Name(), desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig),
			zap.Bool("unique", desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

// uniqueEmail is shared by the three identity collections: email must be
// unique within each collection.
func uniqueEmail(name string) []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_" + name + "_emailci"),
		},
	}
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), uniqueEmail("users"))
}

func ensureInstructors(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("instructors"), uniqueEmail("instructors"))
}

func ensureAdmins(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("admins"), uniqueEmail("admins"))
}

func ensureCourses(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("courses")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Instructor's course list
		{
			Keys:    bson.D{{Key: "instructor_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_courses_instructor_created"),
		},
		// Catalog browsing by category
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "sub_category", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_courses_category_created"),
		},
		// Paged catalog listing (latest-first)
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_courses_created"),
		},
	})
}

func ensureVideos(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("videos")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// All videos of a course in playback order
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "index", Value: 1}},
			Options: options.Index().SetName("idx_videos_course_index"),
		},
		// Revision videos hanging off a main video
		{
			Keys:    bson.D{{Key: "main_video_id", Value: 1}},
			Options: options.Index().SetName("idx_videos_main"),
		},
		// Lookup by the host's opaque video ID. Unique so two concurrent
		// save-video requests for the same host ID lose the race at the
		// storage layer, not just at the pre-check.
		{
			Keys:    bson.D{{Key: "host_video_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_videos_hostid"),
		},
	})
}

func ensureQuestions(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("questions")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Quiz checkpoints: all questions of a video grouped by timestamp
		{
			Keys:    bson.D{{Key: "video_id", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetName("idx_questions_video_time"),
		},
		// Grading: all questions of one quiz number within a video
		{
			Keys:    bson.D{{Key: "video_id", Value: 1}, {Key: "quiz_number", Value: 1}},
			Options: options.Index().SetName("idx_questions_video_quiz"),
		},
	})
}

func ensureEnrollments(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("enrollments")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One enrollment per (student, course). Unique so concurrent
		// duplicate enrollments lose the race at the storage layer, not
		// just at the pre-check.
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "course_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_enroll_student_course"),
		},
		// A student's enrollments (latest-first)
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_enroll_student_created"),
		},
		// A course's roster
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_enroll_course_created"),
		},
	})
}

func ensureQuizzes(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("quizzes")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// A student's attempts at one quiz checkpoint
		{
			Keys: bson.D{
				{Key: "student_id", Value: 1},
				{Key: "video_id", Value: 1},
				{Key: "quiz_number", Value: 1},
			},
			Options: options.Index().SetName("idx_quizzes_student_video_quiz"),
		},
		// Per-course quiz history (latest-first)
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "course_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_quizzes_student_course_created"),
		},
	})
}

func ensureCodes(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("codes")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Redemption looks codes up by value; made unique so the same code
		// string can exist at most once.
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_codes_code"),
		},
	})
}

func ensureContacts(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("contacts")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_contacts_student_created"),
		},
	})
}

func ensureBlogs(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("blogs")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_blogs_created"),
		},
	})
}
