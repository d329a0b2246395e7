// internal/app/features/courses/questions_test.go
package courses

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Thomas-Sedhom/LMS/internal/app/clients/vdocipher"
	questionstore "github.com/Thomas-Sedhom/LMS/internal/app/store/questions"
	videostore "github.com/Thomas-Sedhom/LMS/internal/app/store/videos"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/Thomas-Sedhom/LMS/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// recordingHost serves a video host that remembers which assets were
// bulk-deleted.
func recordingHost(t *testing.T, deleted *[]string) *vdocipher.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodDelete {
			*deleted = append(*deleted, strings.Split(r.URL.Query().Get("videos"), ",")...)
		}
		if r.URL.Path == "/folders/search" {
			_, _ = w.Write([]byte(`{"folders":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return vdocipher.New(srv.URL, "test-secret")
}

func TestHandleDeleteQuestion_RevisionCascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	var deleted []string
	h := NewHandler(db, recordingHost(t, &deleted), newMemStore(), zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	instructor := f.CreateInstructor(ctx, "Nour", "nour@example.com")
	course := f.CreateCourse(ctx, "English A1", instructor.ID)
	video := f.CreateVideo(ctx, course.ID, "Lesson 1", 1)

	const checkpoint = "00:05:00"
	q1 := f.CreateQuestion(ctx, video.ID, checkpoint, 1)
	q2 := f.CreateQuestion(ctx, video.ID, checkpoint, 1)

	revision, err := h.Videos.Create(ctx, models.Video{
		HostVideoID: "rev-host-1",
		Title:       "Checkpoint revision",
		MainVideoID: &video.ID,
	})
	if err != nil {
		t.Fatalf("create revision video: %v", err)
	}
	if err := h.Questions.SetRevisionVideo(ctx, video.ID, checkpoint, revision.ID); err != nil {
		t.Fatalf("SetRevisionVideo: %v", err)
	}

	del := func(id primitive.ObjectID) *httptest.ResponseRecorder {
		req := testutil.NewRequest(http.MethodDelete, "/question/"+id.Hex())
		req = testutil.WithChiURLParam(req, "questionID", id.Hex())
		rec := httptest.NewRecorder()
		h.HandleDeleteQuestion(rec, req)
		return rec
	}

	// Deleting one of two questions leaves the checkpoint's revision
	// video alone.
	if rec := del(q1.ID); rec.Code != http.StatusOK {
		t.Fatalf("first delete status = %d, body %s", rec.Code, rec.Body.String())
	}
	if _, err := h.Questions.GetByID(ctx, q1.ID); !errors.Is(err, questionstore.ErrNotFound) {
		t.Fatalf("question after delete: err = %v, want not found", err)
	}
	if _, err := h.Videos.GetByID(ctx, revision.ID); err != nil {
		t.Fatalf("revision video should survive while questions remain: %v", err)
	}
	if len(deleted) != 0 {
		t.Fatalf("host deletes = %v, want none yet", deleted)
	}

	// Deleting the last question at the checkpoint takes the revision
	// video doc and its host asset with it.
	if rec := del(q2.ID); rec.Code != http.StatusOK {
		t.Fatalf("second delete status = %d, body %s", rec.Code, rec.Body.String())
	}
	if _, err := h.Videos.GetByID(ctx, revision.ID); !errors.Is(err, videostore.ErrNotFound) {
		t.Fatalf("revision after last delete: err = %v, want not found", err)
	}
	if len(deleted) != 1 || deleted[0] != "rev-host-1" {
		t.Errorf("host deletes = %v, want [rev-host-1]", deleted)
	}

	if rec := del(q2.ID); rec.Code != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d, want 404", rec.Code)
	}
}
