// internal/app/features/quizzes/handler_test.go
package quizzes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Thomas-Sedhom/LMS/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func studentUserFor(id primitive.ObjectID) testutil.TestUser {
	return testutil.TestUser{ID: id.Hex(), Email: "student@test.com", Role: "user"}
}

func completeRequest(t *testing.T, user testutil.TestUser, courseID, videoID primitive.ObjectID, quizNumber int, grade float64) *http.Request {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"quiz_number": quizNumber, "grade": grade})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/completeQuizForStudent", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, user)
	req = testutil.WithChiURLParam(req, "courseID", courseID.Hex())
	req = testutil.WithChiURLParam(req, "videoID", videoID.Hex())
	return req
}

func TestHandleComplete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	instructor := f.CreateInstructor(ctx, "Nour", "nour@example.com")
	course := f.CreateCourse(ctx, "English A1", instructor.ID)
	video := f.CreateVideo(ctx, course.ID, "Lesson 1", 1)
	student := f.CreateStudent(ctx, "Mona", "mona@example.com")
	user := studentUserFor(student.ID)

	// Quiz 1 has four questions.
	for i := 0; i < 4; i++ {
		f.CreateQuestion(ctx, video.ID, "00:05:00", 1)
	}

	// Three correct out of four stores as 75 percent.
	rec := httptest.NewRecorder()
	h.HandleComplete(rec, completeRequest(t, user, course.ID, video.ID, 1, 3))
	if rec.Code != http.StatusCreated {
		t.Fatalf("complete status = %d, body %s", rec.Code, rec.Body.String())
	}

	attempts, err := h.Quizzes.ListByStudentAndVideo(ctx, student.ID, video.ID)
	if err != nil {
		t.Fatalf("ListByStudentAndVideo: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(attempts))
	}
	if attempts[0].Grade != 75 {
		t.Errorf("stored grade = %v, want 75", attempts[0].Grade)
	}

	// More correct answers than questions is a client error.
	rec = httptest.NewRecorder()
	h.HandleComplete(rec, completeRequest(t, user, course.ID, video.ID, 1, 9))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized grade status = %d, want 400", rec.Code)
	}

	// A quiz number with no questions cannot be completed.
	rec = httptest.NewRecorder()
	h.HandleComplete(rec, completeRequest(t, user, course.ID, video.ID, 7, 1))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty quiz status = %d, want 400", rec.Code)
	}

	// Unknown videos are a 404.
	rec = httptest.NewRecorder()
	h.HandleComplete(rec, completeRequest(t, user, course.ID, primitive.NewObjectID(), 1, 1))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing video status = %d, want 404", rec.Code)
	}
}

func TestHandleListForSelf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	instructor := f.CreateInstructor(ctx, "Nour", "nour@example.com")
	course := f.CreateCourse(ctx, "English A1", instructor.ID)
	video := f.CreateVideo(ctx, course.ID, "Lesson 1", 1)
	student := f.CreateStudent(ctx, "Mona", "mona@example.com")
	user := studentUserFor(student.ID)

	f.CreateQuestion(ctx, video.ID, "00:05:00", 1)
	f.CreateQuestion(ctx, video.ID, "00:08:00", 1)

	rec := httptest.NewRecorder()
	h.HandleComplete(rec, completeRequest(t, user, course.ID, video.ID, 1, 2))
	if rec.Code != http.StatusCreated {
		t.Fatalf("complete status = %d, body %s", rec.Code, rec.Body.String())
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/getQuizzesForStudentByStudent", user)
	rec = httptest.NewRecorder()
	h.HandleListForSelf(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Data []struct {
			Attempt struct {
				Grade float64 `json:"grade"`
			} `json:"attempt"`
			Course struct {
				Name string `json:"name"`
			} `json:"course"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v, body %s", err, rec.Body.String())
	}
	if len(out.Data) != 1 {
		t.Fatalf("attempts = %d, want 1", len(out.Data))
	}
	if out.Data[0].Attempt.Grade != 100 {
		t.Errorf("grade = %v, want 100", out.Data[0].Attempt.Grade)
	}
	if out.Data[0].Course.Name != "English A1" {
		t.Errorf("course name = %q", out.Data[0].Course.Name)
	}

	// A student with no attempts gets an empty list, not null.
	other := f.CreateStudent(ctx, "Omar", "omar@example.com")
	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/getQuizzesForStudentByStudent", studentUserFor(other.ID))
	rec = httptest.NewRecorder()
	h.HandleListForSelf(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty list status = %d", rec.Code)
	}
	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := envelope["data"].([]any); !ok {
		t.Errorf("data should be an array, got %T", envelope["data"])
	}
}
