// internal/app/features/enrollments/handler_test.go
package enrollments

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

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(raw)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v, body %s", err, rec.Body.String())
	}
	return out
}

func TestHandleEnroll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	instructor := f.CreateInstructor(ctx, "Nour", "nour@example.com")
	course := f.CreateCourse(ctx, "English A1", instructor.ID)
	student := f.CreateStudent(ctx, "Mona", "mona@example.com")
	user := studentUserFor(student.ID)

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/enrollNewStudent/"+course.ID.Hex(), user)
	req = testutil.WithChiURLParam(req, "courseID", course.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleEnroll(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("enroll status = %d, body %s", rec.Code, rec.Body.String())
	}

	// New enrollments start inactive.
	enr, err := h.Enrollments.GetByStudentAndCourse(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("GetByStudentAndCourse: %v", err)
	}
	if enr.Active {
		t.Error("new enrollment should be inactive")
	}

	// A second enrollment in the same course is rejected.
	req = testutil.NewAuthenticatedRequest(http.MethodPost, "/enrollNewStudent/"+course.ID.Hex(), user)
	req = testutil.WithChiURLParam(req, "courseID", course.ID.Hex())
	rec = httptest.NewRecorder()
	h.HandleEnroll(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate enroll status = %d, want 400", rec.Code)
	}

	// Enrolling in a course that does not exist is a 404.
	missing := primitive.NewObjectID()
	req = testutil.NewAuthenticatedRequest(http.MethodPost, "/enrollNewStudent/"+missing.Hex(), user)
	req = testutil.WithChiURLParam(req, "courseID", missing.Hex())
	rec = httptest.NewRecorder()
	h.HandleEnroll(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing course status = %d, want 404", rec.Code)
	}
}

func TestHandleValidateCodeIsOneShot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	instructor := f.CreateInstructor(ctx, "Nour", "nour@example.com")
	course := f.CreateCourse(ctx, "English A1", instructor.ID)
	first := f.CreateStudent(ctx, "Mona", "mona@example.com")
	second := f.CreateStudent(ctx, "Omar", "omar@example.com")
	f.CreateEnrollment(ctx, first.ID, course.ID)
	f.CreateEnrollment(ctx, second.ID, course.ID)
	f.CreateCode(ctx, "ABC123")

	validate := func(student primitive.ObjectID, code string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/validateCode/"+course.ID.Hex(), jsonBody(t, map[string]string{"code": code}))
		req.Header.Set("Content-Type", "application/json")
		req = testutil.WithUser(req, studentUserFor(student))
		req = testutil.WithChiURLParam(req, "courseID", course.ID.Hex())
		rec := httptest.NewRecorder()
		h.HandleValidateCode(rec, req)
		return rec
	}

	rec := validate(first.ID, "ABC123")
	if rec.Code != http.StatusOK {
		t.Fatalf("first redemption status = %d, body %s", rec.Code, rec.Body.String())
	}

	enr, err := h.Enrollments.GetByStudentAndCourse(ctx, first.ID, course.ID)
	if err != nil {
		t.Fatalf("GetByStudentAndCourse: %v", err)
	}
	if !enr.Active {
		t.Error("enrollment should be active after redemption")
	}

	// The code is consumed; a second student cannot reuse it.
	rec = validate(second.ID, "ABC123")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("reused code status = %d, want 400", rec.Code)
	}
	enr, err = h.Enrollments.GetByStudentAndCourse(ctx, second.ID, course.ID)
	if err != nil {
		t.Fatalf("GetByStudentAndCourse: %v", err)
	}
	if enr.Active {
		t.Error("second enrollment must stay inactive after a failed redemption")
	}

	// Unknown codes are rejected outright.
	rec = validate(second.ID, "NOPE99")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown code status = %d, want 400", rec.Code)
	}
}

func TestHandleUpdateProgress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	instructor := f.CreateInstructor(ctx, "Nour", "nour@example.com")
	course := f.CreateCourse(ctx, "English A1", instructor.ID)
	other := f.CreateCourse(ctx, "English A2", instructor.ID)
	student := f.CreateStudent(ctx, "Mona", "mona@example.com")
	f.CreateEnrollment(ctx, student.ID, course.ID)

	videos := make([]primitive.ObjectID, 0, 5)
	for i := 1; i <= 5; i++ {
		v := f.CreateVideo(ctx, course.ID, "Lesson", i)
		videos = append(videos, v.ID)
	}
	strayVideo := f.CreateVideo(ctx, other.ID, "Stray", 1)

	update := func(videoID primitive.ObjectID) *httptest.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest(http.MethodPatch, "/updateProgress", studentUserFor(student.ID))
		req = testutil.WithChiURLParam(req, "courseID", course.ID.Hex())
		req = testutil.WithChiURLParam(req, "videoID", videoID.Hex())
		rec := httptest.NewRecorder()
		h.HandleUpdateProgress(rec, req)
		return rec
	}

	// Finishing the second of five videos lands at 40 percent.
	rec := update(videos[1])
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if got := data["progress"].(float64); got != 40 {
		t.Errorf("progress = %v, want 40", got)
	}
	if data["completed"].(bool) {
		t.Error("40 percent should not be completed")
	}

	// Finishing the last video completes the enrollment.
	rec = update(videos[4])
	if rec.Code != http.StatusOK {
		t.Fatalf("final update status = %d, body %s", rec.Code, rec.Body.String())
	}
	data = decodeEnvelope(t, rec)["data"].(map[string]any)
	if got := data["progress"].(float64); got != 100 {
		t.Errorf("progress = %v, want 100", got)
	}
	if !data["completed"].(bool) {
		t.Error("100 percent should be completed")
	}

	enr, err := h.Enrollments.GetByStudentAndCourse(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("GetByStudentAndCourse: %v", err)
	}
	if enr.Status != "completed" || enr.CompletionDate == nil {
		t.Errorf("enrollment after completion = %+v", enr)
	}

	// A video from another course cannot advance this one.
	rec = update(strayVideo.ID)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("stray video status = %d, want 400", rec.Code)
	}
}

func TestHandleCreateCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewHandler(db, zap.NewNop())

	post := func(code string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/createCode", jsonBody(t, map[string]string{"code": code}))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.HandleCreateCode(rec, req)
		return rec
	}

	if rec := post("XY7788"); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := post("XY7788"); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d, want 400", rec.Code)
	}
	// Shorter than the four-character minimum.
	if rec := post("ab"); rec.Code != http.StatusBadRequest {
		t.Fatalf("short code status = %d, want 400", rec.Code)
	}
}

func TestHandleGetSelf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(db, zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	instructor := f.CreateInstructor(ctx, "Nour", "nour@example.com")
	course := f.CreateCourse(ctx, "English A1", instructor.ID)
	student := f.CreateStudent(ctx, "Mona", "mona@example.com")
	f.CreateEnrollment(ctx, student.ID, course.ID)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/getEnrollment/"+course.ID.Hex(), studentUserFor(student.ID))
	req = testutil.WithChiURLParam(req, "courseID", course.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleGetSelf(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	courseData, ok := data["course"].(map[string]any)
	if !ok {
		t.Fatalf("course missing from enrollment detail: %v", data)
	}
	if courseData["name"] != "English A1" {
		t.Errorf("course name = %v", courseData["name"])
	}

	// Not enrolled yet in a fresh course.
	fresh := f.CreateCourse(ctx, "English B1", instructor.ID)
	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/getEnrollment/"+fresh.ID.Hex(), studentUserFor(student.ID))
	req = testutil.WithChiURLParam(req, "courseID", fresh.ID.Hex())
	rec = httptest.NewRecorder()
	h.HandleGetSelf(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing enrollment status = %d, want 404", rec.Code)
	}
}
