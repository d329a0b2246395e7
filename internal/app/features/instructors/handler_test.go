// internal/app/features/instructors/handler_test.go
package instructors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	coursestore "github.com/Thomas-Sedhom/LMS/internal/app/store/courses"
	instructorstore "github.com/Thomas-Sedhom/LMS/internal/app/store/instructors"
	"github.com/Thomas-Sedhom/LMS/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestHandleGetSelf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(instructorstore.New(db), coursestore.New(db), zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	instructor := f.CreateInstructor(ctx, "Nour", "nour@example.com")
	f.CreateCourse(ctx, "English A1", instructor.ID)
	f.CreateCourse(ctx, "English A2", instructor.ID)
	user := testutil.TestUser{ID: instructor.ID.Hex(), Email: instructor.Email, Role: "instructor"}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/getInstructor", user)
	rec := httptest.NewRecorder()
	h.HandleGetSelf(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Data struct {
			FirstName string `json:"first_name"`
			Courses   []struct {
				Name string `json:"name"`
			} `json:"courses"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Data.FirstName != "Nour" {
		t.Errorf("first name = %q", out.Data.FirstName)
	}
	if len(out.Data.Courses) != 2 {
		t.Errorf("courses = %d, want 2", len(out.Data.Courses))
	}
}

func TestHandleGetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(instructorstore.New(db), coursestore.New(db), zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	instructor := f.CreateInstructor(ctx, "Nour", "nour@example.com")

	req := testutil.NewRequest(http.MethodGet, "/getInstructorById/"+instructor.ID.Hex())
	req = testutil.WithChiURLParam(req, "instructorID", instructor.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleGetByID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	missing := primitive.NewObjectID()
	req = testutil.NewRequest(http.MethodGet, "/getInstructorById/"+missing.Hex())
	req = testutil.WithChiURLParam(req, "instructorID", missing.Hex())
	rec = httptest.NewRecorder()
	h.HandleGetByID(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing instructor status = %d, want 404", rec.Code)
	}
}
