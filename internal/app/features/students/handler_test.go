// internal/app/features/students/handler_test.go
package students

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	userstore "github.com/Thomas-Sedhom/LMS/internal/app/store/users"
	"github.com/Thomas-Sedhom/LMS/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestHandleGetSelf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(userstore.New(db), zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := f.CreateStudent(ctx, "Mona", "mona@example.com")
	user := testutil.TestUser{ID: student.ID.Hex(), Email: student.Email, Role: "user"}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/getStudent", user)
	rec := httptest.NewRecorder()
	h.HandleGetSelf(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Data struct {
			FirstName    string `json:"first_name"`
			Email        string `json:"email"`
			PasswordHash string `json:"password_hash"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Data.FirstName != "Mona" || out.Data.Email != "mona@example.com" {
		t.Errorf("profile = %+v", out.Data)
	}
	if out.Data.PasswordHash != "" {
		t.Error("password hash must never appear in responses")
	}

	// An account deleted out from under a live token is a 404.
	ghost := testutil.StudentUser()
	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/getStudent", ghost)
	rec = httptest.NewRecorder()
	h.HandleGetSelf(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing account status = %d, want 404", rec.Code)
	}
}

func TestHandleUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(userstore.New(db), zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := f.CreateStudent(ctx, "Mona", "mona@example.com")
	user := testutil.TestUser{ID: student.ID.Hex(), Email: student.Email, Role: "user"}

	body, _ := json.Marshal(map[string]string{"first_name": "Monica"})
	req := httptest.NewRequest(http.MethodPatch, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, user)
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	updated, err := h.Students.GetByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.FirstName != "Monica" {
		t.Errorf("first name = %q", updated.FirstName)
	}
	// Fields left out of the request keep their values.
	if updated.LastName != student.LastName || updated.Phone != student.Phone {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestHandleList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(userstore.New(db), zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	// An empty roster is a 404, matching the API's contract.
	req := testutil.NewRequest(http.MethodGet, "/getStudents")
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("empty roster status = %d, want 404", rec.Code)
	}

	f.CreateStudent(ctx, "Mona", "mona@example.com")
	f.CreateStudent(ctx, "Omar", "omar@example.com")

	req = testutil.NewRequest(http.MethodGet, "/getStudents")
	rec = httptest.NewRecorder()
	h.HandleList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Data) != 2 {
		t.Errorf("students = %d, want 2", len(out.Data))
	}
}

func TestHandleGetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := NewHandler(userstore.New(db), zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := f.CreateStudent(ctx, "Mona", "mona@example.com")

	req := testutil.NewRequest(http.MethodGet, "/getStudentById/"+student.ID.Hex())
	req = testutil.WithChiURLParam(req, "studentID", student.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleGetByID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	missing := primitive.NewObjectID()
	req = testutil.NewRequest(http.MethodGet, "/getStudentById/"+missing.Hex())
	req = testutil.WithChiURLParam(req, "studentID", missing.Hex())
	rec = httptest.NewRecorder()
	h.HandleGetByID(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing student status = %d, want 404", rec.Code)
	}
}
