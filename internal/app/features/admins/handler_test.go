// internal/app/features/admins/handler_test.go
package admins

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	adminstore "github.com/Thomas-Sedhom/LMS/internal/app/store/admins"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/Thomas-Sedhom/LMS/internal/testutil"
	"go.uber.org/zap"
)

func createAdmin(t *testing.T, store *adminstore.Store, firstName, email string) models.Admin {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	admin, err := store.Create(ctx, models.Admin{
		FirstName:    firstName,
		LastName:     "Test",
		Email:        email,
		Phone:        "+201000000001",
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return admin
}

func TestHandleGetSelf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := adminstore.New(db)
	h := NewHandler(store, zap.NewNop())

	admin := createAdmin(t, store, "Hala", "hala@example.com")
	user := testutil.TestUser{ID: admin.ID.Hex(), Email: admin.Email, Role: "admin"}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/getAdmin", user)
	rec := httptest.NewRecorder()
	h.HandleGetSelf(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Data struct {
			FirstName string `json:"first_name"`
			Email     string `json:"email"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Data.FirstName != "Hala" || out.Data.Email != "hala@example.com" {
		t.Errorf("profile = %+v", out.Data)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("password")) {
		t.Error("response leaks password hash")
	}

	ghost := testutil.AdminUser()
	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/getAdmin", ghost)
	rec = httptest.NewRecorder()
	h.HandleGetSelf(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("ghost admin status = %d, want 404", rec.Code)
	}
}

func TestHandleList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := adminstore.New(db)
	h := NewHandler(store, zap.NewNop())

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/getAllAdmins", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("empty list status = %d, want 404", rec.Code)
	}

	createAdmin(t, store, "Hala", "hala@example.com")
	createAdmin(t, store, "Omar", "omar@example.com")

	rec = httptest.NewRecorder()
	h.HandleList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Data []models.Admin `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Data) != 2 {
		t.Errorf("admins = %d, want 2", len(out.Data))
	}
}

func TestHandleUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := adminstore.New(db)
	h := NewHandler(store, zap.NewNop())

	admin := createAdmin(t, store, "Hala", "hala@example.com")
	user := testutil.TestUser{ID: admin.ID.Hex(), Email: admin.Email, Role: "admin"}

	body, _ := json.Marshal(map[string]string{"first_name": "Heba"})
	req := httptest.NewRequest(http.MethodPatch, "/updateAdmin", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, user)
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, err := store.GetByID(ctx, admin.ID)
	if err != nil {
		t.Fatalf("reload admin: %v", err)
	}
	if got.FirstName != "Heba" {
		t.Errorf("first name = %q, want Heba", got.FirstName)
	}
	if got.LastName != "Test" || got.Phone != admin.Phone {
		t.Errorf("partial update touched other fields: %+v", got)
	}
}
