package httpjson

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
)

func TestOKEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, "courses fetched", []string{"a", "b"})

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var env struct {
		StatusCode int      `json:"statusCode"`
		Message    string   `json:"message"`
		Data       []string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.StatusCode != 200 || env.Message != "courses fetched" || len(env.Data) != 2 {
		t.Errorf("envelope = %+v", env)
	}
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/enrollment", nil)

	Error(rec, req, apperr.BadRequest("duplicate enrollment"), zap.NewNop())

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var env Failure
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.StatusCode != 400 {
		t.Errorf("statusCode = %d", env.StatusCode)
	}
	if env.Path != "/api/v1/enrollment" {
		t.Errorf("path = %q", env.Path)
	}
	if env.Message != "duplicate enrollment" {
		t.Errorf("message = %q", env.Message)
	}
	if env.Timestamp == "" {
		t.Error("timestamp missing")
	}
}

func TestErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/course", nil)

	Error(rec, req, errors.New("mongo: socket closed"), zap.NewNop())

	if rec.Code != 500 {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "mongo") {
		t.Errorf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestDecode(t *testing.T) {
	type dto struct {
		Email string `json:"email"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.com"}`))
		var d dto
		if err := Decode(req, &d); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if d.Email != "a@b.com" {
			t.Errorf("email = %q", d.Email)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))
		var d dto
		err := Decode(req, &d)
		if err == nil {
			t.Fatal("expected error")
		}
		if apperr.StatusOf(err) != 400 {
			t.Errorf("status = %d, want 400", apperr.StatusOf(err))
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":`))
		var d dto
		if err := Decode(req, &d); apperr.StatusOf(err) != 400 {
			t.Errorf("status = %d, want 400", apperr.StatusOf(err))
		}
	})
}
