package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func newTestTokens(t *testing.T) *Tokens {
	t.Helper()
	tok, err := NewTokens("test-secret-at-least-32-characters!!")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	return tok
}

func TestGenerateAndParsePair(t *testing.T) {
	tokens := newTestTokens(t)

	pair, err := tokens.GeneratePair("abc123", "sara@example.com", "user")
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	access, err := tokens.ParseAccess(pair.Access)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if access.UserID != "abc123" || access.Email != "sara@example.com" || access.Role != "user" {
		t.Errorf("access claims = %+v", access)
	}

	refresh, err := tokens.ParseRefresh(pair.Refresh)
	if err != nil {
		t.Fatalf("ParseRefresh: %v", err)
	}
	if refresh.UserID != "abc123" {
		t.Errorf("refresh subject = %q", refresh.UserID)
	}
}

func TestParseRejectsWrongType(t *testing.T) {
	tokens := newTestTokens(t)
	pair, err := tokens.GeneratePair("abc123", "sara@example.com", "user")
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	if _, err := tokens.ParseAccess(pair.Refresh); err == nil {
		t.Error("refresh token accepted as access token")
	}
	if _, err := tokens.ParseRefresh(pair.Access); err == nil {
		t.Error("access token accepted as refresh token")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tokens := newTestTokens(t)
	pair, err := tokens.GeneratePair("abc123", "a@b.com", "user")
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	other, _ := NewTokens("a-completely-different-secret-value!")
	if _, err := other.ParseAccess(pair.Access); err == nil {
		t.Error("token with wrong signature accepted")
	}
}

func TestParseExpired(t *testing.T) {
	tokens := newTestTokens(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "abc123",
		"type": "access",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})
	raw, err := expired.SignedString([]byte("test-secret-at-least-32-characters!!"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = tokens.ParseAccess(raw)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("ParseAccess(expired) = %v, want ErrTokenExpired", err)
	}
}

func okHandler(t *testing.T, wantUser bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := CurrentUser(r)
		if ok != wantUser {
			t.Errorf("CurrentUser found = %v, want %v", ok, wantUser)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_ValidCookie(t *testing.T) {
	tokens := newTestTokens(t)
	m := NewManager(tokens, func(ctx context.Context, id string) (*SessionUser, error) {
		t.Error("fetcher should not be called for a valid access token")
		return nil, nil
	}, false, zap.NewNop())

	pair, _ := tokens.GeneratePair("abc123", "a@b.com", "admin")
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: pair.Access})
	rec := httptest.NewRecorder()

	m.Authenticate(okHandler(t, true)).ServeHTTP(rec, req)
}

func TestAuthenticate_NoCookie(t *testing.T) {
	tokens := newTestTokens(t)
	m := NewManager(tokens, nil, false, zap.NewNop())

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	m.Authenticate(okHandler(t, false)).ServeHTTP(rec, req)
}

func TestAuthenticate_SilentRefresh(t *testing.T) {
	tokens := newTestTokens(t)
	fetched := false
	m := NewManager(tokens, func(ctx context.Context, id string) (*SessionUser, error) {
		fetched = true
		if id != "abc123" {
			t.Errorf("fetch id = %q", id)
		}
		return &SessionUser{ID: id, Email: "a@b.com", Role: "user"}, nil
	}, false, zap.NewNop())

	// Expired access token plus a valid refresh token.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "abc123",
		"type": "access",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})
	rawExpired, _ := expired.SignedString([]byte("test-secret-at-least-32-characters!!"))
	pair, _ := tokens.GeneratePair("abc123", "a@b.com", "user")

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: rawExpired})
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: pair.Refresh})
	rec := httptest.NewRecorder()

	m.Authenticate(okHandler(t, true)).ServeHTTP(rec, req)

	if !fetched {
		t.Error("identity fetcher not called during silent refresh")
	}

	var gotAccess, gotRefresh bool
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case AccessCookie:
			gotAccess = c.Value != ""
		case RefreshCookie:
			gotRefresh = c.Value != ""
		}
	}
	if !gotAccess || !gotRefresh {
		t.Error("silent refresh did not re-issue both cookies")
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		user       *SessionUser
		allowed    []string
		wantStatus int
	}{
		{"no user", nil, []string{"admin"}, http.StatusUnauthorized},
		{"wrong role", &SessionUser{ID: "1", Role: "user"}, []string{"admin"}, http.StatusForbidden},
		{"allowed role", &SessionUser{ID: "1", Role: "admin"}, []string{"admin", "instructor"}, http.StatusOK},
		{"case insensitive", &SessionUser{ID: "1", Role: "Admin"}, []string{"admin"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(zap.NewNop(), tt.allowed...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/", nil)
			if tt.user != nil {
				req = withUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestClearAuthCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearAuthCookies(rec, false)

	cookies := rec.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("got %d cookies, want 2", len(cookies))
	}
	for _, c := range cookies {
		if c.MaxAge != -1 {
			t.Errorf("cookie %s MaxAge = %d, want -1", c.Name, c.MaxAge)
		}
	}
}
