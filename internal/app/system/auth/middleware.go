// internal/app/system/auth/middleware.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
)

// SessionUser is the authenticated identity injected into r.Context().
type SessionUser struct {
	ID    string
	Email string
	Role  string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the authenticated user and a "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// IdentityFetcher loads a live identity by ID during silent refresh, so a
// deleted account cannot mint fresh tokens from an old refresh cookie.
type IdentityFetcher func(ctx context.Context, userID string) (*SessionUser, error)

// Manager owns token verification and the silent-refresh flow.
type Manager struct {
	tokens *Tokens
	fetch  IdentityFetcher
	secure bool
	log    *zap.Logger
}

// NewManager creates the auth middleware manager.
func NewManager(tokens *Tokens, fetch IdentityFetcher, secure bool, log *zap.Logger) *Manager {
	return &Manager{tokens: tokens, fetch: fetch, secure: secure, log: log}
}

// Authenticate resolves the auth cookies into a context user.
//
// Per request: (1) a valid access cookie injects the user directly;
// (2) an expired access cookie with a valid refresh cookie re-issues both
// cookies and injects the refetched identity; (3) anything else leaves the
// request unauthenticated and lets RequireSignedIn/RequireRole fail it.
func (m *Manager) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(AccessCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.tokens.ParseAccess(cookie.Value)
		if err == nil {
			next.ServeHTTP(w, withUser(r, &SessionUser{
				ID:    claims.UserID,
				Email: claims.Email,
				Role:  claims.Role,
			}))
			return
		}

		if errors.Is(err, ErrTokenExpired) {
			if u, ok := m.refresh(w, r); ok {
				next.ServeHTTP(w, withUser(r, u))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// refresh attempts a silent token refresh from the refresh cookie.
func (m *Manager) refresh(w http.ResponseWriter, r *http.Request) (*SessionUser, bool) {
	cookie, err := r.Cookie(RefreshCookie)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	claims, err := m.tokens.ParseRefresh(cookie.Value)
	if err != nil {
		return nil, false
	}

	user, err := m.fetch(r.Context(), claims.UserID)
	if err != nil || user == nil {
		if err != nil && m.log != nil {
			m.log.Warn("silent refresh identity lookup failed",
				zap.String("user_id", claims.UserID),
				zap.Error(err))
		}
		return nil, false
	}

	pair, err := m.tokens.GeneratePair(user.ID, user.Email, user.Role)
	if err != nil {
		if m.log != nil {
			m.log.Error("silent refresh token issue failed", zap.Error(err))
		}
		return nil, false
	}

	SetAuthCookies(w, pair, m.secure)
	return user, true
}

// RequireSignedIn rejects unauthenticated requests with a 401 envelope.
func RequireSignedIn(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := CurrentUser(r); !ok {
				httpjson.Error(w, r, apperr.Unauthorized("authentication required"), log)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole enforces a role allow-list for a route. Unauthenticated
// requests get 401; authenticated requests outside the list get 403.
// Routes without a RequireRole wrap carry no role restriction.
func RequireRole(log *zap.Logger, allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				httpjson.Error(w, r, apperr.Unauthorized("authentication required"), log)
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				httpjson.Error(w, r, apperr.Forbidden("insufficient role"), log)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a user into the request context. For handler tests
// that bypass the cookie middleware.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}
