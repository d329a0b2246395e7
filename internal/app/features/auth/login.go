// internal/app/features/auth/login.go
package auth

import (
	"errors"
	"net/http"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/inputval"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates by email and password and sets both auth
// cookies. The same message covers unknown email and wrong password so the
// endpoint does not leak which emails exist.
func (h *Handler) HandleLogin(accounts accountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}
		if err := inputval.Validate(req); err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}
		if !h.Limits.AllowLogin(r, req.Email) {
			httpjson.Error(w, r, apperr.TooManyRequests("too many login attempts, please try again later"), h.Log)
			return
		}

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "auth.login")
		defer cancel()

		account, err := accounts.byEmail(ctx, req.Email)
		if err != nil {
			if errors.Is(err, errAccountNotFound) {
				httpjson.Error(w, r, apperr.Unauthorized("invalid email or password"), h.Log)
				return
			}
			httpjson.Error(w, r, err, h.Log)
			return
		}

		if account.PasswordHash == "" ||
			bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
			httpjson.Error(w, r, apperr.Unauthorized("invalid email or password"), h.Log)
			return
		}

		pair, err := h.Tokens.GeneratePair(account.ID, account.Email, account.Role)
		if err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}
		sysauth.SetAuthCookies(w, pair, h.Secure)
		h.Limits.LoginSucceeded(account.Email)

		h.Log.Info("login",
			zap.String("account_id", account.ID),
			zap.String("role", account.Role))

		httpjson.OK(w, "login and authentication successful", map[string]any{
			"accessToken":  pair.Access,
			"refreshToken": pair.Refresh,
			"user": map[string]string{
				"id":    account.ID,
				"email": account.Email,
				"role":  account.Role,
			},
		})
	}
}

// HandleRefreshToken mints a fresh token pair from the refresh cookie.
// The identity is refetched so a deleted account cannot keep refreshing.
func (h *Handler) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sysauth.RefreshCookie)
	if err != nil || cookie.Value == "" {
		httpjson.Error(w, r, apperr.BadRequest("refresh token not found"), h.Log)
		return
	}

	claims, err := h.Tokens.ParseRefresh(cookie.Value)
	if err != nil {
		httpjson.Error(w, r, apperr.Unauthorized("invalid refresh token"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "auth.refresh")
	defer cancel()

	user, err := h.Fetch(ctx, claims.UserID)
	if err != nil || user == nil {
		httpjson.Error(w, r, apperr.Unauthorized("account not found"), h.Log)
		return
	}

	pair, err := h.Tokens.GeneratePair(user.ID, user.Email, user.Role)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	sysauth.SetAuthCookies(w, pair, h.Secure)

	httpjson.OK(w, "token refreshed successfully", map[string]string{
		"accessToken":  pair.Access,
		"refreshToken": pair.Refresh,
	})
}

// HandleLogout clears both auth cookies.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sysauth.ClearAuthCookies(w, h.Secure)
	httpjson.OK(w, "logged out", nil)
}
