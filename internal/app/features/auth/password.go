// internal/app/features/auth/password.go
package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Thomas-Sedhom/LMS/internal/app/cache"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/inputval"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/mailer"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/normalize"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/otp"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type resetRequestBody struct {
	Email string `json:"email" validate:"required,email"`
}

type resetVerifyBody struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type resetPasswordBody struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// HandleRequestReset emails a six-digit reset code to the account's address.
// The code lives in the cache under a per-email key for ResetTTL.
func (h *Handler) HandleRequestReset(accounts accountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetRequestBody
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}
		if err := inputval.Validate(req); err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}
		email := normalize.Email(req.Email)

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "auth.request_reset")
		defer cancel()

		if _, err := accounts.byEmail(ctx, email); err != nil {
			if errors.Is(err, errAccountNotFound) {
				httpjson.Error(w, r, apperr.NotFound("no account found with this email"), h.Log)
				return
			}
			httpjson.Error(w, r, err, h.Log)
			return
		}

		code, err := otp.GenerateCode()
		if err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}
		if err := h.Cache.Set(ctx, otp.PasswordResetKey(email), code, h.ResetTTL); err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}

		msg := mailer.BuildOTPEmail(mailer.OTPEmailData{
			SiteName:  h.SiteName,
			Code:      code,
			ExpiresIn: fmt.Sprintf("%d minutes", int(h.ResetTTL.Minutes())),
		})
		msg.To = email
		if err := h.Mail.Send(msg); err != nil {
			h.Log.Error("failed to send reset email",
				zap.String("email", email),
				zap.Error(err))
			httpjson.Error(w, r, apperr.Upstream("email", err), h.Log)
			return
		}

		httpjson.OK(w, "OTP sent to email", nil)
	}
}

// HandleVerifyResetOTP checks the emailed code and records a verified flag
// so the reset endpoint can require it.
func (h *Handler) HandleVerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var req resetVerifyBody
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := inputval.Validate(req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	email := normalize.Email(req.Email)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "auth.verify_reset_otp")
	defer cancel()

	stored, err := h.Cache.Get(ctx, otp.PasswordResetKey(email))
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			httpjson.Error(w, r, apperr.BadRequest("wrong OTP code"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if stored != req.Code {
		httpjson.Error(w, r, apperr.BadRequest("wrong OTP code"), h.Log)
		return
	}

	if err := h.Cache.Set(ctx, otp.EmailVerifiedKey(email), "true", h.ResetTTL); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	httpjson.OK(w, "OTP verified successfully", nil)
}

// HandleResetPassword replaces the password once the emailed OTP has been
// verified. Both cache keys are burned so the flow is one-shot.
func (h *Handler) HandleResetPassword(accounts accountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordBody
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}
		if err := inputval.Validate(req); err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}
		email := normalize.Email(req.Email)

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "auth.reset_password")
		defer cancel()

		if _, err := h.Cache.Get(ctx, otp.EmailVerifiedKey(email)); err != nil {
			if errors.Is(err, cache.ErrMiss) {
				httpjson.Error(w, r, apperr.BadRequest("OTP has not been verified for this email"), h.Log)
				return
			}
			httpjson.Error(w, r, err, h.Log)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}

		if err := accounts.updatePassword(ctx, email, string(hash)); err != nil {
			if errors.Is(err, errAccountNotFound) {
				httpjson.Error(w, r, apperr.NotFound("no account found with this email"), h.Log)
				return
			}
			httpjson.Error(w, r, err, h.Log)
			return
		}

		for _, key := range []string{otp.EmailVerifiedKey(email), otp.PasswordResetKey(email)} {
			if err := h.Cache.Delete(ctx, key); err != nil {
				h.Log.Warn("failed to delete reset key",
					zap.String("key", key),
					zap.Error(err))
			}
		}

		h.Log.Info("password reset", zap.String("email", email))
		httpjson.OK(w, "password reset successfully", nil)
	}
}
