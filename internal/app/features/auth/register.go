// internal/app/features/auth/register.go
package auth

import (
	"errors"
	"net/http"

	"github.com/Thomas-Sedhom/LMS/internal/app/cache"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/inputval"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/normalize"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/otp"
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// stagedRegistration is the cache record holding a registration that is
// waiting for its phone OTP. The password is hashed before staging so the
// plaintext never sits in the cache.
type stagedRegistration struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Phone        string `json:"phone"`

	// Instructor-only fields; empty for students and admins.
	Specialization string `json:"specialization,omitempty"`
	Subject        string `json:"subject,omitempty"`
	Description    string `json:"description,omitempty"`
}

type registerRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Phone     string `json:"phone" validate:"required,e164"`

	Specialization string `json:"specialization"`
	Subject        string `json:"subject"`
	Description    string `json:"description"`
}

type verifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
	Code  string `json:"code" validate:"required,len=6"`
}

// HandleRegister stages a registration in the cache keyed by phone and
// sends the phone OTP. The account is not created until the OTP verifies.
func (h *Handler) HandleRegister(accounts accountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}
		if err := inputval.Validate(req); err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "auth.register")
		defer cancel()

		email := normalize.Email(req.Email)
		taken, err := accounts.emailExists(ctx, email)
		if err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}
		if taken {
			httpjson.Error(w, r, apperr.BadRequest("email is already registered, please use a different email"), h.Log)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}

		phone := normalize.Phone(req.Phone)
		if !h.Limits.AllowOTP(phone) {
			httpjson.Error(w, r, apperr.TooManyRequests("too many verification codes requested for this phone"), h.Log)
			return
		}
		staged := stagedRegistration{
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			Email:          email,
			PasswordHash:   string(hash),
			Phone:          phone,
			Specialization: req.Specialization,
			Subject:        req.Subject,
			Description:    req.Description,
		}
		if err := h.Cache.SetJSON(ctx, otp.RegistrationKey(phone), staged, h.StagingTTL); err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}

		if err := h.SMS.Send(ctx, phone); err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}

		h.Log.Info("registration staged", zap.String("phone", phone))
		httpjson.Created(w, "OTP sent successfully", nil)
	}
}

// HandleVerifyOTP checks the phone OTP, creates the account from its
// staged record, and signs the new identity in.
func (h *Handler) HandleVerifyOTP(accounts accountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyOTPRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}
		if err := inputval.Validate(req); err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "auth.verify_otp")
		defer cancel()

		phone := normalize.Phone(req.Phone)
		if err := h.SMS.Check(ctx, phone, req.Code); err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}

		var staged stagedRegistration
		if err := h.Cache.GetJSON(ctx, otp.RegistrationKey(phone), &staged); err != nil {
			if errors.Is(err, cache.ErrMiss) {
				httpjson.Error(w, r, apperr.BadRequest("registration data not found or expired"), h.Log)
				return
			}
			httpjson.Error(w, r, err, h.Log)
			return
		}

		account, err := accounts.createFromStaged(ctx, staged)
		if err != nil {
			if errors.Is(err, errEmailTaken) {
				httpjson.Error(w, r, apperr.BadRequest(errEmailTaken.Error()), h.Log)
				return
			}
			httpjson.Error(w, r, err, h.Log)
			return
		}

		if err := h.Cache.Delete(ctx, otp.RegistrationKey(phone)); err != nil {
			h.Log.Warn("failed to clear staged registration", zap.Error(err))
		}

		pair, err := h.Tokens.GeneratePair(account.ID, account.Email, account.Role)
		if err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}
		sysauth.SetAuthCookies(w, pair, h.Secure)

		h.Log.Info("registration completed",
			zap.String("account_id", account.ID),
			zap.String("role", account.Role))

		httpjson.Created(w, "registration and authentication successful", map[string]any{
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
