// internal/app/features/auth/handler.go
package auth

import (
	"context"
	"time"

	"github.com/Thomas-Sedhom/LMS/internal/app/cache"
	adminstore "github.com/Thomas-Sedhom/LMS/internal/app/store/admins"
	instructorstore "github.com/Thomas-Sedhom/LMS/internal/app/store/instructors"
	userstore "github.com/Thomas-Sedhom/LMS/internal/app/store/users"
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/mailer"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/ratelimit"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// OTPSender sends and checks phone verification codes.
type OTPSender interface {
	Send(ctx context.Context, phone string) error
	Check(ctx context.Context, phone, code string) error
}

// EmailSender delivers transactional email.
type EmailSender interface {
	Send(e mailer.Email) error
}

// Handler owns every authentication flow: phone-OTP registration, login,
// token refresh, OAuth sign-in, and email-OTP password reset. Students,
// instructors, and admins share the same flows through per-role account
// adapters.
type Handler struct {
	Students    *userstore.Store
	Instructors *instructorstore.Store
	Admins      *adminstore.Store

	Cache  cache.KV
	Tokens *sysauth.Tokens
	Fetch  sysauth.IdentityFetcher
	SMS    OTPSender
	Mail   EmailSender
	Limits *ratelimit.AuthLimiter

	Google     *oauth2.Config
	Facebook   *oauth2.Config
	StateCodec *securecookie.SecureCookie

	SiteName    string
	FrontendURL string

	// StagingTTL bounds how long a registration waits for its phone OTP.
	StagingTTL time.Duration
	// ResetTTL bounds the password-reset email OTP and verified flag.
	ResetTTL time.Duration

	Secure bool
	Log    *zap.Logger
}

// Config carries the knobs NewHandler needs beyond the stores.
type Config struct {
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	BaseURL              string
	FrontendURL          string
	SiteName             string
	StateHashKey         []byte
	StagingTTL           time.Duration
	ResetTTL             time.Duration
	Secure               bool
}

// NewHandler constructs the auth handler.
func NewHandler(
	students *userstore.Store,
	instructors *instructorstore.Store,
	admins *adminstore.Store,
	kv cache.KV,
	tokens *sysauth.Tokens,
	fetch sysauth.IdentityFetcher,
	sms OTPSender,
	mail EmailSender,
	cfg Config,
	logger *zap.Logger,
) *Handler {
	if cfg.StagingTTL <= 0 {
		cfg.StagingTTL = 10 * time.Minute
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = 10 * time.Minute
	}
	return &Handler{
		Students:    students,
		Instructors: instructors,
		Admins:      admins,
		Cache:       kv,
		Tokens:      tokens,
		Fetch:       fetch,
		SMS:         sms,
		Mail:        mail,
		Limits:      ratelimit.NewAuthLimiter(),
		Google:      googleConfig(cfg),
		Facebook:    facebookConfig(cfg),
		StateCodec:  securecookie.New(cfg.StateHashKey, nil),
		SiteName:    cfg.SiteName,
		FrontendURL: cfg.FrontendURL,
		StagingTTL:  cfg.StagingTTL,
		ResetTTL:    cfg.ResetTTL,
		Secure:      cfg.Secure,
		Log:         logger,
	}
}
