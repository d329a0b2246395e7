// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	adminsfeature "github.com/Thomas-Sedhom/LMS/internal/app/features/admins"
	aifeature "github.com/Thomas-Sedhom/LMS/internal/app/features/ai"
	authfeature "github.com/Thomas-Sedhom/LMS/internal/app/features/auth"
	blogfeature "github.com/Thomas-Sedhom/LMS/internal/app/features/blog"
	contactfeature "github.com/Thomas-Sedhom/LMS/internal/app/features/contact"
	coursesfeature "github.com/Thomas-Sedhom/LMS/internal/app/features/courses"
	enrollmentsfeature "github.com/Thomas-Sedhom/LMS/internal/app/features/enrollments"
	healthfeature "github.com/Thomas-Sedhom/LMS/internal/app/features/health"
	instructorsfeature "github.com/Thomas-Sedhom/LMS/internal/app/features/instructors"
	quizzesfeature "github.com/Thomas-Sedhom/LMS/internal/app/features/quizzes"
	studentsfeature "github.com/Thomas-Sedhom/LMS/internal/app/features/students"
	"github.com/Thomas-Sedhom/LMS/internal/app/clients/openai"
	"github.com/Thomas-Sedhom/LMS/internal/app/clients/smsotp"
	"github.com/Thomas-Sedhom/LMS/internal/app/clients/vdocipher"
	adminstore "github.com/Thomas-Sedhom/LMS/internal/app/store/admins"
	coursestore "github.com/Thomas-Sedhom/LMS/internal/app/store/courses"
	instructorstore "github.com/Thomas-Sedhom/LMS/internal/app/store/instructors"
	userstore "github.com/Thomas-Sedhom/LMS/internal/app/store/users"
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/mailer"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// The LMS builds its external service clients (video host, SMS
// verification, mail, assistant), applies the token-refresh auth
// middleware globally, and mounts the JSON API under /api/v1.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"

	tokens, err := sysauth.NewTokens(appCfg.JWTSecret)
	if err != nil {
		logger.Error("token signer init failed", zap.Error(err))
		return nil, err
	}

	// The fetcher resolves token subjects against the three account
	// collections so role changes and deleted accounts take effect on
	// the next request.
	fetcher := userstore.NewFetcher(db)
	manager := sysauth.NewManager(tokens, fetcher.Fetch, secure, logger)

	files, err := newFileStore(context.Background(), appCfg)
	if err != nil {
		logger.Error("file storage init failed", zap.Error(err))
		return nil, err
	}

	host := vdocipher.New(appCfg.VideoHostBaseURL, appCfg.VideoHostAPISecret)
	sms := smsotp.New(appCfg.TwilioBaseURL, appCfg.TwilioAccountSID, appCfg.TwilioAuthToken, appCfg.TwilioVerifySID)
	assistant := openai.New(appCfg.AIBaseURL, appCfg.AIAPIKey)

	from := appCfg.MailFrom
	if appCfg.MailFromName != "" {
		from = fmt.Sprintf("%s <%s>", appCfg.MailFromName, appCfg.MailFrom)
	}
	mail := mailer.NewSender(appCfg.MailSMTPHost, appCfg.MailSMTPPort, appCfg.MailSMTPUser, appCfg.MailSMTPPass, from)

	authHandler := authfeature.NewHandler(
		userstore.New(db),
		instructorstore.New(db),
		adminstore.New(db),
		deps.Cache,
		tokens,
		fetcher.Fetch,
		sms,
		mail,
		authfeature.Config{
			GoogleClientID:       appCfg.GoogleClientID,
			GoogleClientSecret:   appCfg.GoogleClientSecret,
			FacebookClientID:     appCfg.FacebookClientID,
			FacebookClientSecret: appCfg.FacebookClientSecret,
			BaseURL:              appCfg.BaseURL,
			FrontendURL:          appCfg.FrontendURL,
			SiteName:             appCfg.SiteName,
			StateHashKey:         []byte(appCfg.StateHashKey),
			StagingTTL:           appCfg.RegistrationOTPExpiry,
			ResetTTL:             appCfg.PasswordResetOTPExpiry,
			Secure:               secure,
		},
		logger,
	)

	r := chi.NewRouter()

	// Global auth middleware: parses the access cookie, silently refreshes
	// it from the refresh cookie when expired, and loads the SessionUser
	// into context for sysauth.CurrentUser(r).
	r.Use(manager.Authenticate)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Cache, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api/v1", func(api chi.Router) {
		// Student auth: staged registration, login, OAuth, password reset.
		api.Mount("/auth", authfeature.Routes(authHandler))

		// Instructor and admin auth flows share routers with their
		// profile and management endpoints.
		instructorRouter := chi.NewRouter()
		authfeature.MountInstructor(instructorRouter, authHandler)
		instructorsfeature.Mount(instructorRouter, instructorsfeature.NewHandler(instructorstore.New(db), coursestore.New(db), logger))
		api.Mount("/instructor", instructorRouter)

		adminRouter := chi.NewRouter()
		authfeature.MountAdmin(adminRouter, authHandler)
		adminsfeature.Mount(adminRouter, adminsfeature.NewHandler(adminstore.New(db), logger))
		api.Mount("/admin", adminRouter)

		api.Mount("/student", studentsfeature.Routes(studentsfeature.NewHandler(userstore.New(db), logger)))

		api.Mount("/course", coursesfeature.Routes(coursesfeature.NewHandler(db, host, files, logger)))
		api.Mount("/enrollment", enrollmentsfeature.Routes(enrollmentsfeature.NewHandler(db, logger)))
		api.Mount("/quiz", quizzesfeature.Routes(quizzesfeature.NewHandler(db, logger)))

		api.Mount("/blog", blogfeature.Routes(blogfeature.NewHandler(db, files, logger)))
		api.Mount("/contact", contactfeature.Routes(contactfeature.NewHandler(db, logger)))
		api.Mount("/ai", aifeature.Routes(aifeature.NewHandler(assistant, logger)))
	})

	// Locally stored uploads (covers, notes, blog images) are served
	// straight off disk; S3 deployments presign instead.
	if appCfg.StorageType == "local" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	return r, nil
}
