// internal/app/features/auth/routes.go
package auth

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the student authentication endpoints under the base path
// (typically "/auth" from bootstrap). Instructor and admin flows mirror
// these on their own prefixes via MountInstructor and MountAdmin so they
// can share a router with the profile endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	mountAccountRoutes(r, h, h.studentAccounts())

	// Session management
	r.Post("/refresh-token", h.HandleRefreshToken)
	r.Post("/logout", h.HandleLogout)

	// OAuth sign-in (students only)
	r.Get("/google/login", h.HandleGoogleLogin)
	r.Get("/google/redirect", h.HandleGoogleCallback)
	r.Get("/facebook/login", h.HandleFacebookLogin)
	r.Get("/facebook/redirect", h.HandleFacebookCallback)

	return r
}

// MountInstructor registers the instructor auth flows on an existing
// router (typically the one mounted at "/instructor").
func MountInstructor(r chi.Router, h *Handler) {
	mountAccountRoutes(r, h, h.instructorAccounts())
	r.Post("/refresh-token", h.HandleRefreshToken)
}

// MountAdmin registers the admin auth flows on an existing router
// (typically the one mounted at "/admin").
func MountAdmin(r chi.Router, h *Handler) {
	mountAccountRoutes(r, h, h.adminAccounts())
}

// mountAccountRoutes wires the flows every account type shares:
// phone-OTP registration, login, and email-OTP password reset.
func mountAccountRoutes(r chi.Router, h *Handler, accounts accountStore) {
	r.Post("/register", h.HandleRegister(accounts))
	r.Post("/verify-otp", h.HandleVerifyOTP(accounts))
	r.Post("/login", h.HandleLogin(accounts))

	r.Route("/password", func(pr chi.Router) {
		pr.Post("/request-reset", h.HandleRequestReset(accounts))
		pr.Post("/verify-otp", h.HandleVerifyResetOTP)
		pr.Post("/reset", h.HandleResetPassword(accounts))
	})
}
