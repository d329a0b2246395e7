// internal/app/features/contact/routes.go
package contact

import (
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the contact endpoints under the base path (typically
// "/contact" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn(h.Log))

	r.Group(func(sr chi.Router) {
		sr.Use(sysauth.RequireRole(h.Log, models.RoleStudent))

		sr.Post("/", h.HandleSubmit)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(sysauth.RequireRole(h.Log, models.RoleAdmin))

		ar.Get("/", h.HandleList)
		ar.Get("/{contactID}", h.HandleGet)
		ar.Delete("/{contactID}", h.HandleDelete)
	})

	return r
}
