// internal/app/features/admins/routes.go
package admins

import (
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Mount registers the admin profile endpoints on an existing router
// (typically the one at "/admin", shared with the auth flows).
func Mount(r chi.Router, h *Handler) {
	r.Group(func(ar chi.Router) {
		ar.Use(sysauth.RequireSignedIn(h.Log))
		ar.Use(sysauth.RequireRole(h.Log, models.RoleAdmin))

		ar.Get("/getAdmin", h.HandleGetSelf)
		ar.Get("/getAdmins", h.HandleList)
		ar.Patch("/", h.HandleUpdate)
	})
}
