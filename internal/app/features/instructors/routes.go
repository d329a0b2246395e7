// internal/app/features/instructors/routes.go
package instructors

import (
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Mount registers the instructor profile endpoints on an existing router
// (typically the one at "/instructor", shared with the auth flows).
func Mount(r chi.Router, h *Handler) {
	r.Group(func(ir chi.Router) {
		ir.Use(sysauth.RequireSignedIn(h.Log))
		ir.Use(sysauth.RequireRole(h.Log, models.RoleInstructor))

		ir.Get("/getInstructor", h.HandleGetSelf)
		ir.Patch("/", h.HandleUpdate)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(sysauth.RequireSignedIn(h.Log))
		ar.Use(sysauth.RequireRole(h.Log, models.RoleAdmin))

		ar.Get("/getInstructor/{instructorID}", h.HandleGetByID)
		ar.Get("/getInstructors", h.HandleList)
	})
}
