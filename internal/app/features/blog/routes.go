// internal/app/features/blog/routes.go
package blog

import (
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the blog endpoints under the base path (typically "/blog"
// from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn(h.Log))

	r.Group(func(rr chi.Router) {
		rr.Use(sysauth.RequireRole(h.Log, models.RoleStudent, models.RoleInstructor, models.RoleAdmin))

		rr.Get("/getBlog/{blogID}", h.HandleGet)
		rr.Get("/getAllBlogs", h.HandleList)
	})

	r.Group(func(mr chi.Router) {
		mr.Use(sysauth.RequireRole(h.Log, models.RoleInstructor, models.RoleAdmin))

		mr.Post("/", h.HandleCreate)
		mr.Patch("/{blogID}", h.HandleUpdate)
		mr.Patch("/updateImage/{blogID}", h.HandleUpdateImage)
		mr.Delete("/{blogID}", h.HandleDelete)
	})

	return r
}
