// internal/app/features/students/routes.go
package students

import (
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the student endpoints under the base path (typically
// "/student" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(sr chi.Router) {
		sr.Use(sysauth.RequireSignedIn(h.Log))
		sr.Use(sysauth.RequireRole(h.Log, models.RoleStudent))

		sr.Get("/getStudent", h.HandleGetSelf)
		sr.Patch("/", h.HandleUpdate)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(sysauth.RequireSignedIn(h.Log))
		ar.Use(sysauth.RequireRole(h.Log, models.RoleAdmin))

		ar.Get("/getStudentById/{studentID}", h.HandleGetByID)
		ar.Get("/getStudents", h.HandleList)
	})

	return r
}
