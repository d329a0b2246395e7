// internal/app/features/enrollments/routes.go
package enrollments

import (
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the enrollment endpoints under the base path (typically
// "/enrollment" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn(h.Log))

	// Student self-service.
	r.Group(func(sr chi.Router) {
		sr.Use(sysauth.RequireRole(h.Log, models.RoleStudent))

		sr.Post("/enrollNewStudent/{courseID}", h.HandleEnroll)
		sr.Get("/getEnrollment/{courseID}", h.HandleGetSelf)
		sr.Get("/getAllCoursesForStudent", h.HandleCoursesForSelf)
		sr.Get("/deleteEnrollment/{courseID}", h.HandleDeleteSelf)
		sr.Patch("/updateProgress/{courseID}/{videoID}", h.HandleUpdateProgress)
		sr.Post("/validateCode/{courseID}", h.HandleValidateCode)
	})

	// Staff management.
	r.Group(func(mr chi.Router) {
		mr.Use(sysauth.RequireRole(h.Log, models.RoleAdmin, models.RoleInstructor))

		mr.Get("/getEnrollment/{studentID}/{courseID}", h.HandleGetByStudent)
		mr.Get("/getAllCoursesForStudent/{studentID}", h.HandleCoursesForStudent)
		mr.Get("/getAllStudentsForCourse/{courseID}", h.HandleStudentsForCourse)
		mr.Get("/getAllActiveEnrollments", h.HandleListActive)
		mr.Get("/getAllInactiveEnrollments", h.HandleListInactive)
		mr.Delete("/deleteEnrollment/{studentID}/{courseID}", h.HandleDelete)
		mr.Post("/activeEnrollment/{studentID}/{courseID}", h.HandleActivate)
		mr.Post("/createCode", h.HandleCreateCode)
		mr.Get("/getAllCodes", h.HandleListCodes)
	})

	return r
}
