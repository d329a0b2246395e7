// internal/app/features/quizzes/routes.go
package quizzes

import (
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the quiz endpoints under the base path (typically "/quiz"
// from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn(h.Log))

	r.Group(func(sr chi.Router) {
		sr.Use(sysauth.RequireRole(h.Log, models.RoleStudent))

		sr.Post("/completeQuizForStudent/{courseID}/{videoID}", h.HandleComplete)
		sr.Get("/getQuizzesForStudentByStudent", h.HandleListForSelf)
	})

	r.Group(func(mr chi.Router) {
		mr.Use(sysauth.RequireRole(h.Log, models.RoleAdmin, models.RoleInstructor))

		mr.Post("/completeQuizForAdmin/{studentID}/{courseID}/{videoID}", h.HandleCompleteForStudent)
		mr.Get("/getQuizzesForStudentByAdmin/{studentID}", h.HandleListForStudent)
	})

	return r
}
