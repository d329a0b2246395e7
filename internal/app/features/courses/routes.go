// internal/app/features/courses/routes.go
package courses

import (
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the course, video, and question endpoints under the base
// path (typically "/course" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn(h.Log))

	// Browsing, open to every signed-in role
	r.Group(func(br chi.Router) {
		br.Use(sysauth.RequireRole(h.Log, models.RoleStudent, models.RoleInstructor, models.RoleAdmin))

		br.Get("/getCourse/{courseID}", h.HandleGet)
		br.Get("/getQuestion/{questionID}", h.HandleGetQuestion)
		br.Get("/{courseID}/videos/otps", h.HandleCourseOTPs)
	})

	r.Group(func(sr chi.Router) {
		sr.Use(sysauth.RequireRole(h.Log, models.RoleStudent, models.RoleAdmin))
		sr.Get("/", h.HandleList)
	})

	// Instructor-only creation
	r.Group(func(ir chi.Router) {
		ir.Use(sysauth.RequireRole(h.Log, models.RoleInstructor))
		ir.Post("/", h.HandleCreate)
	})

	// Admin-only creation
	r.Group(func(ar chi.Router) {
		ar.Use(sysauth.RequireRole(h.Log, models.RoleAdmin))
		ar.Post("/createCourseByAdmin", h.HandleCreateByAdmin)
		ar.Delete("/deleteCourseByAdmin/{courseID}", h.HandleDeleteByAdmin)
	})

	// Content management, shared by instructors and admins
	r.Group(func(mr chi.Router) {
		mr.Use(sysauth.RequireRole(h.Log, models.RoleInstructor, models.RoleAdmin))

		mr.Get("/instructorCourses", h.HandleInstructorCourses)
		mr.Patch("/{courseID}", h.HandleUpdate)
		mr.Patch("/coverImage/{courseID}", h.HandleUpdateCover)
		mr.Delete("/{courseID}", h.HandleDelete)

		mr.Get("/{courseID}/upload-credentials", h.HandleUploadCredentials)
		mr.Post("/{courseID}/save-video", h.HandleSaveVideo)
		mr.Get("/uploadTaskVideo/{videoID}/upload-credentials", h.HandleTaskUploadCredentials)
		mr.Post("/{videoID}/saveTaskVideo", h.HandleSaveTaskVideo)

		mr.Post("/{videoID}/notes", h.HandleSaveNotes)
		mr.Post("/{videoID}/upload_PDf", h.HandleUploadPDF)
		mr.Get("/{videoID}/notes/download", h.HandleDownloadPDF)

		mr.Get("/{videoID}/otp", h.HandleVideoOTP)
		mr.Patch("/videos/videoData/{videoID}", h.HandleUpdateVideo)
		mr.Delete("/deleteVideos/{courseID}", h.HandleDeleteVideos)

		mr.Post("/question/{videoID}", h.HandleCreateQuestion)
		mr.Patch("/questions/questionData/{questionID}", h.HandleUpdateQuestion)
		mr.Delete("/question/{questionID}", h.HandleDeleteQuestion)
	})

	return r
}
