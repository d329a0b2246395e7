// internal/app/features/instructors/handler.go
package instructors

import (
	"errors"
	"net/http"

	coursestore "github.com/Thomas-Sedhom/LMS/internal/app/store/courses"
	instructorstore "github.com/Thomas-Sedhom/LMS/internal/app/store/instructors"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/paging"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves instructor profile endpoints. Profiles are returned with
// the instructor's courses populated.
type Handler struct {
	Instructors *instructorstore.Store
	Courses     *coursestore.Store
	Log         *zap.Logger
}

func NewHandler(instructors *instructorstore.Store, courses *coursestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Instructors: instructors, Courses: courses, Log: logger}
}

// instructorProfile is an instructor with their courses joined in.
type instructorProfile struct {
	models.Instructor
	Courses []models.Course `json:"courses"`
}

// HandleGetSelf returns the signed-in instructor's own profile.
func (h *Handler) HandleGetSelf(w http.ResponseWriter, r *http.Request) {
	user, ok := sysauth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, r, apperr.Unauthorized("not signed in"), h.Log)
		return
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		httpjson.Error(w, r, apperr.Unauthorized("invalid session"), h.Log)
		return
	}
	h.serveInstructor(w, r, id)
}

// HandleGetByID returns any instructor's profile. Admin only.
func (h *Handler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "instructorID"))
	if err != nil {
		httpjson.Error(w, r, apperr.BadRequest("invalid instructor id"), h.Log)
		return
	}
	h.serveInstructor(w, r, id)
}

func (h *Handler) serveInstructor(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "instructors.get")
	defer cancel()

	instructor, err := h.Instructors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, instructorstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("instructor not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	courses, err := h.Courses.ListByInstructor(ctx, id)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}

	httpjson.OK(w, "instructor retrieved successfully", instructorProfile{
		Instructor: *instructor,
		Courses:    courses,
	})
}

// HandleList returns one page of instructors, newest first. Admin only.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := paging.Parse(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "instructors.list")
	defer cancel()

	instructors, err := h.Instructors.List(ctx, page)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if len(instructors) == 0 {
		httpjson.Error(w, r, apperr.NotFound("there are no instructors"), h.Log)
		return
	}
	httpjson.OK(w, "instructors retrieved successfully", instructors)
}

type updateRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Phone          string `json:"phone" validate:"omitempty,e164"`
	Specialization string `json:"specialization"`
	Subject        string `json:"subject"`
	Description    string `json:"description"`
}

// HandleUpdate applies a partial profile update to the signed-in
// instructor. Empty fields keep their current values.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := sysauth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, r, apperr.Unauthorized("not signed in"), h.Log)
		return
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		httpjson.Error(w, r, apperr.Unauthorized("invalid session"), h.Log)
		return
	}

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "instructors.update")
	defer cancel()

	current, err := h.Instructors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, instructorstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("instructor not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	upd := instructorstore.ProfileUpdate{
		FirstName:      current.FirstName,
		LastName:       current.LastName,
		Phone:          current.Phone,
		Specialization: current.Specialization,
		Subject:        current.Subject,
		Description:    current.Description,
	}
	if req.FirstName != "" {
		upd.FirstName = req.FirstName
	}
	if req.LastName != "" {
		upd.LastName = req.LastName
	}
	if req.Phone != "" {
		upd.Phone = req.Phone
	}
	if req.Specialization != "" {
		upd.Specialization = req.Specialization
	}
	if req.Subject != "" {
		upd.Subject = req.Subject
	}
	if req.Description != "" {
		upd.Description = req.Description
	}

	if err := h.Instructors.UpdateProfile(ctx, id, upd); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	httpjson.OK(w, "instructor updated successfully", nil)
}
