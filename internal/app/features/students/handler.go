// internal/app/features/students/handler.go
package students

import (
	"errors"
	"net/http"

	userstore "github.com/Thomas-Sedhom/LMS/internal/app/store/users"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/paging"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves student profile and roster endpoints.
type Handler struct {
	Students *userstore.Store
	Log      *zap.Logger
}

func NewHandler(students *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Students: students, Log: logger}
}

// HandleGetSelf returns the signed-in student's own profile.
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
	h.serveStudent(w, r, id)
}

// HandleGetByID returns any student's profile. Admin only.
func (h *Handler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "studentID"))
	if err != nil {
		httpjson.Error(w, r, apperr.BadRequest("invalid student id"), h.Log)
		return
	}
	h.serveStudent(w, r, id)
}

func (h *Handler) serveStudent(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "students.get")
	defer cancel()

	student, err := h.Students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("student not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}
	httpjson.OK(w, "student retrieved successfully", student)
}

// HandleList returns one page of students, newest first. Admin only.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := paging.Parse(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "students.list")
	defer cancel()

	students, err := h.Students.List(ctx, page)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if len(students) == 0 {
		httpjson.Error(w, r, apperr.NotFound("there are no students"), h.Log)
		return
	}
	httpjson.OK(w, "students retrieved successfully", students)
}

type updateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone" validate:"omitempty,e164"`
}

// HandleUpdate applies a partial profile update to the signed-in student.
// Empty fields keep their current values.
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "students.update")
	defer cancel()

	current, err := h.Students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("student not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	upd := userstore.ProfileUpdate{
		FirstName: current.FirstName,
		LastName:  current.LastName,
		Phone:     current.Phone,
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

	if err := h.Students.UpdateProfile(ctx, id, upd); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	httpjson.OK(w, "student updated successfully", nil)
}
