// internal/app/features/admins/handler.go
package admins

import (
	"errors"
	"net/http"

	adminstore "github.com/Thomas-Sedhom/LMS/internal/app/store/admins"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/paging"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves admin profile endpoints. All routes are admin-only.
type Handler struct {
	Admins *adminstore.Store
	Log    *zap.Logger
}

func NewHandler(admins *adminstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Admins: admins, Log: logger}
}

// HandleGetSelf returns the signed-in admin's own profile.
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admins.get")
	defer cancel()

	admin, err := h.Admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, adminstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("admin not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}
	httpjson.OK(w, "admin retrieved successfully", admin)
}

// HandleList returns one page of admins, newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := paging.Parse(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admins.list")
	defer cancel()

	admins, err := h.Admins.List(ctx, page)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if len(admins) == 0 {
		httpjson.Error(w, r, apperr.NotFound("there are no admins"), h.Log)
		return
	}
	httpjson.OK(w, "admins retrieved successfully", admins)
}

type updateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone" validate:"omitempty,e164"`
}

// HandleUpdate applies a partial profile update to the signed-in admin.
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admins.update")
	defer cancel()

	current, err := h.Admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, adminstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("admin not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	upd := adminstore.ProfileUpdate{
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

	if err := h.Admins.UpdateProfile(ctx, id, upd); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	httpjson.OK(w, "admin updated successfully", nil)
}
