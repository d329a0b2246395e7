// internal/app/features/contact/handler.go
package contact

import (
	"errors"
	"net/http"

	contactstore "github.com/Thomas-Sedhom/LMS/internal/app/store/contacts"
	userstore "github.com/Thomas-Sedhom/LMS/internal/app/store/users"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/inputval"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/paging"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler receives contact-form submissions from signed-in students and
// lets admins review and clear them.
type Handler struct {
	Contacts *contactstore.Store
	Students *userstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Contacts: contactstore.New(db),
		Students: userstore.New(db),
		Log:      logger,
	}
}

type submitRequest struct {
	Message string `json:"message" validate:"required,min=5"`
}

// HandleSubmit records a message from the signed-in student. Name and
// email come from the student's account, not the request body.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := sysauth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, r, apperr.Unauthorized("not signed in"), h.Log)
		return
	}
	studentID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		httpjson.Error(w, r, apperr.Unauthorized("invalid session"), h.Log)
		return
	}

	var req submitRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := inputval.Validate(req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "contact.submit")
	defer cancel()

	student, err := h.Students.GetByID(ctx, studentID)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	created, err := h.Contacts.Create(ctx, models.Contact{
		Name:      student.FirstName + " " + student.LastName,
		Email:     student.Email,
		Message:   req.Message,
		StudentID: studentID,
	})
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	h.Log.Info("contact message received",
		zap.String("contact_id", created.ID.Hex()),
		zap.String("student_id", studentID.Hex()))
	httpjson.Created(w, "contact message sent successfully", created)
}

// HandleList returns one page of submissions, newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := paging.Parse(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "contact.list")
	defer cancel()

	messages, err := h.Contacts.List(ctx, page)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if messages == nil {
		messages = []models.Contact{}
	}
	httpjson.OK(w, "contact messages retrieved successfully", messages)
}

// HandleGet returns one submission.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	contactID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "contactID"))
	if err != nil {
		httpjson.Error(w, r, apperr.BadRequest("invalid contactID"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "contact.get")
	defer cancel()

	msg, err := h.Contacts.GetByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, contactstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("contact message not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}
	httpjson.OK(w, "contact message retrieved successfully", msg)
}

// HandleDelete removes a handled submission.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	contactID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "contactID"))
	if err != nil {
		httpjson.Error(w, r, apperr.BadRequest("invalid contactID"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "contact.delete")
	defer cancel()

	if err := h.Contacts.Delete(ctx, contactID); err != nil {
		if errors.Is(err, contactstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("contact message not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	httpjson.OK(w, "contact message deleted successfully", nil)
}
