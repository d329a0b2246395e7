// internal/app/features/quizzes/handler.go
package quizzes

import (
	"errors"
	"net/http"

	questionstore "github.com/Thomas-Sedhom/LMS/internal/app/store/questions"
	quizstore "github.com/Thomas-Sedhom/LMS/internal/app/store/quizzes"
	videostore "github.com/Thomas-Sedhom/LMS/internal/app/store/videos"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/inputval"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler records quiz attempts and serves attempt history. The submitted
// score is a raw correct-answer count; the stored grade is normalized to a
// percentage against the quiz's question count.
type Handler struct {
	Quizzes   *quizstore.Store
	Questions *questionstore.Store
	Videos    *videostore.Store
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Quizzes:   quizstore.New(db),
		Questions: questionstore.New(db),
		Videos:    videostore.New(db),
		Log:       logger,
	}
}

func urlObjectID(r *http.Request, param string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, param))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid " + param)
	}
	return id, nil
}

func currentUserID(r *http.Request) (primitive.ObjectID, error) {
	user, ok := sysauth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, apperr.Unauthorized("not signed in")
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorized("invalid session")
	}
	return id, nil
}

type completeQuizRequest struct {
	QuizNumber int     `json:"quiz_number" validate:"required,min=1"`
	Grade      float64 `json:"grade" validate:"min=0"`
}

// HandleComplete records the signed-in student's quiz attempt.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	studentID, err := currentUserID(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	h.completeQuiz(w, r, studentID)
}

// HandleCompleteForStudent records an attempt on a student's behalf.
func (h *Handler) HandleCompleteForStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := urlObjectID(r, "studentID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	h.completeQuiz(w, r, studentID)
}

func (h *Handler) completeQuiz(w http.ResponseWriter, r *http.Request, studentID primitive.ObjectID) {
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	videoID, err := urlObjectID(r, "videoID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	var req completeQuizRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := inputval.Validate(req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "quizzes.complete")
	defer cancel()

	if _, err := h.Videos.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, videostore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("video not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	total, err := h.Questions.CountByQuizNumber(ctx, videoID, req.QuizNumber)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if total == 0 {
		httpjson.Error(w, r, apperr.BadRequest("quiz has no questions"), h.Log)
		return
	}
	if req.Grade > float64(total) {
		httpjson.Error(w, r, apperr.BadRequest("grade exceeds question count"), h.Log)
		return
	}

	created, err := h.Quizzes.Create(ctx, models.Quiz{
		StudentID:  studentID,
		CourseID:   courseID,
		VideoID:    videoID,
		QuizNumber: req.QuizNumber,
		Grade:      req.Grade / float64(total) * 100,
	})
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	h.Log.Info("quiz attempt recorded",
		zap.String("student_id", studentID.Hex()),
		zap.String("video_id", videoID.Hex()),
		zap.Int("quiz_number", req.QuizNumber),
		zap.Float64("grade", created.Grade))
	httpjson.Created(w, "quiz completed successfully", created)
}

// HandleListForSelf returns the signed-in student's attempt history with
// course names populated.
func (h *Handler) HandleListForSelf(w http.ResponseWriter, r *http.Request) {
	studentID, err := currentUserID(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	h.serveAttempts(w, r, studentID)
}

// HandleListForStudent returns any student's attempt history.
func (h *Handler) HandleListForStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := urlObjectID(r, "studentID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	h.serveAttempts(w, r, studentID)
}

func (h *Handler) serveAttempts(w http.ResponseWriter, r *http.Request, studentID primitive.ObjectID) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "quizzes.list")
	defer cancel()

	attempts, err := h.Quizzes.ListByStudentWithCourses(ctx, studentID)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if attempts == nil {
		attempts = []quizstore.AttemptWithCourse{}
	}
	httpjson.OK(w, "quizzes retrieved successfully", attempts)
}
