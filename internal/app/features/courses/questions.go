// internal/app/features/courses/questions.go
package courses

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	questionstore "github.com/Thomas-Sedhom/LMS/internal/app/store/questions"
	videostore "github.com/Thomas-Sedhom/LMS/internal/app/store/videos"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/txn"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/uploads"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Questions                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleCreateQuestion inserts a quiz question for a video and pushes it
// onto the video's question list in one transaction. Choice slots accept
// either form text or an uploaded image, which is stored and referenced
// by path.
func (h *Handler) HandleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	videoID, err := urlObjectID(r, "videoID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "questions.create")
	defer cancel()

	if _, err := h.Videos.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, videostore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("video not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	q := models.Question{
		VideoID: videoID,
		Time:    r.FormValue("time"),
		Type:    r.FormValue("type"),
		Prompt:  r.FormValue("prompt"),

		ChooseAnswer:     r.FormValue("choose_answer"),
		ParagraphAnswer:  r.FormValue("paragraph_answer"),
		ExpressiveAnswer: r.FormValue("expressive_answer"),
		CompleteAnswer:   r.FormValue("complete_answer"),
	}
	if q.Time == "" || q.Type == "" || q.Prompt == "" {
		httpjson.Error(w, r, apperr.BadRequest("time, type, and prompt are required"), h.Log)
		return
	}
	if !models.IsValidQuestionType(q.Type) {
		httpjson.Error(w, r, apperr.BadRequest("unknown question type "+q.Type), h.Log)
		return
	}

	if raw := r.FormValue("quiz_number"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 1 {
			httpjson.Error(w, r, apperr.BadRequest("quiz_number must be a positive integer"), h.Log)
			return
		}
		q.QuizNumber = n
	}
	if raw := r.FormValue("true_false_answer"); raw != "" {
		b, convErr := strconv.ParseBool(raw)
		if convErr != nil {
			httpjson.Error(w, r, apperr.BadRequest("true_false_answer must be a boolean"), h.Log)
			return
		}
		q.TrueFalseAnswer = &b
	}

	// Each choice slot takes form text or an uploaded image, image winning.
	choices := []*string{&q.Choice1, &q.Choice2, &q.Choice3, &q.Choice4}
	var savedImages []string
	for i, choice := range choices {
		field := fmt.Sprintf("choice%d", i+1)
		*choice = r.FormValue(field)

		img, upErr := uploads.FromRequestOptional(r, uploads.QuestionImage.WithField(field))
		if upErr != nil {
			httpjson.Error(w, r, upErr, h.Log)
			return
		}
		if img == nil {
			continue
		}
		path, saveErr := uploads.Save(ctx, h.Files, uploads.QuestionImage, img)
		img.Close()
		if saveErr != nil {
			httpjson.Error(w, r, saveErr, h.Log)
			return
		}
		savedImages = append(savedImages, path)
		*choice = path
	}

	var created models.Question
	err = txn.WithTransaction(ctx, h.DB.Client(), func(sc mongo.SessionContext) error {
		var txErr error
		created, txErr = h.Questions.Create(sc, q)
		if txErr != nil {
			return txErr
		}
		return h.Videos.AddQuestion(sc, videoID, created.ID)
	})
	if err != nil {
		for _, path := range savedImages {
			if rmErr := uploads.Remove(ctx, h.Files, path); rmErr != nil {
				h.Log.Warn("failed to remove orphaned choice image", zap.Error(rmErr))
			}
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	httpjson.Created(w, "question created successfully", created)
}

// questionDetail is a question with its revision video joined in.
type questionDetail struct {
	models.Question
	RevisionVideo *models.Video `json:"revision_video,omitempty"`
}

// HandleGetQuestion returns one question with its revision video populated.
func (h *Handler) HandleGetQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := urlObjectID(r, "questionID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "questions.get")
	defer cancel()

	question, err := h.Questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, questionstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("question not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	detail := questionDetail{Question: *question}
	if question.RevisionVideoID != nil {
		revision, revErr := h.Videos.GetByID(ctx, *question.RevisionVideoID)
		if revErr != nil && !errors.Is(revErr, videostore.ErrNotFound) {
			httpjson.Error(w, r, revErr, h.Log)
			return
		}
		detail.RevisionVideo = revision
	}

	httpjson.OK(w, "question retrieved successfully", detail)
}

type updateQuestionRequest struct {
	Prompt  string `json:"prompt"`
	Choice1 string `json:"choice1"`
	Choice2 string `json:"choice2"`
	Choice3 string `json:"choice3"`
	Choice4 string `json:"choice4"`

	ChooseAnswer     string `json:"choose_answer"`
	TrueFalseAnswer  *bool  `json:"true_false_answer"`
	ParagraphAnswer  string `json:"paragraph_answer"`
	ExpressiveAnswer string `json:"expressive_answer"`
	CompleteAnswer   string `json:"complete_answer"`
}

// HandleUpdateQuestion applies a partial update to a question's prompt,
// choices, and answers. Placement fields (video, time, quiz number) are
// fixed at creation.
func (h *Handler) HandleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := urlObjectID(r, "questionID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	var req updateQuestionRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "questions.update")
	defer cancel()

	current, err := h.Questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, questionstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("question not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	upd := *current
	if req.Prompt != "" {
		upd.Prompt = req.Prompt
	}
	if req.Choice1 != "" {
		upd.Choice1 = req.Choice1
	}
	if req.Choice2 != "" {
		upd.Choice2 = req.Choice2
	}
	if req.Choice3 != "" {
		upd.Choice3 = req.Choice3
	}
	if req.Choice4 != "" {
		upd.Choice4 = req.Choice4
	}
	if req.ChooseAnswer != "" {
		upd.ChooseAnswer = req.ChooseAnswer
	}
	if req.TrueFalseAnswer != nil {
		upd.TrueFalseAnswer = req.TrueFalseAnswer
	}
	if req.ParagraphAnswer != "" {
		upd.ParagraphAnswer = req.ParagraphAnswer
	}
	if req.ExpressiveAnswer != "" {
		upd.ExpressiveAnswer = req.ExpressiveAnswer
	}
	if req.CompleteAnswer != "" {
		upd.CompleteAnswer = req.CompleteAnswer
	}

	if err := h.Questions.UpdatePrompt(ctx, questionID, upd); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	httpjson.OK(w, "question updated successfully", nil)
}

// HandleDeleteQuestion removes a question and pulls it from its video in
// one transaction. When it was the last question at its (video, time)
// checkpoint and a revision video is linked, the revision video doc goes
// in the same transaction and its host asset is deleted after commit.
func (h *Handler) HandleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := urlObjectID(r, "questionID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "questions.delete")
	defer cancel()

	question, err := h.Questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, questionstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("question not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	var hostRevisionID string
	err = txn.WithTransaction(ctx, h.DB.Client(), func(sc mongo.SessionContext) error {
		if _, txErr := h.Questions.Delete(sc, questionID); txErr != nil {
			return txErr
		}
		if txErr := h.Videos.RemoveQuestion(sc, question.VideoID, questionID); txErr != nil {
			return txErr
		}

		remaining, txErr := h.Questions.CountCheckpoint(sc, question.VideoID, question.Time)
		if txErr != nil {
			return txErr
		}
		if remaining > 0 || question.RevisionVideoID == nil {
			return nil
		}

		revision, txErr := h.Videos.GetByID(sc, *question.RevisionVideoID)
		if txErr != nil {
			if errors.Is(txErr, videostore.ErrNotFound) {
				return nil
			}
			return txErr
		}
		if _, txErr = h.Videos.Delete(sc, revision.ID); txErr != nil {
			return txErr
		}
		hostRevisionID = revision.HostVideoID
		return nil
	})
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	if hostRevisionID != "" {
		if err := h.Host.DeleteVideos(ctx, []string{hostRevisionID}); err != nil {
			h.Log.Error("host revision cleanup failed",
				zap.String("host_video_id", hostRevisionID),
				zap.Error(err))
			httpjson.Error(w, r, apperr.Upstream("video host", err), h.Log)
			return
		}
	}

	httpjson.OK(w, "question deleted successfully", nil)
}
