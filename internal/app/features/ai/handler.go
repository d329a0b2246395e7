// internal/app/features/ai/handler.go

// Package ai exposes the language-learning assistant endpoints: speech
// evaluation and free-form chat.
package ai

import (
	"net/http"

	"github.com/Thomas-Sedhom/LMS/internal/app/clients/openai"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/uploads"
	"go.uber.org/zap"
)

type Handler struct {
	AI  *openai.Client
	Log *zap.Logger
}

func NewHandler(ai *openai.Client, logger *zap.Logger) *Handler {
	return &Handler{AI: ai, Log: logger}
}

// HandleEvaluate transcribes an uploaded audio answer and grades the
// transcript for grammar, fluency, and pronunciation.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	audio, err := uploads.FromRequest(r, uploads.AudioAnswer)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	defer audio.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "ai.evaluate")
	defer cancel()

	transcription, err := h.AI.Transcribe(ctx, audio.FileName, audio.Reader)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	assessment, err := h.AI.AssessLanguage(ctx, transcription)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	httpjson.OK(w, "audio evaluated successfully", map[string]string{
		"transcription": transcription,
		"assessment":    assessment,
	})
}

// HandleChat answers a student message. The message arrives either as a
// "message" form value or as an audio clip that is transcribed first;
// audio wins when both are present.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	audio, err := uploads.FromRequestOptional(r, uploads.AudioAnswer)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "ai.chat")
	defer cancel()

	var message string
	switch {
	case audio != nil:
		defer audio.Close()
		message, err = h.AI.Transcribe(ctx, audio.FileName, audio.Reader)
		if err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}
	case r.FormValue("message") != "":
		message = r.FormValue("message")
	default:
		httpjson.Error(w, r, apperr.BadRequest("either a text message or an audio file is required"), h.Log)
		return
	}

	reply, err := h.AI.Chat(ctx, message)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	httpjson.OK(w, "chat completed successfully", map[string]string{"response": reply})
}
