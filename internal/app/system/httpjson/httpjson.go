// internal/app/system/httpjson/httpjson.go

// Package httpjson shapes every API response into the fixed envelopes the
// frontend expects:
//
//	success: { "statusCode": 200, "message": "...", "data": ... }
//	error:   { "statusCode": 400, "timestamp": "...", "path": "...", "message": "...", "error": "..." }
//
// Handlers build domain results and call OK/Created/Error; nothing else in
// the codebase writes response bodies directly.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
)

// maxBodySize caps JSON request bodies. Uploads go through multipart
// parsing with their own limits.
const maxBodySize = 1 << 20 // 1 MB

// Success is the envelope for 2xx responses.
type Success struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

// Failure is the envelope for error responses.
type Failure struct {
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
}

// Write sends a success envelope with an explicit status code.
func Write(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Success{
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// OK sends a 200 success envelope.
func OK(w http.ResponseWriter, message string, data any) {
	Write(w, http.StatusOK, message, data)
}

// Created sends a 201 success envelope.
func Created(w http.ResponseWriter, message string, data any) {
	Write(w, http.StatusCreated, message, data)
}

// Error normalizes any error into the failure envelope. Statuses of 500 and
// above are logged with the underlying cause; client-fault statuses are not
// worth the noise.
func Error(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	status := apperr.StatusOf(err)
	message := apperr.MessageOf(err)

	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	body := Failure{
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       r.URL.Path,
		Message:    message,
	}
	if status < http.StatusInternalServerError {
		body.Error = http.StatusText(status)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Decode parses a JSON request body into dst. Malformed bodies surface as
// 400 rather than 500.
func Decode(r *http.Request, dst any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.BadRequest("request body is empty")
		}
		return apperr.Wrap(http.StatusBadRequest, "invalid request body", err)
	}
	return nil
}
