package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil-like generic error", errors.New("boom"), http.StatusInternalServerError},
		{"bad request", BadRequest("missing field"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("wrong role"), http.StatusForbidden},
		{"not found", NotFound("course not found"), http.StatusNotFound},
		{"internal", Internal(errors.New("db down")), http.StatusInternalServerError},
		{"upstream", Upstream("video host", errors.New("timeout")), http.StatusBadGateway},
		{"wrapped in fmt", fmt.Errorf("while enrolling: %w", BadRequest("duplicate enrollment")), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(BadRequest("email already registered")); got != "email already registered" {
		t.Errorf("MessageOf() = %q", got)
	}
	// Unknown errors must not leak internals.
	if got := MessageOf(errors.New("mongo: connection refused")); got != "internal server error" {
		t.Errorf("MessageOf() leaked internal error: %q", got)
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("secret detail")
	err := Internal(cause)
	if MessageOf(err) != "internal server error" {
		t.Errorf("Internal() message = %q", MessageOf(err))
	}
	if !errors.Is(err, cause) {
		t.Error("Internal() should preserve the cause for errors.Is")
	}
}
