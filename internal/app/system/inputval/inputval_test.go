package inputval

import (
	"strings"
	"testing"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
)

type registerDTO struct {
	FirstName string `validate:"required"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=8"`
	Phone     string `validate:"required,e164"`
}

func TestValidate_OK(t *testing.T) {
	dto := registerDTO{
		FirstName: "Sara",
		Email:     "sara@example.com",
		Password:  "hunter2hunter2",
		Phone:     "+201234567890",
	}
	if err := Validate(dto); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidate_CollectsAllFields(t *testing.T) {
	// Phone is present but not E.164, so the format message fires rather
	// than the required one.
	dto := registerDTO{Email: "not-an-email", Password: "short", Phone: "12345"}
	err := Validate(dto)
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.StatusOf(err) != 400 {
		t.Errorf("status = %d, want 400", apperr.StatusOf(err))
	}

	msg := apperr.MessageOf(err)
	for _, want := range []string{
		"FirstName is required",
		"Email must be a valid email address",
		"Password must be at least 8 characters",
		"Phone must be a valid phone number",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestValidate_OneOf(t *testing.T) {
	type dto struct {
		Type string `validate:"required,oneof=choose true_false paragraph"`
	}
	if err := Validate(dto{Type: "choose"}); err != nil {
		t.Errorf("valid oneof rejected: %v", err)
	}
	err := Validate(dto{Type: "essay"})
	if err == nil {
		t.Fatal("invalid oneof accepted")
	}
	if !strings.Contains(apperr.MessageOf(err), "must be one of") {
		t.Errorf("message = %q", apperr.MessageOf(err))
	}
}
