package paging

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/courses", 1, DefaultLimit},
		{"explicit", "/courses?page=3&limit=10", 3, 10},
		{"limit clamped", "/courses?limit=5000", 1, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			p, err := Parse(r)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if p.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", p.Page, tt.wantPage)
			}
			if p.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", p.Limit, tt.wantLimit)
			}
		})
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantField string
	}{
		{"zero page", "/courses?page=0&limit=10", "page"},
		{"negative page", "/courses?page=-3", "page"},
		{"non-numeric page", "/courses?page=abc", "page"},
		{"negative limit", "/courses?limit=-1", "limit"},
		{"non-numeric limit", "/courses?limit=xyz", "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			_, err := Parse(r)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperr.StatusOf(err); got != 400 {
				t.Errorf("status = %d, want 400", got)
			}
			if msg := apperr.MessageOf(err); !strings.Contains(msg, tt.wantField) {
				t.Errorf("message %q does not name field %q", msg, tt.wantField)
			}
		})
	}
}

func TestSkip(t *testing.T) {
	tests := []struct {
		page, limit int
		want        int64
	}{
		{1, 20, 0},
		{2, 20, 20},
		{3, 10, 20},
		{5, 50, 200},
	}

	for _, tt := range tests {
		p := Params{Page: tt.page, Limit: tt.limit}
		if got := p.Skip(); got != tt.want {
			t.Errorf("Params{%d,%d}.Skip() = %d, want %d", tt.page, tt.limit, got, tt.want)
		}
	}
}
