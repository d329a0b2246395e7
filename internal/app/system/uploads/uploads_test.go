package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name        string
		desc        Descriptor
		field       string
		contentType string
		wantErr     bool
	}{
		{"accepted image", CourseCover, "cover", "image/png", false},
		{"any image subtype", CourseCover, "cover", "image/webp", false},
		{"wrong field", CourseCover, "photo", "image/png", true},
		{"rejected type", CourseCover, "cover", "application/zip", true},
		{"exact pdf match", VideoNotes, "pdf", "application/pdf", false},
		{"pdf rejects image", VideoNotes, "pdf", "image/png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := multipart.NewWriter(&buf)
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", `form-data; name="`+tt.field+`"; filename="file.bin"`)
			h.Set("Content-Type", tt.contentType)
			part, err := w.CreatePart(h)
			if err != nil {
				t.Fatalf("create part: %v", err)
			}
			part.Write([]byte("content"))
			w.Close()

			r := httptest.NewRequest("POST", "/", &buf)
			r.Header.Set("Content-Type", w.FormDataContentType())

			f, err := FromRequest(r, tt.desc)
			if tt.wantErr {
				if err == nil {
					f.Close()
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("FromRequest: %v", err)
			}
			defer f.Close()
			if f.FileName != "file.bin" {
				t.Errorf("FileName = %q", f.FileName)
			}
			if f.ContentType != tt.contentType {
				t.Errorf("ContentType = %q", f.ContentType)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"../../etc/passwd", "passwd"},
		{"my photo (1).png", "my_photo__1_.png"},
		{"", "file"},
		{"..", "file"},
		{"./", "file"},
		{strings.Repeat("a", 120) + ".png", strings.Repeat("a", 96) + ".png"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
