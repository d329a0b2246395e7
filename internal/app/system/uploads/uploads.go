// Package uploads handles multipart file uploads against typed
// descriptors. Each upload kind declares its form field, allowed content
// types, size cap, and storage prefix once; handlers pass the descriptor
// instead of re-validating ad hoc.
package uploads

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// Descriptor declares the rules for one kind of file upload.
type Descriptor struct {
	// Field is the multipart form field holding the file.
	Field string
	// Prefix is the top-level storage directory for this kind.
	Prefix string
	// MaxSize caps the file size in bytes.
	MaxSize int64
	// ContentTypes lists accepted MIME types. Matching is by prefix so
	// "image/" admits any image subtype.
	ContentTypes []string
}

// The upload kinds the API accepts.
var (
	CourseCover = Descriptor{
		Field:        "cover",
		Prefix:       "covers",
		MaxSize:      5 << 20,
		ContentTypes: []string{"image/"},
	}
	QuestionImage = Descriptor{
		Field:        "image",
		Prefix:       "questions",
		MaxSize:      5 << 20,
		ContentTypes: []string{"image/"},
	}
	BlogImage = Descriptor{
		Field:        "image",
		Prefix:       "blogs",
		MaxSize:      5 << 20,
		ContentTypes: []string{"image/"},
	}
	VideoNotes = Descriptor{
		Field:        "pdf",
		Prefix:       "notes",
		MaxSize:      20 << 20,
		ContentTypes: []string{"application/pdf"},
	}
	AudioAnswer = Descriptor{
		Field:        "audio",
		Prefix:       "audio",
		MaxSize:      25 << 20,
		ContentTypes: []string{"audio/", "video/webm"},
	}
)

// File is an accepted upload ready to store or stream.
type File struct {
	Reader      multipart.File
	FileName    string
	Size        int64
	ContentType string
}

// Close releases the underlying form file.
func (f *File) Close() error {
	return f.Reader.Close()
}

// FromRequest parses the request's multipart form and validates the
// descriptor's field against its rules. The caller must Close the result.
func FromRequest(r *http.Request, d Descriptor) (*File, error) {
	if err := r.ParseMultipartForm(d.MaxSize); err != nil {
		return nil, apperr.BadRequest("could not parse upload form")
	}

	file, header, err := r.FormFile(d.Field)
	if err != nil {
		return nil, apperr.BadRequest(fmt.Sprintf("missing %q file", d.Field))
	}

	if header.Size > d.MaxSize {
		file.Close()
		return nil, apperr.BadRequest(fmt.Sprintf("file exceeds %d MB limit", d.MaxSize>>20))
	}

	ct := header.Header.Get("Content-Type")
	if !d.accepts(ct) {
		file.Close()
		return nil, apperr.BadRequest(fmt.Sprintf("unsupported content type %q", ct))
	}

	return &File{
		Reader:      file,
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: ct,
	}, nil
}

// FromRequestOptional is FromRequest for fields that may be absent.
// A missing field, or a request that is not multipart at all, returns
// (nil, nil); any other failure is an error.
func FromRequestOptional(r *http.Request, d Descriptor) (*File, error) {
	if err := r.ParseMultipartForm(d.MaxSize); err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, apperr.BadRequest("could not parse upload form")
	}
	probe, _, err := r.FormFile(d.Field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err == nil {
		probe.Close()
	}
	return FromRequest(r, d)
}

// WithField returns a copy of the descriptor bound to another form field,
// for kinds that repeat across several slots (question choice images).
func (d Descriptor) WithField(field string) Descriptor {
	d.Field = field
	return d
}

func (d Descriptor) accepts(contentType string) bool {
	for _, allowed := range d.ContentTypes {
		if strings.HasSuffix(allowed, "/") {
			if strings.HasPrefix(contentType, allowed) {
				return true
			}
			continue
		}
		if contentType == allowed {
			return true
		}
	}
	return false
}

// Save stores the file under a unique path and returns that path.
// Paths look like: covers/2026/01/3f2a9b1c-photo.png
func Save(ctx context.Context, store storage.Store, d Descriptor, f *File) (string, error) {
	now := time.Now().UTC()
	dateDir := fmt.Sprintf("%s/%04d/%02d", d.Prefix, now.Year(), now.Month())
	uniqueName := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(f.FileName))
	path := filepath.ToSlash(filepath.Join(dateDir, uniqueName))

	opts := &storage.PutOptions{
		ContentType: f.ContentType,
	}
	if err := store.Put(ctx, path, f.Reader, opts); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return path, nil
}

// Remove deletes a stored file. A missing path is a no-op so replace
// flows do not need to special-case first uploads.
func Remove(ctx context.Context, store storage.Store, path string) error {
	if path == "" {
		return nil
	}
	return store.Delete(ctx, path)
}

// DownloadURL returns a time-limited link to a stored file with the given
// download filename.
func DownloadURL(ctx context.Context, store storage.Store, path, filename string) (string, error) {
	return store.PresignedURL(ctx, path, &storage.PresignOptions{
		Expires:            15 * time.Minute,
		ContentDisposition: "attachment; filename=\"" + filename + "\"",
	})
}

// sanitizeFilename removes or replaces characters that could be problematic in filenames.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	// Base maps "" to "." and a bare parent reference to "..", neither of
	// which is a usable name.
	if filename == "." || filename == ".." {
		return "file"
	}

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
