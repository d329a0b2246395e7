// internal/app/features/ai/handler_test.go
package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/Thomas-Sedhom/LMS/internal/app/clients/openai"
	"go.uber.org/zap"
)

// fakeProvider answers the two endpoints the handlers hit with canned
// responses.
func fakeProvider(t *testing.T) *openai.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/audio/transcriptions":
			fmt.Fprint(w, "hello from the student")
		case "/chat/completions":
			var req struct {
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			reply := "chat reply"
			if len(req.Messages) > 0 && req.Messages[0].Role == "system" {
				reply = "assessment reply"
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]string{"content": reply}},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return openai.New(srv.URL, "test-key")
}

// audioRequest builds a multipart request with an "audio" part carrying
// an audio content type.
func audioRequest(t *testing.T, target string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="audio"; filename="answer.mp3"`)
	hdr.Set("Content-Type", "audio/mpeg")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write([]byte("fake audio bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleEvaluate(t *testing.T) {
	h := NewHandler(fakeProvider(t), zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleEvaluate(rec, audioRequest(t, "/evaluate"))
	if rec.Code != http.StatusOK {
		t.Fatalf("evaluate status = %d, body %s", rec.Code, rec.Body.String())
	}

	var out struct {
		Data struct {
			Transcription string `json:"transcription"`
			Assessment    string `json:"assessment"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Data.Transcription != "hello from the student" {
		t.Errorf("transcription = %q", out.Data.Transcription)
	}
	if out.Data.Assessment != "assessment reply" {
		t.Errorf("assessment = %q", out.Data.Assessment)
	}
}

func TestHandleEvaluateMissingAudio(t *testing.T) {
	h := NewHandler(fakeProvider(t), zap.NewNop())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("message", "no file here")
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/evaluate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.HandleEvaluate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing audio status = %d, want 400", rec.Code)
	}
}

func TestHandleChat(t *testing.T) {
	h := NewHandler(fakeProvider(t), zap.NewNop())

	t.Run("text message", func(t *testing.T) {
		form := url.Values{"message": {"how do I use the past tense?"}}
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := httptest.NewRecorder()
		h.HandleChat(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("chat status = %d, body %s", rec.Code, rec.Body.String())
		}
		var out struct {
			Data struct {
				Response string `json:"response"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if out.Data.Response != "chat reply" {
			t.Errorf("response = %q", out.Data.Response)
		}
	})

	t.Run("audio message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleChat(rec, audioRequest(t, "/chat"))
		if rec.Code != http.StatusOK {
			t.Fatalf("chat status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("neither", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/chat", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := httptest.NewRecorder()
		h.HandleChat(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("empty chat status = %d, want 400", rec.Code)
		}
	})
}
