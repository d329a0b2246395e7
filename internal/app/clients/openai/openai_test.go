package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func writeChatBody(w http.ResponseWriter, content string) {
	out := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(srv.URL, "sk-test")
	c.sleep = func(time.Duration) {} // no real waiting in tests
	return c
}

func TestChat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("auth = %q", got)
		}
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != chatModel || len(req.Messages) != 1 {
			t.Errorf("request = %+v", req)
		}
		writeChatBody(w, "  Hello!  ")
	})

	reply, err := client.Chat(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "Hello!" {
		t.Errorf("reply = %q", reply)
	}
}

func TestAssessLanguage_RetriesOnRateLimit(t *testing.T) {
	var calls int
	var slept []time.Duration

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeChatBody(w, "Good sentence.")
	})
	client.sleep = func(d time.Duration) { slept = append(slept, d) }

	reply, err := client.AssessLanguage(context.Background(), "I has a cat")
	if err != nil {
		t.Fatalf("AssessLanguage: %v", err)
	}
	if reply != "Good sentence." {
		t.Errorf("reply = %q", reply)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	// Backoff doubles: 2s after the first 429, 4s after the second.
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("slept %v", slept)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("backoff[%d] = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestAssessLanguage_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.AssessLanguage(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != maxRetries {
		t.Errorf("calls = %d, want %d", calls, maxRetries)
	}
}

func TestAssessLanguage_NoRetryOnOtherErrors(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.AssessLanguage(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on non-429)", calls)
	}
}

func TestTranscribe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != transcribeModel {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("response_format"); got != "text" {
			t.Errorf("response_format = %q", got)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		file.Close()
		_, _ = w.Write([]byte("hello world\n"))
	})

	text, err := client.Transcribe(context.Background(), "clip.wav", strings.NewReader("fake-audio"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q", text)
	}
}
