package vdocipher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, New(srv.URL, "test-secret")
}

func TestAuthHeader(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Apisecret test-secret" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"folders": []Folder{}})
	})

	if _, err := client.SearchFolders(context.Background(), "course-1"); err != nil {
		t.Fatalf("SearchFolders: %v", err)
	}
}

func TestEnsureFolder_Existing(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/folders/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["name"] != "course-1" {
			t.Errorf("search name = %q", body["name"])
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"folders": []Folder{{ID: "f1", Name: "course-1"}},
		})
	})

	folder, err := client.EnsureFolder(context.Background(), "course-1")
	if err != nil {
		t.Fatalf("EnsureFolder: %v", err)
	}
	if folder.ID != "f1" {
		t.Errorf("folder.ID = %q", folder.ID)
	}
}

func TestEnsureFolder_Creates(t *testing.T) {
	var created bool
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/folders/search":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"folders": []Folder{}})
		case "/folders":
			created = true
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["parent"] != "root" {
				t.Errorf("parent = %q", body["parent"])
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(Folder{ID: "f-new", Name: body["name"]})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	folder, err := client.EnsureFolder(context.Background(), "course-2")
	if err != nil {
		t.Fatalf("EnsureFolder: %v", err)
	}
	if !created || folder.ID != "f-new" {
		t.Errorf("created=%v folder=%+v", created, folder)
	}
}

func TestUploadCredentials(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		q := r.URL.Query()
		if q.Get("title") != "Lesson 1" || q.Get("folderId") != "f1" {
			t.Errorf("query = %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(UploadCredentials{
			ClientPayload: map[string]any{"uploadLink": "https://upload.example"},
			VideoID:       "v123",
		})
	})

	creds, err := client.UploadCredentials(context.Background(), "Lesson 1", "f1")
	if err != nil {
		t.Fatalf("UploadCredentials: %v", err)
	}
	if creds.VideoID != "v123" {
		t.Errorf("VideoID = %q", creds.VideoID)
	}
}

func TestPlaybackOTP_DefaultTTL(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v123/otp" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]int
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["ttl"] != DefaultPlaybackTTL {
			t.Errorf("ttl = %d", body["ttl"])
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(PlaybackOTP{OTP: "otp-abc", PlaybackInfo: "info"})
	})

	otp, err := client.PlaybackOTP(context.Background(), "v123", 0)
	if err != nil {
		t.Fatalf("PlaybackOTP: %v", err)
	}
	if otp.OTP != "otp-abc" {
		t.Errorf("OTP = %q", otp.OTP)
	}
}

func TestDeleteFolder_CascadesVideos(t *testing.T) {
	var deletedVideos, deletedFolder bool
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/folders/search":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"folders": []Folder{{ID: "f1", Name: "course-1"}},
			})
		case r.URL.Path == "/" && r.Method == http.MethodGet:
			if r.URL.Query().Get("folderId") != "f1" {
				t.Errorf("folderId = %q", r.URL.Query().Get("folderId"))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"rows": []HostVideo{{ID: "v1"}, {ID: "v2"}},
			})
		case r.URL.Path == "/" && r.Method == http.MethodDelete:
			deletedVideos = true
			if got := r.URL.Query().Get("videos"); got != "v1,v2" {
				t.Errorf("videos = %q", got)
			}
			w.WriteHeader(http.StatusOK)
		case strings.HasPrefix(r.URL.Path, "/folders/") && r.Method == http.MethodDelete:
			deletedFolder = true
			if r.URL.Path != "/folders/f1" {
				t.Errorf("path = %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})

	if err := client.DeleteFolder(context.Background(), "course-1"); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if !deletedVideos || !deletedFolder {
		t.Errorf("deletedVideos=%v deletedFolder=%v", deletedVideos, deletedFolder)
	}
}

func TestDeleteFolder_MissingIsNoop(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/folders/search" {
			t.Errorf("unexpected call %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"folders": []Folder{}})
	})

	if err := client.DeleteFolder(context.Background(), "ghost"); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
}

func TestUpstreamErrorMapping(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad secret", http.StatusUnauthorized)
	})

	_, err := client.SearchFolders(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.StatusOf(err) != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", apperr.StatusOf(err))
	}
}
