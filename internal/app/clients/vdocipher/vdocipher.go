// internal/app/clients/vdocipher/vdocipher.go

// Package vdocipher wraps the video hosting platform's REST API. Each
// course owns one folder on the host, named after the course ID; the
// folder's videos are the actual assets our video documents point at.
package vdocipher

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
)

// DefaultPlaybackTTL is the lifetime in seconds of an issued playback OTP.
const DefaultPlaybackTTL = 72000

// Client calls the video host with Apisecret authentication.
type Client struct {
	http *resty.Client
}

// New creates a client. baseURL is the videos API root, e.g.
// "https://dev.vdocipher.com/api/videos".
func New(baseURL, apiSecret string) *Client {
	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Authorization", "Apisecret "+apiSecret).
		SetHeader("Accept", "application/json")
	return &Client{http: http}
}

// Folder is a grouping construct on the host mirroring a course.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UploadCredentials holds everything a browser needs to upload a video
// asset directly to the host.
type UploadCredentials struct {
	ClientPayload map[string]any `json:"clientPayload"`
	VideoID       string         `json:"videoId"`
}

// PlaybackOTP is a time-limited playback grant for one video.
type PlaybackOTP struct {
	OTP          string `json:"otp"`
	PlaybackInfo string `json:"playbackInfo"`
}

// HostVideo is the host's record of one video asset.
type HostVideo struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// SearchFolders returns the folders matching a name.
func (c *Client) SearchFolders(ctx context.Context, name string) ([]Folder, error) {
	var out struct {
		Folders []Folder `json:"folders"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"name": name}).
		SetResult(&out).
		Post("/folders/search")
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return out.Folders, nil
}

// CreateFolder creates a folder under the host's root.
func (c *Client) CreateFolder(ctx context.Context, name string) (*Folder, error) {
	var out Folder
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"name": name, "parent": "root"}).
		SetResult(&out).
		Post("/folders")
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnsureFolder returns the folder with the given name, creating it if the
// host has none.
func (c *Client) EnsureFolder(ctx context.Context, name string) (*Folder, error) {
	folders, err := c.SearchFolders(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(folders) > 0 {
		return &folders[0], nil
	}
	return c.CreateFolder(ctx, name)
}

// UploadCredentials asks the host for one-time upload credentials for a
// new video titled title, placed in folderID (or the root when empty).
func (c *Client) UploadCredentials(ctx context.Context, title, folderID string) (*UploadCredentials, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("title", title)
	if folderID != "" {
		req.SetQueryParam("folderId", folderID)
	}

	var out UploadCredentials
	resp, err := req.SetResult(&out).Put("")
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// PlaybackOTP issues a playback OTP for a video with the given TTL in
// seconds. ttl <= 0 uses DefaultPlaybackTTL.
func (c *Client) PlaybackOTP(ctx context.Context, hostVideoID string, ttl int) (*PlaybackOTP, error) {
	if ttl <= 0 {
		ttl = DefaultPlaybackTTL
	}
	var out PlaybackOTP
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]int{"ttl": ttl}).
		SetResult(&out).
		Post("/" + hostVideoID + "/otp")
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteVideos bulk-deletes video assets by host ID.
func (c *Client) DeleteVideos(ctx context.Context, hostVideoIDs []string) error {
	if len(hostVideoIDs) == 0 {
		return nil
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("videos", strings.Join(hostVideoIDs, ",")).
		Delete("")
	return checkResp(resp, err)
}

// VideosInFolder lists the video assets inside a folder.
func (c *Client) VideosInFolder(ctx context.Context, folderID string) ([]HostVideo, error) {
	var out struct {
		Rows []HostVideo `json:"rows"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("folderId", folderID).
		SetResult(&out).
		Get("")
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

// DeleteFolder removes the folder named name and every video asset inside
// it: search the folder, enumerate its videos, bulk-delete them, then
// delete the folder itself. A name with no folder on the host is a no-op.
func (c *Client) DeleteFolder(ctx context.Context, name string) error {
	folders, err := c.SearchFolders(ctx, name)
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		return nil
	}
	folderID := folders[0].ID

	videos, err := c.VideosInFolder(ctx, folderID)
	if err != nil {
		return err
	}
	if len(videos) > 0 {
		ids := make([]string, len(videos))
		for i, v := range videos {
			ids[i] = v.ID
		}
		if err := c.DeleteVideos(ctx, ids); err != nil {
			return err
		}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/folders/" + folderID)
	return checkResp(resp, err)
}

func checkResp(resp *resty.Response, err error) error {
	if err != nil {
		return apperr.Upstream("video host", err)
	}
	if resp.IsError() {
		return apperr.Upstream("video host",
			fmt.Errorf("%s %s: %s: %s", resp.Request.Method, resp.Request.URL, resp.Status(), resp.String()))
	}
	return nil
}
