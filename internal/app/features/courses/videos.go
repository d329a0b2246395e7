// internal/app/features/courses/videos.go
package courses

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	videostore "github.com/Thomas-Sedhom/LMS/internal/app/store/videos"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/inputval"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/txn"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/uploads"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// playbackOTPTTL is how long a playback grant stays valid, in seconds.
const playbackOTPTTL = 300

/*─────────────────────────────────────────────────────────────────────────────*
| Uploading                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleUploadCredentials returns host upload credentials for a new course
// video. The host folder is named by the course ID and created on first use.
func (h *Handler) HandleUploadCredentials(w http.ResponseWriter, r *http.Request) {
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	title := query.Get(r, "videoTitle")
	if title == "" {
		httpjson.Error(w, r, apperr.BadRequest("videoTitle is required"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "videos.upload_credentials")
	defer cancel()

	folder, err := h.Host.EnsureFolder(ctx, courseID.Hex())
	if err != nil {
		httpjson.Error(w, r, apperr.Upstream("video host", err), h.Log)
		return
	}
	creds, err := h.Host.UploadCredentials(ctx, title, folder.ID)
	if err != nil {
		httpjson.Error(w, r, apperr.Upstream("video host", err), h.Log)
		return
	}
	httpjson.OK(w, "upload credentials retrieved successfully", creds)
}

// HandleTaskUploadCredentials returns upload credentials for a revision
// video parented to an existing main video. Revision assets live in a
// folder named by the main video ID.
func (h *Handler) HandleTaskUploadCredentials(w http.ResponseWriter, r *http.Request) {
	videoID, err := urlObjectID(r, "videoID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	title := query.Get(r, "videoTitle")
	if title == "" {
		httpjson.Error(w, r, apperr.BadRequest("videoTitle is required"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "videos.task_upload_credentials")
	defer cancel()

	if _, err := h.Videos.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, videostore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("video not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	folder, err := h.Host.EnsureFolder(ctx, videoID.Hex())
	if err != nil {
		httpjson.Error(w, r, apperr.Upstream("video host", err), h.Log)
		return
	}
	creds, err := h.Host.UploadCredentials(ctx, title, folder.ID)
	if err != nil {
		httpjson.Error(w, r, apperr.Upstream("video host", err), h.Log)
		return
	}
	httpjson.OK(w, "upload credentials retrieved successfully", creds)
}

type saveVideoRequest struct {
	HostVideoID string `json:"host_video_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Index       int    `json:"index" validate:"required,min=1"`
	URL         string `json:"url"`
}

// HandleSaveVideo records an uploaded course video and pushes it onto the
// course's ordered list in one transaction.
func (h *Handler) HandleSaveVideo(w http.ResponseWriter, r *http.Request) {
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	var req saveVideoRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := inputval.Validate(req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "videos.save")
	defer cancel()

	taken, err := h.Videos.ExistsByHostID(ctx, req.HostVideoID)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if taken {
		httpjson.Error(w, r, apperr.BadRequest("video already exists"), h.Log)
		return
	}

	var created models.Video
	err = txn.WithTransaction(ctx, h.DB.Client(), func(sc mongo.SessionContext) error {
		var txErr error
		created, txErr = h.Videos.Create(sc, models.Video{
			HostVideoID: req.HostVideoID,
			Title:       req.Title,
			Description: req.Description,
			Index:       req.Index,
			URL:         req.URL,
			CourseID:    &courseID,
		})
		if txErr != nil {
			return txErr
		}
		return h.Courses.AddVideo(sc, courseID, created.ID)
	})
	if err != nil {
		if errors.Is(err, videostore.ErrDuplicateHostVideo) {
			httpjson.Error(w, r, apperr.BadRequest("video already exists"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	httpjson.Created(w, "video saved successfully", created)
}

type saveTaskVideoRequest struct {
	HostVideoID string `json:"host_video_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	URL         string `json:"url"`
	// Time groups the revision with the quiz checkpoint it remediates.
	Time string `json:"time" validate:"required"`
}

// HandleSaveTaskVideo records an uploaded revision video and links it to
// every question at the main video's matching checkpoint.
func (h *Handler) HandleSaveTaskVideo(w http.ResponseWriter, r *http.Request) {
	mainVideoID, err := urlObjectID(r, "videoID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	var req saveTaskVideoRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := inputval.Validate(req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "videos.save_task")
	defer cancel()

	if _, err := h.Videos.GetByID(ctx, mainVideoID); err != nil {
		if errors.Is(err, videostore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("video not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	taken, err := h.Videos.ExistsByHostID(ctx, req.HostVideoID)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if taken {
		httpjson.Error(w, r, apperr.BadRequest("video already exists"), h.Log)
		return
	}

	var created models.Video
	err = txn.WithTransaction(ctx, h.DB.Client(), func(sc mongo.SessionContext) error {
		var txErr error
		created, txErr = h.Videos.Create(sc, models.Video{
			HostVideoID: req.HostVideoID,
			Title:       req.Title,
			Description: req.Description,
			URL:         req.URL,
			MainVideoID: &mainVideoID,
		})
		if txErr != nil {
			return txErr
		}
		return h.Questions.SetRevisionVideo(sc, mainVideoID, req.Time, created.ID)
	})
	if err != nil {
		if errors.Is(err, videostore.ErrDuplicateHostVideo) {
			httpjson.Error(w, r, apperr.BadRequest("video already exists"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	httpjson.Created(w, "task video saved successfully", created)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Notes                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type notesRequest struct {
	Notes string `json:"notes" validate:"required"`
}

// HandleSaveNotes attaches free-form notes text to a video.
func (h *Handler) HandleSaveNotes(w http.ResponseWriter, r *http.Request) {
	videoID, err := urlObjectID(r, "videoID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	var req notesRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := inputval.Validate(req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "videos.save_notes")
	defer cancel()

	if err := h.Videos.SetNotes(ctx, videoID, req.Notes); err != nil {
		if errors.Is(err, videostore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("video not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}
	httpjson.OK(w, "notes saved successfully", nil)
}

// HandleUploadPDF attaches a PDF notes file to a video, replacing any
// previous attachment.
func (h *Handler) HandleUploadPDF(w http.ResponseWriter, r *http.Request) {
	videoID, err := urlObjectID(r, "videoID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	pdf, err := uploads.FromRequest(r, uploads.VideoNotes)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	defer pdf.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "videos.upload_pdf")
	defer cancel()

	video, err := h.Videos.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, videostore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("video not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	path, err := uploads.Save(ctx, h.Files, uploads.VideoNotes, pdf)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := h.Videos.SetPDFPath(ctx, videoID, path); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := uploads.Remove(ctx, h.Files, video.PDFPath); err != nil {
		h.Log.Warn("failed to remove old notes pdf",
			zap.String("path", video.PDFPath),
			zap.Error(err))
	}

	httpjson.OK(w, "notes uploaded successfully", map[string]string{"pdf_path": path})
}

// HandleDownloadPDF streams a time-limited link to a video's notes.
func (h *Handler) HandleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	videoID, err := urlObjectID(r, "videoID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "videos.download_pdf")
	defer cancel()

	video, err := h.Videos.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, videostore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("video not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if video.PDFPath == "" {
		httpjson.Error(w, r, apperr.NotFound("video has no notes"), h.Log)
		return
	}

	url, err := uploads.DownloadURL(ctx, h.Files, video.PDFPath, video.Title+".pdf")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	httpjson.OK(w, "notes link retrieved successfully", map[string]string{"url": url})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Playback                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// videoPlayback is one video's playback grant plus its quiz checkpoints,
// grouped by time offset.
type videoPlayback struct {
	Video     models.Video                 `json:"video"`
	OTP       string                       `json:"otp"`
	Playback  string                       `json:"playbackInfo"`
	Questions map[string][]models.Question `json:"questions"`
}

// HandleVideoOTP returns a playback grant for one video together with its
// questions grouped into checkpoints.
func (h *Handler) HandleVideoOTP(w http.ResponseWriter, r *http.Request) {
	videoID, err := urlObjectID(r, "videoID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "videos.otp")
	defer cancel()

	playback, err := h.playbackFor(ctx, videoID)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	httpjson.OK(w, "playback OTP retrieved successfully", playback)
}

// HandleCourseOTPs returns playback grants for every video of a course.
func (h *Handler) HandleCourseOTPs(w http.ResponseWriter, r *http.Request) {
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "videos.course_otps")
	defer cancel()

	videos, err := h.Videos.ListByCourse(ctx, courseID)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	grants := make([]*videoPlayback, 0, len(videos))
	for _, v := range videos {
		playback, err := h.playbackFor(ctx, v.ID)
		if err != nil {
			httpjson.Error(w, r, err, h.Log)
			return
		}
		grants = append(grants, playback)
	}
	httpjson.OK(w, "playback OTPs retrieved successfully", grants)
}

func (h *Handler) playbackFor(ctx context.Context, videoID primitive.ObjectID) (*videoPlayback, error) {
	video, err := h.Videos.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, videostore.ErrNotFound) {
			return nil, apperr.NotFound("video not found")
		}
		return nil, err
	}

	otp, err := h.Host.PlaybackOTP(ctx, video.HostVideoID, playbackOTPTTL)
	if err != nil {
		return nil, apperr.Upstream("video host", err)
	}

	questions, err := h.Questions.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]models.Question)
	for _, q := range questions {
		grouped[q.Time] = append(grouped[q.Time], q)
	}

	return &videoPlayback{
		Video:     *video,
		OTP:       otp.OTP,
		Playback:  otp.PlaybackInfo,
		Questions: grouped,
	}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Maintenance                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

type updateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Index       string `json:"index"`
}

// HandleUpdateVideo applies a partial update to a video's metadata.
func (h *Handler) HandleUpdateVideo(w http.ResponseWriter, r *http.Request) {
	videoID, err := urlObjectID(r, "videoID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	var req updateVideoRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "videos.update")
	defer cancel()

	video, err := h.Videos.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, videostore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("video not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	upd := videostore.Update{
		Title:       video.Title,
		Description: video.Description,
		Index:       video.Index,
	}
	if req.Title != "" {
		upd.Title = req.Title
	}
	if req.Description != "" {
		upd.Description = req.Description
	}
	if req.Index != "" {
		n, convErr := strconv.Atoi(req.Index)
		if convErr != nil || n < 1 {
			httpjson.Error(w, r, apperr.BadRequest("index must be a positive integer"), h.Log)
			return
		}
		upd.Index = n
	}

	if err := h.Videos.UpdateDetails(ctx, videoID, upd); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	httpjson.OK(w, "video updated successfully", nil)
}

type deleteVideosRequest struct {
	VideoIDs []string `json:"video_ids" validate:"required,min=1"`
}

// HandleDeleteVideos bulk-deletes course videos: local docs and course
// list entries in one transaction, then the host assets.
func (h *Handler) HandleDeleteVideos(w http.ResponseWriter, r *http.Request) {
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	var req deleteVideosRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := inputval.Validate(req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.VideoIDs))
	for _, raw := range req.VideoIDs {
		id, convErr := primitive.ObjectIDFromHex(raw)
		if convErr != nil {
			httpjson.Error(w, r, apperr.BadRequest("invalid video id "+raw), h.Log)
			return
		}
		ids = append(ids, id)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "videos.bulk_delete")
	defer cancel()

	var hostIDs []string
	err = txn.WithTransaction(ctx, h.DB.Client(), func(sc mongo.SessionContext) error {
		for _, id := range ids {
			video, txErr := h.Videos.GetByID(sc, id)
			if txErr != nil {
				return txErr
			}
			hostIDs = append(hostIDs, video.HostVideoID)
			if _, txErr = h.Videos.Delete(sc, id); txErr != nil {
				return txErr
			}
			if _, txErr = h.Questions.DeleteByVideo(sc, id); txErr != nil {
				return txErr
			}
			if txErr = h.Courses.RemoveVideo(sc, courseID, id); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	if err := h.Host.DeleteVideos(ctx, hostIDs); err != nil {
		h.Log.Error("host video cleanup failed", zap.Error(err))
		httpjson.Error(w, r, apperr.Upstream("video host", err), h.Log)
		return
	}

	httpjson.OK(w, "videos deleted successfully", nil)
}
