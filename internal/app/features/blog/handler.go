// internal/app/features/blog/handler.go
package blog

import (
	"errors"
	"net/http"

	blogstore "github.com/Thomas-Sedhom/LMS/internal/app/store/blogs"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/paging"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/uploads"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the public blog: staff write posts with a header image,
// everyone signed in can read them.
type Handler struct {
	Blogs *blogstore.Store
	Files storage.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, files storage.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Blogs: blogstore.New(db),
		Files: files,
		Log:   logger,
	}
}

func urlObjectID(r *http.Request, param string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, param))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid " + param)
	}
	return id, nil
}

// HandleCreate publishes a new post from a multipart form carrying the
// title, the HTML body, and the header image.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	image, err := uploads.FromRequest(r, uploads.BlogImage)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	defer image.Close()

	title := r.FormValue("title")
	details := r.FormValue("details")
	if title == "" || details == "" {
		httpjson.Error(w, r, apperr.BadRequest("title and details are required"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "blog.create")
	defer cancel()

	path, err := uploads.Save(ctx, h.Files, uploads.BlogImage, image)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	created, err := h.Blogs.Create(ctx, models.Blog{
		Title:   title,
		Details: details,
		Image:   path,
	})
	if err != nil {
		if rmErr := uploads.Remove(ctx, h.Files, path); rmErr != nil {
			h.Log.Warn("failed to remove orphaned blog image", zap.Error(rmErr))
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	h.Log.Info("blog post created", zap.String("blog_id", created.ID.Hex()))
	httpjson.Created(w, "blog created successfully", created)
}

// HandleGet returns one post.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	blogID, err := urlObjectID(r, "blogID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "blog.get")
	defer cancel()

	post, err := h.Blogs.GetByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, blogstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("blog not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}
	httpjson.OK(w, "blog retrieved successfully", post)
}

// HandleList returns one page of posts, newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := paging.Parse(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "blog.list")
	defer cancel()

	posts, err := h.Blogs.List(ctx, page)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if posts == nil {
		posts = []models.Blog{}
	}
	httpjson.OK(w, "blogs retrieved successfully", posts)
}

type updateBlogRequest struct {
	Title   string `json:"title"`
	Details string `json:"details"`
}

// HandleUpdate applies a partial update to a post's title and body.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	blogID, err := urlObjectID(r, "blogID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	var req updateBlogRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "blog.update")
	defer cancel()

	current, err := h.Blogs.GetByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, blogstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("blog not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	title, details := current.Title, current.Details
	if req.Title != "" {
		title = req.Title
	}
	if req.Details != "" {
		details = req.Details
	}

	if err := h.Blogs.Update(ctx, blogID, title, details); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	httpjson.OK(w, "blog updated successfully", nil)
}

// HandleUpdateImage replaces a post's header image, deleting the old
// object after the new one is saved.
func (h *Handler) HandleUpdateImage(w http.ResponseWriter, r *http.Request) {
	blogID, err := urlObjectID(r, "blogID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	image, err := uploads.FromRequest(r, uploads.BlogImage)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	defer image.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "blog.update_image")
	defer cancel()

	current, err := h.Blogs.GetByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, blogstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("blog not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	path, err := uploads.Save(ctx, h.Files, uploads.BlogImage, image)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := h.Blogs.SetImage(ctx, blogID, path); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := uploads.Remove(ctx, h.Files, current.Image); err != nil {
		h.Log.Warn("failed to remove old blog image",
			zap.String("path", current.Image),
			zap.Error(err))
	}

	httpjson.OK(w, "blog image updated successfully", map[string]string{"image": path})
}

// HandleDelete removes a post and its stored header image.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	blogID, err := urlObjectID(r, "blogID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "blog.delete")
	defer cancel()

	current, err := h.Blogs.GetByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, blogstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("blog not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	if _, err := h.Blogs.Delete(ctx, blogID); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := uploads.Remove(ctx, h.Files, current.Image); err != nil {
		h.Log.Warn("failed to remove blog image",
			zap.String("path", current.Image),
			zap.Error(err))
	}

	h.Log.Info("blog post deleted", zap.String("blog_id", blogID.Hex()))
	httpjson.OK(w, "blog deleted successfully", nil)
}
