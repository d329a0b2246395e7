// internal/app/features/courses/handler.go
package courses

import (
	"context"
	"errors"
	"net/http"

	"github.com/Thomas-Sedhom/LMS/internal/app/clients/vdocipher"
	adminstore "github.com/Thomas-Sedhom/LMS/internal/app/store/admins"
	coursestore "github.com/Thomas-Sedhom/LMS/internal/app/store/courses"
	enrollmentstore "github.com/Thomas-Sedhom/LMS/internal/app/store/enrollments"
	instructorstore "github.com/Thomas-Sedhom/LMS/internal/app/store/instructors"
	questionstore "github.com/Thomas-Sedhom/LMS/internal/app/store/questions"
	quizstore "github.com/Thomas-Sedhom/LMS/internal/app/store/quizzes"
	videostore "github.com/Thomas-Sedhom/LMS/internal/app/store/videos"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/paging"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/txn"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/uploads"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns course, video, and question management. Every cascading
// write runs its local steps inside one Mongo transaction first and only
// then touches the video host and object storage, so a host outage can
// never leave half-deleted local state.
type Handler struct {
	DB          *mongo.Database
	Courses     *coursestore.Store
	Videos      *videostore.Store
	Questions   *questionstore.Store
	Instructors *instructorstore.Store
	Admins      *adminstore.Store
	Enrollments *enrollmentstore.Store
	Quizzes     *quizstore.Store

	Host  *vdocipher.Client
	Files storage.Store
	Log   *zap.Logger
}

func NewHandler(
	db *mongo.Database,
	host *vdocipher.Client,
	files storage.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:          db,
		Courses:     coursestore.New(db),
		Videos:      videostore.New(db),
		Questions:   questionstore.New(db),
		Instructors: instructorstore.New(db),
		Admins:      adminstore.New(db),
		Enrollments: enrollmentstore.New(db),
		Quizzes:     quizstore.New(db),
		Host:        host,
		Files:       files,
		Log:         logger,
	}
}

// courseOwner abstracts the collection holding the creator's course list,
// so instructor- and admin-created courses share one create/delete path.
type courseOwner interface {
	AddCourse(ctx context.Context, ownerID, courseID primitive.ObjectID) error
	RemoveCourse(ctx context.Context, ownerID, courseID primitive.ObjectID) error
}

func urlObjectID(r *http.Request, param string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, param))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid " + param)
	}
	return id, nil
}

func currentUserID(r *http.Request) (primitive.ObjectID, error) {
	user, ok := sysauth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, apperr.Unauthorized("not signed in")
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorized("invalid session")
	}
	return id, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Course CRUD                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleCreate creates a course owned by the signed-in instructor.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.createCourse(w, r, h.Instructors)
}

// HandleCreateByAdmin creates a course owned by the signed-in admin.
func (h *Handler) HandleCreateByAdmin(w http.ResponseWriter, r *http.Request) {
	h.createCourse(w, r, h.Admins)
}

func (h *Handler) createCourse(w http.ResponseWriter, r *http.Request, owner courseOwner) {
	ownerID, err := currentUserID(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	cover, err := uploads.FromRequest(r, uploads.CourseCover)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	defer cover.Close()

	name := r.FormValue("name")
	if name == "" {
		httpjson.Error(w, r, apperr.BadRequest("name is required"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "courses.create")
	defer cancel()

	coverPath, err := uploads.Save(ctx, h.Files, uploads.CourseCover, cover)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	var created models.Course
	err = txn.WithTransaction(ctx, h.DB.Client(), func(sc mongo.SessionContext) error {
		var txErr error
		created, txErr = h.Courses.Create(sc, models.Course{
			Name:         name,
			Description:  r.FormValue("description"),
			WhatYouLearn: r.FormValue("what_you_learn"),
			Category:     r.FormValue("category"),
			SubCategory:  r.FormValue("sub_category"),
			CoverImage:   coverPath,
			InstructorID: ownerID,
		})
		if txErr != nil {
			return txErr
		}
		return owner.AddCourse(sc, ownerID, created.ID)
	})
	if err != nil {
		// The cover was already stored; do not leave it orphaned.
		if rmErr := uploads.Remove(ctx, h.Files, coverPath); rmErr != nil {
			h.Log.Warn("failed to remove orphaned cover", zap.Error(rmErr))
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	h.Log.Info("course created",
		zap.String("course_id", created.ID.Hex()),
		zap.String("owner_id", ownerID.Hex()))
	httpjson.Created(w, "course created successfully", created)
}

// courseDetail is a course with its videos joined in playback order.
type courseDetail struct {
	models.Course
	Videos []models.Video `json:"videos"`
}

// HandleGet returns one course with its videos populated.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "courses.get")
	defer cancel()

	course, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, coursestore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("course not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	videos, err := h.Videos.ListByCourse(ctx, courseID)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	httpjson.OK(w, "course retrieved successfully", courseDetail{Course: *course, Videos: videos})
}

// HandleInstructorCourses returns the signed-in instructor's courses.
func (h *Handler) HandleInstructorCourses(w http.ResponseWriter, r *http.Request) {
	instructorID, err := currentUserID(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "courses.by_instructor")
	defer cancel()

	courses, err := h.Courses.ListByInstructor(ctx, instructorID)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	httpjson.OK(w, "courses retrieved successfully", courses)
}

// HandleList returns one page of the catalog, optionally filtered by
// category, sub-category, and name prefix.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := paging.Parse(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "courses.list")
	defer cancel()

	courses, err := h.Courses.List(ctx, coursestore.Filter{
		Category:    query.Get(r, "category"),
		SubCategory: query.Get(r, "sub_category"),
		Name:        query.Get(r, "name"),
	}, page)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	httpjson.OK(w, "courses retrieved successfully", courses)
}

type updateCourseRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	WhatYouLearn string `json:"what_you_learn"`
	Category     string `json:"category"`
	SubCategory  string `json:"sub_category"`
}

// HandleUpdate applies a partial update to a course's details.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	var req updateCourseRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "courses.update")
	defer cancel()

	current, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, coursestore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("course not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	upd := coursestore.Update{
		Name:         current.Name,
		Description:  current.Description,
		WhatYouLearn: current.WhatYouLearn,
		Category:     current.Category,
		SubCategory:  current.SubCategory,
	}
	if req.Name != "" {
		upd.Name = req.Name
	}
	if req.Description != "" {
		upd.Description = req.Description
	}
	if req.WhatYouLearn != "" {
		upd.WhatYouLearn = req.WhatYouLearn
	}
	if req.Category != "" {
		upd.Category = req.Category
	}
	if req.SubCategory != "" {
		upd.SubCategory = req.SubCategory
	}

	if err := h.Courses.UpdateDetails(ctx, courseID, upd); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	httpjson.OK(w, "course updated successfully", nil)
}

// HandleUpdateCover replaces a course's cover image, deleting the old
// object after the new one is saved.
func (h *Handler) HandleUpdateCover(w http.ResponseWriter, r *http.Request) {
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	cover, err := uploads.FromRequest(r, uploads.CourseCover)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	defer cover.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "courses.update_cover")
	defer cancel()

	course, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, coursestore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("course not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	path, err := uploads.Save(ctx, h.Files, uploads.CourseCover, cover)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := h.Courses.SetCoverImage(ctx, courseID, path); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := uploads.Remove(ctx, h.Files, course.CoverImage); err != nil {
		h.Log.Warn("failed to remove old cover",
			zap.String("path", course.CoverImage),
			zap.Error(err))
	}

	httpjson.OK(w, "cover image updated successfully", map[string]string{"cover_image": path})
}

// HandleDelete removes an instructor's course and everything under it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.deleteCourse(w, r, h.Instructors)
}

// HandleDeleteByAdmin removes an admin-owned course and everything under it.
func (h *Handler) HandleDeleteByAdmin(w http.ResponseWriter, r *http.Request) {
	h.deleteCourse(w, r, h.Admins)
}

// deleteCourse removes the course doc, its videos, and the owner's list
// entry in one transaction, then cleans up the host folder and the stored
// cover image. Host cleanup failures surface as upstream errors but the
// local delete has already committed.
func (h *Handler) deleteCourse(w http.ResponseWriter, r *http.Request, owner courseOwner) {
	ownerID, err := currentUserID(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "courses.delete")
	defer cancel()

	course, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, coursestore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("course not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	err = txn.WithTransaction(ctx, h.DB.Client(), func(sc mongo.SessionContext) error {
		if _, txErr := h.Courses.Delete(sc, courseID); txErr != nil {
			return txErr
		}
		if _, txErr := h.Videos.DeleteByCourse(sc, courseID); txErr != nil {
			return txErr
		}
		if _, txErr := h.Enrollments.DeleteByCourse(sc, courseID); txErr != nil {
			return txErr
		}
		if _, txErr := h.Quizzes.DeleteByCourse(sc, courseID); txErr != nil {
			return txErr
		}
		return owner.RemoveCourse(sc, ownerID, courseID)
	})
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	// Local state is gone; now the external cleanup. The host folder delete
	// enumerates and removes every contained asset.
	if err := h.Host.DeleteFolder(ctx, courseID.Hex()); err != nil {
		h.Log.Error("host folder cleanup failed",
			zap.String("course_id", courseID.Hex()),
			zap.Error(err))
		httpjson.Error(w, r, apperr.Upstream("video host", err), h.Log)
		return
	}
	if err := uploads.Remove(ctx, h.Files, course.CoverImage); err != nil {
		h.Log.Warn("failed to remove cover image",
			zap.String("path", course.CoverImage),
			zap.Error(err))
	}

	h.Log.Info("course deleted", zap.String("course_id", courseID.Hex()))
	httpjson.OK(w, "course deleted successfully", nil)
}
