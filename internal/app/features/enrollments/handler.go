// internal/app/features/enrollments/handler.go
package enrollments

import (
	"errors"
	"net/http"

	codestore "github.com/Thomas-Sedhom/LMS/internal/app/store/codes"
	coursestore "github.com/Thomas-Sedhom/LMS/internal/app/store/courses"
	enrollmentstore "github.com/Thomas-Sedhom/LMS/internal/app/store/enrollments"
	quizstore "github.com/Thomas-Sedhom/LMS/internal/app/store/quizzes"
	videostore "github.com/Thomas-Sedhom/LMS/internal/app/store/videos"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/httpjson"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/inputval"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/paging"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/timeouts"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/txn"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns enrollment lifecycle: creating enrollments, activating them
// with one-shot codes, and tracking progress as students finish videos.
type Handler struct {
	DB          *mongo.Database
	Enrollments *enrollmentstore.Store
	Courses     *coursestore.Store
	Videos      *videostore.Store
	Quizzes     *quizstore.Store
	Codes       *codestore.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Enrollments: enrollmentstore.New(db),
		Courses:     coursestore.New(db),
		Videos:      videostore.New(db),
		Quizzes:     quizstore.New(db),
		Codes:       codestore.New(db),
		Log:         logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Enrollment lifecycle                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleEnroll enrolls the signed-in student in a course. The enrollment
// starts inactive until an activation code is redeemed.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	studentID, err := currentUserID(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "enrollments.enroll")
	defer cancel()

	if _, err := h.Courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, coursestore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("course not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	created, err := h.Enrollments.Create(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, enrollmentstore.ErrAlreadyEnrolled) {
			httpjson.Error(w, r, apperr.BadRequest("enrollment already exists"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	h.Log.Info("student enrolled",
		zap.String("student_id", studentID.Hex()),
		zap.String("course_id", courseID.Hex()))
	httpjson.Created(w, "enrollment created successfully", created)
}

// enrollmentDetail is an enrollment with its course summary populated.
type enrollmentDetail struct {
	models.Enrollment
	Course models.Course `json:"course"`
}

// HandleGetSelf returns the signed-in student's enrollment in a course.
func (h *Handler) HandleGetSelf(w http.ResponseWriter, r *http.Request) {
	studentID, err := currentUserID(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	h.serveEnrollment(w, r, studentID)
}

// HandleGetByStudent returns any student's enrollment in a course.
func (h *Handler) HandleGetByStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := urlObjectID(r, "studentID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	h.serveEnrollment(w, r, studentID)
}

func (h *Handler) serveEnrollment(w http.ResponseWriter, r *http.Request, studentID primitive.ObjectID) {
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "enrollments.get")
	defer cancel()

	enr, err := h.Enrollments.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, enrollmentstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("enrollment not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	course, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	httpjson.OK(w, "enrollment retrieved successfully", enrollmentDetail{
		Enrollment: *enr,
		Course:     *course,
	})
}

// HandleCoursesForSelf lists the signed-in student's enrollments with
// courses populated.
func (h *Handler) HandleCoursesForSelf(w http.ResponseWriter, r *http.Request) {
	studentID, err := currentUserID(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	h.serveCoursesForStudent(w, r, studentID)
}

// HandleCoursesForStudent lists any student's enrollments with courses
// populated.
func (h *Handler) HandleCoursesForStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := urlObjectID(r, "studentID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	h.serveCoursesForStudent(w, r, studentID)
}

func (h *Handler) serveCoursesForStudent(w http.ResponseWriter, r *http.Request, studentID primitive.ObjectID) {
	page, err := paging.Parse(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "enrollments.courses_for_student")
	defer cancel()

	list, err := h.Enrollments.ListByStudentWithCourses(ctx, studentID, page)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if list == nil {
		list = []enrollmentstore.EnrolledCourse{}
	}
	httpjson.OK(w, "enrollments retrieved successfully", list)
}

// HandleStudentsForCourse lists a course's enrollments with students
// populated.
func (h *Handler) HandleStudentsForCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	page, err := paging.Parse(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "enrollments.students_for_course")
	defer cancel()

	list, err := h.Enrollments.ListByCourseWithStudents(ctx, courseID, page)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if list == nil {
		list = []enrollmentstore.EnrolledStudent{}
	}
	httpjson.OK(w, "enrollments retrieved successfully", list)
}

// HandleListActive lists activated enrollments with both student and
// course populated.
func (h *Handler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	h.serveByActive(w, r, true)
}

// HandleListInactive lists enrollments still waiting on activation.
func (h *Handler) HandleListInactive(w http.ResponseWriter, r *http.Request) {
	h.serveByActive(w, r, false)
}

func (h *Handler) serveByActive(w http.ResponseWriter, r *http.Request, active bool) {
	page, err := paging.Parse(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "enrollments.by_active")
	defer cancel()

	list, err := h.Enrollments.ListByActive(ctx, active, page)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if list == nil {
		list = []enrollmentstore.EnrollmentDetail{}
	}
	httpjson.OK(w, "enrollments retrieved successfully", list)
}

// HandleDeleteSelf drops the signed-in student's own enrollment.
func (h *Handler) HandleDeleteSelf(w http.ResponseWriter, r *http.Request) {
	studentID, err := currentUserID(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	h.deleteEnrollment(w, r, studentID)
}

// HandleDelete drops any student's enrollment.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	studentID, err := urlObjectID(r, "studentID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	h.deleteEnrollment(w, r, studentID)
}

func (h *Handler) deleteEnrollment(w http.ResponseWriter, r *http.Request, studentID primitive.ObjectID) {
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "enrollments.delete")
	defer cancel()

	if err := h.Enrollments.Delete(ctx, studentID, courseID); err != nil {
		if errors.Is(err, enrollmentstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("enrollment not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	h.Log.Info("enrollment deleted",
		zap.String("student_id", studentID.Hex()),
		zap.String("course_id", courseID.Hex()))
	httpjson.OK(w, "enrollment deleted successfully", nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Progress                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleUpdateProgress recomputes the student's progress after finishing a
// video. Progress is the finished video's position over the course's video
// count as a percentage; reaching 100 marks the enrollment completed and
// stamps the completion date. The stored grade is refreshed from the mean
// of the student's quiz attempts in the course.
func (h *Handler) HandleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	studentID, err := currentUserID(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	videoID, err := urlObjectID(r, "videoID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "enrollments.update_progress")
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
	if video.CourseID == nil || *video.CourseID != courseID {
		httpjson.Error(w, r, apperr.BadRequest("video does not belong to this course"), h.Log)
		return
	}

	total, err := h.Videos.CountByCourse(ctx, courseID)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if total == 0 {
		httpjson.Error(w, r, apperr.BadRequest("course has no videos"), h.Log)
		return
	}

	grade, err := h.Quizzes.AverageGrade(ctx, studentID, courseID)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	percent := float64(video.Index) / float64(total) * 100
	if percent > 100 {
		percent = 100
	}
	progress := enrollmentstore.Progress{
		Percent:   percent,
		Grade:     grade,
		Completed: percent >= 100,
	}

	if err := h.Enrollments.UpdateProgress(ctx, studentID, courseID, progress); err != nil {
		if errors.Is(err, enrollmentstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("enrollment not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	httpjson.OK(w, "progress updated successfully", map[string]any{
		"progress":  progress.Percent,
		"grade":     progress.Grade,
		"completed": progress.Completed,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Activation codes                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleActivate flips an enrollment active without a code. Used by staff
// when a payment is handled out of band.
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	studentID, err := urlObjectID(r, "studentID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "enrollments.activate")
	defer cancel()

	if err := h.Enrollments.Activate(ctx, studentID, courseID); err != nil {
		if errors.Is(err, enrollmentstore.ErrNotFound) {
			httpjson.Error(w, r, apperr.NotFound("enrollment not found"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	h.Log.Info("enrollment activated",
		zap.String("student_id", studentID.Hex()),
		zap.String("course_id", courseID.Hex()))
	httpjson.OK(w, "enrollment activated successfully", nil)
}

type createCodeRequest struct {
	Code string `json:"code" validate:"required,min=4"`
}

// HandleCreateCode registers a new one-time activation code.
func (h *Handler) HandleCreateCode(w http.ResponseWriter, r *http.Request) {
	var req createCodeRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := inputval.Validate(req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "enrollments.create_code")
	defer cancel()

	created, err := h.Codes.Create(ctx, req.Code)
	if err != nil {
		if errors.Is(err, codestore.ErrDuplicateCode) {
			httpjson.Error(w, r, apperr.BadRequest("activation code already exists"), h.Log)
			return
		}
		httpjson.Error(w, r, err, h.Log)
		return
	}

	httpjson.Created(w, "code created successfully", created)
}

// HandleListCodes returns one page of outstanding activation codes.
func (h *Handler) HandleListCodes(w http.ResponseWriter, r *http.Request) {
	page, err := paging.Parse(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "enrollments.list_codes")
	defer cancel()

	codes, err := h.Codes.List(ctx, page)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if codes == nil {
		codes = []models.Code{}
	}
	httpjson.OK(w, "codes retrieved successfully", codes)
}

type validateCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// HandleValidateCode redeems an activation code against the signed-in
// student's enrollment. The redemption and the activation run in one
// transaction; a code can never be burned without the enrollment flipping
// active, and vice versa.
func (h *Handler) HandleValidateCode(w http.ResponseWriter, r *http.Request) {
	studentID, err := currentUserID(r)
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	courseID, err := urlObjectID(r, "courseID")
	if err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	var req validateCodeRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}
	if err := inputval.Validate(req); err != nil {
		httpjson.Error(w, r, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "enrollments.validate_code")
	defer cancel()

	err = txn.WithTransaction(ctx, h.DB.Client(), func(sc mongo.SessionContext) error {
		if _, txErr := h.Codes.Redeem(sc, req.Code); txErr != nil {
			return txErr
		}
		return h.Enrollments.Activate(sc, studentID, courseID)
	})
	if err != nil {
		switch {
		case errors.Is(err, codestore.ErrNotFound):
			httpjson.Error(w, r, apperr.BadRequest("code not found"), h.Log)
		case errors.Is(err, enrollmentstore.ErrNotFound):
			httpjson.Error(w, r, apperr.NotFound("enrollment not found"), h.Log)
		default:
			httpjson.Error(w, r, err, h.Log)
		}
		return
	}

	h.Log.Info("activation code redeemed",
		zap.String("student_id", studentID.Hex()),
		zap.String("course_id", courseID.Hex()))
	httpjson.OK(w, "enrollment activated successfully", nil)
}
