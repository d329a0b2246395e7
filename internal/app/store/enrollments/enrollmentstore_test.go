package enrollmentstore_test

import (
	"testing"

	enrollmentstore "github.com/Thomas-Sedhom/LMS/internal/app/store/enrollments"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/indexes"
	"github.com/Thomas-Sedhom/LMS/internal/app/system/paging"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/Thomas-Sedhom/LMS/internal/testutil"
)

func TestStore_Create_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	instructor := fixtures.CreateInstructor(ctx, "Hany", "hany@example.com")
	course := fixtures.CreateCourse(ctx, "English A1", instructor.ID)
	student := fixtures.CreateStudent(ctx, "Sara", "sara@example.com")

	created, err := store.Create(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Active {
		t.Error("new enrollment should start inactive")
	}
	if created.Status != models.EnrollmentStatusActive {
		t.Errorf("status = %q", created.Status)
	}

	if _, err := store.Create(ctx, student.ID, course.ID); err != enrollmentstore.ErrAlreadyEnrolled {
		t.Errorf("expected ErrAlreadyEnrolled, got %v", err)
	}
}

func TestStore_Activate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	instructor := fixtures.CreateInstructor(ctx, "Hany", "hany@example.com")
	course := fixtures.CreateCourse(ctx, "English A1", instructor.ID)
	student := fixtures.CreateStudent(ctx, "Sara", "sara@example.com")
	fixtures.CreateEnrollment(ctx, student.ID, course.ID)

	if err := store.Activate(ctx, student.ID, course.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	got, err := store.GetByStudentAndCourse(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("GetByStudentAndCourse failed: %v", err)
	}
	if !got.Active {
		t.Error("enrollment should be active after activation")
	}

	if err := store.Activate(ctx, student.ID, instructor.ID); err != enrollmentstore.ErrNotFound {
		t.Errorf("expected ErrNotFound for missing enrollment, got %v", err)
	}
}

func TestStore_UpdateProgress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	instructor := fixtures.CreateInstructor(ctx, "Hany", "hany@example.com")
	course := fixtures.CreateCourse(ctx, "English A1", instructor.ID)
	student := fixtures.CreateStudent(ctx, "Sara", "sara@example.com")
	fixtures.CreateEnrollment(ctx, student.ID, course.ID)

	if err := store.UpdateProgress(ctx, student.ID, course.ID, enrollmentstore.Progress{Percent: 50, Grade: 80}); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	got, err := store.GetByStudentAndCourse(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("GetByStudentAndCourse failed: %v", err)
	}
	if got.Progress != 50 || got.Grade != 80 {
		t.Errorf("progress = %v, grade = %v", got.Progress, got.Grade)
	}
	if got.Status != models.EnrollmentStatusActive || got.CompletionDate != nil {
		t.Error("incomplete enrollment should not carry completion state")
	}

	if err := store.UpdateProgress(ctx, student.ID, course.ID, enrollmentstore.Progress{Percent: 100, Grade: 85, Completed: true}); err != nil {
		t.Fatalf("UpdateProgress to completion failed: %v", err)
	}

	got, err = store.GetByStudentAndCourse(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("GetByStudentAndCourse failed: %v", err)
	}
	if got.Status != models.EnrollmentStatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.CompletionDate == nil {
		t.Error("expected completion date to be stamped")
	}
}

func TestStore_ListByStudentWithCourses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	instructor := fixtures.CreateInstructor(ctx, "Hany", "hany@example.com")
	c1 := fixtures.CreateCourse(ctx, "English A1", instructor.ID)
	c2 := fixtures.CreateCourse(ctx, "English A2", instructor.ID)
	student := fixtures.CreateStudent(ctx, "Sara", "sara@example.com")
	fixtures.CreateEnrollment(ctx, student.ID, c1.ID)
	fixtures.CreateEnrollment(ctx, student.ID, c2.ID)

	rows, err := store.ListByStudentWithCourses(ctx, student.ID, paging.Params{Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("ListByStudentWithCourses failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for _, row := range rows {
		if row.Course.Name == "" {
			t.Error("expected joined course details")
		}
		if row.Enrollment.StudentID != student.ID {
			t.Error("row belongs to another student")
		}
	}
}
