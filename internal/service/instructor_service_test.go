package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univ-erp/registrar-api/internal/access"
	"github.com/univ-erp/registrar-api/internal/models"
	"github.com/univ-erp/registrar-api/internal/repository/memory"
	appErrors "github.com/univ-erp/registrar-api/pkg/errors"
)

type instructorFixture struct {
	svc   *InstructorService
	store *memory.Store
	gate  *access.Controller
}

func newInstructorFixture(t *testing.T) *instructorFixture {
	t.Helper()
	store := memory.NewStore()
	gate := access.NewController(false)
	svc := NewInstructorService(store.Sections(), store.Enrollments(), store.GradeBooks(), gate, nil)

	ctx := context.Background()
	require.NoError(t, store.SaveCourse(ctx, &models.Course{
		CourseID: "course-cs101", Code: "CS101", Title: "Intro to Programming", Credits: 4,
	}))
	deadline := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveSection(ctx, &models.Section{
		SectionID: "sec-1", CourseID: "course-cs101", InstructorID: "inst-1",
		DayOfWeek: "MON", StartTime: "09:00", EndTime: "10:30", Room: "A-101",
		Capacity: 30, Semester: 2, Year: 2026, RegistrationDeadline: deadline,
	}))
	require.NoError(t, store.SaveSection(ctx, &models.Section{
		SectionID: "sec-2", CourseID: "course-cs101", InstructorID: "inst-2",
		DayOfWeek: "WED", StartTime: "09:00", EndTime: "10:30", Room: "A-102",
		Capacity: 30, Semester: 2, Year: 2026, RegistrationDeadline: deadline,
	}))
	require.NoError(t, store.CreateEnrollment(ctx, &models.Enrollment{
		StudentID: "stu-a", SectionID: "sec-1",
	}))
	return &instructorFixture{svc: svc, store: store, gate: gate}
}

func TestListMySections(t *testing.T) {
	f := newInstructorFixture(t)

	sections, err := f.svc.ListMySections(context.Background(), "inst-1")
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "sec-1", sections[0].SectionID)
}

func TestOwnershipEnforced(t *testing.T) {
	f := newInstructorFixture(t)
	ctx := context.Background()

	_, err := f.svc.ViewSectionGrades(ctx, "inst-1", "sec-2")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Contains(t, err.Error(), "not your section")

	_, err = f.svc.ViewSectionGrades(ctx, "inst-1", "sec-unknown")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestSaveGradeComponents(t *testing.T) {
	f := newInstructorFixture(t)
	ctx := context.Background()

	err := f.svc.SaveGradeComponents(ctx, "inst-1", "sec-1", "stu-a", []models.GradeComponent{
		{Name: "Quiz", Score: 80, Weight: 0.4},
		{Name: "Final", Score: 90, Weight: 0.6},
	})
	require.NoError(t, err)

	book, err := f.store.FindGradeBook(ctx, "enroll-stu-a-sec-1")
	require.NoError(t, err)
	require.NotNil(t, book.FinalGrade)
	assert.InDelta(t, 86.0, *book.FinalGrade, 1e-9)
}

func TestSaveGradeComponentsRejectsBadWeightSum(t *testing.T) {
	f := newInstructorFixture(t)

	err := f.svc.SaveGradeComponents(context.Background(), "inst-1", "sec-1", "stu-a", []models.GradeComponent{
		{Name: "Quiz", Score: 80, Weight: 0.2},
		{Name: "Final", Score: 90, Weight: 0.2},
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidWeights))
}

func TestSaveGradeComponentsWeightTolerance(t *testing.T) {
	f := newInstructorFixture(t)

	// 0.9995 sits inside the 0.001 tolerance around 1.0.
	err := f.svc.SaveGradeComponents(context.Background(), "inst-1", "sec-1", "stu-a", []models.GradeComponent{
		{Name: "A", Score: 70, Weight: 0.3335},
		{Name: "B", Score: 80, Weight: 0.333},
		{Name: "C", Score: 90, Weight: 0.333},
	})
	require.NoError(t, err)

	err = f.svc.SaveGradeComponents(context.Background(), "inst-1", "sec-1", "stu-a", []models.GradeComponent{
		{Name: "A", Score: 70, Weight: 0.5},
		{Name: "B", Score: 80, Weight: 0.49},
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidWeights))
}

func TestSaveGradeComponentsValidation(t *testing.T) {
	f := newInstructorFixture(t)
	ctx := context.Background()

	err := f.svc.SaveGradeComponents(ctx, "inst-1", "sec-1", "stu-a", nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	err = f.svc.SaveGradeComponents(ctx, "inst-1", "sec-1", "stu-a", []models.GradeComponent{
		{Name: "Quiz", Score: 120, Weight: 1},
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	err = f.svc.SaveGradeComponents(ctx, "inst-1", "sec-1", "stu-a", []models.GradeComponent{
		{Name: "Quiz", Score: 80, Weight: 0.5},
		{Name: "quiz", Score: 90, Weight: 0.5},
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	err = f.svc.SaveGradeComponents(ctx, "inst-1", "sec-1", "stu-a", []models.GradeComponent{
		{Name: "Quiz", Score: 80, Weight: 0},
		{Name: "Final", Score: 90, Weight: 1},
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidWeights))
}

func TestSaveGradeComponentsUnenrolledStudent(t *testing.T) {
	f := newInstructorFixture(t)

	err := f.svc.SaveGradeComponents(context.Background(), "inst-1", "sec-1", "stu-ghost", []models.GradeComponent{
		{Name: "Quiz", Score: 80, Weight: 1},
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestSaveGradeComponentsWithFinalSkipsWeightCheck(t *testing.T) {
	f := newInstructorFixture(t)
	ctx := context.Background()

	// Weights that would fail the strict path are accepted here.
	err := f.svc.SaveGradeComponentsWithFinal(ctx, "inst-1", "sec-1", "stu-a", []models.GradeComponent{
		{Name: "Quiz", Score: 80, Weight: 0.2},
		{Name: "Final", Score: 90, Weight: 0.2},
	}, 75.5)
	require.NoError(t, err)

	book, err := f.store.FindGradeBook(ctx, "enroll-stu-a-sec-1")
	require.NoError(t, err)
	require.NotNil(t, book.FinalGrade)
	assert.InDelta(t, 75.5, *book.FinalGrade, 1e-9)

	// Scores are still range checked.
	err = f.svc.SaveGradeComponentsWithFinal(ctx, "inst-1", "sec-1", "stu-a", []models.GradeComponent{
		{Name: "Quiz", Score: -5, Weight: 0.2},
	}, 50)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestRecordScoresAndComputeFinals(t *testing.T) {
	f := newInstructorFixture(t)
	ctx := context.Background()

	err := f.svc.RecordScores(ctx, "inst-1", "sec-1", "stu-a", map[string]float64{
		"Quiz":  80,
		"Final": 90,
	})
	require.NoError(t, err)

	book, err := f.store.FindGradeBook(ctx, "enroll-stu-a-sec-1")
	require.NoError(t, err)
	require.Len(t, book.Components, 2)
	assert.Nil(t, book.FinalGrade)
	for _, component := range book.Components {
		assert.Zero(t, component.Weight)
	}

	err = f.svc.ComputeFinalGrades(ctx, "inst-1", "sec-1", map[string]float64{
		"Quiz":  0.4,
		"Final": 0.6,
	})
	require.NoError(t, err)

	book, err = f.store.FindGradeBook(ctx, "enroll-stu-a-sec-1")
	require.NoError(t, err)
	require.NotNil(t, book.FinalGrade)
	assert.InDelta(t, 86.0, *book.FinalGrade, 1e-9)
}

func TestRecordScoresValidation(t *testing.T) {
	f := newInstructorFixture(t)
	ctx := context.Background()

	err := f.svc.RecordScores(ctx, "inst-1", "sec-1", "stu-a", nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	err = f.svc.RecordScores(ctx, "inst-1", "sec-1", "stu-a", map[string]float64{"Quiz": 101})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestInstructorWritesBlockedDuringMaintenance(t *testing.T) {
	f := newInstructorFixture(t)
	f.gate.SetMaintenanceMode(true)
	ctx := context.Background()

	err := f.svc.SaveGradeComponents(ctx, "inst-1", "sec-1", "stu-a", []models.GradeComponent{
		{Name: "Quiz", Score: 80, Weight: 1},
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrMaintenance))

	err = f.svc.RecordScores(ctx, "inst-1", "sec-1", "stu-a", map[string]float64{"Quiz": 80})
	assert.True(t, appErrors.Is(err, appErrors.ErrMaintenance))

	err = f.svc.ComputeFinalGrades(ctx, "inst-1", "sec-1", nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrMaintenance))

	// Reads stay open.
	_, err = f.svc.ViewSectionGrades(ctx, "inst-1", "sec-1")
	assert.NoError(t, err)
}
