package service

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univ-erp/registrar-api/internal/access"
	"github.com/univ-erp/registrar-api/internal/models"
	"github.com/univ-erp/registrar-api/internal/repository/memory"
	appErrors "github.com/univ-erp/registrar-api/pkg/errors"
)

type studentFixture struct {
	svc   *StudentService
	store *memory.Store
	gate  *access.Controller
	clock *time.Time
}

func newStudentFixture(t *testing.T) *studentFixture {
	t.Helper()
	store := memory.NewStore()
	gate := access.NewController(false)
	svc := NewStudentService(
		store.Sections(),
		store.Courses(),
		store.Enrollments(),
		store.GradeBooks(),
		store.Profiles(),
		store.Auth(),
		nil,
		time.Minute,
		gate,
		nil,
		nil,
	)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	clock := &now
	svc.now = func() time.Time { return *clock }
	return &studentFixture{svc: svc, store: store, gate: gate, clock: clock}
}

func (f *studentFixture) seedCatalog(t *testing.T, capacity int, deadline time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, &models.AuthRecord{
		UserID: "inst-1", Username: "prof.rao", Role: models.RoleInstructor, Active: true,
	}))
	require.NoError(t, f.store.SaveInstructor(ctx, &models.Instructor{
		UserID: "inst-1", Department: "Computer Science", Title: "Assistant Professor",
	}))
	require.NoError(t, f.store.SaveCourse(ctx, &models.Course{
		CourseID: "course-cs101", Code: "CS101", Title: "Intro to Programming", Credits: 4,
	}))
	require.NoError(t, f.store.SaveSection(ctx, &models.Section{
		SectionID: "sec-1", CourseID: "course-cs101", InstructorID: "inst-1",
		DayOfWeek: "MON", StartTime: "09:00", EndTime: "10:30", Room: "A-101",
		Capacity: capacity, Semester: 2, Year: 2026, RegistrationDeadline: deadline,
	}))
}

func (f *studentFixture) seedStudent(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.store.SaveStudent(context.Background(), &models.Student{
		UserID: id, RollNumber: strings.ToUpper(id) + "-ROLL", Program: "B.Tech CS", Year: 1,
	}))
}

func TestRegisterSectionSuccess(t *testing.T) {
	f := newStudentFixture(t)
	f.seedCatalog(t, 10, f.clock.Add(7*24*time.Hour))
	f.seedStudent(t, "stu-a")

	enrollment, err := f.svc.RegisterSection(context.Background(), "stu-a", "sec-1")
	require.NoError(t, err)
	assert.Equal(t, "enroll-stu-a-sec-1", enrollment.EnrollmentID)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
}

func TestRegisterSectionCapacity(t *testing.T) {
	f := newStudentFixture(t)
	f.seedCatalog(t, 1, f.clock.Add(7*24*time.Hour))
	f.seedStudent(t, "stu-a")
	f.seedStudent(t, "stu-b")

	_, err := f.svc.RegisterSection(context.Background(), "stu-a", "sec-1")
	require.NoError(t, err)

	_, err = f.svc.RegisterSection(context.Background(), "stu-b", "sec-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrSectionFull))

	count, err := f.store.CountEnrollmentsBySection(context.Background(), "sec-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRegisterSectionDeadlinePassed(t *testing.T) {
	f := newStudentFixture(t)
	// Plenty of free seats; the deadline alone must reject.
	f.seedCatalog(t, 100, f.clock.Add(-time.Hour))
	f.seedStudent(t, "stu-a")

	_, err := f.svc.RegisterSection(context.Background(), "stu-a", "sec-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrDeadlinePassed))
}

func TestRegisterSectionDuplicate(t *testing.T) {
	f := newStudentFixture(t)
	f.seedCatalog(t, 10, f.clock.Add(7*24*time.Hour))
	f.seedStudent(t, "stu-a")

	_, err := f.svc.RegisterSection(context.Background(), "stu-a", "sec-1")
	require.NoError(t, err)

	_, err = f.svc.RegisterSection(context.Background(), "stu-a", "sec-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestRegisterSectionMaintenance(t *testing.T) {
	f := newStudentFixture(t)
	f.seedCatalog(t, 10, f.clock.Add(7*24*time.Hour))
	f.seedStudent(t, "stu-a")
	f.gate.SetMaintenanceMode(true)

	_, err := f.svc.RegisterSection(context.Background(), "stu-a", "sec-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrMaintenance))
}

func TestRegisterSectionMissingEntities(t *testing.T) {
	f := newStudentFixture(t)
	f.seedCatalog(t, 10, f.clock.Add(7*24*time.Hour))

	_, err := f.svc.RegisterSection(context.Background(), "nobody", "sec-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	f.seedStudent(t, "stu-a")
	_, err = f.svc.RegisterSection(context.Background(), "stu-a", "sec-unknown")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestDropSection(t *testing.T) {
	f := newStudentFixture(t)
	f.seedCatalog(t, 10, f.clock.Add(7*24*time.Hour))
	f.seedStudent(t, "stu-a")

	_, err := f.svc.RegisterSection(context.Background(), "stu-a", "sec-1")
	require.NoError(t, err)

	require.NoError(t, f.svc.DropSection(context.Background(), "stu-a", "sec-1"))

	err = f.svc.DropSection(context.Background(), "stu-a", "sec-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestDropSectionAfterDeadline(t *testing.T) {
	f := newStudentFixture(t)
	f.seedCatalog(t, 10, f.clock.Add(time.Hour))
	f.seedStudent(t, "stu-a")

	_, err := f.svc.RegisterSection(context.Background(), "stu-a", "sec-1")
	require.NoError(t, err)

	*f.clock = f.clock.Add(2 * time.Hour)
	err = f.svc.DropSection(context.Background(), "stu-a", "sec-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrDeadlinePassed))
}

func TestViewCatalog(t *testing.T) {
	f := newStudentFixture(t)
	f.seedCatalog(t, 30, f.clock.Add(7*24*time.Hour))
	f.seedStudent(t, "stu-a")

	ctx := context.Background()
	require.NoError(t, f.store.SaveCourse(ctx, &models.Course{
		CourseID: "course-am201", Code: "AM201", Title: "Applied Math", Credits: 3,
	}))
	require.NoError(t, f.store.SaveSection(ctx, &models.Section{
		SectionID: "sec-2", CourseID: "course-am201", InstructorID: "inst-1",
		DayOfWeek: "TUE", StartTime: "11:00", EndTime: "12:30", Room: "B-204",
		Capacity: 20, Semester: 2, Year: 2026, RegistrationDeadline: f.clock.Add(7 * 24 * time.Hour),
	}))

	_, err := f.svc.RegisterSection(ctx, "stu-a", "sec-1")
	require.NoError(t, err)

	rows, err := f.svc.ViewCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Sorted by course code ascending.
	assert.Equal(t, "AM201", rows[0].CourseCode)
	assert.Equal(t, "CS101", rows[1].CourseCode)
	assert.Equal(t, 1, rows[1].SeatsTaken)
	assert.Equal(t, "prof.rao", rows[1].Instructor)
	assert.Equal(t, "MON 09:00-10:30", rows[1].Schedule)
}

func TestViewTimetableSorted(t *testing.T) {
	f := newStudentFixture(t)
	f.seedCatalog(t, 30, f.clock.Add(7*24*time.Hour))
	f.seedStudent(t, "stu-a")

	ctx := context.Background()
	require.NoError(t, f.store.SaveSection(ctx, &models.Section{
		SectionID: "sec-2", CourseID: "course-cs101", InstructorID: "inst-1",
		DayOfWeek: "MON", StartTime: "07:30", EndTime: "08:30", Room: "C-3",
		Capacity: 20, Semester: 2, Year: 2026, RegistrationDeadline: f.clock.Add(7 * 24 * time.Hour),
	}))

	_, err := f.svc.RegisterSection(ctx, "stu-a", "sec-1")
	require.NoError(t, err)
	_, err = f.svc.RegisterSection(ctx, "stu-a", "sec-2")
	require.NoError(t, err)

	entries, err := f.svc.ViewTimetable(ctx, "stu-a")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "07:30-08:30", entries[0].TimeRange)
	assert.Equal(t, "09:00-10:30", entries[1].TimeRange)
}

func TestViewGradesBackfillsFinal(t *testing.T) {
	f := newStudentFixture(t)
	f.seedCatalog(t, 10, f.clock.Add(7*24*time.Hour))
	f.seedStudent(t, "stu-a")

	ctx := context.Background()
	_, err := f.svc.RegisterSection(ctx, "stu-a", "sec-1")
	require.NoError(t, err)

	require.NoError(t, f.store.SaveGradeBook(ctx, &models.GradeBook{
		EnrollmentID: "enroll-stu-a-sec-1",
		Components: []models.GradeComponent{
			{Name: "Quiz", Score: 80, Weight: 0.4},
			{Name: "Final", Score: 90, Weight: 0.6},
		},
	}))

	views, err := f.svc.ViewGrades(ctx, "stu-a")
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].FinalGrade)
	assert.InDelta(t, 86.0, *views[0].FinalGrade, 1e-9)

	// The backfilled value was persisted.
	book, err := f.store.FindGradeBook(ctx, "enroll-stu-a-sec-1")
	require.NoError(t, err)
	require.NotNil(t, book.FinalGrade)
	assert.InDelta(t, 86.0, *book.FinalGrade, 1e-9)
}

func TestTranscriptCSV(t *testing.T) {
	f := newStudentFixture(t)
	f.seedCatalog(t, 10, f.clock.Add(7*24*time.Hour))
	f.seedStudent(t, "stu-a")

	ctx := context.Background()
	_, err := f.svc.RegisterSection(ctx, "stu-a", "sec-1")
	require.NoError(t, err)

	// No components yet: a single placeholder row.
	payload, err := f.svc.TranscriptCSV(ctx, "stu-a")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Course,Section,Component,Score,Weight,Final", lines[0])
	assert.Equal(t, "CS101,sec-1,-,-,-,-", lines[1])

	require.NoError(t, f.store.SaveGradeBook(ctx, &models.GradeBook{
		EnrollmentID: "enroll-stu-a-sec-1",
		Components: []models.GradeComponent{
			{Name: "Quiz", Score: 80, Weight: 0.4},
			{Name: "Final", Score: 90, Weight: 0.6},
		},
	}))

	payload, err = f.svc.TranscriptCSV(ctx, "stu-a")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "CS101,sec-1,Quiz,80,0.4,86", lines[1])
	assert.Equal(t, "CS101,sec-1,Final,90,0.6,86", lines[2])
}

func TestTranscriptPDF(t *testing.T) {
	f := newStudentFixture(t)
	f.seedCatalog(t, 10, f.clock.Add(7*24*time.Hour))
	f.seedStudent(t, "stu-a")

	ctx := context.Background()
	_, err := f.svc.RegisterSection(ctx, "stu-a", "sec-1")
	require.NoError(t, err)

	payload, err := f.svc.TranscriptPDF(ctx, "stu-a")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

type fakeCatalogCache struct {
	entries map[string][]models.CatalogRow
}

func newFakeCatalogCache() *fakeCatalogCache {
	return &fakeCatalogCache{entries: map[string][]models.CatalogRow{}}
}

func (c *fakeCatalogCache) Get(_ context.Context, key string, dest interface{}) error {
	rows, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*[]models.CatalogRow) = rows
	return nil
}

func (c *fakeCatalogCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.entries[key] = value.([]models.CatalogRow)
	return nil
}

func (c *fakeCatalogCache) Delete(_ context.Context, key string) {
	delete(c.entries, key)
}

func TestViewCatalogRecordsCacheMetrics(t *testing.T) {
	f := newStudentFixture(t)
	f.seedCatalog(t, 10, f.clock.Add(7*24*time.Hour))

	metrics := NewMetricsService()
	svc := NewStudentService(
		f.store.Sections(),
		f.store.Courses(),
		f.store.Enrollments(),
		f.store.GradeBooks(),
		f.store.Profiles(),
		f.store.Auth(),
		newFakeCatalogCache(),
		time.Minute,
		f.gate,
		metrics,
		nil,
	)

	ctx := context.Background()
	_, err := svc.ViewCatalog(ctx)
	require.NoError(t, err)
	_, err = svc.ViewCatalog(ctx)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), atomic.LoadUint64(&metrics.cacheMissCount))
	assert.Equal(t, uint64(1), atomic.LoadUint64(&metrics.cacheHitCount))
}
