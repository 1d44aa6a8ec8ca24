package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/univ-erp/registrar-api/internal/access"
	"github.com/univ-erp/registrar-api/internal/models"
	"github.com/univ-erp/registrar-api/internal/repository/memory"
	appErrors "github.com/univ-erp/registrar-api/pkg/errors"
)

type adminFixture struct {
	svc   *AdminService
	store *memory.Store
	gate  *access.Controller
	clock *time.Time
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	store := memory.NewStore()
	gate := access.NewController(false)
	svc := NewAdminService(
		store.Auth(),
		store.Profiles(),
		store.Courses(),
		store.Sections(),
		store.Enrollments(),
		nil,
		gate,
		nil,
		nil,
		bcrypt.MinCost,
	)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	clock := &now
	svc.now = func() time.Time { return *clock }
	return &adminFixture{svc: svc, store: store, gate: gate, clock: clock}
}

func (f *adminFixture) seedInstructor(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.store.SaveInstructor(context.Background(), &models.Instructor{
		UserID: id, Department: "Computer Science", Title: "Assistant Professor",
	}))
}

func TestAddUserCreatesProfiles(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	info, err := f.svc.AddUser(ctx, models.CreateUserRequest{
		Username: "newstudent", Password: "password1", Role: "student",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, info.Role)

	student, err := f.store.FindStudent(ctx, info.UserID)
	require.NoError(t, err)
	assert.Equal(t, "NEWSTUDENT-ROLL", student.RollNumber)
	assert.Equal(t, "B.Tech CS", student.Program)
	assert.Equal(t, 1, student.Year)

	info, err = f.svc.AddUser(ctx, models.CreateUserRequest{
		Username: "newprof", Password: "password1", Role: "INSTRUCTOR",
	})
	require.NoError(t, err)

	instructor, err := f.store.FindInstructor(ctx, info.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Computer Science", instructor.Department)
	assert.Equal(t, "Assistant Professor", instructor.Title)
}

func TestAddUserDuplicateUsername(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddUser(ctx, models.CreateUserRequest{
		Username: "Morgan", Password: "password1", Role: "STUDENT",
	})
	require.NoError(t, err)

	// Case-insensitive match.
	_, err = f.svc.AddUser(ctx, models.CreateUserRequest{
		Username: "morgan", Password: "password1", Role: "STUDENT",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestAddUserInvalidRole(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.svc.AddUser(context.Background(), models.CreateUserRequest{
		Username: "weirdo", Password: "password1", Role: "WIZARD",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCourseLifecycle(t *testing.T) {
	f := newAdminFixture(t)
	f.seedInstructor(t, "inst-1")
	ctx := context.Background()

	course, err := f.svc.AddCourse(ctx, models.CreateCourseRequest{
		CourseID: "course-cs101", Code: "CS101", Title: "Intro to Programming", Credits: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "CS101", course.Code)

	_, err = f.svc.AddCourse(ctx, models.CreateCourseRequest{
		CourseID: "course-cs101", Code: "CS101", Title: "Intro again", Credits: 4,
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))

	_, err = f.svc.AddSection(ctx, models.CreateSectionRequest{
		SectionID: "sec-1", CourseID: "course-cs101", InstructorID: "inst-1",
		DayOfWeek: "mon", StartTime: "09:00", EndTime: "10:30", Room: "A-101",
		Capacity: 1, Semester: 2, Year: 2026, RegistrationDeadline: "2026-03-09",
	})
	require.NoError(t, err)

	// Course removal is blocked while the section exists.
	err = f.svc.RemoveCourse(ctx, "course-cs101")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Contains(t, err.Error(), "1 dependent sections")

	require.NoError(t, f.svc.RemoveSection(ctx, "sec-1"))
	require.NoError(t, f.svc.RemoveCourse(ctx, "course-cs101"))

	err = f.svc.RemoveCourse(ctx, "course-cs101")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAddSectionValidation(t *testing.T) {
	f := newAdminFixture(t)
	f.seedInstructor(t, "inst-1")
	ctx := context.Background()

	_, err := f.svc.AddCourse(ctx, models.CreateCourseRequest{
		CourseID: "course-cs101", Code: "CS101", Title: "Intro to Programming", Credits: 4,
	})
	require.NoError(t, err)

	_, err = f.svc.AddSection(ctx, models.CreateSectionRequest{
		SectionID: "sec-bad", CourseID: "course-cs101", InstructorID: "inst-1",
		DayOfWeek: "MON", StartTime: "09:00", EndTime: "10:30", Room: "A-101",
		Capacity: -3, Semester: 2, Year: 2026, RegistrationDeadline: "2026-03-09",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.AddSection(ctx, models.CreateSectionRequest{
		SectionID: "sec-bad", CourseID: "course-cs101", InstructorID: "inst-1",
		DayOfWeek: "MON", StartTime: "11:00", EndTime: "10:30", Room: "A-101",
		Capacity: 20, Semester: 2, Year: 2026, RegistrationDeadline: "2026-03-09",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	valid := models.CreateSectionRequest{
		SectionID: "sec-1", CourseID: "course-cs101", InstructorID: "inst-1",
		DayOfWeek: "MON", StartTime: "09:00", EndTime: "10:30", Room: "A-101",
		Capacity: 20, Semester: 2, Year: 2026, RegistrationDeadline: "2026-03-09",
	}
	_, err = f.svc.AddSection(ctx, valid)
	require.NoError(t, err)

	_, err = f.svc.AddSection(ctx, valid)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestRemoveSectionWithEnrollments(t *testing.T) {
	f := newAdminFixture(t)
	f.seedInstructor(t, "inst-1")
	ctx := context.Background()

	_, err := f.svc.AddCourse(ctx, models.CreateCourseRequest{
		CourseID: "course-cs101", Code: "CS101", Title: "Intro to Programming", Credits: 4,
	})
	require.NoError(t, err)
	_, err = f.svc.AddSection(ctx, models.CreateSectionRequest{
		SectionID: "sec-1", CourseID: "course-cs101", InstructorID: "inst-1",
		DayOfWeek: "MON", StartTime: "09:00", EndTime: "10:30", Room: "A-101",
		Capacity: 20, Semester: 2, Year: 2026, RegistrationDeadline: "2026-03-09",
	})
	require.NoError(t, err)

	require.NoError(t, f.store.CreateEnrollment(ctx, &models.Enrollment{
		StudentID: "stu-a", SectionID: "sec-1",
	}))

	err = f.svc.RemoveSection(ctx, "sec-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Contains(t, err.Error(), "1 dependent enrollments")
}

func TestAssignInstructor(t *testing.T) {
	f := newAdminFixture(t)
	f.seedInstructor(t, "inst-1")
	f.seedInstructor(t, "inst-2")
	ctx := context.Background()

	_, err := f.svc.AddCourse(ctx, models.CreateCourseRequest{
		CourseID: "course-cs101", Code: "CS101", Title: "Intro to Programming", Credits: 4,
	})
	require.NoError(t, err)
	_, err = f.svc.AddSection(ctx, models.CreateSectionRequest{
		SectionID: "sec-1", CourseID: "course-cs101", InstructorID: "inst-1",
		DayOfWeek: "MON", StartTime: "09:00", EndTime: "10:30", Room: "A-101",
		Capacity: 20, Semester: 2, Year: 2026, RegistrationDeadline: "2026-03-09",
	})
	require.NoError(t, err)

	section, err := f.svc.AssignInstructor(ctx, "sec-1", "inst-2")
	require.NoError(t, err)
	assert.Equal(t, "inst-2", section.InstructorID)

	_, err = f.svc.AssignInstructor(ctx, "sec-1", "inst-ghost")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestManualLockAndUnlock(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	info, err := f.svc.AddUser(ctx, models.CreateUserRequest{
		Username: "lockme", Password: "password1", Role: "STUDENT",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.LockUser(ctx, "lockme", 30))

	record, err := f.store.FindByUserID(ctx, info.UserID)
	require.NoError(t, err)
	require.NotNil(t, record.LockoutUntil)
	assert.Equal(t, f.clock.UTC().Add(30*time.Minute), record.LockoutUntil.UTC())
	assert.Zero(t, record.FailedAttempts)

	// A manually locked account cannot log in even with the right password.
	authSvc := NewAuthService(f.store.Auth(), nil, nil, AuthServiceConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: 15 * time.Minute,
		BcryptCost:        bcrypt.MinCost,
	})
	authSvc.now = func() time.Time { return *f.clock }
	_, err = authSvc.Login(ctx, models.LoginRequest{Username: "lockme", Password: "password1"})
	assert.True(t, appErrors.Is(err, appErrors.ErrAccountLocked))

	require.NoError(t, f.svc.UnlockUser(ctx, "lockme"))
	_, err = authSvc.Login(ctx, models.LoginRequest{Username: "lockme", Password: "password1"})
	assert.NoError(t, err)

	err = f.svc.LockUser(ctx, "ghost", 5)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAddCourseCreditBounds(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddCourse(ctx, models.CreateCourseRequest{
		CourseID: "course-x", Code: "X999", Title: "Overweight", Credits: 10,
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.AddCourse(ctx, models.CreateCourseRequest{
		CourseID: "course-x", Code: "X999", Title: "Weightless", Credits: 0,
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	course, err := f.svc.AddCourse(ctx, models.CreateCourseRequest{
		CourseID: "course-x", Code: "X999", Title: "Capstone", Credits: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, course.Credits)
}

func TestAddSectionTimeParsing(t *testing.T) {
	f := newAdminFixture(t)
	f.seedInstructor(t, "inst-1")
	ctx := context.Background()

	_, err := f.svc.AddCourse(ctx, models.CreateCourseRequest{
		CourseID: "course-cs101", Code: "CS101", Title: "Intro to Programming", Credits: 4,
	})
	require.NoError(t, err)

	// Single-digit hours compare wrong as strings but are valid clock times.
	section, err := f.svc.AddSection(ctx, models.CreateSectionRequest{
		SectionID: "sec-early", CourseID: "course-cs101", InstructorID: "inst-1",
		DayOfWeek: "MON", StartTime: "9:00", EndTime: "10:30", Room: "A-101",
		Capacity: 20, Semester: 2, Year: 2026, RegistrationDeadline: "2026-03-09",
	})
	require.NoError(t, err)
	assert.Equal(t, "09:00", section.StartTime)
	assert.Equal(t, "10:30", section.EndTime)

	_, err = f.svc.AddSection(ctx, models.CreateSectionRequest{
		SectionID: "sec-bad", CourseID: "course-cs101", InstructorID: "inst-1",
		DayOfWeek: "MON", StartTime: "aaaa", EndTime: "zzzz", Room: "A-101",
		Capacity: 20, Semester: 2, Year: 2026, RegistrationDeadline: "2026-03-09",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.AddSection(ctx, models.CreateSectionRequest{
		SectionID: "sec-bad", CourseID: "course-cs101", InstructorID: "inst-1",
		DayOfWeek: "MON", StartTime: "10:30", EndTime: "10:30", Room: "A-101",
		Capacity: 20, Semester: 2, Year: 2026, RegistrationDeadline: "2026-03-09",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestSaveStudentProfile(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	info, err := f.svc.AddUser(ctx, models.CreateUserRequest{
		Username: "rohan", Password: "password1", Role: "STUDENT",
	})
	require.NoError(t, err)

	student, err := f.svc.SaveStudentProfile(ctx, info.UserID, models.StudentProfileRequest{
		RollNumber: "21CS042", Program: "B.Tech ECE", Year: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "21CS042", student.RollNumber)

	stored, err := f.store.FindStudent(ctx, info.UserID)
	require.NoError(t, err)
	assert.Equal(t, "B.Tech ECE", stored.Program)
	assert.Equal(t, 3, stored.Year)

	_, err = f.svc.SaveStudentProfile(ctx, info.UserID, models.StudentProfileRequest{
		RollNumber: "21CS042", Program: "B.Tech ECE", Year: 0,
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.SaveStudentProfile(ctx, "ghost", models.StudentProfileRequest{
		RollNumber: "21CS042", Program: "B.Tech ECE", Year: 3,
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestSaveInstructorProfile(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	info, err := f.svc.AddUser(ctx, models.CreateUserRequest{
		Username: "prof.iyer", Password: "password1", Role: "INSTRUCTOR",
	})
	require.NoError(t, err)

	instructor, err := f.svc.SaveInstructorProfile(ctx, info.UserID, models.InstructorProfileRequest{
		Department: "Mathematics", Title: "Professor",
	})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", instructor.Department)

	// Role-mismatched targets are rejected.
	studentInfo, err := f.svc.AddUser(ctx, models.CreateUserRequest{
		Username: "notstaff", Password: "password1", Role: "STUDENT",
	})
	require.NoError(t, err)
	_, err = f.svc.SaveInstructorProfile(ctx, studentInfo.UserID, models.InstructorProfileRequest{
		Department: "Mathematics", Title: "Professor",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.SaveStudentProfile(ctx, info.UserID, models.StudentProfileRequest{
		RollNumber: "X-1", Program: "B.Tech CS", Year: 1,
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
