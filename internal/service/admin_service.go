package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/univ-erp/registrar-api/internal/access"
	"github.com/univ-erp/registrar-api/internal/models"
	appErrors "github.com/univ-erp/registrar-api/pkg/errors"
)

type adminUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.AuthRecord, error)
	FindByUserID(ctx context.Context, id string) (*models.AuthRecord, error)
	Save(ctx context.Context, record *models.AuthRecord) error
}

type profileRepository interface {
	FindStudent(ctx context.Context, userID string) (*models.Student, error)
	SaveStudent(ctx context.Context, student *models.Student) error
	FindInstructor(ctx context.Context, userID string) (*models.Instructor, error)
	SaveInstructor(ctx context.Context, instructor *models.Instructor) error
}

type courseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context) ([]models.Course, error)
	Save(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type sectionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
	List(ctx context.Context) ([]models.Section, error)
	CountByCourse(ctx context.Context, courseID string) (int, error)
	Save(ctx context.Context, section *models.Section) error
	Delete(ctx context.Context, id string) error
}

type enrollmentCounter interface {
	CountBySection(ctx context.Context, sectionID string) (int, error)
}

// AdminService covers account provisioning, catalog CRUD, and manual account
// locks. Admin writes bypass the maintenance gate.
type AdminService struct {
	users       adminUserRepository
	profiles    profileRepository
	courses     courseRepository
	sections    sectionRepository
	enrollments enrollmentCounter
	cache       catalogCache
	gate        *access.Controller
	validator   *validator.Validate
	logger      *zap.Logger
	bcryptCost  int
	now         func() time.Time
}

// NewAdminService constructs an AdminService instance.
func NewAdminService(
	users adminUserRepository,
	profiles profileRepository,
	courses courseRepository,
	sections sectionRepository,
	enrollments enrollmentCounter,
	cache catalogCache,
	gate *access.Controller,
	validate *validator.Validate,
	logger *zap.Logger,
	bcryptCost int,
) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if bcryptCost <= 0 {
		bcryptCost = 12
	}
	return &AdminService{
		users:       users,
		profiles:    profiles,
		courses:     courses,
		sections:    sections,
		enrollments: enrollments,
		cache:       cache,
		gate:        gate,
		validator:   validate,
		logger:      logger,
		bcryptCost:  bcryptCost,
		now:         time.Now,
	}
}

// AddUser creates an auth record plus a default role profile for students and
// instructors.
func (s *AdminService) AddUser(ctx context.Context, req models.CreateUserRequest) (*models.UserInfo, error) {
	if !s.gate.CanAdminWrite() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "admin access disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	role := models.UserRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown role %q", req.Role))
	}

	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	record := &models.AuthRecord{
		UserID:       uuid.NewString(),
		Username:     req.Username,
		Role:         role,
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := s.users.Save(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	switch role {
	case models.RoleStudent:
		student := &models.Student{
			UserID:     record.UserID,
			RollNumber: strings.ToUpper(req.Username) + "-ROLL",
			Program:    "B.Tech CS",
			Year:       1,
		}
		if err := s.profiles.SaveStudent(ctx, student); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student profile")
		}
	case models.RoleInstructor:
		instructor := &models.Instructor{
			UserID:     record.UserID,
			Department: "Computer Science",
			Title:      "Assistant Professor",
		}
		if err := s.profiles.SaveInstructor(ctx, instructor); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create instructor profile")
		}
	}

	s.logger.Info("user created",
		zap.String("user_id", record.UserID),
		zap.String("role", string(role)))
	return &models.UserInfo{UserID: record.UserID, Username: record.Username, Role: record.Role}, nil
}

// SaveStudentProfile upserts the academic profile for an existing student
// account, replacing the defaults AddUser seeded.
func (s *AdminService) SaveStudentProfile(ctx context.Context, userID string, req models.StudentProfileRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student profile payload")
	}

	record, err := s.users.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if record.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user is not a student")
	}

	student := &models.Student{
		UserID:     userID,
		RollNumber: req.RollNumber,
		Program:    req.Program,
		Year:       req.Year,
	}
	if err := s.profiles.SaveStudent(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student profile")
	}
	return student, nil
}

// SaveInstructorProfile upserts the academic profile for an existing
// instructor account.
func (s *AdminService) SaveInstructorProfile(ctx context.Context, userID string, req models.InstructorProfileRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor profile payload")
	}

	record, err := s.users.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if record.Role != models.RoleInstructor {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user is not an instructor")
	}

	instructor := &models.Instructor{
		UserID:     userID,
		Department: req.Department,
		Title:      req.Title,
	}
	if err := s.profiles.SaveInstructor(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save instructor profile")
	}
	return instructor, nil
}

// AddCourse creates a catalog course. Duplicate ids are rejected.
func (s *AdminService) AddCourse(ctx context.Context, req models.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	if _, err := s.courses.FindByID(ctx, req.CourseID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("course %s already exists", req.CourseID))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course")
	}

	course := &models.Course{
		CourseID: req.CourseID,
		Code:     req.Code,
		Title:    req.Title,
		Credits:  req.Credits,
	}
	if err := s.courses.Save(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save course")
	}

	if s.cache != nil {
		s.cache.Delete(ctx, catalogCacheKey)
	}
	return course, nil
}

// RemoveCourse deletes a course that no section references.
func (s *AdminService) RemoveCourse(ctx context.Context, courseID string) error {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	dependents, err := s.sections.CountByCourse(ctx, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sections")
	}
	if dependents > 0 {
		return appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("course has %d dependent sections", dependents))
	}

	if err := s.courses.Delete(ctx, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}

	if s.cache != nil {
		s.cache.Delete(ctx, catalogCacheKey)
	}
	return nil
}

// AddSection schedules a section against an existing course and instructor.
func (s *AdminService) AddSection(ctx context.Context, req models.CreateSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	if req.Capacity <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "capacity must be positive")
	}
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start time must be HH:MM")
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be HH:MM")
	}
	if !start.Before(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}

	deadline, err := parseDeadline(req.RegistrationDeadline)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid registration deadline")
	}

	if _, err := s.sections.FindByID(ctx, req.SectionID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("section %s already exists", req.SectionID))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check section")
	}

	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if _, err := s.profiles.FindInstructor(ctx, req.InstructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}

	section := &models.Section{
		SectionID:            req.SectionID,
		CourseID:             req.CourseID,
		InstructorID:         req.InstructorID,
		DayOfWeek:            strings.ToUpper(req.DayOfWeek),
		// Stored zero-padded so string ordering matches clock ordering.
		StartTime: start.Format("15:04"),
		EndTime:   end.Format("15:04"),
		Room:                 req.Room,
		Capacity:             req.Capacity,
		Semester:             req.Semester,
		Year:                 req.Year,
		RegistrationDeadline: deadline,
		WeightingRule:        req.WeightingRule,
		ComponentNames:       req.ComponentNames,
	}
	if err := s.sections.Save(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save section")
	}

	if s.cache != nil {
		s.cache.Delete(ctx, catalogCacheKey)
	}
	return section, nil
}

// RemoveSection deletes a section that has no enrollments.
func (s *AdminService) RemoveSection(ctx context.Context, sectionID string) error {
	if _, err := s.sections.FindByID(ctx, sectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	dependents, err := s.enrollments.CountBySection(ctx, sectionID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if dependents > 0 {
		return appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("section has %d dependent enrollments", dependents))
	}

	if err := s.sections.Delete(ctx, sectionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete section")
	}

	if s.cache != nil {
		s.cache.Delete(ctx, catalogCacheKey)
	}
	return nil
}

// AssignInstructor rewrites a section with a new instructor id.
func (s *AdminService) AssignInstructor(ctx context.Context, sectionID, instructorID string) (*models.Section, error) {
	section, err := s.sections.FindByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	if _, err := s.profiles.FindInstructor(ctx, instructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}

	section.InstructorID = instructorID
	if err := s.sections.Save(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save section")
	}

	if s.cache != nil {
		s.cache.Delete(ctx, catalogCacheKey)
	}
	return section, nil
}

// LockUser sets a manual lockout window. The failure counter is reset so a
// manual lock never interacts with the automatic throttling.
func (s *AdminService) LockUser(ctx context.Context, username string, minutes int) error {
	record, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	until := s.now().UTC().Add(time.Duration(minutes) * time.Minute)
	updated := record.WithFailedAttempts(0).WithLockoutUntil(&until)
	if err := s.users.Save(ctx, &updated); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock user")
	}

	s.logger.Info("user locked",
		zap.String("username", username),
		zap.Time("until", until))
	return nil
}

// UnlockUser clears any lockout window and the failure counter.
func (s *AdminService) UnlockUser(ctx context.Context, username string) error {
	record, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	updated := record.WithFailedAttempts(0).WithLockoutUntil(nil)
	if err := s.users.Save(ctx, &updated); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unlock user")
	}
	return nil
}

func parseDeadline(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	// Date-only deadlines are inclusive through the end of that day.
	return t.Add(24*time.Hour - time.Second), nil
}
