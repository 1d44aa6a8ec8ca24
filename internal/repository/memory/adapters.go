package memory

import (
	"context"
	"time"

	"github.com/univ-erp/registrar-api/internal/models"
)

// The view types below expose per-aggregate method sets matching the Postgres
// repositories, so a single Store can stand in for all of them in tests.

// AuthStore mirrors repository.AuthRepository.
type AuthStore struct{ s *Store }

// Auth returns the auth-facing view of the store.
func (s *Store) Auth() *AuthStore { return &AuthStore{s: s} }

func (a *AuthStore) FindByUsername(ctx context.Context, username string) (*models.AuthRecord, error) {
	return a.s.FindByUsername(ctx, username)
}

func (a *AuthStore) FindByUserID(ctx context.Context, id string) (*models.AuthRecord, error) {
	return a.s.FindByUserID(ctx, id)
}

func (a *AuthStore) Save(ctx context.Context, record *models.AuthRecord) error {
	return a.s.Save(ctx, record)
}

func (a *AuthStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return a.s.CreateRefreshToken(ctx, token)
}

func (a *AuthStore) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return a.s.FindRefreshToken(ctx, token)
}

func (a *AuthStore) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	return a.s.RevokeRefreshToken(ctx, id, revokedAt)
}

func (a *AuthStore) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	return a.s.RevokeUserRefreshTokens(ctx, userID)
}

// ProfileStore mirrors repository.ProfileRepository.
type ProfileStore struct{ s *Store }

// Profiles returns the profile-facing view of the store.
func (s *Store) Profiles() *ProfileStore { return &ProfileStore{s: s} }

func (p *ProfileStore) FindStudent(ctx context.Context, userID string) (*models.Student, error) {
	return p.s.FindStudent(ctx, userID)
}

func (p *ProfileStore) SaveStudent(ctx context.Context, student *models.Student) error {
	return p.s.SaveStudent(ctx, student)
}

func (p *ProfileStore) FindInstructor(ctx context.Context, userID string) (*models.Instructor, error) {
	return p.s.FindInstructor(ctx, userID)
}

func (p *ProfileStore) SaveInstructor(ctx context.Context, instructor *models.Instructor) error {
	return p.s.SaveInstructor(ctx, instructor)
}

// CourseStore mirrors repository.CourseRepository.
type CourseStore struct{ s *Store }

// Courses returns the course-facing view of the store.
func (s *Store) Courses() *CourseStore { return &CourseStore{s: s} }

func (c *CourseStore) FindByID(ctx context.Context, id string) (*models.Course, error) {
	return c.s.FindCourse(ctx, id)
}

func (c *CourseStore) List(ctx context.Context) ([]models.Course, error) {
	return c.s.ListCourses(ctx)
}

func (c *CourseStore) Save(ctx context.Context, course *models.Course) error {
	return c.s.SaveCourse(ctx, course)
}

func (c *CourseStore) Delete(ctx context.Context, id string) error {
	return c.s.DeleteCourse(ctx, id)
}

// SectionStore mirrors repository.SectionRepository.
type SectionStore struct{ s *Store }

// Sections returns the section-facing view of the store.
func (s *Store) Sections() *SectionStore { return &SectionStore{s: s} }

func (c *SectionStore) FindByID(ctx context.Context, id string) (*models.Section, error) {
	return c.s.FindSection(ctx, id)
}

func (c *SectionStore) List(ctx context.Context) ([]models.Section, error) {
	return c.s.ListSections(ctx)
}

func (c *SectionStore) ListByInstructor(ctx context.Context, instructorID string) ([]models.Section, error) {
	return c.s.ListSectionsByInstructor(ctx, instructorID)
}

func (c *SectionStore) CountByCourse(ctx context.Context, courseID string) (int, error) {
	return c.s.CountSectionsByCourse(ctx, courseID)
}

func (c *SectionStore) Save(ctx context.Context, section *models.Section) error {
	return c.s.SaveSection(ctx, section)
}

func (c *SectionStore) Delete(ctx context.Context, id string) error {
	return c.s.DeleteSection(ctx, id)
}

// EnrollmentStore mirrors repository.EnrollmentRepository.
type EnrollmentStore struct{ s *Store }

// Enrollments returns the enrollment-facing view of the store.
func (s *Store) Enrollments() *EnrollmentStore { return &EnrollmentStore{s: s} }

func (e *EnrollmentStore) FindByStudentAndSection(ctx context.Context, studentID, sectionID string) (*models.Enrollment, error) {
	return e.s.FindEnrollment(ctx, studentID, sectionID)
}

func (e *EnrollmentStore) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	return e.s.ListEnrollmentsByStudent(ctx, studentID)
}

func (e *EnrollmentStore) ListBySection(ctx context.Context, sectionID string) ([]models.Enrollment, error) {
	return e.s.ListEnrollmentsBySection(ctx, sectionID)
}

func (e *EnrollmentStore) CountBySection(ctx context.Context, sectionID string) (int, error) {
	return e.s.CountEnrollmentsBySection(ctx, sectionID)
}

func (e *EnrollmentStore) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return e.s.CreateEnrollment(ctx, enrollment)
}

func (e *EnrollmentStore) Delete(ctx context.Context, enrollmentID string) error {
	return e.s.DeleteEnrollment(ctx, enrollmentID)
}

// GradeBookStore mirrors repository.GradeBookRepository.
type GradeBookStore struct{ s *Store }

// GradeBooks returns the gradebook-facing view of the store.
func (s *Store) GradeBooks() *GradeBookStore { return &GradeBookStore{s: s} }

func (g *GradeBookStore) FindByEnrollment(ctx context.Context, enrollmentID string) (*models.GradeBook, error) {
	return g.s.FindGradeBook(ctx, enrollmentID)
}

func (g *GradeBookStore) Save(ctx context.Context, book *models.GradeBook) error {
	return g.s.SaveGradeBook(ctx, book)
}

// MaintenanceStore mirrors repository.MaintenanceRepository.
type MaintenanceStore struct{ s *Store }

// Maintenance returns the maintenance-facing view of the store.
func (s *Store) Maintenance() *MaintenanceStore { return &MaintenanceStore{s: s} }

func (m *MaintenanceStore) Get(ctx context.Context) (*models.MaintenanceSetting, error) {
	return m.s.GetMaintenance(ctx)
}

func (m *MaintenanceStore) Save(ctx context.Context, on bool) error {
	return m.s.SaveMaintenance(ctx, on)
}
