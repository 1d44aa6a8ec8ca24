// Package memory provides an in-process implementation of the repository
// surface. It backs the service tests and local demos, and must mirror the
// Postgres repositories' contracts, including sql.ErrNoRows on misses.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/univ-erp/registrar-api/internal/models"
)

// Store keeps every aggregate in keyed maps guarded by one mutex.
type Store struct {
	mu sync.RWMutex

	authRecords   map[string]models.AuthRecord // keyed by user_id
	refreshTokens map[string]models.RefreshToken
	students      map[string]models.Student
	instructors   map[string]models.Instructor
	courses       map[string]models.Course
	sections      map[string]models.Section
	enrollments   map[string]models.Enrollment // keyed by enrollment_id
	gradeBooks    map[string]models.GradeBook  // keyed by enrollment_id
	maintenanceOn bool
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		authRecords:   make(map[string]models.AuthRecord),
		refreshTokens: make(map[string]models.RefreshToken),
		students:      make(map[string]models.Student),
		instructors:   make(map[string]models.Instructor),
		courses:       make(map[string]models.Course),
		sections:      make(map[string]models.Section),
		enrollments:   make(map[string]models.Enrollment),
		gradeBooks:    make(map[string]models.GradeBook),
	}
}

// FindByUsername returns the auth record matching the username, ignoring case.
func (s *Store) FindByUsername(ctx context.Context, username string) (*models.AuthRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.authRecords {
		if strings.EqualFold(record.Username, username) {
			copied := record
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindByUserID returns the auth record for a user ID.
func (s *Store) FindByUserID(ctx context.Context, id string) (*models.AuthRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.authRecords[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := record
	return &copied, nil
}

// Save upserts an auth record.
func (s *Store) Save(ctx context.Context, record *models.AuthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authRecords[record.UserID] = *record
	return nil
}

// CreateRefreshToken stores a refresh token keyed by its value.
func (s *Store) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens[token.Token] = *token
	return nil
}

// FindRefreshToken loads a refresh token by value.
func (s *Store) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := stored
	return &copied, nil
}

// RevokeRefreshToken marks one token revoked by its ID.
func (s *Store) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, token := range s.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
			s.refreshTokens[key] = token
		}
	}
	return nil
}

// RevokeUserRefreshTokens revokes every token belonging to a user.
func (s *Store) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for key, token := range s.refreshTokens {
		if token.UserID == userID && !token.Revoked {
			token.Revoked = true
			token.RevokedAt = &now
			s.refreshTokens[key] = token
		}
	}
	return nil
}

// FindStudent returns a student profile.
func (s *Store) FindStudent(ctx context.Context, userID string) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	student, ok := s.students[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := student
	return &copied, nil
}

// SaveStudent upserts a student profile.
func (s *Store) SaveStudent(ctx context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[student.UserID] = *student
	return nil
}

// FindInstructor returns an instructor profile.
func (s *Store) FindInstructor(ctx context.Context, userID string) (*models.Instructor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	instructor, ok := s.instructors[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := instructor
	return &copied, nil
}

// SaveInstructor upserts an instructor profile.
func (s *Store) SaveInstructor(ctx context.Context, instructor *models.Instructor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instructors[instructor.UserID] = *instructor
	return nil
}

// FindCourse returns a course by ID.
func (s *Store) FindCourse(ctx context.Context, id string) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := course
	return &copied, nil
}

// ListCourses returns all courses ordered by code.
func (s *Store) ListCourses(ctx context.Context) ([]models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	courses := make([]models.Course, 0, len(s.courses))
	for _, course := range s.courses {
		courses = append(courses, course)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

// SaveCourse upserts a course.
func (s *Store) SaveCourse(ctx context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[course.CourseID] = *course
	return nil
}

// DeleteCourse removes a course.
func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.courses, id)
	return nil
}

// FindSection returns a section by ID.
func (s *Store) FindSection(ctx context.Context, id string) (*models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	section, ok := s.sections[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := section
	return &copied, nil
}

// ListSections returns every section ordered by ID.
func (s *Store) ListSections(ctx context.Context) ([]models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sections := make([]models.Section, 0, len(s.sections))
	for _, section := range s.sections {
		sections = append(sections, section)
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].SectionID < sections[j].SectionID })
	return sections, nil
}

// ListSectionsByInstructor returns sections taught by the instructor.
func (s *Store) ListSectionsByInstructor(ctx context.Context, instructorID string) ([]models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sections []models.Section
	for _, section := range s.sections {
		if section.InstructorID == instructorID {
			sections = append(sections, section)
		}
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].SectionID < sections[j].SectionID })
	return sections, nil
}

// CountSectionsByCourse counts sections referencing a course.
func (s *Store) CountSectionsByCourse(ctx context.Context, courseID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, section := range s.sections {
		if section.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

// SaveSection upserts a section.
func (s *Store) SaveSection(ctx context.Context, section *models.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections[section.SectionID] = *section
	return nil
}

// DeleteSection removes a section.
func (s *Store) DeleteSection(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sections, id)
	return nil
}

// FindEnrollment returns the enrollment for a (student, section) pair.
func (s *Store) FindEnrollment(ctx context.Context, studentID, sectionID string) (*models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, enrollment := range s.enrollments {
		if enrollment.StudentID == studentID && enrollment.SectionID == sectionID {
			copied := enrollment
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

// ListEnrollmentsByStudent returns the student's enrollments ordered by ID.
func (s *Store) ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var enrollments []models.Enrollment
	for _, enrollment := range s.enrollments {
		if enrollment.StudentID == studentID {
			enrollments = append(enrollments, enrollment)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].EnrollmentID < enrollments[j].EnrollmentID })
	return enrollments, nil
}

// ListEnrollmentsBySection returns all enrollments for a section ordered by ID.
func (s *Store) ListEnrollmentsBySection(ctx context.Context, sectionID string) ([]models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var enrollments []models.Enrollment
	for _, enrollment := range s.enrollments {
		if enrollment.SectionID == sectionID {
			enrollments = append(enrollments, enrollment)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].EnrollmentID < enrollments[j].EnrollmentID })
	return enrollments, nil
}

// CountEnrollmentsBySection returns the seat count for a section.
func (s *Store) CountEnrollmentsBySection(ctx context.Context, sectionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, enrollment := range s.enrollments {
		if enrollment.SectionID == sectionID {
			count++
		}
	}
	return count, nil
}

// CreateEnrollment stores a new enrollment.
func (s *Store) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enrollment.EnrollmentID == "" {
		enrollment.EnrollmentID = models.BuildEnrollmentID(enrollment.StudentID, enrollment.SectionID)
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	s.enrollments[enrollment.EnrollmentID] = *enrollment
	return nil
}

// DeleteEnrollment removes an enrollment and its gradebook.
func (s *Store) DeleteEnrollment(ctx context.Context, enrollmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.enrollments, enrollmentID)
	delete(s.gradeBooks, enrollmentID)
	return nil
}

// FindGradeBook loads the gradebook for an enrollment.
func (s *Store) FindGradeBook(ctx context.Context, enrollmentID string) (*models.GradeBook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	book, ok := s.gradeBooks[enrollmentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := book
	copied.Components = append([]models.GradeComponent(nil), book.Components...)
	return &copied, nil
}

// SaveGradeBook replaces the gradebook for an enrollment.
func (s *Store) SaveGradeBook(ctx context.Context, book *models.GradeBook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *book
	copied.Components = append([]models.GradeComponent(nil), book.Components...)
	s.gradeBooks[book.EnrollmentID] = copied
	return nil
}

// GetMaintenance returns the stored maintenance setting.
func (s *Store) GetMaintenance(ctx context.Context) (*models.MaintenanceSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &models.MaintenanceSetting{MaintenanceOn: s.maintenanceOn}, nil
}

// SaveMaintenance stores the maintenance flag.
func (s *Store) SaveMaintenance(ctx context.Context, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maintenanceOn = on
	return nil
}
