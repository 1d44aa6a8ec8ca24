package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/univ-erp/registrar-api/internal/access"
	"github.com/univ-erp/registrar-api/internal/models"
	appErrors "github.com/univ-erp/registrar-api/pkg/errors"
	"github.com/univ-erp/registrar-api/pkg/export"
)

const catalogCacheKey = "catalog:sections"

type sectionReader interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
	List(ctx context.Context) ([]models.Section, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type studentEnrollmentRepository interface {
	FindByStudentAndSection(ctx context.Context, studentID, sectionID string) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	CountBySection(ctx context.Context, sectionID string) (int, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, enrollmentID string) error
}

type gradeBookRepository interface {
	FindByEnrollment(ctx context.Context, enrollmentID string) (*models.GradeBook, error)
	Save(ctx context.Context, book *models.GradeBook) error
}

type studentProfileReader interface {
	FindStudent(ctx context.Context, userID string) (*models.Student, error)
}

type userReader interface {
	FindByUserID(ctx context.Context, id string) (*models.AuthRecord, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string)
}

// StudentService covers the catalog, registration, timetable, grade view, and
// transcript use cases for the student role.
type StudentService struct {
	sections    sectionReader
	courses     courseReader
	enrollments studentEnrollmentRepository
	gradeBooks  gradeBookRepository
	profiles    studentProfileReader
	users       userReader
	cache       catalogCache
	cacheTTL    time.Duration
	gate        *access.Controller
	metrics     *MetricsService
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
	now         func() time.Time
}

// NewStudentService constructs a StudentService instance. The cache may be
// nil; catalog reads then always hit the repositories.
func NewStudentService(
	sections sectionReader,
	courses courseReader,
	enrollments studentEnrollmentRepository,
	gradeBooks gradeBookRepository,
	profiles studentProfileReader,
	users userReader,
	cache catalogCache,
	cacheTTL time.Duration,
	gate *access.Controller,
	metrics *MetricsService,
	logger *zap.Logger,
) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &StudentService{
		sections:    sections,
		courses:     courses,
		enrollments: enrollments,
		gradeBooks:  gradeBooks,
		profiles:    profiles,
		users:       users,
		cache:       cache,
		cacheTTL:    cacheTTL,
		gate:        gate,
		metrics:     metrics,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
		now:         time.Now,
	}
}

// ViewCatalog joins sections with their course, instructor, and seat counts,
// sorted by course code. Results are cached for a short TTL since the catalog
// is the hottest read path.
func (s *StudentService) ViewCatalog(ctx context.Context) ([]models.CatalogRow, error) {
	if s.cache != nil {
		var cached []models.CatalogRow
		if err := s.cache.Get(ctx, catalogCacheKey, &cached); err == nil {
			s.metrics.RecordCacheLookup(true)
			return cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("catalog cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
	}

	start := time.Now()
	sections, err := s.sections.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}

	rows := make([]models.CatalogRow, 0, len(sections))
	for _, section := range sections {
		course, err := s.courses.FindByID(ctx, section.CourseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				s.logger.Warn("section references missing course",
					zap.String("section_id", section.SectionID),
					zap.String("course_id", section.CourseID))
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}

		instructorName := ""
		if instructor, err := s.users.FindByUserID(ctx, section.InstructorID); err == nil {
			instructorName = instructor.Username
		}

		taken, err := s.enrollments.CountBySection(ctx, section.SectionID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
		}

		rows = append(rows, models.CatalogRow{
			SectionID:   section.SectionID,
			CourseCode:  course.Code,
			CourseTitle: course.Title,
			Credits:     course.Credits,
			Instructor:  instructorName,
			Schedule:    section.Schedule(),
			Capacity:    section.Capacity,
			SeatsTaken:  taken,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].CourseCode < rows[j].CourseCode })
	s.metrics.ObserveDBQuery("catalog_rebuild", time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, catalogCacheKey, rows, s.cacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}

// RegisterSection enrolls the student in a section, enforcing the maintenance
// gate, existence, duplicate, capacity, and deadline rules in that order.
func (s *StudentService) RegisterSection(ctx context.Context, studentID, sectionID string) (*models.Enrollment, error) {
	if !s.gate.CanStudentWrite() {
		return nil, appErrors.Clone(appErrors.ErrMaintenance, "")
	}

	if _, err := s.profiles.FindStudent(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	section, err := s.sections.FindByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	if _, err := s.enrollments.FindByStudentAndSection(ctx, studentID, sectionID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already registered for this section")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}

	taken, err := s.enrollments.CountBySection(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if taken >= section.Capacity {
		return nil, appErrors.Clone(appErrors.ErrSectionFull, "")
	}

	if s.now().After(section.RegistrationDeadline) {
		return nil, appErrors.Clone(appErrors.ErrDeadlinePassed, "")
	}

	enrollment := &models.Enrollment{
		EnrollmentID: models.BuildEnrollmentID(studentID, sectionID),
		StudentID:    studentID,
		SectionID:    sectionID,
		Status:       models.EnrollmentStatusActive,
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	if s.cache != nil {
		s.cache.Delete(ctx, catalogCacheKey)
	}
	s.logger.Info("student registered",
		zap.String("student_id", studentID),
		zap.String("section_id", sectionID))
	return enrollment, nil
}

// DropSection removes the student's enrollment in a section. Drops are subject
// to the same registration deadline as sign-ups.
func (s *StudentService) DropSection(ctx context.Context, studentID, sectionID string) error {
	if !s.gate.CanStudentWrite() {
		return appErrors.Clone(appErrors.ErrMaintenance, "")
	}

	enrollment, err := s.enrollments.FindByStudentAndSection(ctx, studentID, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "no enrollment for this section")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	section, err := s.sections.FindByID(ctx, sectionID)
	if err == nil && s.now().After(section.RegistrationDeadline) {
		return appErrors.Clone(appErrors.ErrDeadlinePassed, "drop window is closed")
	}

	if err := s.enrollments.Delete(ctx, enrollment.EnrollmentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}

	if s.cache != nil {
		s.cache.Delete(ctx, catalogCacheKey)
	}
	s.logger.Info("student dropped",
		zap.String("student_id", studentID),
		zap.String("section_id", sectionID))
	return nil
}

// ViewTimetable lists the student's enrolled sections sorted by day then
// start time.
func (s *StudentService) ViewTimetable(ctx context.Context, studentID string) ([]models.TimetableEntry, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	entries := make([]models.TimetableEntry, 0, len(enrollments))
	for _, enrollment := range enrollments {
		section, err := s.sections.FindByID(ctx, enrollment.SectionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
		}
		courseCode := ""
		if course, err := s.courses.FindByID(ctx, section.CourseID); err == nil {
			courseCode = course.Code
		}
		entries = append(entries, models.TimetableEntry{
			Day:        section.DayOfWeek,
			TimeRange:  section.StartTime + "-" + section.EndTime,
			CourseCode: courseCode,
			SectionID:  section.SectionID,
			Room:       section.Room,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Day != entries[j].Day {
			return dayOrder(entries[i].Day) < dayOrder(entries[j].Day)
		}
		return entries[i].TimeRange < entries[j].TimeRange
	})
	return entries, nil
}

func dayOrder(day string) int {
	switch day {
	case "MON", "MONDAY":
		return 1
	case "TUE", "TUESDAY":
		return 2
	case "WED", "WEDNESDAY":
		return 3
	case "THU", "THURSDAY":
		return 4
	case "FRI", "FRIDAY":
		return 5
	case "SAT", "SATURDAY":
		return 6
	case "SUN", "SUNDAY":
		return 7
	default:
		return 8
	}
}

// ViewGrades returns the grade view per enrollment. Gradebooks that carry
// components but no persisted final grade get the weighted total computed and
// written back, so older rows heal on first read.
func (s *StudentService) ViewGrades(ctx context.Context, studentID string) ([]models.GradeView, error) {
	start := time.Now()
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	views := make([]models.GradeView, 0, len(enrollments))
	for _, enrollment := range enrollments {
		view := models.GradeView{SectionID: enrollment.SectionID}
		if section, err := s.sections.FindByID(ctx, enrollment.SectionID); err == nil {
			if course, err := s.courses.FindByID(ctx, section.CourseID); err == nil {
				view.CourseCode = course.Code
			}
		}

		book, err := s.gradeBooks.FindByEnrollment(ctx, enrollment.EnrollmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				views = append(views, view)
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gradebook")
		}

		if book.FinalGrade == nil && len(book.Components) > 0 {
			total := book.WeightedTotal()
			book.FinalGrade = &total
			if err := s.gradeBooks.Save(ctx, book); err != nil {
				s.logger.Warn("final grade backfill failed",
					zap.String("enrollment_id", enrollment.EnrollmentID),
					zap.Error(err))
			}
		}

		view.Components = book.Components
		view.FinalGrade = book.FinalGrade
		views = append(views, view)
	}
	s.metrics.ObserveDBQuery("student_grades", time.Since(start))
	return views, nil
}

// TranscriptCSV renders the student's grades as a transcript CSV. Sections
// without components produce a single placeholder row.
func (s *StudentService) TranscriptCSV(ctx context.Context, studentID string) ([]byte, error) {
	dataset, err := s.transcriptDataset(ctx, studentID)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript csv")
	}
	return payload, nil
}

// TranscriptPDF renders the same transcript table as a PDF document.
func (s *StudentService) TranscriptPDF(ctx context.Context, studentID string) ([]byte, error) {
	dataset, err := s.transcriptDataset(ctx, studentID)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(*dataset, "Academic Transcript")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript pdf")
	}
	return payload, nil
}

func (s *StudentService) transcriptDataset(ctx context.Context, studentID string) (*export.Dataset, error) {
	views, err := s.ViewGrades(ctx, studentID)
	if err != nil {
		return nil, err
	}

	dataset := &export.Dataset{
		Headers: []string{"Course", "Section", "Component", "Score", "Weight", "Final"},
	}
	for _, view := range views {
		final := "-"
		if view.FinalGrade != nil {
			final = formatFloat(*view.FinalGrade)
		}
		if len(view.Components) == 0 {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Course":    view.CourseCode,
				"Section":   view.SectionID,
				"Component": "-",
				"Score":     "-",
				"Weight":    "-",
				"Final":     final,
			})
			continue
		}
		for _, component := range view.Components {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Course":    view.CourseCode,
				"Section":   view.SectionID,
				"Component": component.Name,
				"Score":     formatFloat(component.Score),
				"Weight":    formatFloat(component.Weight),
				"Final":     final,
			})
		}
	}
	return dataset, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// InvalidateCatalog drops the cached catalog view. Admin course and section
// mutations call this so stale rows never outlive a change.
func (s *StudentService) InvalidateCatalog(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, catalogCacheKey)
	}
}
