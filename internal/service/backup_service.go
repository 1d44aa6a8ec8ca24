package service

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/univ-erp/registrar-api/internal/models"
	appErrors "github.com/univ-erp/registrar-api/pkg/errors"
)

const (
	backupHeader  = "# University ERP backup"
	coursePrefix  = "COURSE"
	sectionPrefix = "SECTION"
)

type backupCourseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	Save(ctx context.Context, course *models.Course) error
}

type backupSectionRepository interface {
	List(ctx context.Context) ([]models.Section, error)
	Save(ctx context.Context, section *models.Section) error
}

// BackupService serialises the course catalog to a line-oriented text
// snapshot and restores it. String fields are URL-safe base64 without
// padding so pipes and newlines inside values cannot corrupt the framing.
type BackupService struct {
	courses  backupCourseRepository
	sections backupSectionRepository
	logger   *zap.Logger
}

// NewBackupService constructs a BackupService instance.
func NewBackupService(courses backupCourseRepository, sections backupSectionRepository, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{courses: courses, sections: sections, logger: logger}
}

// ExportSnapshot renders every course and section as one record per line.
func (s *BackupService) ExportSnapshot(ctx context.Context) (string, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	sections, err := s.sections.List(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}

	var b strings.Builder
	b.WriteString(backupHeader)
	for _, course := range courses {
		b.WriteByte('\n')
		b.WriteString(strings.Join([]string{
			coursePrefix,
			encodeField(course.CourseID),
			encodeField(course.Code),
			encodeField(course.Title),
			strconv.Itoa(course.Credits),
		}, "|"))
	}
	for _, section := range sections {
		b.WriteByte('\n')
		b.WriteString(strings.Join([]string{
			sectionPrefix,
			encodeField(section.SectionID),
			encodeField(section.CourseID),
			encodeField(section.InstructorID),
			section.DayOfWeek,
			section.StartTime,
			section.EndTime,
			encodeField(section.Room),
			strconv.Itoa(section.Capacity),
			strconv.Itoa(section.Semester),
			strconv.Itoa(section.Year),
			section.RegistrationDeadline.Format("2006-01-02"),
		}, "|"))
	}
	return b.String(), nil
}

// ImportSnapshot parses a snapshot and upserts its courses and sections.
// Comment lines and blank lines are skipped; unrecognised records fail the
// whole restore rather than silently dropping data.
func (s *BackupService) ImportSnapshot(ctx context.Context, payload string) error {
	if strings.TrimSpace(payload) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "backup data is empty")
	}

	var courses []models.Course
	var sections []models.Section

	scanner := bufio.NewScanner(strings.NewReader(payload))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		switch {
		case parts[0] == coursePrefix && len(parts) == 5:
			course, err := parseCourseRecord(parts)
			if err != nil {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("line %d: %v", lineNo, err))
			}
			courses = append(courses, *course)
		case parts[0] == sectionPrefix && len(parts) == 12:
			section, err := parseSectionRecord(parts)
			if err != nil {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("line %d: %v", lineNo, err))
			}
			sections = append(sections, *section)
		default:
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("line %d: unrecognised record", lineNo))
		}
	}
	if err := scanner.Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read backup payload")
	}

	// Courses first so restored sections never reference a missing course.
	for i := range courses {
		if err := s.courses.Save(ctx, &courses[i]); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore course")
		}
	}
	for i := range sections {
		if err := s.sections.Save(ctx, &sections[i]); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore section")
		}
	}

	s.logger.Info("backup restored",
		zap.Int("courses", len(courses)),
		zap.Int("sections", len(sections)))
	return nil
}

func parseCourseRecord(parts []string) (*models.Course, error) {
	id, err := decodeField(parts[1])
	if err != nil {
		return nil, fmt.Errorf("bad course id: %w", err)
	}
	code, err := decodeField(parts[2])
	if err != nil {
		return nil, fmt.Errorf("bad course code: %w", err)
	}
	title, err := decodeField(parts[3])
	if err != nil {
		return nil, fmt.Errorf("bad course title: %w", err)
	}
	credits, err := strconv.Atoi(parts[4])
	if err != nil {
		return nil, fmt.Errorf("bad credits: %w", err)
	}
	return &models.Course{CourseID: id, Code: code, Title: title, Credits: credits}, nil
}

func parseSectionRecord(parts []string) (*models.Section, error) {
	id, err := decodeField(parts[1])
	if err != nil {
		return nil, fmt.Errorf("bad section id: %w", err)
	}
	courseID, err := decodeField(parts[2])
	if err != nil {
		return nil, fmt.Errorf("bad course id: %w", err)
	}
	instructorID, err := decodeField(parts[3])
	if err != nil {
		return nil, fmt.Errorf("bad instructor id: %w", err)
	}
	room, err := decodeField(parts[7])
	if err != nil {
		return nil, fmt.Errorf("bad room: %w", err)
	}
	capacity, err := strconv.Atoi(parts[8])
	if err != nil {
		return nil, fmt.Errorf("bad capacity: %w", err)
	}
	semester, err := strconv.Atoi(parts[9])
	if err != nil {
		return nil, fmt.Errorf("bad semester: %w", err)
	}
	year, err := strconv.Atoi(parts[10])
	if err != nil {
		return nil, fmt.Errorf("bad year: %w", err)
	}
	deadline, err := parseDeadline(parts[11])
	if err != nil {
		return nil, fmt.Errorf("bad registration deadline: %w", err)
	}
	return &models.Section{
		SectionID:            id,
		CourseID:             courseID,
		InstructorID:         instructorID,
		DayOfWeek:            parts[4],
		StartTime:            parts[5],
		EndTime:              parts[6],
		Room:                 room,
		Capacity:             capacity,
		Semester:             semester,
		Year:                 year,
		RegistrationDeadline: deadline,
	}, nil
}

func encodeField(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value))
}

func decodeField(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
