package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/univ-erp/registrar-api/internal/access"
	"github.com/univ-erp/registrar-api/internal/models"
	appErrors "github.com/univ-erp/registrar-api/pkg/errors"
)

// weightSumTolerance bounds the accepted drift of a component weight sum
// around 1.0.
const weightSumTolerance = 0.001

type instructorSectionReader interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]models.Section, error)
}

type instructorEnrollmentReader interface {
	FindByStudentAndSection(ctx context.Context, studentID, sectionID string) (*models.Enrollment, error)
	ListBySection(ctx context.Context, sectionID string) ([]models.Enrollment, error)
}

// InstructorService covers section listings and the grading paths for the
// instructor role. Two save paths coexist: the component path enforces the
// full weight contract, the with-final path only range-checks scores and
// trusts the caller's final grade.
type InstructorService struct {
	sections    instructorSectionReader
	enrollments instructorEnrollmentReader
	gradeBooks  gradeBookRepository
	gate        *access.Controller
	logger      *zap.Logger
}

// NewInstructorService constructs an InstructorService instance.
func NewInstructorService(
	sections instructorSectionReader,
	enrollments instructorEnrollmentReader,
	gradeBooks gradeBookRepository,
	gate *access.Controller,
	logger *zap.Logger,
) *InstructorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{
		sections:    sections,
		enrollments: enrollments,
		gradeBooks:  gradeBooks,
		gate:        gate,
		logger:      logger,
	}
}

// ListMySections returns the sections taught by the instructor.
func (s *InstructorService) ListMySections(ctx context.Context, instructorID string) ([]models.Section, error) {
	sections, err := s.sections.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, nil
}

// ensureOwnership loads the section and verifies the caller teaches it.
func (s *InstructorService) ensureOwnership(ctx context.Context, instructorID, sectionID string) (*models.Section, error) {
	section, err := s.sections.FindByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	if section.InstructorID != instructorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not your section")
	}
	return section, nil
}

// ViewSectionGrades lists the gradebooks of every enrollment in a section the
// instructor owns.
func (s *InstructorService) ViewSectionGrades(ctx context.Context, instructorID, sectionID string) ([]models.SectionGradeRow, error) {
	if _, err := s.ensureOwnership(ctx, instructorID, sectionID); err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	rows := make([]models.SectionGradeRow, 0, len(enrollments))
	for _, enrollment := range enrollments {
		row := models.SectionGradeRow{
			EnrollmentID: enrollment.EnrollmentID,
			StudentID:    enrollment.StudentID,
		}
		book, err := s.gradeBooks.FindByEnrollment(ctx, enrollment.EnrollmentID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gradebook")
			}
		} else {
			row.Components = book.Components
			row.FinalGrade = book.FinalGrade
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// RecordScores stores raw per-component scores with weight zero. The weights
// are resolved later by ComputeFinalGrades.
func (s *InstructorService) RecordScores(ctx context.Context, instructorID, sectionID, studentID string, scores map[string]float64) error {
	if !s.gate.CanInstructorWrite() {
		return appErrors.Clone(appErrors.ErrMaintenance, "")
	}
	if _, err := s.ensureOwnership(ctx, instructorID, sectionID); err != nil {
		return err
	}
	enrollment, err := s.requireEnrollment(ctx, studentID, sectionID)
	if err != nil {
		return err
	}

	if len(scores) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one score is required")
	}

	names := make([]string, 0, len(scores))
	for name := range scores {
		if strings.TrimSpace(name) == "" {
			return appErrors.Clone(appErrors.ErrValidation, "component name must not be empty")
		}
		if scores[name] < 0 || scores[name] > 100 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("score for %q must be between 0 and 100", name))
		}
		names = append(names, name)
	}
	sort.Strings(names)

	components := make([]models.GradeComponent, 0, len(names))
	for _, name := range names {
		components = append(components, models.GradeComponent{Name: name, Score: scores[name], Weight: 0})
	}

	book := &models.GradeBook{EnrollmentID: enrollment.EnrollmentID, Components: components}
	if err := s.gradeBooks.Save(ctx, book); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save scores")
	}
	return nil
}

// ComputeFinalGrades recomputes the weighted total for every enrollment in
// the section. The override map resolves weights by component name, falling
// back to each component's stored weight.
func (s *InstructorService) ComputeFinalGrades(ctx context.Context, instructorID, sectionID string, weightOverrides map[string]float64) error {
	if !s.gate.CanInstructorWrite() {
		return appErrors.Clone(appErrors.ErrMaintenance, "")
	}
	if _, err := s.ensureOwnership(ctx, instructorID, sectionID); err != nil {
		return err
	}

	enrollments, err := s.enrollments.ListBySection(ctx, sectionID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	for _, enrollment := range enrollments {
		book, err := s.gradeBooks.FindByEnrollment(ctx, enrollment.EnrollmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gradebook")
		}
		if len(book.Components) == 0 {
			continue
		}

		var total float64
		for _, component := range book.Components {
			weight := component.Weight
			if override, ok := weightOverrides[component.Name]; ok {
				weight = override
			}
			total += component.Score * weight
		}
		book.FinalGrade = &total

		if err := s.gradeBooks.Save(ctx, book); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save final grade")
		}
	}
	return nil
}

// SaveGradeComponents replaces a student's gradebook with the given weighted
// components. Weights must sum to 1.0 within tolerance; the final grade is
// derived, never supplied.
func (s *InstructorService) SaveGradeComponents(ctx context.Context, instructorID, sectionID, studentID string, components []models.GradeComponent) error {
	if !s.gate.CanInstructorWrite() {
		return appErrors.Clone(appErrors.ErrMaintenance, "")
	}
	if _, err := s.ensureOwnership(ctx, instructorID, sectionID); err != nil {
		return err
	}
	enrollment, err := s.requireEnrollment(ctx, studentID, sectionID)
	if err != nil {
		return err
	}

	if err := validateWeightedComponents(components); err != nil {
		return err
	}

	book := &models.GradeBook{EnrollmentID: enrollment.EnrollmentID, Components: components}
	total := book.WeightedTotal()
	book.FinalGrade = &total

	if err := s.gradeBooks.Save(ctx, book); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save gradebook")
	}
	s.logger.Info("gradebook saved",
		zap.String("enrollment_id", enrollment.EnrollmentID),
		zap.Float64("final_grade", total))
	return nil
}

// SaveGradeComponentsWithFinal stores components and a caller-supplied final
// grade. Only score ranges are validated on this path.
func (s *InstructorService) SaveGradeComponentsWithFinal(ctx context.Context, instructorID, sectionID, studentID string, components []models.GradeComponent, finalGrade float64) error {
	if !s.gate.CanInstructorWrite() {
		return appErrors.Clone(appErrors.ErrMaintenance, "")
	}
	if _, err := s.ensureOwnership(ctx, instructorID, sectionID); err != nil {
		return err
	}
	enrollment, err := s.requireEnrollment(ctx, studentID, sectionID)
	if err != nil {
		return err
	}

	for _, component := range components {
		if component.Score < 0 || component.Score > 100 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("score for %q must be between 0 and 100", component.Name))
		}
	}

	book := &models.GradeBook{
		EnrollmentID: enrollment.EnrollmentID,
		Components:   components,
		FinalGrade:   &finalGrade,
	}
	if err := s.gradeBooks.Save(ctx, book); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save gradebook")
	}
	return nil
}

func (s *InstructorService) requireEnrollment(ctx context.Context, studentID, sectionID string) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.FindByStudentAndSection(ctx, studentID, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student is not enrolled in this section")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

func validateWeightedComponents(components []models.GradeComponent) error {
	if len(components) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one component is required")
	}

	seen := make(map[string]struct{}, len(components))
	var weightSum float64
	for _, component := range components {
		name := strings.TrimSpace(component.Name)
		if name == "" {
			return appErrors.Clone(appErrors.ErrValidation, "component name must not be empty")
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate component name %q", component.Name))
		}
		seen[key] = struct{}{}

		if component.Score < 0 || component.Score > 100 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("score for %q must be between 0 and 100", component.Name))
		}
		if component.Weight <= 0 || component.Weight > 1 {
			return appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("weight for %q must be in (0, 1]", component.Name))
		}
		weightSum += component.Weight
	}

	if weightSum < 1-weightSumTolerance || weightSum > 1+weightSumTolerance {
		return appErrors.Clone(appErrors.ErrInvalidWeights,
			fmt.Sprintf("component weights must sum to 1.0, got %.3f", weightSum))
	}
	return nil
}
