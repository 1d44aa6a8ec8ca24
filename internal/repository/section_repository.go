package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/univ-erp/registrar-api/internal/models"
)

const sectionColumns = `section_id, course_id, instructor_id, day_of_week, start_time, end_time,
        room, capacity, semester, academic_year, registration_deadline, weighting_rule, component_names`

// SectionRepository handles persistence of course sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// FindByID returns a section by its ID.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections WHERE section_id = $1 LIMIT 1`, sectionColumns)
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// List returns every section.
func (r *SectionRepository) List(ctx context.Context) ([]models.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections ORDER BY section_id ASC`, sectionColumns)
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// ListByInstructor returns sections taught by the given instructor.
func (r *SectionRepository) ListByInstructor(ctx context.Context, instructorID string) ([]models.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections WHERE instructor_id = $1 ORDER BY section_id ASC`, sectionColumns)
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, instructorID); err != nil {
		return nil, fmt.Errorf("list instructor sections: %w", err)
	}
	return sections, nil
}

// CountByCourse returns the number of sections referencing a course.
func (r *SectionRepository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM sections WHERE course_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID); err != nil {
		return 0, fmt.Errorf("count course sections: %w", err)
	}
	return count, nil
}

// Save upserts a section keyed by section_id.
func (r *SectionRepository) Save(ctx context.Context, section *models.Section) error {
	const query = `INSERT INTO sections (section_id, course_id, instructor_id, day_of_week, start_time, end_time,
            room, capacity, semester, academic_year, registration_deadline, weighting_rule, component_names)
        VALUES (:section_id, :course_id, :instructor_id, :day_of_week, :start_time, :end_time,
            :room, :capacity, :semester, :academic_year, :registration_deadline, :weighting_rule, :component_names)
        ON CONFLICT (section_id) DO UPDATE SET
            course_id = EXCLUDED.course_id,
            instructor_id = EXCLUDED.instructor_id,
            day_of_week = EXCLUDED.day_of_week,
            start_time = EXCLUDED.start_time,
            end_time = EXCLUDED.end_time,
            room = EXCLUDED.room,
            capacity = EXCLUDED.capacity,
            semester = EXCLUDED.semester,
            academic_year = EXCLUDED.academic_year,
            registration_deadline = EXCLUDED.registration_deadline,
            weighting_rule = EXCLUDED.weighting_rule,
            component_names = EXCLUDED.component_names`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("save section: %w", err)
	}
	return nil
}

// Delete removes a section row.
func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sections WHERE section_id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}
