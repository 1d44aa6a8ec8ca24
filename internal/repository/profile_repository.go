package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/univ-erp/registrar-api/internal/models"
)

// ProfileRepository handles student and instructor academic profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindStudent returns a student profile by user ID.
func (r *ProfileRepository) FindStudent(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT user_id, roll_number, program, year FROM students WHERE user_id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// SaveStudent upserts a student profile.
func (r *ProfileRepository) SaveStudent(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (user_id, roll_number, program, year)
        VALUES (:user_id, :roll_number, :program, :year)
        ON CONFLICT (user_id) DO UPDATE SET
            roll_number = EXCLUDED.roll_number,
            program = EXCLUDED.program,
            year = EXCLUDED.year`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("save student profile: %w", err)
	}
	return nil
}

// FindInstructor returns an instructor profile by user ID.
func (r *ProfileRepository) FindInstructor(ctx context.Context, userID string) (*models.Instructor, error) {
	const query = `SELECT user_id, department, title FROM instructors WHERE user_id = $1 LIMIT 1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, userID); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// SaveInstructor upserts an instructor profile.
func (r *ProfileRepository) SaveInstructor(ctx context.Context, instructor *models.Instructor) error {
	const query = `INSERT INTO instructors (user_id, department, title)
        VALUES (:user_id, :department, :title)
        ON CONFLICT (user_id) DO UPDATE SET
            department = EXCLUDED.department,
            title = EXCLUDED.title`
	if _, err := r.db.NamedExecContext(ctx, query, instructor); err != nil {
		return fmt.Errorf("save instructor profile: %w", err)
	}
	return nil
}
