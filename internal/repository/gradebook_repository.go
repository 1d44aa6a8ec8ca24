package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/univ-erp/registrar-api/internal/models"
)

// GradeBookRepository handles persistence of gradebooks and their components.
type GradeBookRepository struct {
	db *sqlx.DB
}

// NewGradeBookRepository constructs the repository.
func NewGradeBookRepository(db *sqlx.DB) *GradeBookRepository {
	return &GradeBookRepository{db: db}
}

// FindByEnrollment loads the gradebook and its components for an enrollment.
// Returns sql.ErrNoRows when no gradebook exists.
func (r *GradeBookRepository) FindByEnrollment(ctx context.Context, enrollmentID string) (*models.GradeBook, error) {
	const bookQuery = `SELECT enrollment_id, final_grade FROM grade_books WHERE enrollment_id = $1 LIMIT 1`
	var book models.GradeBook
	if err := r.db.GetContext(ctx, &book, bookQuery, enrollmentID); err != nil {
		return nil, err
	}

	const componentQuery = `SELECT name, score, weight FROM grade_components
        WHERE enrollment_id = $1 ORDER BY position ASC`
	if err := r.db.SelectContext(ctx, &book.Components, componentQuery, enrollmentID); err != nil {
		return nil, fmt.Errorf("load grade components: %w", err)
	}
	return &book, nil
}

// Save replaces the gradebook for an enrollment inside a single transaction:
// book upsert, component delete, component batch insert.
func (r *GradeBookRepository) Save(ctx context.Context, book *models.GradeBook) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin gradebook save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const upsertBook = `INSERT INTO grade_books (enrollment_id, final_grade)
        VALUES ($1, $2)
        ON CONFLICT (enrollment_id) DO UPDATE SET final_grade = EXCLUDED.final_grade`
	if _, err := tx.ExecContext(ctx, upsertBook, book.EnrollmentID, book.FinalGrade); err != nil {
		return fmt.Errorf("upsert gradebook: %w", err)
	}

	const deleteComponents = `DELETE FROM grade_components WHERE enrollment_id = $1`
	if _, err := tx.ExecContext(ctx, deleteComponents, book.EnrollmentID); err != nil {
		return fmt.Errorf("clear grade components: %w", err)
	}

	const insertComponent = `INSERT INTO grade_components (enrollment_id, name, score, weight, position)
        VALUES ($1, $2, $3, $4, $5)`
	for i, component := range book.Components {
		if _, err := tx.ExecContext(ctx, insertComponent, book.EnrollmentID, component.Name, component.Score, component.Weight, i); err != nil {
			return fmt.Errorf("insert grade component %q: %w", component.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit gradebook save: %w", err)
	}
	return nil
}
