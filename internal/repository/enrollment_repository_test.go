package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univ-erp/registrar-api/internal/models"
)

func TestEnrollmentRepositoryFindByStudentAndSection(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"enrollment_id", "student_id", "section_id", "status"}).
		AddRow("enroll-stu-a-sec-1", "stu-a", "sec-1", "ACTIVE")
	mock.ExpectQuery("SELECT (.+) FROM enrollments").
		WithArgs("stu-a", "sec-1").
		WillReturnRows(rows)

	enrollment, err := repo.FindByStudentAndSection(context.Background(), "stu-a", "sec-1")
	require.NoError(t, err)
	assert.Equal(t, "enroll-stu-a-sec-1", enrollment.EnrollmentID)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM enrollments").
		WithArgs("stu-a", "sec-9").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByStudentAndSection(context.Background(), "stu-a", "sec-9")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEnrollmentRepositoryCountBySection(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM enrollments").
		WithArgs("sec-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountBySection(context.Background(), "sec-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WithArgs("enroll-stu-a-sec-1", "stu-a", "sec-1", "ACTIVE").
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{StudentID: "stu-a", SectionID: "sec-1"}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	assert.Equal(t, "enroll-stu-a-sec-1", enrollment.EnrollmentID)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("DELETE FROM enrollments").
		WithArgs("enroll-stu-a-sec-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "enroll-stu-a-sec-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
