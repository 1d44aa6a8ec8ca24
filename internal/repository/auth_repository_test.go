package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univ-erp/registrar-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAuthRepositoryFindByUsername(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAuthRepository(db)

	rows := sqlmock.NewRows([]string{"user_id", "username", "role", "password_hash", "active", "last_login", "failed_attempts", "lockout_until"}).
		AddRow("user-1", "alice", "STUDENT", "$2a$12$hash", true, nil, 0, nil)
	mock.ExpectQuery("SELECT (.+) FROM auth_users WHERE LOWER\\(username\\) = LOWER\\(\\$1\\)").
		WithArgs("Alice").
		WillReturnRows(rows)

	record, err := repo.FindByUsername(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, models.RoleStudent, record.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthRepositoryFindByUsernameMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAuthRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM auth_users").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAuthRepositorySaveUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAuthRepository(db)

	mock.ExpectExec("INSERT INTO auth_users").
		WithArgs("user-1", "alice", "STUDENT", "$2a$12$hash", true, nil, 2, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.AuthRecord{
		UserID:         "user-1",
		Username:       "alice",
		Role:           models.RoleStudent,
		PasswordHash:   "$2a$12$hash",
		Active:         true,
		FailedAttempts: 2,
	}
	require.NoError(t, repo.Save(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthRepositoryRefreshTokens(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAuthRepository(db)

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	token := &models.RefreshToken{
		ID:        "tok-1",
		UserID:    "user-1",
		Token:     "opaque-value",
		ExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now,
	}

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs("tok-1", "user-1", "opaque-value", token.ExpiresAt, token.CreatedAt, false, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.CreateRefreshToken(context.Background(), token))

	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at", "revoked", "revoked_at"}).
		AddRow("tok-1", "user-1", "opaque-value", token.ExpiresAt, token.CreatedAt, false, nil)
	mock.ExpectQuery("SELECT (.+) FROM refresh_tokens WHERE token = \\$1").
		WithArgs("opaque-value").
		WillReturnRows(rows)

	stored, err := repo.FindRefreshToken(context.Background(), "opaque-value")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", stored.ID)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked = TRUE").
		WithArgs("tok-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RevokeRefreshToken(context.Background(), "tok-1", now))

	assert.NoError(t, mock.ExpectationsWereMet())
}
