package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/univ-erp/registrar-api/internal/models"
)

// AuthRepository handles persistence of auth records and refresh tokens.
type AuthRepository struct {
	db *sqlx.DB
}

// NewAuthRepository constructs the repository.
func NewAuthRepository(db *sqlx.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// FindByUsername returns the auth record matching the username, ignoring case.
func (r *AuthRepository) FindByUsername(ctx context.Context, username string) (*models.AuthRecord, error) {
	const query = `SELECT user_id, username, role, password_hash, active, last_login, failed_attempts, lockout_until
        FROM auth_users WHERE LOWER(username) = LOWER($1) LIMIT 1`
	var record models.AuthRecord
	if err := r.db.GetContext(ctx, &record, query, username); err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByUserID returns the auth record for a user ID.
func (r *AuthRepository) FindByUserID(ctx context.Context, id string) (*models.AuthRecord, error) {
	const query = `SELECT user_id, username, role, password_hash, active, last_login, failed_attempts, lockout_until
        FROM auth_users WHERE user_id = $1 LIMIT 1`
	var record models.AuthRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Save upserts an auth record keyed by user_id.
func (r *AuthRepository) Save(ctx context.Context, record *models.AuthRecord) error {
	const query = `INSERT INTO auth_users (user_id, username, role, password_hash, active, last_login, failed_attempts, lockout_until)
        VALUES (:user_id, :username, :role, :password_hash, :active, :last_login, :failed_attempts, :lockout_until)
        ON CONFLICT (user_id) DO UPDATE SET
            username = EXCLUDED.username,
            role = EXCLUDED.role,
            password_hash = EXCLUDED.password_hash,
            active = EXCLUDED.active,
            last_login = EXCLUDED.last_login,
            failed_attempts = EXCLUDED.failed_attempts,
            lockout_until = EXCLUDED.lockout_until`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("save auth record: %w", err)
	}
	return nil
}

// CreateRefreshToken persists a new refresh token row.
func (r *AuthRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	const query = `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked, revoked_at)
        VALUES (:id, :user_id, :token, :expires_at, :created_at, :revoked, :revoked_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken loads a refresh token by its opaque value.
func (r *AuthRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, token, expires_at, created_at, revoked, revoked_at
        FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var stored models.RefreshToken
	if err := r.db.GetContext(ctx, &stored, query, token); err != nil {
		return nil, err
	}
	return &stored, nil
}

// RevokeRefreshToken marks a single refresh token as revoked.
func (r *AuthRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeUserRefreshTokens revokes every outstanding token for a user.
func (r *AuthRepository) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = NOW() WHERE user_id = $1 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}
