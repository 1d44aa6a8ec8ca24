package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleStudent    UserRole = "STUDENT"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

// AuthRecord is a user credential row in the auth_users table.
type AuthRecord struct {
	UserID         string     `db:"user_id" json:"user_id"`
	Username       string     `db:"username" json:"username"`
	Role           UserRole   `db:"role" json:"role"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	Active         bool       `db:"active" json:"active"`
	LastLogin      *time.Time `db:"last_login" json:"last_login,omitempty"`
	FailedAttempts int        `db:"failed_attempts" json:"-"`
	LockoutUntil   *time.Time `db:"lockout_until" json:"-"`
}

// WithPasswordHash returns a copy with the hash replaced.
func (a AuthRecord) WithPasswordHash(hash string) AuthRecord {
	a.PasswordHash = hash
	return a
}

// WithLastLogin returns a copy with last_login set.
func (a AuthRecord) WithLastLogin(ts time.Time) AuthRecord {
	a.LastLogin = &ts
	return a
}

// WithFailedAttempts returns a copy with the failure counter replaced.
func (a AuthRecord) WithFailedAttempts(n int) AuthRecord {
	a.FailedAttempts = n
	return a
}

// WithLockoutUntil returns a copy with the lockout deadline replaced.
// A nil deadline clears the lockout.
func (a AuthRecord) WithLockoutUntil(until *time.Time) AuthRecord {
	a.LockoutUntil = until
	return a
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
