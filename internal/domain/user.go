package domain

import "time"

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleAdmin grants full administrative access.
	RoleAdmin Role = "admin"
	// RoleTeacher grants mission review access for their students.
	RoleTeacher Role = "teacher"
	// RoleStudent grants standard user access.
	RoleStudent Role = "student"
)

// User represents an authenticated user account in the system.
//
// Points mirrors the sum of the user's points ledger. It is denormalized
// for cheap reads and must only move inside the same transaction that
// appends the ledger entry.
type User struct {
	Base
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	IsRoot       bool      `json:"is_root"`
	Role         Role      `json:"role"`
	DisplayName  string    `json:"display_name"`
	Grade        string    `json:"grade,omitempty"`   // e.g. "8" for leaderboard scoping
	College      string    `json:"college,omitempty"` // institution name for leaderboard scoping
	Points       int       `json:"points"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// IsAdmin returns true if the user has administrative privileges.
// Root users are automatically admins, regardless of their role field.
func (u *User) IsAdmin() bool {
	return u.IsRoot || u.Role == RoleAdmin
}

// CanReview returns true if the user may resolve missions awaiting manual review.
func (u *User) CanReview() bool {
	return u.IsAdmin() || u.Role == RoleTeacher
}

// Name returns the best available name to display for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
