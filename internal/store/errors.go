package store

import "errors"

// Sentinel errors. The service layer maps these onto domain error codes;
// the store never speaks HTTP.
var (
	// ErrNotFound is returned when a record cannot be found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a create would collide with an
	// existing record or index entry.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUserNotFound is returned when a user cannot be found by ID or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists is returned when a user's email is already in use.
	ErrEmailExists = errors.New("email already in use")
	// ErrInsufficientPoints is returned when a spend would drive the
	// user's point balance negative.
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrInsufficientCoins is returned when a spend would drive the
	// user's coin balance negative.
	ErrInsufficientCoins = errors.New("insufficient coins")
)
