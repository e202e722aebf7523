package auth

import "errors"

var (
	// ErrInvalidCredentials covers unknown users and wrong passwords
	// alike; callers must not learn which one it was.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidCode covers expired, consumed, mismatched and missing
	// two-factor codes.
	ErrInvalidCode = errors.New("invalid or expired code")

	// ErrNoPendingChallenge means the pending marker is absent or
	// expired; the caller must restart at credential entry.
	ErrNoPendingChallenge = errors.New("no pending login challenge")

	// ErrUserExists is returned on registration with a taken username.
	ErrUserExists = errors.New("username already registered")

	// ErrUserNotFound is returned by user lookups.
	ErrUserNotFound = errors.New("user not found")
)
