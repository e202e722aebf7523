package auth

import (
	"context"
	"time"

	"tenant-platform/internal/model"
)

// UserStore provides access to the credential store.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// CodeStore persists two-factor codes. Rows are never deleted; expired
// and consumed codes are simply excluded by the validity check.
type CodeStore interface {
	Create(ctx context.Context, code *model.TwoFactorCode) error
	// LatestUnused returns the most recently created unused code row
	// matching (user, code), or ErrInvalidCode when none exists.
	LatestUnused(ctx context.Context, userID uint, code string) (*model.TwoFactorCode, error)
	// Consume flips is_used from false to true and reports whether this
	// call won the flip. Validation and consumption stay atomic through
	// this compare-and-set.
	Consume(ctx context.Context, id uint) (bool, error)
}

// SessionLedger records one row per login event per device. Rows are
// append-mostly: closing is a monotonic set-update, never a delete.
type SessionLedger interface {
	Record(ctx context.Context, session *model.LoginSession) error
	// CloseByKey closes the active row matching (user, session key) and
	// returns the number of rows touched; zero is not an error.
	CloseByKey(ctx context.Context, userID uint, sessionKey string, at time.Time) (int64, error)
	// CloseAll closes every active row of the user as one set update and
	// returns the session keys that were closed.
	CloseAll(ctx context.Context, userID uint, at time.Time) ([]string, error)
	// History returns the user's sessions newest-first.
	History(ctx context.Context, userID uint) ([]model.LoginSession, error)
}

// ProfileStore backs the login notification throttle.
type ProfileStore interface {
	GetOrCreate(ctx context.Context, userID uint) (*model.UserProfile, error)
	// ClaimLoginEmail stamps last_login_email = now iff it is unset or at
	// least window old, and reports whether this call claimed the stamp.
	ClaimLoginEmail(ctx context.Context, userID uint, now time.Time, window time.Duration) (bool, error)
}

// PendingStore holds the transient marker between credential check and
// two-factor verification.
type PendingStore interface {
	Put(ctx context.Context, token string, userID uint) error
	// Get resolves the marker or returns ErrNoPendingChallenge.
	Get(ctx context.Context, token string) (uint, error)
	Delete(ctx context.Context, token string) error
}

// SessionStore holds live authenticated sessions, keyed by session key.
// The ledger is the audit trail; this store is what the auth middleware
// consults on every request.
type SessionStore interface {
	Create(ctx context.Context, sessionKey string, userID uint) error
	Exists(ctx context.Context, sessionKey string) (bool, error)
	Delete(ctx context.Context, sessionKeys ...string) error
}
