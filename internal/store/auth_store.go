package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"tenant-platform/internal/auth"
	"tenant-platform/internal/model"
	"tenant-platform/prometheus"
)

// UserStore is the gorm-backed credential store.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a user store.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create implements auth.UserStore.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return s.db.WithContext(ctx).Create(user).Error
}

// FindByUsername implements auth.UserStore.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID implements auth.UserStore.
func (s *UserStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CodeStore is the gorm-backed two-factor code store.
type CodeStore struct {
	db *gorm.DB
}

// NewCodeStore creates a code store.
func NewCodeStore(db *gorm.DB) *CodeStore {
	return &CodeStore{db: db}
}

// Create implements auth.CodeStore.
func (s *CodeStore) Create(ctx context.Context, code *model.TwoFactorCode) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return s.db.WithContext(ctx).Create(code).Error
}

// LatestUnused implements auth.CodeStore: codes are matched by value and
// only the most recently created unused row is considered.
func (s *CodeStore) LatestUnused(ctx context.Context, userID uint, code string) (*model.TwoFactorCode, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var row model.TwoFactorCode
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND code = ? AND is_used = ?", userID, code, false).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Consume implements auth.CodeStore. The WHERE on is_used makes the flip
// a compare-and-set.
func (s *CodeStore) Consume(ctx context.Context, id uint) (bool, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())
	res := s.db.WithContext(ctx).
		Model(&model.TwoFactorCode{}).
		Where("id = ? AND is_used = ?", id, false).
		Update("is_used", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SessionLedger is the gorm-backed login session ledger.
type SessionLedger struct {
	db *gorm.DB
}

// NewSessionLedger creates a session ledger.
func NewSessionLedger(db *gorm.DB) *SessionLedger {
	return &SessionLedger{db: db}
}

// Record implements auth.SessionLedger.
func (s *SessionLedger) Record(ctx context.Context, session *model.LoginSession) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return s.db.WithContext(ctx).Create(session).Error
}

// CloseByKey implements auth.SessionLedger.
func (s *SessionLedger) CloseByKey(ctx context.Context, userID uint, sessionKey string, at time.Time) (int64, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())
	res := s.db.WithContext(ctx).
		Model(&model.LoginSession{}).
		Where("user_id = ? AND session_key = ? AND is_active = ?", userID, sessionKey, true).
		Updates(map[string]interface{}{"is_active": false, "logout_time": at})
	return res.RowsAffected, res.Error
}

// CloseAll implements auth.SessionLedger. The keys are read and the rows
// closed inside one transaction so the update is a single set operation.
func (s *SessionLedger) CloseAll(ctx context.Context, userID uint, at time.Time) ([]string, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())
	var keys []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.LoginSession{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Pluck("session_key", &keys).Error; err != nil {
			return err
		}
		return tx.Model(&model.LoginSession{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Updates(map[string]interface{}{"is_active": false, "logout_time": at}).Error
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// History implements auth.SessionLedger.
func (s *SessionLedger) History(ctx context.Context, userID uint) ([]model.LoginSession, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var sessions []model.LoginSession
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("login_time DESC").
		Find(&sessions).Error
	return sessions, err
}

// ProfileStore is the gorm-backed user profile store.
type ProfileStore struct {
	db *gorm.DB
}

// NewProfileStore creates a profile store.
func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// GetOrCreate implements auth.ProfileStore.
func (s *ProfileStore) GetOrCreate(ctx context.Context, userID uint) (*model.UserProfile, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var profile model.UserProfile
	err := s.db.WithContext(ctx).
		Where(model.UserProfile{UserID: userID}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ClaimLoginEmail implements auth.ProfileStore. The conditional UPDATE is
// the compare-and-set that keeps concurrent logins from double-sending.
func (s *ProfileStore) ClaimLoginEmail(ctx context.Context, userID uint, now time.Time, window time.Duration) (bool, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())
	res := s.db.WithContext(ctx).
		Model(&model.UserProfile{}).
		Where("user_id = ? AND (last_login_email IS NULL OR last_login_email <= ?)", userID, now.Add(-window)).
		Update("last_login_email", now)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
