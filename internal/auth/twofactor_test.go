package auth

import (
	"context"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenant-platform/internal/model"
)

// memCodeStore is an in-memory CodeStore for tests.
type memCodeStore struct {
	mu     sync.Mutex
	rows   []*model.TwoFactorCode
	nextID uint
}

func newMemCodeStore() *memCodeStore {
	return &memCodeStore{nextID: 1}
}

func (s *memCodeStore) Create(ctx context.Context, code *model.TwoFactorCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code.ID = s.nextID
	s.nextID++
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	s.rows = append(s.rows, code)
	return nil
}

func (s *memCodeStore) LatestUnused(ctx context.Context, userID uint, code string) (*model.TwoFactorCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []*model.TwoFactorCode
	for _, row := range s.rows {
		if row.UserID == userID && row.Code == code && !row.IsUsed {
			matches = append(matches, row)
		}
	}
	if len(matches) == 0 {
		return nil, ErrInvalidCode
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	copied := *matches[0]
	return &copied, nil
}

func (s *memCodeStore) Consume(ctx context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.ID == id && !row.IsUsed {
			row.IsUsed = true
			return true, nil
		}
	}
	return false, nil
}

func (s *memCodeStore) insert(userID uint, code string, createdAt time.Time) *model.TwoFactorCode {
	row := &model.TwoFactorCode{UserID: userID, Code: code, CreatedAt: createdAt}
	_ = s.Create(context.Background(), row)
	return row
}

func TestIssueGeneratesSixDigitCode(t *testing.T) {
	store := newMemCodeStore()
	engine := NewTwoFactorEngine(store)

	pattern := regexp.MustCompile(`^[1-9][0-9]{5}$`)
	for i := 0; i < 20; i++ {
		code, err := engine.Issue(context.Background(), 1)
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
	assert.Len(t, store.rows, 20)
}

func TestValidateConsumesCode(t *testing.T) {
	store := newMemCodeStore()
	engine := NewTwoFactorEngine(store)

	code, err := engine.Issue(context.Background(), 1)
	require.NoError(t, err)

	ok, err := engine.Validate(context.Background(), 1, code)
	require.NoError(t, err)
	assert.True(t, ok)

	// The code is one-time use.
	ok, err = engine.Validate(context.Background(), 1, code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateExpiredCode(t *testing.T) {
	store := newMemCodeStore()
	engine := NewTwoFactorEngine(store)

	row := store.insert(1, "123456", time.Now().Add(-model.TwoFactorCodeTTL-time.Minute))

	ok, err := engine.Validate(context.Background(), 1, "123456")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, row.IsUsed, "expired codes must not be consumed")
}

func TestValidateCodeJustInsideTTL(t *testing.T) {
	store := newMemCodeStore()
	engine := NewTwoFactorEngine(store)

	store.insert(1, "123456", time.Now().Add(-model.TwoFactorCodeTTL+time.Minute))

	ok, err := engine.Validate(context.Background(), 1, "123456")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateMostRecentCodeWins(t *testing.T) {
	store := newMemCodeStore()
	engine := NewTwoFactorEngine(store)

	// An older, expired copy of the same digits must not shadow the
	// freshly issued one.
	old := store.insert(1, "654321", time.Now().Add(-20*time.Minute))
	store.insert(1, "654321", time.Now())

	ok, err := engine.Validate(context.Background(), 1, "654321")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, old.IsUsed)
}

func TestValidateWrongCode(t *testing.T) {
	store := newMemCodeStore()
	engine := NewTwoFactorEngine(store)

	_, err := engine.Issue(context.Background(), 1)
	require.NoError(t, err)

	ok, err := engine.Validate(context.Background(), 1, "000000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateOtherUsersCode(t *testing.T) {
	store := newMemCodeStore()
	engine := NewTwoFactorEngine(store)

	code, err := engine.Issue(context.Background(), 1)
	require.NoError(t, err)

	ok, err := engine.Validate(context.Background(), 2, code)
	require.NoError(t, err)
	assert.False(t, ok)
}
