package auth

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenant-platform/internal/model"
	"tenant-platform/pkg/config"
	"tenant-platform/pkg/jwtutil"
)

type memUserStore struct {
	mu     sync.Mutex
	byID   map[uint]*model.User
	nextID uint
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byID: map[uint]*model.User{}, nextID: 1}
}

func (s *memUserStore) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextID
	s.nextID++
	s.byID[user.ID] = user
	return nil
}

func (s *memUserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *memUserStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

type memLedger struct {
	mu     sync.Mutex
	rows   []*model.LoginSession
	nextID uint
}

func newMemLedger() *memLedger {
	return &memLedger{nextID: 1}
}

func (l *memLedger) Record(ctx context.Context, session *model.LoginSession) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	session.ID = l.nextID
	l.nextID++
	l.rows = append(l.rows, session)
	return nil
}

func (l *memLedger) CloseByKey(ctx context.Context, userID uint, sessionKey string, at time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var closed int64
	for _, row := range l.rows {
		if row.UserID == userID && row.SessionKey == sessionKey && row.IsActive {
			t := at
			row.LogoutTime = &t
			row.IsActive = false
			closed++
		}
	}
	return closed, nil
}

func (l *memLedger) CloseAll(ctx context.Context, userID uint, at time.Time) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var keys []string
	for _, row := range l.rows {
		if row.UserID == userID && row.IsActive {
			t := at
			row.LogoutTime = &t
			row.IsActive = false
			keys = append(keys, row.SessionKey)
		}
	}
	return keys, nil
}

func (l *memLedger) History(ctx context.Context, userID uint) ([]model.LoginSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []model.LoginSession
	for _, row := range l.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LoginTime.Equal(out[j].LoginTime) {
			return out[i].ID > out[j].ID
		}
		return out[i].LoginTime.After(out[j].LoginTime)
	})
	return out, nil
}

type memProfileStore struct {
	mu       sync.Mutex
	profiles map[uint]*model.UserProfile
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{profiles: map[uint]*model.UserProfile{}}
}

func (s *memProfileStore) GetOrCreate(ctx context.Context, userID uint) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}
	p := &model.UserProfile{UserID: userID}
	s.profiles[userID] = p
	return p, nil
}

func (s *memProfileStore) ClaimLoginEmail(ctx context.Context, userID uint, now time.Time, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return false, nil
	}
	if p.LastLoginEmail != nil && now.Sub(*p.LastLoginEmail) < window {
		return false, nil
	}
	t := now
	p.LastLoginEmail = &t
	return true, nil
}

type memPendingStore struct {
	mu      sync.Mutex
	markers map[string]uint
}

func newMemPendingStore() *memPendingStore {
	return &memPendingStore{markers: map[string]uint{}}
}

func (s *memPendingStore) Put(ctx context.Context, token string, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[token] = userID
	return nil
}

func (s *memPendingStore) Get(ctx context.Context, token string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.markers[token]
	if !ok {
		return 0, ErrNoPendingChallenge
	}
	return userID, nil
}

func (s *memPendingStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.markers, token)
	return nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]uint
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]uint{}}
}

func (s *memSessionStore) Create(ctx context.Context, sessionKey string, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionKey] = userID
	return nil
}

func (s *memSessionStore) Exists(ctx context.Context, sessionKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[sessionKey]
	return ok, nil
}

func (s *memSessionStore) Delete(ctx context.Context, sessionKeys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range sessionKeys {
		delete(s.sessions, key)
	}
	return nil
}

type sentMail struct {
	Subject  string
	To       string
	Template string
	Data     map[string]interface{}
}

type mockMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *mockMailer) Send(subject, to, templateName string, data map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{Subject: subject, To: to, Template: templateName, Data: data})
	return nil
}

func (m *mockMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	code, ok := m.sent[len(m.sent)-1].Data["code"].(string)
	require.True(t, ok, "last mail carries no code")
	return code
}

type testEnv struct {
	svc      *Service
	users    *memUserStore
	codes    *memCodeStore
	ledger   *memLedger
	profiles *memProfileStore
	pending  *memPendingStore
	sessions *memSessionStore
	mail     *mockMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	env := &testEnv{
		users:    newMemUserStore(),
		codes:    newMemCodeStore(),
		ledger:   newMemLedger(),
		profiles: newMemProfileStore(),
		pending:  newMemPendingStore(),
		sessions: newMemSessionStore(),
		mail:     &mockMailer{},
	}
	env.svc = NewService(env.users, env.profiles, NewTwoFactorEngine(env.codes),
		env.ledger, env.pending, env.sessions, env.mail)
	return env
}

func (e *testEnv) login(t *testing.T, username, password, ip, ua string) *Result {
	t.Helper()
	pendingToken, err := e.svc.BeginLogin(context.Background(), username, password)
	require.NoError(t, err)

	result, err := e.svc.Verify(context.Background(), pendingToken, e.mail.lastCode(t), ip, ua)
	require.NoError(t, err)
	return result
}

func TestRegisterAndLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.svc.Register(context.Background(), "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", user.Password, "password must be stored hashed")

	// Wrong password never reaches the challenge step.
	_, err = env.svc.BeginLogin(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, env.mail.sent)

	result := env.login(t, "alice", "s3cret", "10.0.0.1", "cli/1.0")
	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.SessionKey)

	claims, err := jwtutil.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, result.SessionKey, claims.SessionKey)

	live, err := env.svc.IsSessionLive(context.Background(), result.SessionKey)
	require.NoError(t, err)
	assert.True(t, live)

	history, err := env.svc.History(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "10.0.0.1", history[0].IPAddress)
	assert.Equal(t, "cli/1.0", history[0].UserAgent)
	assert.True(t, history[0].IsActive)
	assert.Nil(t, history[0].LogoutTime)

	// The pending marker is gone once the login completed.
	assert.Empty(t, env.pending.markers)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Register(context.Background(), "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = env.svc.Register(context.Background(), "alice", "other@example.com", "pw")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestVerifyUnknownPendingToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Verify(context.Background(), "no-such-token", "123456", "", "")
	assert.ErrorIs(t, err, ErrNoPendingChallenge)
}

func TestVerifyWrongCodeKeepsMarker(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Register(context.Background(), "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	pendingToken, err := env.svc.BeginLogin(context.Background(), "alice", "pw")
	require.NoError(t, err)

	_, err = env.svc.Verify(context.Background(), pendingToken, "000000", "", "")
	assert.ErrorIs(t, err, ErrInvalidCode)

	// The marker survives a wrong code, so the retry with the mailed
	// code still completes.
	result, err := env.svc.Verify(context.Background(), pendingToken, env.mail.lastCode(t), "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestLogoutClosesSessionOnce(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.svc.Register(context.Background(), "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	result := env.login(t, "alice", "pw", "10.0.0.1", "cli/1.0")

	require.NoError(t, env.svc.Logout(context.Background(), user.ID, result.SessionKey))

	history, err := env.svc.History(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].IsActive)
	require.NotNil(t, history[0].LogoutTime)
	firstLogout := *history[0].LogoutTime

	live, err := env.svc.IsSessionLive(context.Background(), result.SessionKey)
	require.NoError(t, err)
	assert.False(t, live)

	// A second logout is a no-op, not an error, and the recorded logout
	// time does not move.
	require.NoError(t, env.svc.Logout(context.Background(), user.ID, result.SessionKey))
	history, err = env.svc.History(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, firstLogout, *history[0].LogoutTime)
}

func TestLogoutAllClosesEveryDevice(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.svc.Register(context.Background(), "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	keys := make([]string, 0, 3)
	for _, ua := range []string{"phone", "laptop", "tablet"} {
		result := env.login(t, "alice", "pw", "10.0.0.1", ua)
		keys = append(keys, result.SessionKey)
	}

	require.NoError(t, env.svc.LogoutAll(context.Background(), user.ID))

	history, err := env.svc.History(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for _, session := range history {
		assert.False(t, session.IsActive)
		assert.NotNil(t, session.LogoutTime)
	}

	for _, key := range keys {
		live, err := env.svc.IsSessionLive(context.Background(), key)
		require.NoError(t, err)
		assert.False(t, live)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, env.ledger.Record(context.Background(), &model.LoginSession{
			UserID:     7,
			SessionKey: string(rune('a' + i)),
			LoginTime:  base.Add(time.Duration(i) * time.Minute),
			IsActive:   true,
		}))
	}

	history, err := env.svc.History(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "c", history[0].SessionKey)
	assert.Equal(t, "b", history[1].SessionKey)
	assert.Equal(t, "a", history[2].SessionKey)
}

func TestPostLoginHookRuns(t *testing.T) {
	env := newTestEnv(t)

	var hookUser *model.User
	env.svc.OnLogin(func(ctx context.Context, user *model.User, session *model.LoginSession) error {
		hookUser = user
		return nil
	})
	// A failing hook must not fail the login itself.
	env.svc.OnLogin(func(ctx context.Context, user *model.User, session *model.LoginSession) error {
		return errors.New("boom")
	})

	_, err := env.svc.Register(context.Background(), "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	result := env.login(t, "alice", "pw", "", "")

	assert.NotEmpty(t, result.Token)
	require.NotNil(t, hookUser)
	assert.Equal(t, "alice", hookUser.Username)
}
