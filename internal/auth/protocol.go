package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tenant-platform/internal/mailer"
	"tenant-platform/internal/model"
	"tenant-platform/pkg/jwtutil"
	"tenant-platform/pkg/logger"
	"tenant-platform/prometheus"
)

// LoginHook runs after a login completes. Hooks run synchronously in
// registration order; a failing hook is logged and does not fail the
// login.
type LoginHook func(ctx context.Context, user *model.User, session *model.LoginSession) error

// LogoutHook runs after a logout (single or all-devices) completes.
type LogoutHook func(ctx context.Context, userID uint) error

// Result is the outcome of a completed two-factor login.
type Result struct {
	User       *model.User
	Token      string
	SessionKey string
}

// Service orchestrates the two-phase login protocol: credential check,
// two-factor challenge, session creation, and logout for one device or
// all of them.
type Service struct {
	users      UserStore
	profiles   ProfileStore
	engine     *TwoFactorEngine
	ledger     SessionLedger
	pending    PendingStore
	sessions   SessionStore
	mailer     mailer.Mailer
	postLogin  []LoginHook
	postLogout []LogoutHook
}

// NewService creates the auth session protocol service.
func NewService(users UserStore, profiles ProfileStore, engine *TwoFactorEngine,
	ledger SessionLedger, pending PendingStore, sessions SessionStore, m mailer.Mailer) *Service {
	return &Service{
		users:    users,
		profiles: profiles,
		engine:   engine,
		ledger:   ledger,
		pending:  pending,
		sessions: sessions,
		mailer:   m,
	}
}

// OnLogin appends a post-login hook. Hooks replace implicit signal
// subscriptions with an explicit, ordered call list.
func (s *Service) OnLogin(h LoginHook) {
	s.postLogin = append(s.postLogin, h)
}

// OnLogout appends a post-logout hook.
func (s *Service) OnLogout(h LogoutHook) {
	s.postLogout = append(s.postLogout, h)
}

// Register creates a user with a bcrypt-hashed password and its profile
// row.
func (s *Service) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// Profile exists for every user from the moment of creation.
	if _, err := s.profiles.GetOrCreate(ctx, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

// BeginLogin authenticates credentials, issues a two-factor challenge,
// emails the code, and returns an opaque pending token the caller must
// present together with the code. No session exists yet at this point.
func (s *Service) BeginLogin(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	code, err := s.engine.Issue(ctx, user.ID)
	if err != nil {
		return "", err
	}

	if err := s.mailer.Send("Your 2FA code", user.Email, "two_factor_code.html", map[string]interface{}{
		"user_name": user.Username,
		"code":      code,
	}); err != nil {
		return "", err
	}

	token := uuid.New().String()
	if err := s.pending.Put(ctx, token, user.ID); err != nil {
		return "", err
	}

	return token, nil
}

// Verify completes the login: it resolves the pending marker, validates
// the submitted code, creates the live session and the ledger row, clears
// the marker and runs the post-login hooks. On a bad code the marker is
// kept so the caller may retry.
func (s *Service) Verify(ctx context.Context, pendingToken, code, ipAddress, userAgent string) (*Result, error) {
	userID, err := s.pending.Get(ctx, pendingToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrNoPendingChallenge
	}

	ok, err := s.engine.Validate(ctx, user.ID, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCode
	}

	sessionKey := uuid.New().String()
	if err := s.sessions.Create(ctx, sessionKey, user.ID); err != nil {
		return nil, err
	}

	session := &model.LoginSession{
		UserID:     user.ID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		SessionKey: sessionKey,
		LoginTime:  time.Now(),
		IsActive:   true,
	}
	if err := s.ledger.Record(ctx, session); err != nil {
		return nil, err
	}

	if err := s.pending.Delete(ctx, pendingToken); err != nil {
		logger.FromContext(ctx).Warn("Failed to clear pending marker", zap.Error(err))
	}

	s.runLoginHooks(ctx, user, session)
	prometheus.ActiveSessionsGauge.Inc()

	token, err := jwtutil.GenerateToken(user.Username, user.ID, sessionKey, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	return &Result{User: user, Token: token, SessionKey: sessionKey}, nil
}

// Logout closes the ledger row for the caller's session key and destroys
// the live session. A missing ledger row means the session was already
// closed; the live session is destroyed regardless.
func (s *Service) Logout(ctx context.Context, userID uint, sessionKey string) error {
	closed, err := s.ledger.CloseByKey(ctx, userID, sessionKey, time.Now())
	if err != nil {
		return err
	}
	if closed > 0 {
		prometheus.ActiveSessionsGauge.Dec()
	}

	if err := s.sessions.Delete(ctx, sessionKey); err != nil {
		return err
	}

	s.runLogoutHooks(ctx, userID)
	prometheus.LogoutCounter.WithLabelValues("current").Inc()
	return nil
}

// LogoutAll closes every active ledger row of the user as one set update
// and destroys every live session that was recorded for them, cutting off
// all devices at once.
func (s *Service) LogoutAll(ctx context.Context, userID uint) error {
	keys, err := s.ledger.CloseAll(ctx, userID, time.Now())
	if err != nil {
		return err
	}
	prometheus.ActiveSessionsGauge.Sub(float64(len(keys)))

	if err := s.sessions.Delete(ctx, keys...); err != nil {
		return err
	}

	s.runLogoutHooks(ctx, userID)
	prometheus.LogoutCounter.WithLabelValues("all").Inc()
	return nil
}

// History returns the user's session ledger, newest first.
func (s *Service) History(ctx context.Context, userID uint) ([]model.LoginSession, error) {
	return s.ledger.History(ctx, userID)
}

// IsSessionLive reports whether a session key still resolves to a live
// session. Used by the auth middleware so closed sessions are rejected
// even while their token is unexpired.
func (s *Service) IsSessionLive(ctx context.Context, sessionKey string) (bool, error) {
	return s.sessions.Exists(ctx, sessionKey)
}

func (s *Service) runLoginHooks(ctx context.Context, user *model.User, session *model.LoginSession) {
	for _, h := range s.postLogin {
		if err := h(ctx, user, session); err != nil {
			logger.FromContext(ctx).Warn("Post-login hook failed",
				zap.Uint("user_id", user.ID),
				zap.Error(err))
		}
	}
}

func (s *Service) runLogoutHooks(ctx context.Context, userID uint) {
	for _, h := range s.postLogout {
		if err := h(ctx, userID); err != nil {
			logger.FromContext(ctx).Warn("Post-logout hook failed",
				zap.Uint("user_id", userID),
				zap.Error(err))
		}
	}
}
