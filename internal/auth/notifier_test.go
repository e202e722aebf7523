package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenant-platform/internal/model"
)

func TestNotifyLoginFirstLoginSendsMail(t *testing.T) {
	profiles := newMemProfileStore()
	mail := &mockMailer{}
	notifier := NewLoginNotifier(profiles, mail)

	user := &model.User{ID: 1, Username: "alice", Email: "alice@example.com"}
	require.NoError(t, notifier.NotifyLogin(context.Background(), user))

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "Login Successful", mail.sent[0].Subject)
	assert.Equal(t, "alice@example.com", mail.sent[0].To)

	profile := profiles.profiles[1]
	require.NotNil(t, profile.LastLoginEmail)
}

func TestNotifyLoginThrottledInsideWindow(t *testing.T) {
	profiles := newMemProfileStore()
	mail := &mockMailer{}
	notifier := NewLoginNotifier(profiles, mail)

	user := &model.User{ID: 1, Username: "alice", Email: "alice@example.com"}
	profile, err := profiles.GetOrCreate(context.Background(), 1)
	require.NoError(t, err)

	// Last notification 23 hours ago: still inside the window.
	last := time.Now().Add(-23 * time.Hour)
	profile.LastLoginEmail = &last

	require.NoError(t, notifier.NotifyLogin(context.Background(), user))
	assert.Empty(t, mail.sent)
	assert.Equal(t, last, *profile.LastLoginEmail, "throttled logins must not move the stamp")
}

func TestNotifyLoginAfterWindowSendsAgain(t *testing.T) {
	profiles := newMemProfileStore()
	mail := &mockMailer{}
	notifier := NewLoginNotifier(profiles, mail)

	user := &model.User{ID: 1, Username: "alice", Email: "alice@example.com"}
	profile, err := profiles.GetOrCreate(context.Background(), 1)
	require.NoError(t, err)

	last := time.Now().Add(-25 * time.Hour)
	profile.LastLoginEmail = &last

	require.NoError(t, notifier.NotifyLogin(context.Background(), user))
	require.Len(t, mail.sent, 1)
	assert.True(t, profile.LastLoginEmail.After(last), "a fresh send re-stamps the window")
}

func TestNotifyLoginConsecutiveLoginsSendOnce(t *testing.T) {
	profiles := newMemProfileStore()
	mail := &mockMailer{}
	notifier := NewLoginNotifier(profiles, mail)

	user := &model.User{ID: 1, Username: "alice", Email: "alice@example.com"}
	for i := 0; i < 5; i++ {
		require.NoError(t, notifier.NotifyLogin(context.Background(), user))
	}

	assert.Len(t, mail.sent, 1)
}
