package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tenant-platform/internal/mailer"
	"tenant-platform/internal/model"
	"tenant-platform/pkg/logger"
)

// NotificationWindow is the minimum gap between login emails per user.
const NotificationWindow = 24 * time.Hour

// LoginNotifier sends at most one "login succeeded" email per user per
// rolling 24-hour window.
type LoginNotifier struct {
	profiles ProfileStore
	mailer   mailer.Mailer
}

// NewLoginNotifier creates a login notifier.
func NewLoginNotifier(profiles ProfileStore, m mailer.Mailer) *LoginNotifier {
	return &LoginNotifier{profiles: profiles, mailer: m}
}

// NotifyLogin stamps the throttle window and sends the notification email
// when the stamp was claimed. The stamp is a conditional update, so
// concurrent logins within the same window produce a single email. A send
// failure forfeits the claimed window; the notification is best-effort.
func (n *LoginNotifier) NotifyLogin(ctx context.Context, user *model.User) error {
	if _, err := n.profiles.GetOrCreate(ctx, user.ID); err != nil {
		return err
	}

	claimed, err := n.profiles.ClaimLoginEmail(ctx, user.ID, time.Now(), NotificationWindow)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	if err := n.mailer.Send("Login Successful", user.Email, "login_success.html", map[string]interface{}{
		"user_name": user.Username,
	}); err != nil {
		logger.FromContext(ctx).Warn("Failed to send login notification",
			zap.Uint("user_id", user.ID),
			zap.Error(err))
		return err
	}

	return nil
}
