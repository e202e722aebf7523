package mailer

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"tenant-platform/pkg/config"
	"tenant-platform/pkg/logger"
	"tenant-platform/prometheus"
)

// SMTPMailer delivers rendered templates over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer from SMTP configuration.
func NewSMTPMailer(cfg *config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// Send renders the named template and delivers it as an HTML email.
func (m *SMTPMailer) Send(subject, to, templateName string, data map[string]interface{}) error {
	body, err := Render(templateName, data)
	if err != nil {
		prometheus.MailCounter.WithLabelValues("failed").Inc()
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		prometheus.MailCounter.WithLabelValues("failed").Inc()
		logger.GetLogger().Error("Failed to send email",
			zap.String("to", to),
			zap.String("template", templateName),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	prometheus.MailCounter.WithLabelValues("sent").Inc()
	return nil
}
