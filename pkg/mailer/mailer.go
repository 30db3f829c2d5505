package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/talabarteria/rodriguez-backend/pkg/config"
	"github.com/talabarteria/rodriguez-backend/pkg/logger"
)

// Mailer sends transactional storefront email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New returns the SMTP mailer when SMTP is configured, otherwise a log-only
// mailer so dev environments never hit the wire.
func New(cfg config.SMTPConfig, logg *logger.Logger) Mailer {
	if cfg.Enabled() {
		return &SMTPMailer{cfg: cfg}
	}
	return &LogMailer{logg: logg}
}

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient is required")
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer writes would-be email to the log. Used when SMTP is unset.
type LogMailer struct {
	logg *logger.Logger
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.logg != nil {
		logCtx := m.logg.WithFields(ctx, map[string]any{
			"to":      to,
			"subject": subject,
			"body":    body,
		})
		m.logg.Info(logCtx, "smtp disabled; email logged instead of sent")
	}
	return nil
}
