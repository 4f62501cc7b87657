// Package mailer dispatches transactional mail (currently only the admin
// password-reset message). A SendGrid backend is used when an API key is
// configured; otherwise messages go to the log so development works offline.
package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/config"
)

// Mailer sends a single plain-text message.
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

// New selects the backend based on configuration.
func New(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SendGridAPIKey != "" {
		return &sendgridMailer{cfg: cfg, logger: logger}
	}
	return &consoleMailer{logger: logger}
}

type sendgridMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

func (m *sendgridMailer) Send(ctx context.Context, toEmail, subject, body string) error {
	from := sgmail.NewEmail(m.cfg.FromName, m.cfg.FromAddress)
	to := sgmail.NewEmail("", toEmail)
	message := sgmail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(m.cfg.SendGridAPIKey)
	res, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		m.logger.Error("sendgrid rejected message",
			zap.Int("status", res.StatusCode),
			zap.String("body", res.Body))
		return fmt.Errorf("send mail: status %d", res.StatusCode)
	}
	return nil
}

type consoleMailer struct {
	logger *zap.Logger
}

func (m *consoleMailer) Send(_ context.Context, toEmail, subject, body string) error {
	m.logger.Info("mail (console backend)",
		zap.String("to", toEmail),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}
