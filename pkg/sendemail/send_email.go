package sendemail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/config"
)

type EmailService interface {
	SendEmail(ctx context.Context, subject, toEmail, plainTextContent, htmlContent string) error
	Enabled() bool
}

type emailService struct {
	client      *sendgrid.Client
	senderEmail string
	senderName  string
}

// NewEmailService returns a SendGrid-backed sender, or a no-op sender that
// only logs when no API key is configured.
func NewEmailService(cfg config.SendGrid, log *zap.Logger) EmailService {
	if cfg.APIKey == "" {
		log.Warn("SENDGRID_API_KEY not set; emails will only be logged")
		return &logOnlyService{log: log}
	}
	return &emailService{
		client:      sendgrid.NewSendClient(cfg.APIKey),
		senderEmail: cfg.SenderEmail,
		senderName:  cfg.SenderName,
	}
}

func (e *emailService) SendEmail(ctx context.Context, subject, toEmail, plainTextContent, htmlContent string) error {
	from := mail.NewEmail(e.senderName, e.senderEmail)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)
	resp, err := e.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: sendgrid status %d", resp.StatusCode)
	}
	return nil
}

func (e *emailService) Enabled() bool { return true }

type logOnlyService struct {
	log *zap.Logger
}

func (l *logOnlyService) SendEmail(_ context.Context, subject, toEmail, _, _ string) error {
	l.log.Info("email not sent (no provider configured)", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}

func (l *logOnlyService) Enabled() bool { return false }
