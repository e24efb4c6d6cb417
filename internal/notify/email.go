package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/dondo0936/portfolio-assistant/pkg/logging"
)

// EmailSender delivers one email. Implementations must be safe for
// concurrent use.
type EmailSender interface {
	Send(ctx context.Context, toName, toEmail, subject, plainText, htmlBody string) error
}

// SendGridSender sends through the SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
	logger    *logging.Logger
}

func NewSendGridSender(apiKey, fromName, fromEmail string, logger *logging.Logger) *SendGridSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
		logger:    logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, toName, toEmail, subject, plainText, htmlBody string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlBody)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("notify: send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("notify: send email: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// StubEmailSender logs instead of sending, for development and tests.
type StubEmailSender struct {
	logger *logging.Logger
	Sent   []StubEmail
}

// StubEmail records one captured message.
type StubEmail struct {
	ToEmail string
	Subject string
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(ctx context.Context, toName, toEmail, subject, plainText, htmlBody string) error {
	s.Sent = append(s.Sent, StubEmail{ToEmail: toEmail, Subject: subject})
	s.logger.Info("email suppressed", "to", toEmail, "subject", subject)
	return nil
}
