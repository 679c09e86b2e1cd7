package notify

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/leadrelay/internal/leads"
	"github.com/wolfman30/leadrelay/pkg/logging"
)

// EmailSender defines the interface for sending emails.
// Implementations can be swapped (SMTP, SendGrid, SES, Resend) without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	From         Address
	ReplyTo      Address
	EnvelopeFrom string
	To           []string
	Subject      string
	Body         string // Plain text body
	HTML         string // Optional HTML body
	Attachments  []leads.Attachment
}

func (m EmailMessage) validate() error {
	if m.From.IsZero() {
		return ErrNoSender
	}
	if len(m.To) == 0 {
		return errors.New("notify: no recipients")
	}
	if m.Body == "" && m.HTML == "" {
		return errors.New("notify: empty message body")
	}
	return nil
}

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	client *sendgrid.Client
	logger *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey string
}

// NewSendGridSender creates a new SendGrid email sender.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(cfg.APIKey),
		logger: logger,
	}
}

// Send sends an email via SendGrid. SendGrid assigns its own envelope sender,
// so EnvelopeFrom is not used.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}
	if err := msg.validate(); err != nil {
		return err
	}

	message := buildSendGridMessage(msg)
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}

	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}

	s.logger.Info("email sent via sendgrid", "to", msg.To, "subject", msg.Subject, "status", response.StatusCode)
	return nil
}

func buildSendGridMessage(msg EmailMessage) *mail.SGMailV3 {
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(msg.From.Name, msg.From.Address))
	message.Subject = msg.Subject
	if !msg.ReplyTo.IsZero() {
		message.SetReplyTo(mail.NewEmail(msg.ReplyTo.Name, msg.ReplyTo.Address))
	}

	p := mail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(mail.NewEmail("", to))
	}
	message.AddPersonalizations(p)

	// SendGrid requires text/plain before text/html.
	if msg.Body != "" {
		message.AddContent(mail.NewContent("text/plain", msg.Body))
	}
	if msg.HTML != "" {
		message.AddContent(mail.NewContent("text/html", msg.HTML))
	}

	for _, att := range msg.Attachments {
		a := mail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(att.Content))
		a.SetType(att.ContentType)
		a.SetFilename(att.Filename)
		a.SetDisposition("attachment")
		message.AddAttachment(a)
	}
	return message
}

// LogEmailSender writes messages to the log instead of sending them. It backs
// EMAIL_PROVIDER=log for local development.
type LogEmailSender struct {
	logger *logging.Logger
}

// NewLogEmailSender creates a sender that logs but doesn't send.
func NewLogEmailSender(logger *logging.Logger) *LogEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogEmailSender{logger: logger}
}

// Send validates and logs the message.
func (s *LogEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if err := msg.validate(); err != nil {
		return err
	}
	s.logger.Info("log email sender: would send email",
		"to", msg.To,
		"from", msg.From.String(),
		"reply_to", msg.ReplyTo.String(),
		"subject", msg.Subject,
		"attachments", len(msg.Attachments),
	)
	s.logger.Debug("log email sender: body", "text", msg.Body, "html", msg.HTML)
	return nil
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*LogEmailSender)(nil)
)
