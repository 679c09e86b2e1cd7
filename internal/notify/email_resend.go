package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/wolfman30/leadrelay/pkg/logging"
)

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	logger *logging.Logger
}

// NewResendSender returns nil without an API key.
func NewResendSender(apiKey string, logger *logging.Logger) *ResendSender {
	if apiKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		logger: logger,
	}
}

// Send sends a single email via Resend.
func (s *ResendSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("notify: resend client not configured")
	}
	if err := msg.validate(); err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    msg.From.String(),
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Body,
		Html:    msg.HTML,
	}
	if !msg.ReplyTo.IsZero() {
		params.ReplyTo = msg.ReplyTo.String()
	}
	for _, att := range msg.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Content:     att.Content,
			Filename:    att.Filename,
			ContentType: att.ContentType,
		})
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Error("resend send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: resend send failed: %w", err)
	}

	s.logger.Info("email sent via resend", "message_id", sent.Id, "to", msg.To, "subject", msg.Subject)
	return nil
}

var _ EmailSender = (*ResendSender)(nil)
