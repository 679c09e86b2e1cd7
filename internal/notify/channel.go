package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/leadrelay/internal/config"
	"github.com/wolfman30/leadrelay/internal/leads"
	"github.com/wolfman30/leadrelay/internal/templates"
	"github.com/wolfman30/leadrelay/pkg/logging"
)

// Channel names, also used as keys in the intake response.
const (
	ChannelEmail     = "email"
	ChannelTelegram  = "telegram"
	ChannelWhatsApp  = "whatsapp"
	ChannelAutoreply = "autoreply"
)

// Skip reasons.
const (
	ReasonNoTemplates = "templates not configured"
	ReasonNoSender    = "no sender configured"
	ReasonNoEmail     = "no email"
	ReasonDisabled    = "disabled"
)

// Channel delivers a lead over one transport. Send never panics on
// misconfiguration; missing prerequisites come back as Skipped.
type Channel interface {
	Name() string
	Send(ctx context.Context, lead *leads.Lead) Result
}

// Email providers accepted in EMAIL_PROVIDER.
const (
	ProviderSMTP     = "smtp"
	ProviderSendGrid = "sendgrid"
	ProviderSES      = "ses"
	ProviderResend   = "resend"
	// ProviderLog logs messages instead of sending them.
	ProviderLog = "log"
)

// NewEmailSenderFromConfig picks the mail transport named by cfg.EmailProvider.
// When the provider's credentials are missing it returns a nil sender and the
// reason channels report as their skip reason. ses may be nil unless the
// provider is "ses".
func NewEmailSenderFromConfig(cfg *config.Config, ses SESAPI, logger *logging.Logger) (EmailSender, string, error) {
	switch cfg.EmailProvider {
	case "", ProviderSMTP:
		sender := NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Secure:   cfg.SMTPSecure,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
		}, logger)
		if sender == nil {
			return nil, "SMTP_HOST not set", nil
		}
		return sender, "", nil
	case ProviderSendGrid:
		sender := NewSendGridSender(SendGridConfig{APIKey: cfg.SendGridAPIKey}, logger)
		if sender == nil {
			return nil, "SENDGRID_API_KEY not set", nil
		}
		return sender, "", nil
	case ProviderResend:
		sender := NewResendSender(cfg.ResendAPIKey, logger)
		if sender == nil {
			return nil, "RESEND_API_KEY not set", nil
		}
		return sender, "", nil
	case ProviderSES:
		sender := NewSESSender(ses, logger)
		if sender == nil {
			return nil, "SES client not configured", nil
		}
		return sender, "", nil
	case ProviderLog:
		return NewLogEmailSender(logger), "", nil
	default:
		return nil, "", fmt.Errorf("notify: unknown email provider %q", cfg.EmailProvider)
	}
}

// EmailChannelConfig configures the operator notification.
type EmailChannelConfig struct {
	To      []string
	SiteURL string
	Policy  FromPolicy
	// SkipReason is reported when no sender is configured.
	SkipReason string
}

// EmailChannel notifies the operator about a new lead, with attachments.
type EmailChannel struct {
	sender   EmailSender
	resolver *templates.Resolver
	cfg      EmailChannelConfig
	logger   *logging.Logger
}

// NewEmailChannel fails when a sender exists but no recipient is configured;
// that is an operator error, not a per-request condition.
func NewEmailChannel(sender EmailSender, resolver *templates.Resolver, cfg EmailChannelConfig, logger *logging.Logger) (*EmailChannel, error) {
	if logger == nil {
		logger = logging.Default()
	}
	cfg.To = leads.NormalizeList(cfg.To)
	if sender != nil && len(cfg.To) == 0 {
		return nil, fmt.Errorf("notify: EMAIL_TO is required when an email transport is configured")
	}
	if cfg.SkipReason == "" {
		cfg.SkipReason = "SMTP_HOST not set"
	}
	return &EmailChannel{sender: sender, resolver: resolver, cfg: cfg, logger: logger}, nil
}

func (c *EmailChannel) Name() string { return ChannelEmail }

func (c *EmailChannel) Send(ctx context.Context, lead *leads.Lead) Result {
	if c.sender == nil {
		return Skipped(c.cfg.SkipReason)
	}
	set, err := c.resolver.Resolve(templates.PurposeOrder)
	if err != nil {
		return Skipped(ReasonNoTemplates)
	}
	id, err := c.cfg.Policy.WithTemplateSet(set).Resolve(lead)
	if err != nil {
		return Skipped(ReasonNoSender)
	}

	raw, html := Variables(lead, c.cfg.SiteURL)
	rendered := RenderSet(set, raw, html)
	msg := EmailMessage{
		From:         id.From,
		ReplyTo:      id.ReplyTo,
		EnvelopeFrom: id.EnvelopeFrom,
		To:           c.cfg.To,
		Subject:      rendered.Subject,
		Body:         rendered.Text,
		HTML:         rendered.HTML,
		Attachments:  lead.Attachments,
	}
	if err := c.sender.Send(ctx, msg); err != nil {
		return Failed(err)
	}
	return Delivered()
}

// AutoreplyChannelConfig configures the acknowledgement to the submitter.
type AutoreplyChannelConfig struct {
	SiteURL    string
	Policy     FromPolicy
	SkipReason string
}

// AutoreplyChannel acknowledges the submission to the lead's own address.
type AutoreplyChannel struct {
	sender   EmailSender
	resolver *templates.Resolver
	cfg      AutoreplyChannelConfig
	logger   *logging.Logger
}

func NewAutoreplyChannel(sender EmailSender, resolver *templates.Resolver, cfg AutoreplyChannelConfig, logger *logging.Logger) *AutoreplyChannel {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SkipReason == "" {
		cfg.SkipReason = "SMTP_HOST not set"
	}
	if cfg.Policy.Mode == "" {
		cfg.Policy.Mode = FromModeSystem
	}
	return &AutoreplyChannel{sender: sender, resolver: resolver, cfg: cfg, logger: logger}
}

func (c *AutoreplyChannel) Name() string { return ChannelAutoreply }

func (c *AutoreplyChannel) Send(ctx context.Context, lead *leads.Lead) Result {
	to := strings.TrimSpace(lead.Email)
	if to == "" {
		return Skipped(ReasonNoEmail)
	}
	if c.sender == nil {
		return Skipped(c.cfg.SkipReason)
	}
	set, err := c.resolver.Resolve(templates.PurposeAutoreply)
	if err != nil {
		return Skipped(ReasonNoTemplates)
	}
	id, err := c.cfg.Policy.WithTemplateSet(set).Resolve(lead)
	if err != nil {
		return Skipped(ReasonNoSender)
	}

	raw, html := Variables(lead, c.cfg.SiteURL)
	rendered := RenderSet(set, raw, html)
	msg := EmailMessage{
		From:         id.From,
		ReplyTo:      id.ReplyTo,
		EnvelopeFrom: id.EnvelopeFrom,
		To:           []string{to},
		Subject:      rendered.Subject,
		Body:         rendered.Text,
		HTML:         rendered.HTML,
	}
	if err := c.sender.Send(ctx, msg); err != nil {
		return Failed(err)
	}
	return Delivered()
}

var (
	_ Channel = (*EmailChannel)(nil)
	_ Channel = (*AutoreplyChannel)(nil)
)
