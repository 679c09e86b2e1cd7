package bootstrap

import (
	"errors"
	"strings"

	appconfig "github.com/wolfman30/leadrelay/internal/config"
	"github.com/wolfman30/leadrelay/internal/notify"
	"github.com/wolfman30/leadrelay/internal/observability/metrics"
	"github.com/wolfman30/leadrelay/internal/templates"
	"github.com/wolfman30/leadrelay/pkg/logging"
)

// BuildChannels wires every notification channel from config. ses is only
// consulted when EMAIL_PROVIDER is "ses" and may be nil otherwise.
func BuildChannels(cfg *appconfig.Config, resolver *templates.Resolver, ses notify.SESAPI, logger *logging.Logger) ([]notify.Channel, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: missing config")
	}
	if logger == nil {
		logger = logging.Default()
	}

	sender, reason, err := notify.NewEmailSenderFromConfig(cfg, ses, logger)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		logger.Warn("email transport not configured", "provider", cfg.EmailProvider, "reason", reason)
	}

	email, err := notify.NewEmailChannel(sender, resolver, notify.EmailChannelConfig{
		To:         strings.Split(cfg.EmailTo, ","),
		SiteURL:    cfg.SiteURL,
		Policy:     OrderFromPolicy(cfg),
		SkipReason: reason,
	}, logger)
	if err != nil {
		return nil, err
	}

	telegram := notify.NewTelegramChannel(notify.TelegramConfig{
		BotToken:     cfg.TelegramBotToken,
		ChatID:       cfg.TelegramChatID,
		APIURL:       cfg.TelegramAPIURL,
		TextTemplate: cfg.TelegramTextTemplate,
		SiteURL:      cfg.SiteURL,
	}, logger)

	whatsapp := notify.NewWhatsAppChannel(notify.WhatsAppConfig{
		Enabled:      cfg.WhatsAppEnabled,
		AccountSID:   cfg.TwilioAccountSID,
		AuthToken:    cfg.TwilioAuthToken,
		From:         cfg.TwilioFromWhatsApp,
		To:           cfg.WhatsAppTo,
		TextTemplate: cfg.TelegramTextTemplate,
		SiteURL:      cfg.SiteURL,
	}, logger)

	autoreply := notify.NewAutoreplyChannel(sender, resolver, notify.AutoreplyChannelConfig{
		SiteURL:    cfg.SiteURL,
		Policy:     AutoreplyFromPolicy(cfg),
		SkipReason: reason,
	}, logger)

	return []notify.Channel{email, telegram, whatsapp, autoreply}, nil
}

// OrderFromPolicy is the sender policy for the operator notification. It
// defaults to client mode; FROM_MODE in email-order.conf can still override it.
func OrderFromPolicy(cfg *appconfig.Config) notify.FromPolicy {
	mode := cfg.LeadEmailFromMode
	if mode == "" {
		mode = notify.FromModeClient
	}
	return notify.FromPolicy{
		Mode:          mode,
		Template:      cfg.LeadEmailFromTemplate,
		SystemAddress: cfg.SystemSender(),
		NameFromLead:  true,
		ReplyToLead:   true,
	}
}

// AutoreplyFromPolicy is the sender policy for the acknowledgement: the
// operator's own address, overridable by email-to-client.conf.
func AutoreplyFromPolicy(cfg *appconfig.Config) notify.FromPolicy {
	return notify.FromPolicy{Mode: notify.FromModeSystem, SystemAddress: cfg.AutoreplySender()}
}

// BuildDispatcher returns the fan-out service over the configured channels.
func BuildDispatcher(cfg *appconfig.Config, resolver *templates.Resolver, ses notify.SESAPI, m *metrics.LeadMetrics, logger *logging.Logger) (*notify.Service, error) {
	channels, err := BuildChannels(cfg, resolver, ses, logger)
	if err != nil {
		return nil, err
	}
	return notify.NewService(channels, cfg.DispatchTimeout, m, logger), nil
}
