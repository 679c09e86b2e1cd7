package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/leadrelay/internal/leads"
	"github.com/wolfman30/leadrelay/internal/templates"
	"github.com/wolfman30/leadrelay/pkg/logging"
)

// DefaultSummaryTemplate is the flattened plain-text lead summary used by
// chat channels.
const DefaultSummaryTemplate = "New lead\n" +
	"Name: {name}\n" +
	"Company: {companyOrDash}\n" +
	"Email: {emailOrDash}\n" +
	"Phone: {phoneOrDash}\n" +
	"Message: {messageOrDash}"

// Summary renders the chat summary for lead.
func Summary(tmpl string, lead *leads.Lead, siteURL string) string {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultSummaryTemplate
	}
	raw, _ := Variables(lead, siteURL)
	return strings.TrimSpace(templates.Render(tmpl, raw))
}

// TelegramConfig holds Bot API settings.
type TelegramConfig struct {
	BotToken     string
	ChatID       string
	APIURL       string
	TextTemplate string
	SiteURL      string
}

// TelegramChannel posts the lead summary to a chat through the Bot API.
type TelegramChannel struct {
	cfg        TelegramConfig
	httpClient *http.Client
	logger     *logging.Logger
}

// NewTelegramChannel builds the channel; an empty token or chat id makes
// every send report Skipped.
func NewTelegramChannel(cfg TelegramConfig, logger *logging.Logger) *TelegramChannel {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.telegram.org"
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &TelegramChannel{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (c *TelegramChannel) Name() string { return ChannelTelegram }

type telegramSendMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

func (c *TelegramChannel) Send(ctx context.Context, lead *leads.Lead) Result {
	token := strings.TrimSpace(c.cfg.BotToken)
	chatID := strings.TrimSpace(c.cfg.ChatID)
	if token == "" || chatID == "" {
		return Skipped("Telegram env not set")
	}

	payload, err := json.Marshal(telegramSendMessage{
		ChatID:                chatID,
		Text:                  Summary(c.cfg.TextTemplate, lead, c.cfg.SiteURL),
		DisableWebPagePreview: true,
	})
	if err != nil {
		return Failed(fmt.Errorf("notify: telegram encode: %w", err))
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.cfg.APIURL, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Failed(fmt.Errorf("notify: telegram request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the token; report only the transport cause.
		return Failed(fmt.Errorf("notify: telegram send failed: %w", unwrapURLError(err)))
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Failed(fmt.Errorf("notify: telegram status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}
	return Delivered()
}

var _ Channel = (*TelegramChannel)(nil)
