package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wolfman30/leadrelay/internal/leads"
	"github.com/wolfman30/leadrelay/pkg/logging"
)

// WhatsAppConfig holds Twilio settings for WhatsApp delivery.
type WhatsAppConfig struct {
	Enabled      bool
	AccountSID   string
	AuthToken    string
	From         string // "whatsapp:+..."
	To           string // "whatsapp:+..."
	TextTemplate string
	SiteURL      string
	APIURL       string
}

// WhatsAppChannel posts the lead summary through Twilio's Messages API.
// It stays Skipped unless explicitly enabled.
type WhatsAppChannel struct {
	cfg        WhatsAppConfig
	httpClient *http.Client
	logger     *logging.Logger
}

func NewWhatsAppChannel(cfg WhatsAppConfig, logger *logging.Logger) *WhatsAppChannel {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.twilio.com"
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &WhatsAppChannel{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (c *WhatsAppChannel) Name() string { return ChannelWhatsApp }

// Send makes a single attempt; failed deliveries are not retried.
func (c *WhatsAppChannel) Send(ctx context.Context, lead *leads.Lead) Result {
	if !c.cfg.Enabled {
		return Skipped(ReasonDisabled)
	}
	if c.cfg.AccountSID == "" || c.cfg.AuthToken == "" || c.cfg.From == "" || c.cfg.To == "" {
		return Skipped("Twilio env not set")
	}

	payload := url.Values{}
	payload.Set("To", c.cfg.To)
	payload.Set("From", c.cfg.From)
	payload.Set("Body", Summary(c.cfg.TextTemplate, lead, c.cfg.SiteURL))

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.cfg.APIURL, c.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return Failed(fmt.Errorf("notify: twilio request: %w", err))
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Failed(fmt.Errorf("notify: twilio send failed: %w", err))
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Failed(fmt.Errorf("twilio send failed: %s", formatTwilioError(resp.StatusCode, body)))
	}
	return Delivered()
}

type twilioAPIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func formatTwilioError(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fmt.Sprintf("status %d", status)
	}
	var parsed twilioAPIError
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil && parsed.Message != "" {
		if parsed.Code != 0 {
			return fmt.Sprintf("status %d code %d: %s", status, parsed.Code, parsed.Message)
		}
		return fmt.Sprintf("status %d: %s", status, parsed.Message)
	}
	return fmt.Sprintf("status %d: %s", status, trimmed)
}

// unwrapURLError drops the *url.Error wrapper, whose message includes the
// request URL.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

var _ Channel = (*WhatsAppChannel)(nil)
