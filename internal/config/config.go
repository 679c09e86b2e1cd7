package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the relay configuration. It is captured once at process start
// and passed to components explicitly.
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	// SMTP transport
	SMTPHost   string
	SMTPPort   int
	SMTPSecure bool
	SMTPUser   string
	SMTPPass   string

	// Email addressing
	EmailProvider string
	EmailTo       string
	EmailFrom     string
	AutoreplyFrom string

	// Operator notification defaults (overridden by email-order.conf)
	LeadEmailFromMode        string
	LeadEmailFromTemplate    string
	LeadEmailSubjectTemplate string
	LeadEmailTextTemplate    string
	LeadEmailHTMLTemplate    string

	TemplatesDir string
	SiteURL      string

	// Telegram
	TelegramBotToken     string
	TelegramChatID       string
	TelegramAPIURL       string
	TelegramTextTemplate string

	// WhatsApp via Twilio
	WhatsAppEnabled    bool
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioFromWhatsApp string
	WhatsAppTo         string

	// Alternative email providers
	SendGridAPIKey      string
	ResendAPIKey        string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// HTTP surface
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	TrustProxyHops     int
	RedisAddr          string
	RedisPassword      string
	RedisTLS           bool

	DispatchTimeout    time.Duration
	MaxUploadFiles     int
	MaxUploadFileBytes int64
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		SMTPHost:   strings.TrimSpace(getEnv("SMTP_HOST", "")),
		SMTPPort:   getEnvAsInt("SMTP_PORT", 587),
		SMTPSecure: getEnvAsBool("SMTP_SECURE", false),
		SMTPUser:   getEnv("SMTP_USER", ""),
		SMTPPass:   getEnv("SMTP_PASS", ""),

		EmailProvider: strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "smtp"))),
		EmailTo:       strings.TrimSpace(getEnv("EMAIL_TO", "")),
		EmailFrom:     strings.TrimSpace(getEnv("EMAIL_FROM", "")),
		AutoreplyFrom: strings.TrimSpace(getEnv("AUTOREPLY_FROM", "")),

		LeadEmailFromMode:        strings.ToLower(strings.TrimSpace(getEnv("LEAD_EMAIL_FROM_MODE", ""))),
		LeadEmailFromTemplate:    getEnv("LEAD_EMAIL_FROM_TEMPLATE", ""),
		LeadEmailSubjectTemplate: getEnv("LEAD_EMAIL_SUBJECT_TEMPLATE", ""),
		LeadEmailTextTemplate:    getEnv("LEAD_EMAIL_TEXT_TEMPLATE", ""),
		LeadEmailHTMLTemplate:    getEnv("LEAD_EMAIL_HTML_TEMPLATE", ""),

		TemplatesDir: getEnv("TEMPLATES_DIR", "templates"),
		SiteURL:      firstNonEmpty(getEnv("SITE_URL", ""), getEnv("WEBSITE_URL", "")),

		TelegramBotToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:       getEnv("TELEGRAM_CHAT_ID", ""),
		TelegramAPIURL:       strings.TrimRight(getEnv("TELEGRAM_API_URL", "https://api.telegram.org"), "/"),
		TelegramTextTemplate: getEnv("TELEGRAM_TEXT_TEMPLATE", ""),

		WhatsAppEnabled:    getEnvAsBool("WHATSAPP_ENABLED", false),
		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromWhatsApp: getEnv("TWILIO_FROM_WHATSAPP", ""),
		WhatsAppTo:         getEnv("WHATSAPP_TO", ""),

		SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		ResendAPIKey:        getEnv("RESEND_API_KEY", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRequests:  getEnvAsInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:    getEnvAsDuration("RATE_LIMIT_WINDOW", 10*time.Minute),
		TrustProxyHops:     getEnvAsInt("TRUST_PROXY_HOPS", 1),
		RedisAddr:          strings.TrimSpace(getEnv("REDIS_ADDR", "")),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:           getEnvAsBool("REDIS_TLS", false),

		DispatchTimeout:    getEnvAsDuration("DISPATCH_TIMEOUT", 20*time.Second),
		MaxUploadFiles:     getEnvAsInt("MAX_UPLOAD_FILES", 5),
		MaxUploadFileBytes: int64(getEnvAsInt("MAX_UPLOAD_FILE_BYTES", 10<<20)),
	}
}

// AutoreplySender returns the address autoreplies are sent from.
func (c *Config) AutoreplySender() string {
	return firstNonEmpty(c.AutoreplyFrom, c.EmailFrom, c.SMTPUser)
}

// SystemSender returns the operator-owned address used in system From mode.
func (c *Config) SystemSender() string {
	return firstNonEmpty(c.EmailFrom, c.SMTPUser)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); strings.TrimSpace(value) != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
