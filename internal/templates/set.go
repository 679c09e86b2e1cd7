package templates

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/wolfman30/leadrelay/internal/config"
	"github.com/wolfman30/leadrelay/pkg/logging"
)

// ErrUnconfigured is returned when a template set lacks a subject or a body.
var ErrUnconfigured = errors.New("templates: template set not configured")

// Purpose names a message purpose and its key file.
type Purpose string

const (
	// PurposeOrder is the operator notification for a new lead.
	PurposeOrder Purpose = "email-order"
	// PurposeAutoreply is the acknowledgement sent to the submitter.
	PurposeAutoreply Purpose = "email-to-client"
)

// Key file entries.
const (
	KeySubject  = "SUBJECT_TEMPLATE"
	KeyText     = "TEXT_TEMPLATE"
	KeyHTML     = "HTML_TEMPLATE"
	KeyFrom     = "FROM_TEMPLATE"
	KeyFromMode = "FROM_MODE"
)

// TemplateSet is the subject/text/html bundle for one message purpose.
type TemplateSet struct {
	Purpose  Purpose
	Subject  string
	Text     string
	HTML     string
	From     string
	FromMode string
}

// Complete reports whether the set can produce a message.
func (s TemplateSet) Complete() bool {
	return strings.TrimSpace(s.Subject) != "" &&
		(strings.TrimSpace(s.Text) != "" || strings.TrimSpace(s.HTML) != "")
}

// Resolver resolves template sets from key files layered over defaults.
// File contents are read once; Resolve is cheap and safe for concurrent use.
type Resolver struct {
	files    map[Purpose]map[string]string
	defaults map[Purpose]TemplateSet
}

// NewResolver builds a resolver from already loaded key files and defaults.
func NewResolver(files map[Purpose]map[string]string, defaults map[Purpose]TemplateSet) *Resolver {
	if files == nil {
		files = map[Purpose]map[string]string{}
	}
	if defaults == nil {
		defaults = map[Purpose]TemplateSet{}
	}
	return &Resolver{files: files, defaults: defaults}
}

// LoadResolver reads <dir>/<purpose>.conf for every known purpose. Missing or
// malformed files leave that purpose to its defaults and are logged.
func LoadResolver(dir string, defaults map[Purpose]TemplateSet, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	files := map[Purpose]map[string]string{}
	for _, purpose := range []Purpose{PurposeOrder, PurposeAutoreply} {
		path := filepath.Join(dir, string(purpose)+".conf")
		values, err := LoadKeyFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("template file not found", "purpose", purpose, "path", path)
		case err != nil:
			logger.Error("template file unreadable", "purpose", purpose, "path", path, "error", err)
		default:
			files[purpose] = values
			logger.Info("template file loaded", "purpose", purpose, "path", path, "keys", len(values))
		}
	}
	return NewResolver(files, defaults)
}

// Resolve returns the set for purpose, or ErrUnconfigured.
func (r *Resolver) Resolve(purpose Purpose) (TemplateSet, error) {
	if r == nil {
		return TemplateSet{}, ErrUnconfigured
	}
	def := r.defaults[purpose]
	file := r.files[purpose]
	set := TemplateSet{
		Purpose:  purpose,
		Subject:  pick(file, KeySubject, def.Subject),
		Text:     pick(file, KeyText, def.Text),
		HTML:     pick(file, KeyHTML, def.HTML),
		From:     pick(file, KeyFrom, def.From),
		FromMode: strings.ToLower(strings.TrimSpace(pick(file, KeyFromMode, def.FromMode))),
	}
	if !set.Complete() {
		return TemplateSet{}, ErrUnconfigured
	}
	return set, nil
}

func pick(file map[string]string, key, fallback string) string {
	if v, ok := file[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

// EnvDefaults maps the LEAD_EMAIL_* settings onto the operator notification
// set. The autoreply set has no environment defaults.
func EnvDefaults(cfg *config.Config) map[Purpose]TemplateSet {
	if cfg == nil {
		return nil
	}
	return map[Purpose]TemplateSet{
		PurposeOrder: {
			Purpose:  PurposeOrder,
			Subject:  cfg.LeadEmailSubjectTemplate,
			Text:     cfg.LeadEmailTextTemplate,
			HTML:     cfg.LeadEmailHTMLTemplate,
			From:     cfg.LeadEmailFromTemplate,
			FromMode: cfg.LeadEmailFromMode,
		},
	}
}
