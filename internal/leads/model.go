package leads

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout renders CreatedAt the way browsers' toISOString does.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Attachment is an uploaded file kept in memory for the lifetime of a request.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Size returns the attachment length in bytes.
func (a Attachment) Size() int { return len(a.Content) }

// Lead is a validated contact-form submission. It is built once per request
// and never modified afterwards.
type Lead struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Company       string       `json:"company"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	Message       string       `json:"message"`
	DocumentTypes []string     `json:"doc_types"`
	CreatedAt     time.Time    `json:"created_at"`
	SourceIP      string       `json:"ip"`
	Attachments   []Attachment `json:"-"`
}

// CreatedAtISO returns CreatedAt in UTC ISO-8601 form.
func (l *Lead) CreatedAtISO() string {
	return l.CreatedAt.UTC().Format(TimestampLayout)
}

// NameCompany joins name and company for display purposes.
func (l *Lead) NameCompany() string {
	return strings.TrimSpace(l.Name + " " + l.Company)
}

// Submission is the raw form payload before validation.
type Submission struct {
	Name        string
	Company     string
	Email       string
	Phone       string
	Message     string
	Website     string // honeypot
	DocTypes    []string
	Attachments []Attachment
}

// IsBot reports whether the hidden honeypot field was filled in.
func (s *Submission) IsBot() bool {
	return strings.TrimSpace(s.Website) != ""
}

// Validate checks the lead invariant: a name and at least one contact.
func (s *Submission) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(s.Email) == "" && strings.TrimSpace(s.Phone) == "" {
		return ErrMissingContact
	}
	return nil
}

// NewLead validates and normalizes a submission into a Lead.
func NewLead(s *Submission, sourceIP string, now time.Time) (*Lead, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Lead{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(s.Name),
		Company:       strings.TrimSpace(s.Company),
		Email:         strings.TrimSpace(s.Email),
		Phone:         strings.TrimSpace(s.Phone),
		Message:       strings.TrimSpace(s.Message),
		DocumentTypes: NormalizeList(s.DocTypes),
		CreatedAt:     now.UTC(),
		SourceIP:      strings.TrimSpace(sourceIP),
		Attachments:   s.Attachments,
	}, nil
}

// NormalizeList trims every entry and drops the empty ones, keeping order.
func NormalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
