package notify

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/leadrelay/internal/leads"
	"github.com/wolfman30/leadrelay/internal/templates"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []EmailMessage
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

func (s *recordingSender) sent() []EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EmailMessage(nil), s.msgs...)
}

func testLead() *leads.Lead {
	return &leads.Lead{
		ID:            "lead-1",
		Name:          "Ann",
		Company:       "Acme",
		Email:         "a@x.com",
		Phone:         "+1 555 0100",
		Message:       "line one\nline <two>",
		DocumentTypes: []string{"invoice", "waybill"},
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		SourceIP:      "203.0.113.7",
		Attachments: []leads.Attachment{
			{Filename: "scan.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4")},
		},
	}
}

func testResolver() *templates.Resolver {
	return templates.NewResolver(map[templates.Purpose]map[string]string{
		templates.PurposeOrder: {
			templates.KeySubject: "New lead from {name} {company}",
			templates.KeyText:    "Name: {name}\nEmail: {emailOrDash}",
			templates.KeyHTML:    "<p>{nameHtml}</p><p>{messageHtml}</p>",
		},
		templates.PurposeAutoreply: {
			templates.KeySubject: "We got your request, {name}",
			templates.KeyText:    "Hello {name}",
		},
	}, nil)
}
