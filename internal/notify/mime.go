package notify

import (
	"bytes"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// buildMIME converts msg into a go-mail message with text and HTML
// alternatives and the lead's attachments.
func buildMIME(msg EmailMessage) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if msg.From.Name != "" {
		if err := m.FromFormat(msg.From.Name, msg.From.Address); err != nil {
			return nil, fmt.Errorf("notify: from: %w", err)
		}
	} else if err := m.From(msg.From.Address); err != nil {
		return nil, fmt.Errorf("notify: from: %w", err)
	}
	if !msg.ReplyTo.IsZero() {
		if err := m.ReplyToFormat(msg.ReplyTo.Name, msg.ReplyTo.Address); err != nil {
			return nil, fmt.Errorf("notify: reply-to: %w", err)
		}
	}
	if msg.EnvelopeFrom != "" {
		if err := m.EnvelopeFrom(msg.EnvelopeFrom); err != nil {
			return nil, fmt.Errorf("notify: envelope from: %w", err)
		}
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("notify: to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()

	switch {
	case msg.Body != "" && msg.HTML != "":
		m.SetBodyString(gomail.TypeTextPlain, msg.Body)
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	default:
		m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	}

	for _, att := range msg.Attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		err := m.AttachReader(att.Filename, bytes.NewReader(att.Content), gomail.WithFileContentType(gomail.ContentType(contentType)))
		if err != nil {
			return nil, fmt.Errorf("notify: attach %s: %w", att.Filename, err)
		}
	}
	return m, nil
}

// rawMIME renders msg as an RFC 5322 message.
func rawMIME(msg EmailMessage) ([]byte, error) {
	m, err := buildMIME(msg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("notify: write mime: %w", err)
	}
	return buf.Bytes(), nil
}
