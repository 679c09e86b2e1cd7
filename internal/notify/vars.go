package notify

import (
	"strconv"
	"strings"

	"github.com/wolfman30/leadrelay/internal/leads"
	"github.com/wolfman30/leadrelay/internal/templates"
)

const dash = "-"

// Variables builds the raw and HTML placeholder sets for lead.
func Variables(lead *leads.Lead, siteURL string) (raw, html templates.Vars) {
	docTypes := strings.Join(lead.DocumentTypes, ", ")
	createdAt := lead.CreatedAtISO()

	raw = templates.Vars{
		"name":             lead.Name,
		"company":          lead.Company,
		"email":            lead.Email,
		"phone":            lead.Phone,
		"message":          lead.Message,
		"createdAt":        createdAt,
		"ip":               lead.SourceIP,
		"docTypes":         docTypes,
		"attachmentsCount": strconv.Itoa(len(lead.Attachments)),
		"siteUrl":          siteURL,
		"emailOrDash":      orDash(lead.Email),
		"phoneOrDash":      orDash(lead.Phone),
		"messageOrDash":    orDash(lead.Message),
		"ipOrDash":         orDash(lead.SourceIP),
		"companyOrDash":    orDash(lead.Company),
		"docTypesOrDash":   orDash(docTypes),
	}

	html = raw.Escaped()
	html["nameHtml"] = templates.EscapeHTML(lead.Name)
	html["companyHtml"] = templates.EscapeHTML(orDash(lead.Company))
	html["emailHtml"] = templates.EscapeHTML(orDash(lead.Email))
	html["phoneHtml"] = templates.EscapeHTML(orDash(lead.Phone))
	html["messageHtml"] = strings.ReplaceAll(templates.EscapeHTML(orDash(lead.Message)), "\n", "<br/>")
	html["createdAtHtml"] = templates.EscapeHTML(createdAt)
	html["ipHtml"] = templates.EscapeHTML(orDash(lead.SourceIP))
	html["docTypesHtml"] = templates.EscapeHTML(orDash(docTypes))
	return raw, html
}

// Rendered is a template set after substitution.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

// RenderSet renders set with the raw vars for subject and text and the HTML
// vars for the HTML body. The subject is folded onto one line.
func RenderSet(set templates.TemplateSet, raw, html templates.Vars) Rendered {
	out := Rendered{
		Subject: strings.Join(strings.Fields(templates.Render(set.Subject, raw)), " "),
	}
	if strings.TrimSpace(set.Text) != "" {
		out.Text = templates.Render(set.Text, raw)
	}
	if strings.TrimSpace(set.HTML) != "" {
		out.HTML = templates.Render(set.HTML, html)
	}
	return out
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return dash
	}
	return s
}
