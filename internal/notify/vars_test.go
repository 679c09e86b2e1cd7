package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/leadrelay/internal/leads"
	"github.com/wolfman30/leadrelay/internal/templates"
)

func TestVariables(t *testing.T) {
	raw, html := Variables(testLead(), "https://example.com")

	assert.Equal(t, "Ann", raw["name"])
	assert.Equal(t, "invoice, waybill", raw["docTypes"])
	assert.Equal(t, "1", raw["attachmentsCount"])
	assert.Equal(t, "2026-01-02T03:04:05.000Z", raw["createdAt"])
	assert.Equal(t, "https://example.com", raw["siteUrl"])
	assert.Equal(t, "line one\nline <two>", raw["message"])

	assert.Equal(t, "line one\nline &lt;two&gt;", html["message"])
	assert.Equal(t, "line one<br/>line &lt;two&gt;", html["messageHtml"])
	assert.Equal(t, "Acme", html["companyHtml"])
}

func TestVariablesDashDefaults(t *testing.T) {
	raw, html := Variables(&leads.Lead{Name: "Ann", Phone: "+1"}, "")

	assert.Equal(t, "", raw["email"])
	assert.Equal(t, "-", raw["emailOrDash"])
	assert.Equal(t, "-", raw["messageOrDash"])
	assert.Equal(t, "-", raw["ipOrDash"])
	assert.Equal(t, "-", raw["docTypesOrDash"])
	assert.Equal(t, "0", raw["attachmentsCount"])
	assert.Equal(t, "-", html["companyHtml"])
	assert.Equal(t, "-", html["emailHtml"])
	assert.Equal(t, "-", html["messageHtml"])
}

func TestRenderSet(t *testing.T) {
	raw, html := Variables(testLead(), "")
	set := templates.TemplateSet{
		Subject: "Lead:\\n{name}  {company}",
		Text:    "From {name}: {message}",
		HTML:    "<b>{name}</b> {messageHtml}",
	}

	out := RenderSet(set, raw, html)
	assert.Equal(t, "Lead: Ann Acme", out.Subject)
	assert.Equal(t, "From Ann: line one\nline <two>", out.Text)
	assert.Equal(t, "<b>Ann</b> line one<br/>line &lt;two&gt;", out.HTML)
}

func TestRenderSetOmitsEmptyParts(t *testing.T) {
	raw, html := Variables(testLead(), "")
	out := RenderSet(templates.TemplateSet{Subject: "s", HTML: "<p>{nameHtml}</p>"}, raw, html)
	assert.Empty(t, out.Text)
	assert.Equal(t, "<p>Ann</p>", out.HTML)
}

func TestSummary(t *testing.T) {
	got := Summary("", &leads.Lead{Name: "Ann", Email: "a@x.com"}, "")
	assert.Equal(t, "New lead\nName: Ann\nCompany: -\nEmail: a@x.com\nPhone: -\nMessage: -", got)

	assert.Equal(t, "Ann via site", Summary("{name} via site", &leads.Lead{Name: "Ann"}, ""))
}
