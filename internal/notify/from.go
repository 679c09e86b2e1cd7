package notify

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"github.com/wolfman30/leadrelay/internal/leads"
	"github.com/wolfman30/leadrelay/internal/templates"
)

// ErrNoSender is returned when no From address can be resolved for a message.
var ErrNoSender = errors.New("notify: no sender configured")

const (
	FromModeClient = "client"
	FromModeSystem = "system"

	// DefaultFromTemplate is used in client mode when no template is configured.
	DefaultFromTemplate = "{name} ({company}) <{email}>"
)

var (
	emptyParens  = regexp.MustCompile(`\s*\(\s*\)\s*`)
	emptyAngles  = regexp.MustCompile(`<\s*>`)
	angleAddress = regexp.MustCompile(`<\s*([^<>\s]+)\s*>`)
	angleGroup   = regexp.MustCompile(`<[^<>]*>`)
)

// Address is a mailbox. An empty Name is the plain form.
type Address struct {
	Name    string
	Address string
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a.Address == "" }

// String formats the address as an RFC 5322 mailbox.
func (a Address) String() string {
	if a.Name == "" {
		return a.Address
	}
	return (&mail.Address{Name: a.Name, Address: a.Address}).String()
}

// Identity is the sender side of one outbound email.
type Identity struct {
	From         Address
	ReplyTo      Address
	EnvelopeFrom string
}

// FromPolicy decides who an email appears to come from.
type FromPolicy struct {
	Mode     string
	Template string
	// SystemAddress is the operator-owned mailbox used in system mode.
	SystemAddress string
	// NameFromLead puts the submitter's name and company in front of the
	// system address when no template is set.
	NameFromLead bool
	// ReplyToLead adds a Reply-To pointing at the submitter in system mode.
	ReplyToLead bool
}

// WithTemplateSet overrides mode and template with values carried by set.
func (p FromPolicy) WithTemplateSet(set templates.TemplateSet) FromPolicy {
	if mode := strings.ToLower(strings.TrimSpace(set.FromMode)); mode != "" {
		p.Mode = mode
	}
	if strings.TrimSpace(set.From) != "" {
		p.Template = set.From
	}
	return p
}

// Resolve builds the sender identity for lead, or returns ErrNoSender.
func (p FromPolicy) Resolve(lead *leads.Lead) (Identity, error) {
	if strings.ToLower(strings.TrimSpace(p.Mode)) == FromModeSystem {
		return p.resolveSystem(lead)
	}
	return p.resolveClient(lead)
}

func (p FromPolicy) resolveClient(lead *leads.Lead) (Identity, error) {
	email := strings.TrimSpace(lead.Email)
	if email == "" {
		return Identity{}, ErrNoSender
	}
	tmpl := p.Template
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultFromTemplate
	}
	rendered := templates.Render(tmpl, templates.Vars{
		"name":    displayText(lead.Name),
		"company": displayText(lead.Company),
		"email":   email,
	})
	from := parseMailbox(rendered, email)
	if from.Name == "" && !hasAngleAddress(rendered) {
		from.Name = displayText(lead.Name)
	}
	return Identity{
		From:         from,
		ReplyTo:      Address{Name: from.Name, Address: email},
		EnvelopeFrom: email,
	}, nil
}

func (p FromPolicy) resolveSystem(lead *leads.Lead) (Identity, error) {
	system := strings.TrimSpace(p.SystemAddress)
	if system == "" {
		return Identity{}, ErrNoSender
	}
	from := Address{Address: system}
	switch {
	case strings.TrimSpace(p.Template) != "":
		rendered := templates.Render(p.Template, templates.Vars{
			"name":    displayText(lead.Name),
			"company": displayText(lead.Company),
			"email":   system,
		})
		from = parseMailbox(rendered, system)
	case p.NameFromLead:
		from.Name = displayText(lead.NameCompany())
	}

	id := Identity{From: from, EnvelopeFrom: from.Address}
	if p.ReplyToLead && strings.TrimSpace(lead.Email) != "" {
		id.ReplyTo = Address{Name: displayText(lead.NameCompany()), Address: strings.TrimSpace(lead.Email)}
	}
	return id, nil
}

// parseMailbox takes the display name from rendered and pairs it with
// address. Any <addr> in the rendered text only marks where the address goes;
// the mailbox itself always comes from the caller.
func parseMailbox(rendered, address string) Address {
	text := cleanDisplay(rendered)
	name := cleanDisplay(angleAddress.ReplaceAllString(text, " "))
	name = strings.TrimSpace(strings.Trim(name, `"`))
	if strings.EqualFold(name, address) {
		name = ""
	}
	return Address{Name: name, Address: address}
}

// displayText strips bracketed mailboxes and stray angle brackets from
// submitter-controlled text before it is placed in a display name.
func displayText(s string) string {
	s = angleGroup.ReplaceAllString(s, " ")
	s = strings.NewReplacer("<", " ", ">", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func hasAngleAddress(s string) bool {
	return angleAddress.MatchString(s)
}

func cleanDisplay(s string) string {
	s = emptyAngles.ReplaceAllString(s, " ")
	s = emptyParens.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
