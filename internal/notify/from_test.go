package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/leadrelay/internal/leads"
	"github.com/wolfman30/leadrelay/internal/templates"
)

func TestFromPolicyClientDefaultTemplate(t *testing.T) {
	lead := &leads.Lead{Name: "Ann", Company: "Acme", Email: "a@x.com"}
	id, err := FromPolicy{Mode: FromModeClient, Template: DefaultFromTemplate}.Resolve(lead)
	require.NoError(t, err)

	assert.Equal(t, Address{Name: "Ann (Acme)", Address: "a@x.com"}, id.From)
	assert.Equal(t, Address{Name: "Ann (Acme)", Address: "a@x.com"}, id.ReplyTo)
	assert.Equal(t, "a@x.com", id.EnvelopeFrom)
}

func TestFromPolicyClientEmptyCompany(t *testing.T) {
	lead := &leads.Lead{Name: "Ann", Email: "a@x.com"}
	id, err := FromPolicy{}.Resolve(lead)
	require.NoError(t, err)

	assert.Equal(t, "Ann", id.From.Name)
	assert.NotContains(t, id.From.Name, "()")
	assert.Equal(t, "a@x.com", id.From.Address)
}

func TestFromPolicyClientWithoutBrackets(t *testing.T) {
	lead := &leads.Lead{Name: "Ann", Company: "Acme", Email: "a@x.com"}
	id, err := FromPolicy{Mode: FromModeClient, Template: "{name}   from  {company}"}.Resolve(lead)
	require.NoError(t, err)

	assert.Equal(t, Address{Name: "Ann from Acme", Address: "a@x.com"}, id.From)
	assert.Equal(t, id.From, id.ReplyTo)
}

func TestFromPolicyClientDropsNameEqualToAddress(t *testing.T) {
	lead := &leads.Lead{Name: "Ann", Email: "a@x.com"}
	id, err := FromPolicy{Mode: FromModeClient, Template: "{email} <{email}>"}.Resolve(lead)
	require.NoError(t, err)

	assert.Equal(t, Address{Address: "a@x.com"}, id.From)
	assert.Equal(t, "a@x.com", id.From.String())
}

func TestFromPolicyClientRequiresEmail(t *testing.T) {
	_, err := FromPolicy{Mode: FromModeClient}.Resolve(&leads.Lead{Name: "Ann", Phone: "+1"})
	assert.ErrorIs(t, err, ErrNoSender)
}

func TestFromPolicySystem(t *testing.T) {
	lead := &leads.Lead{Name: "Ann", Company: "Acme", Email: "a@x.com"}
	policy := FromPolicy{Mode: FromModeSystem, SystemAddress: "leads@ops.example", NameFromLead: true, ReplyToLead: true}

	id, err := policy.Resolve(lead)
	require.NoError(t, err)
	assert.Equal(t, Address{Name: "Ann Acme", Address: "leads@ops.example"}, id.From)
	assert.Equal(t, Address{Name: "Ann Acme", Address: "a@x.com"}, id.ReplyTo)
	assert.Equal(t, "leads@ops.example", id.EnvelopeFrom)
}

func TestFromPolicySystemPlain(t *testing.T) {
	lead := &leads.Lead{Name: "Ann", Phone: "+1"}
	id, err := FromPolicy{Mode: FromModeSystem, SystemAddress: "hello@ops.example"}.Resolve(lead)
	require.NoError(t, err)
	assert.Equal(t, Address{Address: "hello@ops.example"}, id.From)
	assert.True(t, id.ReplyTo.IsZero())
}

func TestFromPolicySystemTemplate(t *testing.T) {
	lead := &leads.Lead{Name: "Ann", Email: "a@x.com"}
	id, err := FromPolicy{Mode: FromModeSystem, SystemAddress: "hello@ops.example", Template: "Team ({company}) <{email}>"}.Resolve(lead)
	require.NoError(t, err)
	assert.Equal(t, Address{Name: "Team", Address: "hello@ops.example"}, id.From)
}

func TestFromPolicySystemRequiresAddress(t *testing.T) {
	_, err := FromPolicy{Mode: FromModeSystem}.Resolve(&leads.Lead{Name: "Ann", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrNoSender)
}

func TestFromPolicyWithTemplateSet(t *testing.T) {
	base := FromPolicy{Mode: FromModeClient, Template: DefaultFromTemplate, SystemAddress: "ops@x.com"}

	got := base.WithTemplateSet(templates.TemplateSet{FromMode: " System ", From: "Ops <{email}>"})
	assert.Equal(t, FromModeSystem, got.Mode)
	assert.Equal(t, "Ops <{email}>", got.Template)

	assert.Equal(t, base, base.WithTemplateSet(templates.TemplateSet{}))
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "a@x.com", Address{Address: "a@x.com"}.String())
	assert.Equal(t, `"Ann (Acme)" <a@x.com>`, Address{Name: "Ann (Acme)", Address: "a@x.com"}.String())
	assert.True(t, Address{}.IsZero())
}

func TestFromPolicyIgnoresAddressesInLeadFields(t *testing.T) {
	lead := &leads.Lead{Name: "Eve <ceo@bank.example>", Company: "Acme <x@y.example>", Email: "eve@x.example"}

	tests := []struct {
		name     string
		policy   FromPolicy
		from     Address
		envelope string
	}{
		{
			name:     "system mode with template",
			policy:   FromPolicy{Mode: FromModeSystem, Template: DefaultFromTemplate, SystemAddress: "noreply@relay.example"},
			from:     Address{Name: "Eve (Acme)", Address: "noreply@relay.example"},
			envelope: "noreply@relay.example",
		},
		{
			name:     "system mode name from lead",
			policy:   FromPolicy{Mode: FromModeSystem, SystemAddress: "noreply@relay.example", NameFromLead: true},
			from:     Address{Name: "Eve Acme", Address: "noreply@relay.example"},
			envelope: "noreply@relay.example",
		},
		{
			name:     "client mode default template",
			policy:   FromPolicy{Mode: FromModeClient},
			from:     Address{Name: "Eve (Acme)", Address: "eve@x.example"},
			envelope: "eve@x.example",
		},
		{
			name:     "client mode template without address",
			policy:   FromPolicy{Mode: FromModeClient, Template: "{name}"},
			from:     Address{Name: "Eve", Address: "eve@x.example"},
			envelope: "eve@x.example",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := tt.policy.Resolve(lead)
			require.NoError(t, err)
			assert.Equal(t, tt.from, id.From)
			assert.Equal(t, tt.envelope, id.EnvelopeFrom)
			assert.NotContains(t, id.From.String(), "bank.example")
		})
	}
}

func TestFromPolicyTemplateAddressNeverOverridesSender(t *testing.T) {
	lead := &leads.Lead{Name: "Ann", Email: "a@x.com"}

	id, err := FromPolicy{Mode: FromModeSystem, SystemAddress: "hello@ops.example", Template: "Desk <other@ops.example>"}.Resolve(lead)
	require.NoError(t, err)
	assert.Equal(t, Address{Name: "Desk", Address: "hello@ops.example"}, id.From)

	id, err = FromPolicy{Mode: FromModeClient, Template: "{name} <spoof@ops.example>"}.Resolve(lead)
	require.NoError(t, err)
	assert.Equal(t, Address{Name: "Ann", Address: "a@x.com"}, id.From)
}

func TestDisplayText(t *testing.T) {
	assert.Equal(t, "Eve", displayText("Eve <ceo@bank.example>"))
	assert.Equal(t, "a", displayText("a < b >"))
	assert.Equal(t, "x y", displayText("x > y"))
	assert.Equal(t, "Ann Lee", displayText("  Ann\n Lee "))
}
