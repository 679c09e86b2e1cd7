package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/leadrelay/pkg/logging"
)

func enabledWhatsApp(apiURL string) WhatsAppConfig {
	return WhatsAppConfig{
		Enabled:    true,
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "whatsapp:+15550001",
		To:         "whatsapp:+15550002",
		APIURL:     apiURL,
	}
}

func TestWhatsAppChannelDisabledByDefault(t *testing.T) {
	ch := NewWhatsAppChannel(WhatsAppConfig{AccountSID: "AC123"}, logging.Discard())
	assert.Equal(t, Skipped(ReasonDisabled), ch.Send(context.Background(), testLead()))
}

func TestWhatsAppChannelSkipsWithoutTwilioEnv(t *testing.T) {
	ch := NewWhatsAppChannel(WhatsAppConfig{Enabled: true, AccountSID: "AC123"}, logging.Discard())
	assert.Equal(t, Skipped("Twilio env not set"), ch.Send(context.Background(), testLead()))
}

func TestWhatsAppChannelPostsToTwilio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "whatsapp:+15550002", r.PostForm.Get("To"))
		assert.Equal(t, "whatsapp:+15550001", r.PostForm.Get("From"))
		assert.Contains(t, r.PostForm.Get("Body"), "Name: Ann")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1","status":"queued"}`))
	}))
	defer srv.Close()

	ch := NewWhatsAppChannel(enabledWhatsApp(srv.URL), logging.Discard())
	assert.Equal(t, Delivered(), ch.Send(context.Background(), testLead()))
}

func TestWhatsAppChannelFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"code":20503,"message":"Service unavailable","status":503}`))
	}))
	defer srv.Close()

	ch := NewWhatsAppChannel(enabledWhatsApp(srv.URL), logging.Discard())
	result := ch.Send(context.Background(), testLead())

	require.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Error(), "status 503 code 20503: Service unavailable")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFormatTwilioError(t *testing.T) {
	assert.Equal(t, "status 500", formatTwilioError(500, nil))
	assert.Equal(t, "status 400: Invalid To", formatTwilioError(400, []byte(`{"message":"Invalid To"}`)))
	assert.Equal(t, "status 502: bad gateway", formatTwilioError(502, []byte(" bad gateway ")))
}
