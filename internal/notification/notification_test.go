package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PlacementHub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResendSenderPostsEmail(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	sender, err := NewResendSender(config.MailConfig{
		ResendAPIKey: "re_test",
		ResendAPIURL: srv.URL,
		From:         "noreply@inst.edu",
	}, zap.NewNop())
	require.NoError(t, err)

	err = sender.Send(context.Background(), "alice@inst.edu", "Subject", "Your code is 123456")
	require.NoError(t, err)

	assert.Equal(t, "noreply@inst.edu", got["from"])
	assert.Equal(t, []interface{}{"alice@inst.edu"}, got["to"])
	assert.Equal(t, "Subject", got["subject"])
	assert.Equal(t, "Your code is 123456", got["text"])
}

func TestResendSenderProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from"}`))
	}))
	defer srv.Close()

	sender, err := NewResendSender(config.MailConfig{ResendAPIKey: "re_test", ResendAPIURL: srv.URL + "/", From: "x"}, zap.NewNop())
	require.NoError(t, err)

	assert.Error(t, sender.Send(context.Background(), "alice@inst.edu", "s", "b"))
}

func TestSMTPSenderUnreachableRelay(t *testing.T) {
	sender := NewSMTPSender(config.MailConfig{
		SMTPHost: "127.0.0.1",
		SMTPPort: 1,
		From:     "hub@example.com",
	}, zap.NewNop())

	err := sender.Send(context.Background(), "alice@inst.edu", "s", "b")
	assert.Error(t, err)
}

func TestSMTPSenderHonoursCancelledContext(t *testing.T) {
	sender := NewSMTPSender(config.MailConfig{SMTPHost: "127.0.0.1", SMTPPort: 1, From: "a@b.c"}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sender.Send(ctx, "alice@inst.edu", "s", "b"), context.Canceled)
}

func TestSMTPMessageHeaders(t *testing.T) {
	sender := NewSMTPSender(config.MailConfig{SMTPHost: "smtp", SMTPPort: 587, From: "hub@example.com"}, zap.NewNop())
	m := sender.message("alice@inst.edu", "Hello", "body")

	assert.Equal(t, []string{"hub@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"alice@inst.edu"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Hello"}, m.GetHeader("Subject"))
}

func TestNewSenderSelectsTransport(t *testing.T) {
	cfg := &config.Config{Mail: config.MailConfig{Transport: config.MailTransportSMTP, SMTPHost: "smtp", SMTPPort: 587, From: "a@b.c"}}
	s, err := NewSender(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	cfg.Mail = config.MailConfig{Transport: config.MailTransportResend, ResendAPIKey: "re", From: "a@b.c"}
	s, err = NewSender(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &ResendSender{}, s)

	cfg.Mail.Transport = "fax"
	_, err = NewSender(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestMessagesCarryCodeAndLifetime(t *testing.T) {
	for _, m := range []Message{
		SignupCode("123456", 10*time.Minute),
		ResentSignupCode("123456", 10*time.Minute),
		PasswordResetCode("123456", 10*time.Minute),
	} {
		assert.Contains(t, m.Body, "123456")
		assert.Contains(t, m.Body, "10 minutes")
		assert.Contains(t, m.Subject, brand)
	}
	assert.Contains(t, SignupCode("1", time.Minute).Body, "1 minute.")
}
