package notification

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"PlacementHub/internal/config"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendSender delivers mail through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
	from   string
	log    *zap.Logger
}

func NewResendSender(cfg config.MailConfig, log *zap.Logger) (*ResendSender, error) {
	client := resend.NewClient(cfg.ResendAPIKey)
	if cfg.ResendAPIURL != "" {
		base := cfg.ResendAPIURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse RESEND_API_URL: %w", err)
		}
		client.BaseURL = u
	}
	return &ResendSender{client: client, from: cfg.From, log: log}, nil
}

func (s *ResendSender) Send(ctx context.Context, recipient, subject, body string) error {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{recipient},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("send email via resend: %w", err)
	}
	s.log.Info("email sent", zap.String("to", recipient), zap.String("id", sent.Id))
	return nil
}
