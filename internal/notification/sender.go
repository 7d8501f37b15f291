package notification

import (
	"context"
	"fmt"

	"PlacementHub/internal/config"

	"go.uber.org/zap"
)

// Sender delivers a single message to one recipient. Implementations return
// an error when the provider did not accept the message; callers decide what
// a failure means for their operation.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// NewSender picks the transport named by the mail configuration.
func NewSender(cfg *config.Config, log *zap.Logger) (Sender, error) {
	switch cfg.Mail.Transport {
	case config.MailTransportResend:
		sender, err := NewResendSender(cfg.Mail, log)
		if err != nil {
			return nil, err
		}
		log.Info("email transport initialized", zap.String("transport", "resend"))
		return sender, nil
	case config.MailTransportSMTP:
		log.Info("email transport initialized", zap.String("transport", "smtp"), zap.String("host", cfg.Mail.SMTPHost))
		return NewSMTPSender(cfg.Mail, log), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Mail.Transport)
	}
}
