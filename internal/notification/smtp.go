package notification

import (
	"context"
	"fmt"

	"PlacementHub/internal/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPSender delivers plain-text mail through an SMTP relay (Gmail by
// default, authenticated with an app password).
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

func NewSMTPSender(cfg config.MailConfig, log *zap.Logger) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.From,
		log:    log,
	}
}

func (s *SMTPSender) Send(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(s.message(recipient, subject, body)); err != nil {
		return fmt.Errorf("send email via smtp: %w", err)
	}
	s.log.Info("email sent", zap.String("to", recipient))
	return nil
}

func (s *SMTPSender) message(recipient, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}
