package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *smtpService) SendWelcome(ctx context.Context, to string, name string) error {
	body := fmt.Sprintf("Hi %s,\n\nWelcome to Servease. Your account is ready.\n", name)
	return s.SendCustom(ctx, to, "Welcome to Servease", body)
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
