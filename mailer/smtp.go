package mailer

import (
	"context"
	"fmt"
	"strings"

	mail "github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPSender delivers messages through an authenticated SMTP submission
// endpoint (the deployment uses a Gmail app password).
type SMTPSender struct {
	client *mail.Client
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("mailer: smtp host is required")
	}
	client, err := mail.NewClient(
		strings.TrimSpace(cfg.Host),
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("mailer: build smtp client: %w", err)
	}
	return &SMTPSender{client: client}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("mailer: smtp sender is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	out := mail.NewMsg()
	if err := out.FromFormat(msg.FromName, msg.From); err != nil {
		return fmt.Errorf("mailer: set sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("mailer: set recipient: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextHTML, msg.HTML)

	if err := s.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("mailer: send email: %w", err)
	}
	return nil
}
