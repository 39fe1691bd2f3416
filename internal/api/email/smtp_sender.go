package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/leadstream-dev/go-leadstream/internal/config"
)

// SMTPSender отправляет письма через обычный SMTP с PLAIN-аутентификацией.
type SMTPSender struct {
	addr   string
	from   string
	auth   smtp.Auth
	logger *slog.Logger
}

func NewSMTPSender(cfg *config.Config, logger *slog.Logger) *SMTPSender {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}

	return &SMTPSender{
		addr:   fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:   cfg.SMTPFrom,
		auth:   auth,
		logger: logger,
	}
}

func (s *SMTPSender) SendEmail(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.from, to, subject, body)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("ошибка при отправке письма: %w", err)
	}

	s.logger.Debug("Письмо отправлено", "to", to, "subject", subject)

	return nil
}
