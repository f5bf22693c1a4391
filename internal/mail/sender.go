package mail

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// Sender delivers a rendered template to one recipient.
type Sender interface {
	SendMail(to, subject, templateName string, locals map[string]string) error
}

// SMTPSender sends plain-text mail over authenticated SMTP.
type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Log      *zap.Logger
}

func (s *SMTPSender) SendMail(to, subject, templateName string, locals map[string]string) error {
	body, err := Render(templateName, locals)
	if err != nil {
		return err
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		s.From, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Password, s.Host)
	}
	if err := smtp.SendMail(addr, auth, s.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	s.Log.Info("mail sent", zap.String("to", to), zap.String("template", templateName))
	return nil
}

// LogSender is the SEND_EMAIL=false path: it renders and logs instead of
// delivering, which keeps local runs and tests offline.
type LogSender struct {
	Log *zap.Logger
}

func (s *LogSender) SendMail(to, subject, templateName string, locals map[string]string) error {
	body, err := Render(templateName, locals)
	if err != nil {
		return err
	}
	s.Log.Info("mail suppressed",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("template", templateName),
		zap.String("body", body),
	)
	return nil
}
