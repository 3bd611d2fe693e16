// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Email is a single outbound message. Either body may be empty, but not both.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers email. Implemented by *Mailer; tests substitute a recorder.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Mailer sends email over SMTP.
type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
	log    *zap.Logger
}

// New builds a Mailer. No connection is made until the first Send.
func New(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		log:    logger,
	}
}

// Send dials the SMTP server and delivers e. gomail has no context support,
// so ctx is only checked before dialing.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.To == "" {
		return fmt.Errorf("mailer: empty recipient")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.cfg.From, m.cfg.FromName))
	msg.SetHeader("To", e.To)
	msg.SetHeader("Subject", e.Subject)
	switch {
	case e.TextBody != "" && e.HTMLBody != "":
		msg.SetBody("text/plain", e.TextBody)
		msg.AddAlternative("text/html", e.HTMLBody)
	case e.HTMLBody != "":
		msg.SetBody("text/html", e.HTMLBody)
	default:
		msg.SetBody("text/plain", e.TextBody)
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Warn("email send failed", zap.String("to", e.To), zap.String("subject", e.Subject), zap.Error(err))
		return err
	}
	m.log.Debug("email sent", zap.String("to", e.To), zap.String("subject", e.Subject))
	return nil
}
