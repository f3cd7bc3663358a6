// Package smtpmailer delivers engine mail over SMTP using go-mail. It is
// the production implementation of ward.Mailer; tests and examples usually
// substitute a mock or ward.NopMailer.
package smtpmailer

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"
	"go.uber.org/zap"

	"github.com/davengard/ward"
)

// Config describes the SMTP endpoint.
type Config struct {
	Host string
	Port int
	From string
	User string
	Pass string

	// TLSMode is "auto" (STARTTLS when offered), "ssl" (implicit TLS) or
	// "none". Empty means "auto".
	TLSMode string
	// InsecureSkipVerify disables certificate verification. Dev only.
	InsecureSkipVerify bool
}

// Mailer sends ward.Message values through one SMTP endpoint.
type Mailer struct {
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TLSMode == "" {
		cfg.TLSMode = "auto"
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// Send builds a multipart/alternative message (text plus HTML when both
// bodies are set) and dials the endpoint. go-mail has no context support,
// so ctx is consulted before dialing only.
func (m *Mailer) Send(ctx context.Context, msg ward.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	em := mail.NewMessage()
	em.SetHeader("From", m.cfg.From)
	em.SetHeader("To", msg.To)
	em.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		em.SetBody("text/plain", msg.Text)
	}
	if msg.HTML != "" {
		if msg.Text == "" {
			em.SetBody("text/html", msg.HTML)
		} else {
			em.AddAlternative("text/html", msg.HTML)
		}
	}

	d := mail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         m.cfg.Host,
		InsecureSkipVerify: m.cfg.InsecureSkipVerify,
	}
	switch m.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: m.cfg.InsecureSkipVerify}
	}

	if err := d.DialAndSend(em); err != nil {
		m.logger.Error("smtp send failed",
			zap.String("host", m.cfg.Host),
			zap.Int("port", m.cfg.Port),
			zap.Error(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	m.logger.Debug("email sent",
		zap.String("host", m.cfg.Host),
		zap.String("subject", msg.Subject))
	return nil
}
