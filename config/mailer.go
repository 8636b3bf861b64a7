package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail/v2"

	"proofok-api/models"
)

// Mailer delivers composed notifications over SMTP.
type Mailer struct {
	cfg         MailConfig
	now         func() time.Time
	dialAndSend func(d *mail.Dialer, m *mail.Message) error
}

// NewMailer builds a Mailer from the SMTP settings.
func NewMailer(cfg MailConfig) *Mailer {
	return &Mailer{
		cfg: cfg,
		now: time.Now,
		dialAndSend: func(d *mail.Dialer, m *mail.Message) error {
			return d.DialAndSend(m)
		},
	}
}

// Endpoint returns host:port of the SMTP server.
func (m *Mailer) Endpoint() string {
	return m.cfg.Endpoint()
}

// Send opens one SMTP session and delivers msg to the configured recipients.
// go-mail has no context support, so ctx is only checked before dialing; the
// session itself is bounded by SMTP_TIMEOUT.
func (m *Mailer) Send(ctx context.Context, msg models.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to := m.cfg.Recipients()
	if len(to) == 0 {
		return fmt.Errorf("smtp not configured (TO_EMAIL)")
	}
	if m.cfg.Host == "" || m.cfg.From == "" {
		return fmt.Errorf("smtp not configured (SMTP_HOST/FROM_EMAIL)")
	}
	return m.dialAndSend(m.dialer(), m.buildMessage(to, msg))
}

func (m *Mailer) buildMessage(to []string, msg models.MailMessage) *mail.Message {
	message := mail.NewMessage()
	message.SetHeader("From", m.cfg.From)
	message.SetHeader("To", to...)
	message.SetHeader("Subject", msg.Subject)
	message.SetDateHeader("Date", m.now())
	message.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		message.AddAlternative("text/html", msg.HTML)
	}
	return message
}

func (m *Mailer) dialer() *mail.Dialer {
	d := mail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	d.Timeout = m.cfg.Timeout()
	d.RetryFailure = false

	// SMTP_SSL wraps the connection in TLS from the first byte (port 465);
	// otherwise upgrade with STARTTLS when the server offers it.
	d.SSL = m.cfg.SSL
	if m.cfg.SSL {
		d.StartTLSPolicy = mail.NoStartTLS
	} else {
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}

	d.TLSConfig = &tls.Config{
		ServerName:         m.cfg.Host,
		InsecureSkipVerify: m.cfg.SkipTLSVerify, // dev only
	}
	return d
}
