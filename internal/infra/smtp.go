package infra

import (
	"fmt"
	"net/smtp"

	"ecosort/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer delivers voucher emails through the configured SMTP relay.
type Mailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewMailer wires the relay settings. When no password is configured the
// relay is assumed to accept unauthenticated mail, which is how the dev
// Mailpit container runs.
func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from: fmt.Sprintf("EcoSort <%s>", cfg.SMTPUser),
	}
	if cfg.SMTPPassword != "" {
		m.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return m
}

// SendVoucher emails the redemption voucher to the resident. pdfPath may be
// empty when rendering failed; the code in the body is still delivered.
func (m *Mailer) SendVoucher(to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach voucher pdf: %w", err)
		}
	}
	return e.Send(m.addr, m.auth)
}
