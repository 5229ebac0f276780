package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Compile-time interface check
var _ Mailer = (*SMTP)(nil)

// SMTP delivers sign-in links through a plain SMTP relay.
type SMTP struct {
	addr     string
	host     string
	from     string
	password string
}

// NewSMTP creates a mailer for the given relay. An empty password disables
// authentication (local relays).
func NewSMTP(host string, port int, from, password string) *SMTP {
	return &SMTP{
		addr:     fmt.Sprintf("%s:%d", host, port),
		host:     host,
		from:     from,
		password: password,
	}
}

// SendLoginLink mails the magic link to the address.
func (s *SMTP) SendLoginLink(ctx context.Context, email, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", email)
	b.WriteString("Subject: Tu enlace de acceso\r\n")
	b.WriteString("\r\n")
	b.WriteString("Entra sin contraseñas. Abre este enlace para acceder:\r\n\r\n")
	b.WriteString(link + "\r\n")

	var auth smtp.Auth
	if s.password != "" {
		auth = smtp.PlainAuth("", s.from, s.password, s.host)
	}

	if err := smtp.SendMail(s.addr, auth, s.from, []string{email}, []byte(b.String())); err != nil {
		return fmt.Errorf("send login link: %w", err)
	}
	return nil
}

// Name identifies the mailer in logs.
func (s *SMTP) Name() string {
	return "smtp"
}
