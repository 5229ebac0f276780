package mail

import (
	"context"
	"log/slog"
)

// Compile-time interface check
var _ Mailer = (*Log)(nil)

// Log is the dev-mode mailer: it writes the sign-in link to the log
// instead of sending mail, so local setups need no SMTP relay.
type Log struct{}

// NewLog creates a log-only mailer.
func NewLog() *Log {
	return &Log{}
}

// SendLoginLink logs the magic link.
func (l *Log) SendLoginLink(ctx context.Context, email, link string) error {
	slog.Info("login link issued",
		"component", "mail",
		"email", email,
		"link", link,
	)
	return nil
}

// Name identifies the mailer in logs.
func (l *Log) Name() string {
	return "log"
}
