package mail

import "context"

// Mailer defines the interface contract for delivering sign-in links.
type Mailer interface {
	SendLoginLink(ctx context.Context, email, link string) error
	Name() string
}
