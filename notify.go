package ward

import "context"

// Message is a composed notification ready for delivery. HTML and Text are
// alternative bodies; either may be empty, not both.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers composed messages. The engine formats bodies from
// configured templates; delivery mechanics (SMTP, queues) are the mailer's
// concern. mail/smtpmailer is the reference implementation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NopMailer drops every message. Useful default for tests and hosts that
// wire delivery elsewhere.
type NopMailer struct{}

// Send discards msg.
func (NopMailer) Send(context.Context, Message) error { return nil }
