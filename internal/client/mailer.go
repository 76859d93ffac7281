// SMTP mail transport used for verification-code delivery.
//
// Environment:
//   - SMTP_HOST, SMTP_PORT
//   - SMTP_USERNAME, SMTP_PASSWORD
//   - SMTP_FROM: sender address shown to recipients
package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/wneessen/go-mail"
)

// Mailer wraps a single SMTP client. The underlying connection is not
// safe for concurrent sends, so every Send holds mu for the duration of
// the dial+send and nothing else.
type Mailer struct {
	mu     sync.Mutex
	client *mail.Client
	from   string
}

func NewMailer(host string, port int, username, password, from string) (*Mailer, error) {
	c, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}
	return &Mailer{client: c, from: from}, nil
}

// Send delivers one HTML message. Callers that must not block on SMTP
// round-trips run it from a goroutine; failures are theirs to log.
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("mailer: invalid sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mailer: invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send to %s failed: %w", to, err)
	}
	return nil
}
