package mailer

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
	"go.uber.org/zap"
)

const sendTimeout = 10 * time.Second

// Mailgun sends plain text mail through the Mailgun HTTP API.
type Mailgun struct {
	client *mg.MailgunImpl
	sender string
	log    *zap.Logger
}

// NewMailgun builds a client. An empty apiBase keeps the library default (US region).
func NewMailgun(domain, apiKey, apiBase, sender string, logger *zap.Logger) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{client: client, sender: sender, log: logger}
}

func (m *Mailgun) Send(ctx context.Context, to, subject, text string) error {
	msg := m.client.NewMessage(m.sender, subject, text, to)

	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, id, err := m.client.Send(c, msg)
	if err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}

	m.log.Info("mail sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("id", id),
		zap.String("response", resp),
	)

	return nil
}

// LogNotifier stands in for Mailgun when outbound mail is switched off.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{log: logger}
}

func (n *LogNotifier) Send(_ context.Context, to, subject, text string) error {
	n.log.Info("mail sending disabled, message logged",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("text", text),
	)
	return nil
}
