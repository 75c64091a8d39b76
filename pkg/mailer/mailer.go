package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
)

type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers a message and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type resendMailer struct {
	client *resend.Client
}

// NewResend sends through the Resend API.
func NewResend(apiKey string) Mailer {
	return &resendMailer{client: resend.NewClient(apiKey)}
}

func (m *resendMailer) Send(ctx context.Context, msg Message) (string, error) {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	return sent.Id, nil
}

type logMailer struct {
	log *slog.Logger
}

// NewLog only logs messages; used when no API key is configured.
func NewLog(log *slog.Logger) Mailer {
	return &logMailer{log: log}
}

func (m *logMailer) Send(ctx context.Context, msg Message) (string, error) {
	id := uuid.NewString()
	m.log.Info("email not delivered, no mail provider configured",
		"id", id, "to", msg.To, "subject", msg.Subject)
	return id, nil
}
