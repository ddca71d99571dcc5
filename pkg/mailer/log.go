package mailer

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Log writes messages to the logger instead of sending them. Used when no provider is configured.
type Log struct {
	logger zerolog.Logger
}

// NewLog constructs a logging mailer.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger.With().Str("component", "log_mailer").Logger()}
}

func (l *Log) Send(_ context.Context, msg Message) (string, error) {
	if !msg.HasRecipients() {
		return "", ErrNoRecipient
	}

	id := "log-" + uuid.NewString()
	attachments := make([]string, 0, len(msg.Attachments))
	for _, at := range msg.Attachments {
		attachments = append(attachments, at.Filename)
	}

	l.logger.Info().
		Str("message_id", id).
		Int("recipients", len(msg.To)).
		Str("subject", msg.Subject).
		Strs("attachments", attachments).
		Msg("mail delivery simulated")

	return id, nil
}
