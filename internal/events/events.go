package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Event names; the published subject is "<prefix>.<name>".
const (
	SubmissionCreated = "submission.created"
	AssignmentDeleted = "assignment.deleted"
)

// Publisher emits domain events. Publishing is fire-and-forget for callers.
type Publisher interface {
	Publish(ctx context.Context, name string, data interface{}) error
	Close()
}

// Envelope wraps every published payload.
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Source     string      `json:"source"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// SubmissionCreatedEvent is published after a submission is stored.
type SubmissionCreatedEvent struct {
	SubmissionID       uint      `json:"submission_id"`
	AssignmentID       uint      `json:"assignment_id"`
	StudentID          uint      `json:"student_id"`
	Filename           string    `json:"filename"`
	NotificationStatus string    `json:"notification_status"`
	UploadedAt         time.Time `json:"uploaded_at"`
}

// AssignmentDeletedEvent is published after an assignment and its submissions are removed.
type AssignmentDeletedEvent struct {
	AssignmentID       uint  `json:"assignment_id"`
	DeletedBy          uint  `json:"deleted_by"`
	SubmissionsRemoved int64 `json:"submissions_removed"`
}

// NATS publishes events as JSON on core NATS subjects.
type NATS struct {
	conn   *nats.Conn
	prefix string
	source string
	logger zerolog.Logger
}

// Connect dials the NATS server.
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name(name), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to nats: %w", err)
	}
	return conn, nil
}

// NewNATS wraps an established connection.
func NewNATS(conn *nats.Conn, prefix string, logger zerolog.Logger) *NATS {
	return &NATS{
		conn:   conn,
		prefix: strings.Trim(prefix, "."),
		source: uuid.NewString(),
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *NATS) Publish(_ context.Context, name string, data interface{}) error {
	subject := Subject(p.prefix, name)
	payload, err := encode(p.source, name, data, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.logger.Debug().Str("subject", subject).Msg("event published")
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATS) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to drain nats connection")
		p.conn.Close()
	}
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, string, interface{}) error { return nil }

func (Noop) Close() {}

// Subject joins the prefix and event name.
func Subject(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func encode(source, name string, data interface{}, at time.Time) ([]byte, error) {
	payload, err := json.Marshal(Envelope{
		ID:         uuid.NewString(),
		Type:       name,
		Source:     source,
		OccurredAt: at,
		Data:       data,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", name, err)
	}
	return payload, nil
}
