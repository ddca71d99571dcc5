package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGrid delivers mail through the SendGrid v3 API.
type SendGrid struct {
	key    string
	from   *sgmail.Email
	logger zerolog.Logger
}

// NewSendGrid constructs a SendGrid mailer.
func NewSendGrid(key, fromName, fromEmail string, logger zerolog.Logger) *SendGrid {
	return &SendGrid{
		key:    key,
		from:   sgmail.NewEmail(fromName, fromEmail),
		logger: logger.With().Str("component", "sendgrid").Logger(),
	}
}

// Send posts the message and returns the X-Message-Id assigned by SendGrid.
func (s *SendGrid) Send(ctx context.Context, msg Message) (string, error) {
	if !msg.HasRecipients() {
		return "", ErrNoRecipient
	}

	client := sendgrid.NewSendClient(s.key)
	res, err := client.SendWithContext(ctx, s.prepare(msg))
	if err != nil {
		return "", fmt.Errorf("sendgrid request failed: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("sendgrid rejected message: status %d: %s", res.StatusCode, strings.TrimSpace(res.Body))
	}

	messageID := headerValue(res.Headers, "X-Message-Id")
	s.logger.Info().Str("message_id", messageID).Int("status", res.StatusCode).Msg("mail accepted")
	return messageID, nil
}

func (s *SendGrid) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)

	if msg.Text != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}

	for _, at := range msg.Attachments {
		m.AddAttachment(&sgmail.Attachment{
			Content:     base64.StdEncoding.EncodeToString(at.Content),
			Type:        at.ContentType,
			Filename:    at.Filename,
			Disposition: "attachment",
		})
	}

	return m
}

func headerValue(headers map[string][]string, key string) string {
	if values := headers[key]; len(values) > 0 {
		return values[0]
	}
	for k, values := range headers {
		if strings.EqualFold(k, key) && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
