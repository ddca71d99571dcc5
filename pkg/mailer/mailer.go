package mailer

import (
	"context"
	"errors"
	"net/mail"
	"strings"
)

// ErrNoRecipient is returned when a message has nobody to go to.
var ErrNoRecipient = errors.New("message has no recipient")

// Attachment is a file carried by a message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is an outbound email.
type Message struct {
	To          []mail.Address
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// HasRecipients reports whether at least one address is set.
func (m Message) HasRecipients() bool {
	for _, to := range m.To {
		if strings.TrimSpace(to.Address) != "" {
			return true
		}
	}
	return false
}

// Mailer delivers messages and returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ParseRecipients splits a comma separated address list. Invalid entries are skipped.
func ParseRecipients(list string) []mail.Address {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parsed, err := mail.ParseAddressList(list)
	if err == nil {
		out := make([]mail.Address, 0, len(parsed))
		for _, addr := range parsed {
			out = append(out, *addr)
		}
		return out
	}

	var out []mail.Address
	for _, part := range strings.Split(list, ",") {
		if addr, err := mail.ParseAddress(strings.TrimSpace(part)); err == nil {
			out = append(out, *addr)
		}
	}
	return out
}
