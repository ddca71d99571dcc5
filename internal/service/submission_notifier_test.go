package service

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/paperdrop-api/internal/models"
	"github.com/noah-isme/paperdrop-api/pkg/mailer"
)

type captureMailer struct {
	messages []mailer.Message
	err      error
}

func (c *captureMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.messages = append(c.messages, msg)
	return "sg-123", nil
}

func sampleNotice() SubmissionNotice {
	return SubmissionNotice{
		StudentName:     "王小明",
		StudentEmail:    "wang@example.com",
		AssignmentTitle: "Essay <draft>",
		Filename:        "王小明.pdf",
		SubmittedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Content:         samplePDF,
	}
}

func TestMailNotifierSends(t *testing.T) {
	capture := &captureMailer{}
	recipients := []mail.Address{{Address: "reviewer@example.com"}}
	notifier := NewMailNotifier(capture, recipients, testLogger())

	result := notifier.Notify(context.Background(), sampleNotice())
	require.Equal(t, models.NotificationSent, result.Status)
	require.Equal(t, "sg-123", result.MessageID)

	require.Len(t, capture.messages, 1)
	msg := capture.messages[0]
	require.Equal(t, "New Assignment Submission: Essay <draft>", msg.Subject)
	require.Contains(t, msg.HTML, "王小明")
	require.Contains(t, msg.HTML, "Essay &lt;draft&gt;")
	require.Contains(t, msg.HTML, "2026-03-01 12:00:00 UTC")
	require.Len(t, msg.Attachments, 1)
	require.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	require.Equal(t, samplePDF, msg.Attachments[0].Content)
}

func TestMailNotifierFailureIsReported(t *testing.T) {
	capture := &captureMailer{err: errBoom}
	notifier := NewMailNotifier(capture, []mail.Address{{Address: "reviewer@example.com"}}, testLogger())

	result := notifier.Notify(context.Background(), sampleNotice())
	require.Equal(t, models.NotificationFailed, result.Status)
	require.Equal(t, "boom", result.Error)
	require.Empty(t, result.MessageID)
}

func TestMailNotifierSkipsWithoutRecipients(t *testing.T) {
	capture := &captureMailer{}

	result := NewMailNotifier(capture, nil, testLogger()).Notify(context.Background(), sampleNotice())
	require.Equal(t, models.NotificationSkipped, result.Status)
	require.Empty(t, capture.messages)

	result = NewMailNotifier(nil, []mail.Address{{Address: "reviewer@example.com"}}, testLogger()).Notify(context.Background(), sampleNotice())
	require.Equal(t, models.NotificationSkipped, result.Status)
}
