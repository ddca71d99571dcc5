package service

import (
	"bytes"
	"context"
	"html/template"
	"net/mail"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/paperdrop-api/internal/admission"
	"github.com/noah-isme/paperdrop-api/internal/models"
	"github.com/noah-isme/paperdrop-api/internal/observability"
	"github.com/noah-isme/paperdrop-api/pkg/mailer"
)

const notificationTimeout = 30 * time.Second

// NotificationResult records what happened to the submission email.
type NotificationResult struct {
	Status    string
	MessageID string
	Error     string
}

// SubmissionNotice carries what the notification email needs.
type SubmissionNotice struct {
	StudentName     string
	StudentEmail    string
	AssignmentTitle string
	Filename        string
	SubmittedAt     time.Time
	Content         []byte
}

// SubmissionNotifier sends the submission email. It never fails the caller;
// the outcome is reported in the result instead.
type SubmissionNotifier interface {
	Notify(ctx context.Context, notice SubmissionNotice) NotificationResult
}

type mailNotifier struct {
	mailer     mailer.Mailer
	recipients []mail.Address
	logger     zerolog.Logger
	timeout    time.Duration
}

var submissionEmail = template.Must(template.New("submission").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">New Assignment Submission</h2>
  <p><strong>Student:</strong> {{.StudentName}} ({{.StudentEmail}})</p>
  <p><strong>Assignment:</strong> {{.AssignmentTitle}}</p>
  <p><strong>Filename:</strong> {{.Filename}}</p>
  <p><strong>Submitted at:</strong> {{.SubmittedAt.Format "2006-01-02 15:04:05 MST"}}</p>
  <p>Please find the attached PDF submission.</p>
</div>`))

// NewMailNotifier sends submission emails to the configured recipients through m.
func NewMailNotifier(m mailer.Mailer, recipients []mail.Address, logger zerolog.Logger) SubmissionNotifier {
	return &mailNotifier{
		mailer:     m,
		recipients: recipients,
		logger:     logger.With().Str("component", "submission_notifier").Logger(),
		timeout:    notificationTimeout,
	}
}

func (n *mailNotifier) Notify(ctx context.Context, notice SubmissionNotice) NotificationResult {
	result := n.deliver(ctx, notice)
	observability.SubmissionNotifications().WithLabelValues(result.Status).Inc()
	return result
}

func (n *mailNotifier) deliver(ctx context.Context, notice SubmissionNotice) NotificationResult {
	if n.mailer == nil || len(n.recipients) == 0 {
		return NotificationResult{Status: models.NotificationSkipped}
	}

	var body bytes.Buffer
	if err := submissionEmail.Execute(&body, notice); err != nil {
		n.logger.Error().Err(err).Msg("failed to render submission email")
		return NotificationResult{Status: models.NotificationFailed, Error: err.Error()}
	}

	msg := mailer.Message{
		To:      n.recipients,
		Subject: "New Assignment Submission: " + notice.AssignmentTitle,
		HTML:    body.String(),
		Attachments: []mailer.Attachment{{
			Filename:    notice.Filename,
			ContentType: admission.PDFContentType,
			Content:     notice.Content,
		}},
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	messageID, err := n.mailer.Send(sendCtx, msg)
	if err != nil {
		n.logger.Warn().Err(err).Str("filename", notice.Filename).Msg("submission email failed")
		return NotificationResult{Status: models.NotificationFailed, Error: err.Error()}
	}

	return NotificationResult{Status: models.NotificationSent, MessageID: messageID}
}
