package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/paperdrop-api/internal/admission"
	"github.com/noah-isme/paperdrop-api/internal/dto"
	"github.com/noah-isme/paperdrop-api/internal/events"
	"github.com/noah-isme/paperdrop-api/internal/models"
	"github.com/noah-isme/paperdrop-api/internal/observability"
	"github.com/noah-isme/paperdrop-api/internal/repository"
	"github.com/noah-isme/paperdrop-api/pkg/storage"
)

// Outcome labels for the admission counter besides admission rejection reasons.
const (
	outcomeAccepted  = "accepted"
	outcomeNotFound  = "assignment_not_found"
	outcomeDeadline  = "deadline_passed"
	outcomeDuplicate = "duplicate"
	outcomeStorage   = "storage_error"
	outcomePersist   = "persist_error"
)

// FileAdmitter validates an uploaded file and reads it into memory.
type FileAdmitter interface {
	Admit(header *multipart.FileHeader) (admission.Upload, error)
	Policy() admission.Policy
	MaxBytes() int64
}

// SubmissionService implements the submission workflow and staff listings.
type SubmissionService interface {
	Submit(ctx context.Context, student models.User, assignmentID uint, file *multipart.FileHeader) (dto.SubmitResult, error)
	ListForAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error)
	List(ctx context.Context) ([]dto.SubmissionResponse, error)
	UploadPolicy() dto.UploadPolicyResponse
}

type submissionService struct {
	filter      FileAdmitter
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	storage     storage.Storage
	notifier    SubmissionNotifier
	events      events.Publisher
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService wires the submission pipeline.
func NewSubmissionService(
	filter FileAdmitter,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	store storage.Storage,
	notifier SubmissionNotifier,
	publisher events.Publisher,
	logger zerolog.Logger,
) SubmissionService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &submissionService{
		filter:      filter,
		assignments: assignments,
		submissions: submissions,
		storage:     store,
		notifier:    notifier,
		events:      publisher,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/paperdrop-api/internal/service/submission"),
		now:         time.Now,
	}
}

// Submit runs admission, lookup, deadline and duplicate checks, stores the file,
// sends the notification email and records the submission, in that order.
// Storage failures abort the request; email failures are recorded on the submission.
func (s *submissionService) Submit(ctx context.Context, student models.User, assignmentID uint, file *multipart.FileHeader) (dto.SubmitResult, error) {
	ctx, span := s.tracer.Start(ctx, "submission.submit", trace.WithAttributes(
		attribute.Int("assignment.id", int(assignmentID)),
		attribute.Int("student.id", int(student.ID)),
	))
	defer span.End()

	upload, err := s.filter.Admit(file)
	if err != nil {
		var rejection *admission.Rejection
		if errors.As(err, &rejection) {
			s.reject(span, rejection.Reason, err)
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, "read failed")
		}
		return dto.SubmitResult{}, err
	}
	span.SetAttributes(
		attribute.String("upload.filename", upload.Filename),
		attribute.Int64("upload.size_bytes", upload.Size()),
	)

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.reject(span, outcomeNotFound, ErrAssignmentNotFound)
			return dto.SubmitResult{}, ErrAssignmentNotFound
		}
		span.RecordError(err)
		return dto.SubmitResult{}, err
	}

	submittedAt := s.now()
	if assignment.IsPastDue(submittedAt) {
		s.reject(span, outcomeDeadline, ErrDeadlinePassed)
		return dto.SubmitResult{}, ErrDeadlinePassed
	}

	if _, err := s.submissions.GetByAssignmentAndStudent(ctx, assignment.ID, student.ID); err == nil {
		s.reject(span, outcomeDuplicate, ErrAlreadySubmitted)
		return dto.SubmitResult{}, ErrAlreadySubmitted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		return dto.SubmitResult{}, err
	}

	object, err := s.store(ctx, upload)
	if err != nil {
		s.reject(span, outcomeStorage, err)
		s.logger.Error().Err(err).Uint("assignment_id", assignment.ID).Uint("student_id", student.ID).Msg("failed to store submission file")
		return dto.SubmitResult{}, err
	}

	notification := s.notifier.Notify(ctx, SubmissionNotice{
		StudentName:     student.Name,
		StudentEmail:    student.Email,
		AssignmentTitle: assignment.Title,
		Filename:        upload.Filename,
		SubmittedAt:     submittedAt,
		Content:         upload.Content,
	})
	span.SetAttributes(attribute.String("notification.status", notification.Status))

	record := models.Submission{
		AssignmentID:       assignment.ID,
		StudentID:          student.ID,
		Filename:           upload.Filename,
		NotificationStatus: notification.Status,
		NotificationError:  notification.Error,
		SharedLink:         object.SharedLink,
		DirectLink:         object.DirectLink,
		StorageMetadata:    datatypes.JSONMap(object.Metadata()),
		UploadedAt:         submittedAt,
	}
	if notification.MessageID != "" {
		messageID := notification.MessageID
		record.EmailMessageID = &messageID
	}

	if err := s.submissions.Create(ctx, &record); err != nil {
		s.discard(ctx, object)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.reject(span, outcomeDuplicate, ErrAlreadySubmitted)
			return dto.SubmitResult{}, ErrAlreadySubmitted
		}
		s.reject(span, outcomePersist, err)
		return dto.SubmitResult{}, err
	}

	observability.SubmissionAdmissions().WithLabelValues(outcomeAccepted).Inc()
	span.SetStatus(codes.Ok, "submitted")

	s.logger.Info().
		Uint("submission_id", record.ID).
		Uint("assignment_id", assignment.ID).
		Uint("student_id", student.ID).
		Str("notification_status", record.NotificationStatus).
		Msg("submission stored")

	created := events.SubmissionCreatedEvent{
		SubmissionID:       record.ID,
		AssignmentID:       record.AssignmentID,
		StudentID:          record.StudentID,
		Filename:           record.Filename,
		NotificationStatus: record.NotificationStatus,
		UploadedAt:         record.UploadedAt,
	}
	if err := s.events.Publish(ctx, events.SubmissionCreated, created); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", record.ID).Msg("failed to publish submission created event")
	}

	return dto.NewSubmitResult(record), nil
}

func (s *submissionService) ListForAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error) {
	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	items, err := s.submissions.List(ctx, repository.SubmissionFilter{AssignmentID: &assignmentID})
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(items), nil
}

func (s *submissionService) List(ctx context.Context) ([]dto.SubmissionResponse, error) {
	items, err := s.submissions.List(ctx, repository.SubmissionFilter{})
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(items), nil
}

func (s *submissionService) UploadPolicy() dto.UploadPolicyResponse {
	policy := s.filter.Policy()
	return dto.UploadPolicyResponse{
		Policy:       policy.Name,
		Pattern:      policy.Pattern.String(),
		ContentTypes: []string{admission.PDFContentType},
		MaxBytes:     s.filter.MaxBytes(),
		Description:  policy.Description,
	}
}

func (s *submissionService) store(ctx context.Context, upload admission.Upload) (storage.Object, error) {
	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	return s.storage.Upload(ctx, upload.Filename, bytes.NewReader(upload.Content))
}

// discard removes a stored file whose record could not be written.
func (s *submissionService) discard(ctx context.Context, object storage.Object) {
	if err := s.storage.Delete(context.WithoutCancel(ctx), object); err != nil {
		s.logger.Warn().Err(err).Str("key", object.Key).Msg("failed to remove orphaned submission file")
	}
}

func (s *submissionService) reject(span trace.Span, outcome string, err error) {
	observability.SubmissionAdmissions().WithLabelValues(outcome).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
}
