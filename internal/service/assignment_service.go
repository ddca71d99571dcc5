package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/paperdrop-api/internal/authz"
	"github.com/noah-isme/paperdrop-api/internal/dto"
	"github.com/noah-isme/paperdrop-api/internal/events"
	"github.com/noah-isme/paperdrop-api/internal/models"
	"github.com/noah-isme/paperdrop-api/internal/repository"
	"github.com/noah-isme/paperdrop-api/internal/utils"
)

// AssignmentService exposes assignment domain use cases.
type AssignmentService interface {
	List(ctx context.Context, viewer models.User) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, actor models.User, payload dto.AssignmentRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, actor models.User, id uint, payload dto.AssignmentRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor models.User, id uint) error
}

type assignmentService struct {
	repo        repository.AssignmentRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	events      events.Publisher
	logger      zerolog.Logger
	tracer      trace.Tracer
	titles      *bluemonday.Policy
	bodies      *bluemonday.Policy
	now         func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, submissions repository.SubmissionRepository, validate *validator.Validate, publisher events.Publisher, logger zerolog.Logger) AssignmentService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &assignmentService{
		repo:        repo,
		submissions: submissions,
		validator:   validate,
		events:      publisher,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/paperdrop-api/internal/service/assignment"),
		titles:      bluemonday.StrictPolicy(),
		bodies:      bluemonday.UGCPolicy(),
		now:         time.Now,
	}
}

// List returns every assignment, newest first. Students additionally see whether
// and when they submitted each one.
func (s *assignmentService) List(ctx context.Context, viewer models.User) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := dto.NewAssignmentResponseSlice(assignments)
	if viewer.Role != models.RoleStudent {
		return responses, nil
	}

	submitted, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &viewer.ID})
	if err != nil {
		return nil, err
	}

	uploadedAt := make(map[uint]time.Time, len(submitted))
	for _, submission := range submitted {
		uploadedAt[submission.AssignmentID] = submission.UploadedAt
	}

	for i := range responses {
		var at *time.Time
		if value, ok := uploadedAt[responses[i].ID]; ok {
			at = &value
		}
		responses[i] = responses[i].WithSubmissionStatus(at)
	}

	return responses, nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.find(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, actor models.User, payload dto.AssignmentRequest) (dto.AssignmentResponse, error) {
	deadline, err := s.prepare(&payload)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if !deadline.After(s.now()) {
		return dto.AssignmentResponse{}, ErrDeadlineNotInFuture
	}

	assignment := models.Assignment{
		Title:       payload.Title,
		Description: payload.Description,
		Deadline:    deadline,
		CreatedByID: actor.ID,
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}
	assignment.CreatedBy = actor

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("created_by", actor.ID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

// Update replaces title, description and deadline. The deadline may be moved into the past.
func (s *assignmentService) Update(ctx context.Context, actor models.User, id uint, payload dto.AssignmentRequest) (dto.AssignmentResponse, error) {
	deadline, err := s.prepare(&payload)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.find(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if !authz.CanManageAssignment(actor, assignment) {
		return dto.AssignmentResponse{}, ErrNotAssignmentOwner
	}

	assignment.Title = payload.Title
	assignment.Description = payload.Description
	assignment.Deadline = deadline

	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("updated_by", actor.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment), nil
}

// Delete removes the assignment and all of its submissions atomically.
func (s *assignmentService) Delete(ctx context.Context, actor models.User, id uint) error {
	ctx, span := s.tracer.Start(ctx, "assignment.delete", trace.WithAttributes(
		attribute.Int("assignment.id", int(id)),
		attribute.Int("actor.id", int(actor.ID)),
	))
	defer span.End()

	assignment, err := s.find(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "lookup failed")
		return err
	}

	if !authz.CanManageAssignment(actor, assignment) {
		span.SetStatus(codes.Error, "forbidden")
		return ErrNotAssignmentOwner
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	span.SetAttributes(attribute.Int64("submissions.removed", removed))
	span.SetStatus(codes.Ok, "deleted")

	s.logger.Info().Uint("assignment_id", id).Int64("submissions_removed", removed).Uint("deleted_by", actor.ID).Msg("assignment deleted")

	event := events.AssignmentDeletedEvent{AssignmentID: id, DeletedBy: actor.ID, SubmissionsRemoved: removed}
	if err := s.events.Publish(ctx, events.AssignmentDeleted, event); err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", id).Msg("failed to publish assignment deleted event")
	}

	return nil
}

func (s *assignmentService) find(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

// prepare sanitizes the payload in place, validates it and parses the deadline.
func (s *assignmentService) prepare(payload *dto.AssignmentRequest) (time.Time, error) {
	payload.Title = strings.TrimSpace(html.UnescapeString(s.titles.Sanitize(payload.Title)))
	payload.Description = strings.TrimSpace(s.bodies.Sanitize(payload.Description))
	payload.Deadline = strings.TrimSpace(payload.Deadline)

	if err := s.validator.Struct(payload); err != nil {
		return time.Time{}, err
	}

	return utils.ParseISODateTime(payload.Deadline)
}
