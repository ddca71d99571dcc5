package service

import (
	"context"
	"time"

	"github.com/noah-isme/paperdrop-api/internal/dto"
	"github.com/noah-isme/paperdrop-api/internal/models"
	"github.com/noah-isme/paperdrop-api/internal/repository"
)

const upcomingDeadlineWindow = 5

// StatsService builds the role dashboards.
type StatsService interface {
	Admin(ctx context.Context) (dto.AdminStatsResponse, error)
	Monitor(ctx context.Context, actor models.User) (dto.MonitorStatsResponse, error)
	Student(ctx context.Context, actor models.User) (dto.StudentStatsResponse, error)
}

type statsService struct {
	users       repository.UserRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	now         func() time.Time
}

// NewStatsService creates a stats service.
func NewStatsService(users repository.UserRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository) StatsService {
	return &statsService{
		users:       users,
		assignments: assignments,
		submissions: submissions,
		now:         time.Now,
	}
}

func (s *statsService) Admin(ctx context.Context) (dto.AdminStatsResponse, error) {
	var (
		stats       dto.AdminStatsResponse
		err         error
		notApproved = false
	)

	if stats.TotalUsers, err = s.users.Count(ctx, repository.UserFilter{}); err != nil {
		return dto.AdminStatsResponse{}, err
	}
	if stats.PendingApprovals, err = s.users.Count(ctx, repository.UserFilter{Approved: &notApproved}); err != nil {
		return dto.AdminStatsResponse{}, err
	}
	if stats.TotalAssignments, err = s.assignments.Count(ctx, repository.AssignmentFilter{}); err != nil {
		return dto.AdminStatsResponse{}, err
	}
	if stats.TotalSubmissions, err = s.submissions.Count(ctx, repository.SubmissionFilter{}); err != nil {
		return dto.AdminStatsResponse{}, err
	}

	return stats, nil
}

// Monitor reports the actor's own assignments, all submissions and the number
// of deadlines in the next few assignments still open.
func (s *statsService) Monitor(ctx context.Context, actor models.User) (dto.MonitorStatsResponse, error) {
	created, err := s.assignments.Count(ctx, repository.AssignmentFilter{CreatedByID: &actor.ID})
	if err != nil {
		return dto.MonitorStatsResponse{}, err
	}

	submissions, err := s.submissions.Count(ctx, repository.SubmissionFilter{})
	if err != nil {
		return dto.MonitorStatsResponse{}, err
	}

	upcoming, err := s.assignments.Upcoming(ctx, s.now(), upcomingDeadlineWindow)
	if err != nil {
		return dto.MonitorStatsResponse{}, err
	}

	return dto.MonitorStatsResponse{
		AssignmentsCreated: created,
		TotalSubmissions:   submissions,
		UpcomingDeadlines:  len(upcoming),
	}, nil
}

func (s *statsService) Student(ctx context.Context, actor models.User) (dto.StudentStatsResponse, error) {
	total, err := s.assignments.Count(ctx, repository.AssignmentFilter{})
	if err != nil {
		return dto.StudentStatsResponse{}, err
	}

	submitted, err := s.submissions.Count(ctx, repository.SubmissionFilter{StudentID: &actor.ID})
	if err != nil {
		return dto.StudentStatsResponse{}, err
	}

	next, err := s.assignments.Upcoming(ctx, s.now(), 1)
	if err != nil {
		return dto.StudentStatsResponse{}, err
	}

	stats := dto.StudentStatsResponse{
		AssignmentsAvailable: total,
		Submitted:            submitted,
		Pending:              total - submitted,
	}
	if stats.Pending < 0 {
		stats.Pending = 0
	}
	if len(next) > 0 {
		deadline := next[0].Deadline
		stats.NextDeadline = &deadline
	}

	return stats, nil
}
