package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/paperdrop-api/internal/dto"
	"github.com/noah-isme/paperdrop-api/internal/models"
	"github.com/noah-isme/paperdrop-api/internal/repository"
)

// UserService exposes account administration.
type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	Pending(ctx context.Context) ([]dto.UserResponse, error)
	Approve(ctx context.Context, id uint) (dto.UserResponse, error)
	UpdateRole(ctx context.Context, id uint, payload dto.UpdateRoleRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, id uint, actorID uint) error
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the user administration service.
func NewUserService(repo repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx, repository.UserFilter{})
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Pending(ctx context.Context) ([]dto.UserResponse, error) {
	approved := false
	users, err := s.repo.List(ctx, repository.UserFilter{Approved: &approved})
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

// Approve is idempotent; approving an approved account succeeds.
func (s *userService) Approve(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.repo.Approve(ctx, id)
	if err != nil {
		return dto.UserResponse{}, mapUserError(err)
	}

	s.logger.Info().Uint("user_id", id).Msg("user approved")
	return dto.NewUserResponse(user), nil
}

func (s *userService) UpdateRole(ctx context.Context, id uint, payload dto.UpdateRoleRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	role, err := models.ParseRole(payload.Role)
	if err != nil {
		return dto.UserResponse{}, ErrInvalidRole
	}

	user, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return dto.UserResponse{}, mapUserError(err)
	}

	s.logger.Info().Uint("user_id", id).Str("role", role.String()).Msg("user role updated")
	return dto.NewUserResponse(user), nil
}

// Delete removes the account and its submissions.
func (s *userService) Delete(ctx context.Context, id uint, actorID uint) error {
	if id == actorID {
		return ErrSelfDelete
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapUserError(err)
	}

	s.logger.Info().Uint("user_id", id).Uint("deleted_by", actorID).Msg("user deleted")
	return nil
}

func mapUserError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
