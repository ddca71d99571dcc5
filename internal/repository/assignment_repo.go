package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/paperdrop-api/internal/models"
)

// AssignmentFilter narrows assignment counts.
type AssignmentFilter struct {
	CreatedByID   *uint
	DeadlineAfter *time.Time
}

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	List(ctx context.Context) ([]models.Assignment, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id uint) (int64, error)
	Count(ctx context.Context, filter AssignmentFilter) (int64, error)
	Upcoming(ctx context.Context, after time.Time, limit int) ([]models.Assignment, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Order("created_at DESC").
		Order("id DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).Preload("CreatedBy").First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Omit("CreatedBy").Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Omit("CreatedBy").Save(assignment).Error
}

// Delete removes the assignment and every submission referencing it in one transaction.
// It returns the number of submissions removed.
func (r *assignmentRepository) Delete(ctx context.Context, id uint) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Assignment{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		children := tx.Where("assignment_id = ?", id).Delete(&models.Submission{})
		if children.Error != nil {
			return children.Error
		}
		removed = children.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

func (r *assignmentRepository) Count(ctx context.Context, filter AssignmentFilter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Assignment{})

	if filter.CreatedByID != nil {
		query = query.Where("created_by_id = ?", *filter.CreatedByID)
	}

	if filter.DeadlineAfter != nil {
		query = query.Where("deadline > ?", *filter.DeadlineAfter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

// Upcoming returns assignments whose deadline is after the reference time, soonest first.
func (r *assignmentRepository) Upcoming(ctx context.Context, after time.Time, limit int) ([]models.Assignment, error) {
	query := r.db.WithContext(ctx).Where("deadline > ?", after).Order("deadline ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var assignments []models.Assignment
	if err := query.Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}
