package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/paperdrop-api/internal/models"
)

// UserFilter narrows user listings and counts.
type UserFilter struct {
	Approved *bool
	Role     *models.Role
}

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
	Approve(ctx context.Context, id uint) (models.User, error)
	UpdateRole(ctx context.Context, id uint, role models.Role) (models.User, error)
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates a GORM-backed user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	var users []models.User
	if err := r.filtered(ctx, filter).Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) Count(ctx context.Context, filter UserFilter) (int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

func (r *userRepository) Approve(ctx context.Context, id uint) (models.User, error) {
	return r.updateColumn(ctx, id, "approved", true)
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint, role models.Role) (models.User, error) {
	return r.updateColumn(ctx, id, "role", role)
}

// Delete removes the account together with the submissions it owns.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("student_id = ?", id).Delete(&models.Submission{}).Error
	})
}

func (r *userRepository) filtered(ctx context.Context, filter UserFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Approved != nil {
		query = query.Where("approved = ?", *filter.Approved)
	}

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}

	return query
}

func (r *userRepository) updateColumn(ctx context.Context, id uint, column string, value interface{}) (models.User, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return models.User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.User{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}
