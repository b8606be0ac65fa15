package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id uint, role models.Role) error
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.AppError{
				Code:    models.CodeNotFound,
				Message: "User " + username + " not found",
			}
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *userRepository) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	return r.exists(ctx, "nickname = ?", nickname)
}

func (r *userRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username, email, or nickname already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
