package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByArticle(ctx context.Context, articleID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("Article").Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

// ListByArticle returns comments in insertion order.
func (r *commentRepository) ListByArticle(ctx context.Context, articleID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	result := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Updates(map[string]interface{}{
			"nickname":   comment.Nickname,
			"body":       comment.Body,
			"updated_at": comment.UpdatedAt,
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}
