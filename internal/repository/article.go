package repository

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	CreateBatch(ctx context.Context, articles []*models.Article) error
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Article, error)
	TopByViews(ctx context.Context, n int) ([]*models.Article, error)
	Recent(ctx context.Context, n int) ([]*models.Article, error)
	Update(ctx context.Context, article *models.Article) error
	IncrementViewCount(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository returns a new ArticleRepository implementation.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) newest(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Author").
		Order("articles.created_at DESC").
		Order("articles.id DESC")
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(article).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *articleRepository) CreateBatch(ctx context.Context, articles []*models.Article) error {
	if len(articles) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit("Author").Create(&articles).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).Preload("Author").First(&article, id).Error; err != nil {
		return nil, notFoundOr(err, "Article", id)
	}
	return &article, nil
}

func (r *articleRepository) List(ctx context.Context, f models.ArticleFilter) ([]*models.Article, error) {
	q := r.newest(ctx).Model(&models.Article{})

	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := likePattern(kw)
		const (
			titleLike    = `LOWER(articles.title) LIKE ? ESCAPE '\'`
			contentLike  = `LOWER(articles.content) LIKE ? ESCAPE '\'`
			nicknameLike = `LOWER(users.nickname) LIKE ? ESCAPE '\'`
		)
		switch f.Type {
		case models.SearchTitle:
			q = q.Where(titleLike, like)
		case models.SearchContent:
			q = q.Where(contentLike, like)
		default:
			if f.IncludeAuthor {
				q = q.Select("articles.*").
					Joins("JOIN users ON users.id = articles.author_id").
					Where(titleLike+" OR "+contentLike+" OR "+nicknameLike, like, like, like)
			} else {
				q = q.Where(titleLike+" OR "+contentLike, like, like)
			}
		}
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var articles []*models.Article
	if err := q.Find(&articles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return articles, nil
}

func (r *articleRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Article, error) {
	q := r.newest(ctx).Where("articles.author_id = ?", authorID)
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	var articles []*models.Article
	if err := q.Find(&articles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return articles, nil
}

func (r *articleRepository) TopByViews(ctx context.Context, n int) ([]*models.Article, error) {
	var articles []*models.Article
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("view_count DESC").
		Order("id DESC").
		Limit(n).
		Find(&articles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return articles, nil
}

func (r *articleRepository) Recent(ctx context.Context, n int) ([]*models.Article, error) {
	var articles []*models.Article
	if err := r.newest(ctx).Limit(n).Find(&articles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return articles, nil
}

// Update persists title, content and updated_at only; view_count and author never change here.
func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	result := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", article.ID).
		Updates(map[string]interface{}{
			"title":      article.Title,
			"content":    article.Content,
			"updated_at": article.UpdatedAt,
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Article", article.ID)
	}
	return nil
}

func (r *articleRepository) IncrementViewCount(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Article", id)
	}
	return nil
}

// Delete removes the article and its comments. Callers wanting atomicity run it inside Store.Transaction.
func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("article_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	result := db.Delete(&models.Article{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Article", id)
	}
	return nil
}

func (r *articleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Article{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *articleRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Article{}).Where("author_id = ?", authorID).Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *articleRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Article{}).Where("created_at >= ?", since).Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
