package service

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Listing sizes for the popular and recent widgets.
const highlightCount = 5

var timeNow = time.Now

type ArticleService struct {
	store repository.Store
}

// ArticleInput carries the user-editable article fields. On update a blank
// field keeps the stored value.
type ArticleInput struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

// ArticleStats summarises article volume. Mine is set only for signed-in callers.
type ArticleStats struct {
	Total   int64  `json:"total"`
	Last24h int64  `json:"last_24h"`
	Mine    *int64 `json:"mine,omitempty"`
}

// NewArticleService creates a new article service
func NewArticleService(store repository.Store) *ArticleService {
	return &ArticleService{store: store}
}

func (in ArticleInput) validate() *models.AppError {
	if err := validation.ValidateTitle(in.Title); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateContent(in.Content); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}

// validatePatch checks only the fields an update would change.
func (in ArticleInput) validatePatch() error {
	if !validation.IsBlank(in.Title) {
		if err := validation.ValidateTitle(in.Title); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	if !validation.IsBlank(in.Content) {
		if err := validation.ValidateContent(in.Content); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	return nil
}

// List returns articles matching filter, newest first.
func (s *ArticleService) List(ctx context.Context, filter models.ArticleFilter) ([]models.ArticleDto, error) {
	filter.Type = models.ParseSearchType(string(filter.Type))
	articles, err := s.store.Articles().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return models.NewArticleDtos(articles), nil
}

// Get returns one article without counting a view.
func (s *ArticleService) Get(ctx context.Context, id uint) (models.ArticleDto, error) {
	a, err := s.store.Articles().GetByID(ctx, id)
	if err != nil {
		return models.ArticleDto{}, err
	}
	return models.NewArticleDto(a), nil
}

// GetAndIncrementViews reads the article and bumps its view counter in one transaction.
// updated_at is left alone; a view is not an edit.
func (s *ArticleService) GetAndIncrementViews(ctx context.Context, id uint) (dto models.ArticleDto, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ArticleService", "GetAndIncrementViews",
		attribute.Int64("article.id", int64(id)))
	defer func() { observability.EndSpan(span, err) }()

	var article *models.Article
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		a, err := tx.Articles().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Articles().IncrementViewCount(ctx, id); err != nil {
			return err
		}
		a.ViewCount++
		article = a
		return nil
	})
	if err != nil {
		return models.ArticleDto{}, err
	}

	observability.ArticleViews.Inc()
	return models.NewArticleDto(article), nil
}

func (s *ArticleService) Create(ctx context.Context, authorID uint, in ArticleInput) (dto models.ArticleDto, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ArticleService", "Create",
		attribute.Int64("author.id", int64(authorID)))
	defer func() { observability.EndSpan(span, err) }()

	if verr := in.validate(); verr != nil {
		return models.ArticleDto{}, verr
	}

	article := &models.Article{
		Title:     in.Title,
		Content:   in.Content,
		AuthorID:  authorID,
		CreatedAt: timeNow(),
	}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		author, err := tx.Users().GetByID(ctx, authorID)
		if err != nil {
			return err
		}
		if err := tx.Articles().Create(ctx, article); err != nil {
			return err
		}
		article.Author = *author
		return nil
	})
	if err != nil {
		return models.ArticleDto{}, err
	}

	observability.ArticlesCreated.Inc()
	observability.L(ctx).Info("Article created",
		zap.Uint("article_id", article.ID),
		zap.Uint("author_id", authorID))
	return models.NewArticleDto(article), nil
}

// CreateBatch creates every article or none of them.
func (s *ArticleService) CreateBatch(ctx context.Context, authorID uint, inputs []ArticleInput) (dtos []models.ArticleDto, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ArticleService", "CreateBatch",
		attribute.Int64("author.id", int64(authorID)),
		attribute.Int("batch.size", len(inputs)))
	defer func() { observability.EndSpan(span, err) }()

	if len(inputs) == 0 {
		return nil, models.NewValidationError("At least one article is required")
	}
	for i, in := range inputs {
		if verr := in.validate(); verr != nil {
			return nil, models.NewValidationError(fmt.Sprintf("article %d: %s", i+1, verr.Message))
		}
	}

	now := timeNow()
	articles := make([]*models.Article, 0, len(inputs))
	for _, in := range inputs {
		articles = append(articles, &models.Article{
			Title:     in.Title,
			Content:   in.Content,
			AuthorID:  authorID,
			CreatedAt: now,
		})
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		author, err := tx.Users().GetByID(ctx, authorID)
		if err != nil {
			return err
		}
		if err := tx.Articles().CreateBatch(ctx, articles); err != nil {
			return err
		}
		for _, a := range articles {
			a.Author = *author
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.ArticlesCreated.Add(float64(len(articles)))
	observability.L(ctx).Info("Articles created in bulk",
		zap.Int("count", len(articles)),
		zap.Uint("author_id", authorID))
	return models.NewArticleDtos(articles), nil
}

// Update replaces the non-blank fields of in. Only the author may update.
func (s *ArticleService) Update(ctx context.Context, id, userID uint, in ArticleInput) (dto models.ArticleDto, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ArticleService", "Update",
		attribute.Int64("article.id", int64(id)),
		attribute.Int64("user.id", int64(userID)))
	defer func() { observability.EndSpan(span, err) }()

	var article *models.Article
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		a, err := tx.Articles().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !a.IsAuthor(userID) {
			observability.AuthorizationDenials.WithLabelValues("article_update").Inc()
			observability.L(ctx).Warn("Article update denied",
				zap.Uint("article_id", id),
				zap.Uint("user_id", userID))
			return models.NewForbiddenError("Only the author can edit this article")
		}
		if err := in.validatePatch(); err != nil {
			return err
		}

		if !validation.IsBlank(in.Title) {
			a.Title = in.Title
		}
		if !validation.IsBlank(in.Content) {
			a.Content = in.Content
		}
		now := timeNow()
		a.UpdatedAt = &now

		if err := tx.Articles().Update(ctx, a); err != nil {
			return err
		}
		article = a
		return nil
	})
	if err != nil {
		return models.ArticleDto{}, err
	}

	observability.L(ctx).Info("Article updated", zap.Uint("article_id", id))
	return models.NewArticleDto(article), nil
}

// Delete removes the article with its comments and returns what was removed.
// The author or any ADMIN may delete.
func (s *ArticleService) Delete(ctx context.Context, id, userID uint) (dto models.ArticleDto, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ArticleService", "Delete",
		attribute.Int64("article.id", int64(id)),
		attribute.Int64("user.id", int64(userID)))
	defer func() { observability.EndSpan(span, err) }()

	var (
		snapshot *models.Article
		actor    = "author"
	)
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		a, err := tx.Articles().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !a.IsAuthor(userID) {
			caller, err := tx.Users().GetByID(ctx, userID)
			if err != nil && !models.IsCode(err, models.CodeNotFound) {
				return err
			}
			if !caller.IsAdmin() {
				observability.AuthorizationDenials.WithLabelValues("article_delete").Inc()
				observability.L(ctx).Warn("Article delete denied",
					zap.Uint("article_id", id),
					zap.Uint("user_id", userID))
				return models.NewForbiddenError("Only the author or an administrator can delete this article")
			}
			actor = "admin"
		}
		if err := tx.Articles().Delete(ctx, id); err != nil {
			return err
		}
		snapshot = a
		return nil
	})
	if err != nil {
		return models.ArticleDto{}, err
	}

	observability.ArticlesDeleted.WithLabelValues(actor).Inc()
	observability.L(ctx).Info("Article deleted",
		zap.Uint("article_id", id),
		zap.String("actor", actor))
	return models.NewArticleDto(snapshot), nil
}

// ListByAuthor returns one page of an author's articles, newest first.
func (s *ArticleService) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.ArticleDto, error) {
	articles, err := s.store.Articles().ListByAuthor(ctx, authorID, limit, offset)
	if err != nil {
		return nil, err
	}
	return models.NewArticleDtos(articles), nil
}

// Popular returns the most viewed articles.
func (s *ArticleService) Popular(ctx context.Context) ([]models.ArticleDto, error) {
	articles, err := s.store.Articles().TopByViews(ctx, highlightCount)
	if err != nil {
		return nil, err
	}
	return models.NewArticleDtos(articles), nil
}

// Recent returns the newest articles.
func (s *ArticleService) Recent(ctx context.Context) ([]models.ArticleDto, error) {
	articles, err := s.store.Articles().Recent(ctx, highlightCount)
	if err != nil {
		return nil, err
	}
	return models.NewArticleDtos(articles), nil
}

// CountByAuthor returns how many articles the user has written.
func (s *ArticleService) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.store.Articles().CountByAuthor(ctx, authorID)
}

// CountSince returns how many articles were created at or after since.
func (s *ArticleService) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return s.store.Articles().CountSince(ctx, since)
}

// Stats reports totals. A zero userID leaves Mine unset.
func (s *ArticleService) Stats(ctx context.Context, userID uint) (ArticleStats, error) {
	var stats ArticleStats
	var err error

	if stats.Total, err = s.store.Articles().Count(ctx); err != nil {
		return ArticleStats{}, err
	}
	if stats.Last24h, err = s.CountSince(ctx, timeNow().Add(-24*time.Hour)); err != nil {
		return ArticleStats{}, err
	}
	if userID != 0 {
		mine, err := s.CountByAuthor(ctx, userID)
		if err != nil {
			return ArticleStats{}, err
		}
		stats.Mine = &mine
	}
	return stats, nil
}
