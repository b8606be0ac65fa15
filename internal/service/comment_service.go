package service

import (
	"context"
	"unicode/utf8"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"go.uber.org/zap"
)

const maxCommentNicknameLen = 50

// CommentService manages nickname-signed comments. Comments carry no user
// identity, so update and delete are not ownership-checked.
type CommentService struct {
	store repository.Store
}

// CreateCommentInput is a new comment. ID must be zero; ArticleID, when set,
// must match the article in the path.
type CreateCommentInput struct {
	ID        uint   `json:"id" form:"id"`
	ArticleID uint   `json:"article_id" form:"article_id"`
	Nickname  string `json:"nickname" form:"nickname"`
	Body      string `json:"body" form:"body"`
}

// UpdateCommentInput patches a comment. Nil fields are left unchanged.
type UpdateCommentInput struct {
	ID       uint    `json:"id"`
	Nickname *string `json:"nickname"`
	Body     *string `json:"body"`
}

func NewCommentService(store repository.Store) *CommentService {
	return &CommentService{store: store}
}

func validateCommentNickname(nickname string) error {
	if utf8.RuneCountInString(nickname) > maxCommentNicknameLen {
		return models.NewValidationError("Nickname too long (max 50 characters)")
	}
	return nil
}

// ListByArticle returns the article's comments in the order they were written.
func (s *CommentService) ListByArticle(ctx context.Context, articleID uint) ([]models.CommentDto, error) {
	if _, err := s.store.Articles().GetByID(ctx, articleID); err != nil {
		return nil, err
	}
	comments, err := s.store.Comments().ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return models.NewCommentDtos(comments), nil
}

func (s *CommentService) Create(ctx context.Context, articleID uint, in CreateCommentInput) (models.CommentDto, error) {
	comment := &models.Comment{
		ArticleID: articleID,
		Nickname:  in.Nickname,
		Body:      in.Body,
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Articles().GetByID(ctx, articleID); err != nil {
			return err
		}
		if in.ID != 0 {
			return models.NewValidationError("A new comment cannot already have an ID")
		}
		if in.ArticleID != 0 && in.ArticleID != articleID {
			return models.NewValidationError("Comment article ID does not match the article")
		}
		if err := validateCommentNickname(in.Nickname); err != nil {
			return err
		}

		now := timeNow()
		comment.CreatedAt = now
		comment.UpdatedAt = now
		return tx.Comments().Create(ctx, comment)
	})
	if err != nil {
		return models.CommentDto{}, err
	}

	observability.CommentsWritten.WithLabelValues("create").Inc()
	observability.L(ctx).Info("Comment created",
		zap.Uint("comment_id", comment.ID),
		zap.Uint("article_id", articleID))
	return models.NewCommentDto(comment), nil
}

func (s *CommentService) Update(ctx context.Context, id uint, in UpdateCommentInput) (models.CommentDto, error) {
	var comment *models.Comment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		c, err := tx.Comments().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if in.ID != 0 && in.ID != id {
			return models.NewValidationError("Comment ID does not match")
		}

		if in.Nickname != nil {
			if err := validateCommentNickname(*in.Nickname); err != nil {
				return err
			}
			c.Nickname = *in.Nickname
		}
		if in.Body != nil {
			c.Body = *in.Body
		}
		c.UpdatedAt = timeNow()

		if err := tx.Comments().Update(ctx, c); err != nil {
			return err
		}
		comment = c
		return nil
	})
	if err != nil {
		return models.CommentDto{}, err
	}

	observability.CommentsWritten.WithLabelValues("update").Inc()
	observability.L(ctx).Info("Comment updated", zap.Uint("comment_id", id))
	return models.NewCommentDto(comment), nil
}

// Delete removes the comment and returns what was removed.
func (s *CommentService) Delete(ctx context.Context, id uint) (models.CommentDto, error) {
	var snapshot *models.Comment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		c, err := tx.Comments().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Comments().Delete(ctx, id); err != nil {
			return err
		}
		snapshot = c
		return nil
	})
	if err != nil {
		return models.CommentDto{}, err
	}

	observability.CommentsWritten.WithLabelValues("delete").Inc()
	observability.L(ctx).Info("Comment deleted", zap.Uint("comment_id", id))
	return models.NewCommentDto(snapshot), nil
}
