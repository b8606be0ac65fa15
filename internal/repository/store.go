// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Store groups the repositories that share one connection or one transaction.
type Store interface {
	Users() UserRepository
	Articles() ArticleRepository
	Comments() CommentRepository
	// Transaction runs fn with a Store bound to a single database transaction.
	// Returning an error from fn rolls the transaction back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db       *gorm.DB
	users    UserRepository
	articles ArticleRepository
	comments CommentRepository
}

// NewStore returns a Store backed by db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:       db,
		users:    NewUserRepository(db),
		articles: NewArticleRepository(db),
		comments: NewCommentRepository(db),
	}
}

func (s *gormStore) Users() UserRepository       { return s.users }
func (s *gormStore) Articles() ArticleRepository { return s.articles }
func (s *gormStore) Comments() CommentRepository { return s.comments }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// isUniqueConstraintError recognises unique violations from PostgreSQL and SQLite.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound AppError and wraps everything else.
func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a lower-cased LIKE pattern that matches keyword as a literal substring.
func likePattern(keyword string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
}
