package service

import (
	"context"
	"strings"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_Create_Checks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       CreateCommentInput
		missing  bool
		wantCode string
	}{
		{"article missing", CreateCommentInput{Nickname: "n", Body: "b"}, true, models.CodeNotFound},
		{"id already set", CreateCommentInput{ID: 3, Nickname: "n", Body: "b"}, false, models.CodeValidation},
		{"article id mismatch", CreateCommentInput{ArticleID: 2, Nickname: "n", Body: "b"}, false, models.CodeValidation},
		{"nickname too long", CreateCommentInput{Nickname: strings.Repeat("n", 51)}, false, models.CodeValidation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := noopStore()
			if tt.missing {
				store.articles.getByIDFn = func(_ context.Context, id uint) (*models.Article, error) {
					return nil, models.NewNotFoundError("Article", id)
				}
			}
			store.comments.createFn = func(_ context.Context, _ *models.Comment) error {
				t.Fatal("create must not be called")
				return nil
			}
			svc := NewCommentService(store)

			_, err := svc.Create(context.Background(), 1, tt.in)
			assertAppErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestCommentService_Create_Success(t *testing.T) {
	t.Parallel()

	store := noopStore()
	store.comments.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 42
		assert.False(t, c.CreatedAt.IsZero())
		return nil
	}
	svc := NewCommentService(store)

	dto, err := svc.Create(context.Background(), 1, CreateCommentInput{ArticleID: 1, Nickname: "kim", Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, models.CommentDto{ID: 42, ArticleID: 1, Nickname: "kim", Body: "hello"}, dto)
}

func TestCommentService_Update(t *testing.T) {
	t.Parallel()

	t.Run("nil fields are kept", func(t *testing.T) {
		t.Parallel()
		store := noopStore()
		svc := NewCommentService(store)
		body := "edited"
		dto, err := svc.Update(context.Background(), 8, UpdateCommentInput{Body: &body})
		require.NoError(t, err)
		assert.Equal(t, "n", dto.Nickname)
		assert.Equal(t, "edited", dto.Body)
	})

	t.Run("empty string is a value", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(noopStore())
		empty := ""
		dto, err := svc.Update(context.Background(), 8, UpdateCommentInput{Nickname: &empty})
		require.NoError(t, err)
		assert.Equal(t, "", dto.Nickname)
	})

	t.Run("id mismatch", func(t *testing.T) {
		t.Parallel()
		store := noopStore()
		store.comments.updateFn = func(_ context.Context, _ *models.Comment) error {
			t.Fatal("update must not be called")
			return nil
		}
		svc := NewCommentService(store)
		_, err := svc.Update(context.Background(), 8, UpdateCommentInput{ID: 9})
		assertValidationError(t, err)
	})

	t.Run("missing comment", func(t *testing.T) {
		t.Parallel()
		store := noopStore()
		store.comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		svc := NewCommentService(store)
		_, err := svc.Update(context.Background(), 8, UpdateCommentInput{})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestCommentService_Delete_ReturnsSnapshot(t *testing.T) {
	t.Parallel()

	store := noopStore()
	var deletedID uint
	store.comments.deleteFn = func(_ context.Context, id uint) error {
		deletedID = id
		return nil
	}
	svc := NewCommentService(store)

	dto, err := svc.Delete(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, uint(6), deletedID)
	assert.Equal(t, "b", dto.Body)
}
