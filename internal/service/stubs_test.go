package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeStub runs transactions inline against its own repositories.
type storeStub struct {
	users    *userRepoStub
	articles *articleRepoStub
	comments *commentRepoStub
}

func (s *storeStub) Users() repository.UserRepository       { return s.users }
func (s *storeStub) Articles() repository.ArticleRepository { return s.articles }
func (s *storeStub) Comments() repository.CommentRepository { return s.comments }
func (s *storeStub) Transaction(_ context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

func noopStore() *storeStub {
	return &storeStub{
		users:    noopUserRepo(),
		articles: noopArticleRepo(),
		comments: noopCommentRepo(),
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	existsFn        func(field, value string) (bool, error)
	createFn        func(context.Context, *models.User) error
	updateRoleFn    func(context.Context, uint, models.Role) error
	listByRoleFn    func(context.Context, models.Role) ([]*models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) ExistsByUsername(_ context.Context, v string) (bool, error) {
	return s.existsFn("username", v)
}
func (s *userRepoStub) ExistsByEmail(_ context.Context, v string) (bool, error) {
	return s.existsFn("email", v)
}
func (s *userRepoStub) ExistsByNickname(_ context.Context, v string) (bool, error) {
	return s.existsFn("nickname", v)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}
func (s *userRepoStub) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	return s.updateRoleFn(ctx, id, role)
}
func (s *userRepoStub) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	return s.listByRoleFn(ctx, role)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleOrdinary}, nil
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return nil, &models.AppError{Code: models.CodeNotFound, Message: "User " + username + " not found"}
		},
		existsFn:     func(_, _ string) (bool, error) { return false, nil },
		createFn:     func(_ context.Context, _ *models.User) error { return nil },
		updateRoleFn: func(_ context.Context, _ uint, _ models.Role) error { return nil },
		listByRoleFn: func(_ context.Context, _ models.Role) ([]*models.User, error) { return nil, nil },
	}
}

// articleRepoStub is a stub for repository.ArticleRepository.
type articleRepoStub struct {
	createFn        func(context.Context, *models.Article) error
	createBatchFn   func(context.Context, []*models.Article) error
	getByIDFn       func(context.Context, uint) (*models.Article, error)
	listFn          func(context.Context, models.ArticleFilter) ([]*models.Article, error)
	listByAuthorFn  func(context.Context, uint, int, int) ([]*models.Article, error)
	topByViewsFn    func(context.Context, int) ([]*models.Article, error)
	recentFn        func(context.Context, int) ([]*models.Article, error)
	updateFn        func(context.Context, *models.Article) error
	incrementFn     func(context.Context, uint) error
	deleteFn        func(context.Context, uint) error
	countFn         func(context.Context) (int64, error)
	countByAuthorFn func(context.Context, uint) (int64, error)
	countSinceFn    func(context.Context, time.Time) (int64, error)
}

func (s *articleRepoStub) Create(ctx context.Context, a *models.Article) error {
	return s.createFn(ctx, a)
}
func (s *articleRepoStub) CreateBatch(ctx context.Context, a []*models.Article) error {
	return s.createBatchFn(ctx, a)
}
func (s *articleRepoStub) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	return s.getByIDFn(ctx, id)
}
func (s *articleRepoStub) List(ctx context.Context, f models.ArticleFilter) ([]*models.Article, error) {
	return s.listFn(ctx, f)
}
func (s *articleRepoStub) ListByAuthor(ctx context.Context, id uint, limit, offset int) ([]*models.Article, error) {
	return s.listByAuthorFn(ctx, id, limit, offset)
}
func (s *articleRepoStub) TopByViews(ctx context.Context, n int) ([]*models.Article, error) {
	return s.topByViewsFn(ctx, n)
}
func (s *articleRepoStub) Recent(ctx context.Context, n int) ([]*models.Article, error) {
	return s.recentFn(ctx, n)
}
func (s *articleRepoStub) Update(ctx context.Context, a *models.Article) error {
	return s.updateFn(ctx, a)
}
func (s *articleRepoStub) IncrementViewCount(ctx context.Context, id uint) error {
	return s.incrementFn(ctx, id)
}
func (s *articleRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *articleRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}
func (s *articleRepoStub) CountByAuthor(ctx context.Context, id uint) (int64, error) {
	return s.countByAuthorFn(ctx, id)
}
func (s *articleRepoStub) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return s.countSinceFn(ctx, since)
}

func noopArticleRepo() *articleRepoStub {
	none := func(_ context.Context, _ int) ([]*models.Article, error) { return nil, nil }
	return &articleRepoStub{
		createFn:      func(_ context.Context, _ *models.Article) error { return nil },
		createBatchFn: func(_ context.Context, _ []*models.Article) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Article, error) {
			return &models.Article{ID: id, AuthorID: 1, Title: "t", Content: "c"}, nil
		},
		listFn:          func(_ context.Context, _ models.ArticleFilter) ([]*models.Article, error) { return nil, nil },
		listByAuthorFn:  func(_ context.Context, _ uint, _, _ int) ([]*models.Article, error) { return nil, nil },
		topByViewsFn:    none,
		recentFn:        none,
		updateFn:        func(_ context.Context, _ *models.Article) error { return nil },
		incrementFn:     func(_ context.Context, _ uint) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		countFn:         func(_ context.Context) (int64, error) { return 0, nil },
		countByAuthorFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countSinceFn:    func(_ context.Context, _ time.Time) (int64, error) { return 0, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	listByArticleFn func(context.Context, uint) ([]*models.Comment, error)
	updateFn        func(context.Context, *models.Comment) error
	deleteFn        func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByArticle(ctx context.Context, id uint) ([]*models.Comment, error) {
	return s.listByArticleFn(ctx, id)
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment) error {
	return s.updateFn(ctx, c)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, ArticleID: 1, Nickname: "n", Body: "b"}, nil
		},
		listByArticleFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:        func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

// assertForbiddenError asserts that err is an AppError with code FORBIDDEN.
func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeForbidden)
}

// assertUnauthorizedError asserts that err is an AppError with code UNAUTHORIZED.
func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}
