package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(articles []*models.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Title)
	}
	return out
}

func TestArticleRepository_IncrementViewCount_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewArticleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "articles" SET "view_count"=view_count + $1 WHERE id = $2`)).
		WithArgs(1, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.IncrementViewCount(context.Background(), 7)
	assert.True(t, models.IsCode(err, models.CodeNotFound), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepository_ListSearch(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	testutil.CreateArticle(t, db, alice, "Go Tips", "channels and select", base)
	testutil.CreateArticle(t, db, bob, "Cooking", "golden crust, 100% butter", base.Add(time.Hour))
	testutil.CreateArticle(t, db, alice, "Travel", "nothing here", base.Add(2*time.Hour))

	tests := []struct {
		name   string
		filter models.ArticleFilter
		want   []string
	}{
		{"empty keyword lists everything newest first", models.ArticleFilter{}, []string{"Travel", "Cooking", "Go Tips"}},
		{"title is case-insensitive", models.ArticleFilter{Keyword: "go", Type: models.SearchTitle}, []string{"Go Tips"}},
		{"content only", models.ArticleFilter{Keyword: "GOLD", Type: models.SearchContent}, []string{"Cooking"}},
		{"all matches title or content", models.ArticleFilter{Keyword: "go", Type: models.SearchAll}, []string{"Cooking", "Go Tips"}},
		{"percent is literal", models.ArticleFilter{Keyword: "100%", Type: models.SearchAll}, []string{"Cooking"}},
		{"no match", models.ArticleFilter{Keyword: "rust", Type: models.SearchAll}, []string{}},
		{"author nickname when requested", models.ArticleFilter{Keyword: "nick-bob", Type: models.SearchAll, IncludeAuthor: true}, []string{"Cooking"}},
		{"author nickname ignored otherwise", models.ArticleFilter{Keyword: "nick-bob", Type: models.SearchAll}, []string{}},
		{"pagination", models.ArticleFilter{Limit: 1, Offset: 1}, []string{"Cooking"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
			for _, a := range got {
				assert.NotEmpty(t, a.Author.Username, "author should be preloaded")
			}
		})
	}
}

func TestArticleRepository_OrderingTieBreaksOnID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "writer")
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testutil.CreateArticle(t, db, u, "first", "x", at)
	testutil.CreateArticle(t, db, u, "second", "x", at)

	got, err := repo.ListByAuthor(ctx, u.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, titles(got))
}

func TestArticleRepository_UpdateAndViews(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "writer")
	a := testutil.CreateArticle(t, db, u, "Draft", "body", time.Now())

	require.NoError(t, repo.IncrementViewCount(ctx, a.ID))
	require.NoError(t, repo.IncrementViewCount(ctx, a.ID))

	edited := time.Now()
	a.Title = "Final"
	a.UpdatedAt = &edited
	require.NoError(t, repo.Update(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, int64(2), got.ViewCount)
	require.NotNil(t, got.UpdatedAt)
	assert.Equal(t, u.ID, got.Author.ID)
}

func TestArticleRepository_DeleteRemovesComments(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "writer")
	a := testutil.CreateArticle(t, db, u, "Doomed", "body", time.Now())
	keep := testutil.CreateArticle(t, db, u, "Kept", "body", time.Now())
	testutil.CreateComment(t, db, a, "n1", "one")
	testutil.CreateComment(t, db, a, "n2", "two")
	kept := testutil.CreateComment(t, db, keep, "n3", "three")

	require.NoError(t, store.Articles().Delete(ctx, a.ID))

	_, err := store.Articles().GetByID(ctx, a.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	remaining, err := store.Comments().ListByArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	_, err = store.Comments().GetByID(ctx, kept.ID)
	assert.NoError(t, err)

	err = store.Articles().Delete(ctx, a.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestArticleRepository_Stats(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	authors := testutil.Names("author", 2)
	a1 := testutil.CreateUser(t, db, authors[0])
	a2 := testutil.CreateUser(t, db, authors[1])
	now := time.Now()
	testutil.CreateArticle(t, db, a1, "old", "x", now.Add(-48*time.Hour))
	popular := testutil.CreateArticle(t, db, a1, "new", "x", now)
	testutil.CreateArticle(t, db, a2, "other", "x", now.Add(-time.Minute))
	require.NoError(t, repo.IncrementViewCount(ctx, popular.ID))

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	byAuthor, err := repo.CountByAuthor(ctx, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byAuthor)

	recentCount, err := repo.CountSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), recentCount)

	top, err := repo.TopByViews(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, titles(top))

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "other"}, titles(recent))
}

func TestArticleRepository_CreateBatch(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "bulk")
	now := time.Now()
	batch := []*models.Article{
		{Title: "one", Content: "1", AuthorID: u.ID, CreatedAt: now},
		{Title: "two", Content: "2", AuthorID: u.ID, CreatedAt: now},
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))
	assert.NotZero(t, batch[0].ID)
	assert.NotZero(t, batch[1].ID)
	assert.NoError(t, repo.CreateBatch(ctx, nil))
}
