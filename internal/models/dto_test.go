package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleDto_ContentPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short", "hello", "hello"},
		{"exactly limit", strings.Repeat("a", 100), strings.Repeat("a", 100)},
		{"multibyte over limit", strings.Repeat("글", 101), strings.Repeat("글", 100) + "..."},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ArticleDto{Content: tt.content}
			assert.Equal(t, tt.want, d.ContentPreview(100))
		})
	}

	d := ArticleDto{Content: strings.Repeat("b", 150)}
	assert.Equal(t, d.ContentPreview(100), d.ContentPreview(0), "non-positive limit falls back to the default")
}

func TestArticleDto_Timestamps(t *testing.T) {
	created := time.Date(2024, 3, 9, 7, 5, 59, 0, time.UTC)
	d := ArticleDto{CreatedAt: created}

	assert.Equal(t, "2024-03-09 07:05", d.FormattedCreatedAt())
	assert.False(t, d.IsUpdated())
	assert.Empty(t, d.FormattedUpdatedAt())

	updated := created.Add(26 * time.Hour)
	d.UpdatedAt = &updated
	assert.True(t, d.IsUpdated())
	assert.Equal(t, "2024-03-10 09:05", d.FormattedUpdatedAt())

	assert.Empty(t, ArticleDto{}.FormattedCreatedAt())
}

func TestArticleDto_IsAuthor(t *testing.T) {
	d := ArticleDto{AuthorID: 7}
	assert.True(t, d.IsAuthor(7))
	assert.False(t, d.IsAuthor(8))
	assert.False(t, d.IsAuthor(0))
	assert.False(t, ArticleDto{}.IsAuthor(0))
}

func TestSanitising(t *testing.T) {
	d := ArticleDto{Content: `<p>hi</p><script>alert(1)</script>`}
	safe := d.SafeContent()
	assert.Contains(t, safe, "<p>hi</p>")
	assert.NotContains(t, safe, "<script")
	assert.NotContains(t, safe, "alert(1)")

	c := CommentDto{Body: `nice<script>steal()</script> <b>post</b>`}
	assert.NotContains(t, c.SafeBody(), "<script")
	assert.Contains(t, c.SafeBody(), "<b>post</b>")
}

func TestNewArticleView(t *testing.T) {
	updated := time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)
	d := ArticleDto{
		AuthorID:  3,
		Content:   `<img src=x onerror=alert(1)>` + strings.Repeat("x", 120),
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: &updated,
	}
	comments := []CommentDto{{ID: 1, Nickname: "n", Body: `<script>x()</script>ok`}}

	v := NewArticleView(d, 3, comments)
	assert.True(t, v.Mine)
	assert.True(t, v.Updated)
	assert.Equal(t, "2024-01-01 00:00", v.FormattedCreatedAt)
	assert.Equal(t, "2024-01-02 03:04", v.FormattedUpdatedAt)
	assert.True(t, strings.HasSuffix(v.Preview, "..."))
	assert.NotContains(t, v.SafeContent, "onerror")
	require.Len(t, v.Comments, 1)
	assert.Equal(t, "ok", v.Comments[0].SafeBody)
	assert.Equal(t, comments[0].Body, v.Comments[0].Body)

	anon := NewArticleView(d, 0, nil)
	assert.False(t, anon.Mine)
	assert.Empty(t, anon.Comments)
}
