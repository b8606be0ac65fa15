package models

import (
	"time"

	"github.com/microcosm-cc/bluemonday"
)

const (
	timestampLayout       = "2006-01-02 15:04"
	defaultPreviewRunes   = 100
	previewEllipsisSuffix = "..."
)

// bluemonday policies are safe for concurrent use once built.
var ugcPolicy = bluemonday.UGCPolicy()

// ArticleDto is the response projection of an Article.
type ArticleDto struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	AuthorID       uint       `json:"author_id"`
	AuthorUsername string     `json:"author_username"`
	AuthorNickname string     `json:"author_nickname"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
	ViewCount      int64      `json:"view_count"`
}

// NewArticleDto projects an article. The Author association should be loaded.
func NewArticleDto(a *Article) ArticleDto {
	return ArticleDto{
		ID:             a.ID,
		Title:          a.Title,
		Content:        a.Content,
		AuthorID:       a.AuthorID,
		AuthorUsername: a.Author.Username,
		AuthorNickname: a.Author.Nickname,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		ViewCount:      a.ViewCount,
	}
}

// NewArticleDtos projects a slice of articles.
func NewArticleDtos(articles []*Article) []ArticleDto {
	out := make([]ArticleDto, 0, len(articles))
	for _, a := range articles {
		out = append(out, NewArticleDto(a))
	}
	return out
}

// IsAuthor reports whether userID wrote the article.
func (d ArticleDto) IsAuthor(userID uint) bool {
	return userID != 0 && d.AuthorID == userID
}

// IsUpdated reports whether the article was edited after creation.
func (d ArticleDto) IsUpdated() bool {
	return d.UpdatedAt != nil
}

// FormattedCreatedAt renders the creation time, or "" when unset.
func (d ArticleDto) FormattedCreatedAt() string {
	if d.CreatedAt.IsZero() {
		return ""
	}
	return d.CreatedAt.Format(timestampLayout)
}

// FormattedUpdatedAt renders the last edit time, or "" when never edited.
func (d ArticleDto) FormattedUpdatedAt() string {
	if d.UpdatedAt == nil {
		return ""
	}
	return d.UpdatedAt.Format(timestampLayout)
}

// ContentPreview returns at most maxRunes characters of content, with "..." appended when cut.
func (d ArticleDto) ContentPreview(maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = defaultPreviewRunes
	}
	r := []rune(d.Content)
	if len(r) <= maxRunes {
		return d.Content
	}
	return string(r[:maxRunes]) + previewEllipsisSuffix
}

// SafeContent returns the content with unsafe HTML stripped.
func (d ArticleDto) SafeContent() string {
	return ugcPolicy.Sanitize(d.Content)
}

// ArticleView is the article detail payload with render helpers resolved.
type ArticleView struct {
	ArticleDto
	Preview            string        `json:"preview"`
	SafeContent        string        `json:"safe_content"`
	FormattedCreatedAt string        `json:"formatted_created_at"`
	FormattedUpdatedAt string        `json:"formatted_updated_at,omitempty"`
	Updated            bool          `json:"updated"`
	Mine               bool          `json:"mine"`
	Comments           []CommentView `json:"comments,omitempty"`
}

// CommentView is a comment as shown under an article.
type CommentView struct {
	CommentDto
	SafeBody string `json:"safe_body"`
}

// NewArticleView resolves the render helpers for the given viewer.
func NewArticleView(d ArticleDto, viewerID uint, comments []CommentDto) ArticleView {
	var views []CommentView
	for _, c := range comments {
		views = append(views, CommentView{CommentDto: c, SafeBody: c.SafeBody()})
	}
	return ArticleView{
		ArticleDto:         d,
		Preview:            d.ContentPreview(defaultPreviewRunes),
		SafeContent:        d.SafeContent(),
		FormattedCreatedAt: d.FormattedCreatedAt(),
		FormattedUpdatedAt: d.FormattedUpdatedAt(),
		Updated:            d.IsUpdated(),
		Mine:               d.IsAuthor(viewerID),
		Comments:           views,
	}
}

// CommentDto is the request and response projection of a Comment.
// On requests, ID and ArticleID are optional consistency checks.
type CommentDto struct {
	ID        uint   `json:"id,omitempty" form:"id"`
	ArticleID uint   `json:"article_id,omitempty" form:"article_id"`
	Nickname  string `json:"nickname" form:"nickname"`
	Body      string `json:"body" form:"body"`
}

// NewCommentDto projects a comment.
func NewCommentDto(c *Comment) CommentDto {
	return CommentDto{
		ID:        c.ID,
		ArticleID: c.ArticleID,
		Nickname:  c.Nickname,
		Body:      c.Body,
	}
}

// NewCommentDtos projects a slice of comments.
func NewCommentDtos(comments []*Comment) []CommentDto {
	out := make([]CommentDto, 0, len(comments))
	for _, c := range comments {
		out = append(out, NewCommentDto(c))
	}
	return out
}

// SafeBody returns the comment body with unsafe HTML stripped.
func (d CommentDto) SafeBody() string {
	return ugcPolicy.Sanitize(d.Body)
}
