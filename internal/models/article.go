package models

import "time"

// Bounds enforced on article fields.
const (
	ArticleTitleMaxLen   = 100
	ArticleContentMaxLen = 5000
)

// Article is a blog entry owned by exactly one author.
// Timestamps are set by the service layer, not by GORM callbacks.
type Article struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"size:100;not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	AuthorID  uint       `gorm:"not null;index" json:"author_id"`
	Author    User       `gorm:"foreignKey:AuthorID" json:"author"`
	ViewCount int64      `gorm:"not null;default:0" json:"view_count"`
	CreatedAt time.Time  `gorm:"autoCreateTime:false;index" json:"created_at"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
	Comments  []Comment  `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsAuthor reports whether userID owns the article.
func (a *Article) IsAuthor(userID uint) bool {
	return a != nil && userID != 0 && a.AuthorID == userID
}

// SearchType selects which article fields a keyword is matched against.
type SearchType string

const (
	SearchTitle   SearchType = "title"
	SearchContent SearchType = "content"
	SearchAll     SearchType = "all"
)

// ParseSearchType normalises a user-supplied search type; anything unknown means SearchAll.
func ParseSearchType(s string) SearchType {
	switch SearchType(s) {
	case SearchTitle, SearchContent:
		return SearchType(s)
	default:
		return SearchAll
	}
}

// ArticleFilter narrows article listings. An empty Keyword lists everything.
type ArticleFilter struct {
	Keyword string
	Type    SearchType
	// IncludeAuthor also matches the author nickname when Type is SearchAll.
	IncludeAuthor bool
	Limit         int
	Offset        int
}
