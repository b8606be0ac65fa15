package models

import "time"

// Comment is a nickname-signed note attached to an article. It has no link to a User.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;index" json:"article_id"`
	Article   *Article  `gorm:"foreignKey:ArticleID" json:"-"`
	Nickname  string    `gorm:"size:50" json:"nickname"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}
