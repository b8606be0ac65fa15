// Package testutil provides shared helpers for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewTestDB opens a private in-memory SQLite database with the schema applied.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Connect(&config.Config{
		DBDriver:     "sqlite",
		DBSQLitePath: "file::memory:",
		DBSchemaMode: "auto",
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// CreateUser inserts an enabled ORDINARY user whose username, email and nickname derive from name.
// The stored password is the bcrypt hash of "password".
func CreateUser(t testing.TB, db *gorm.DB, name string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now()
	u := &models.User{
		Username:              name,
		Password:              string(hash),
		Email:                 name + "@example.com",
		Nickname:              "nick-" + name,
		Role:                  models.RoleOrdinary,
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %q: %v", name, err)
	}
	return u
}

// CreateAdmin inserts a user with the ADMIN role.
func CreateAdmin(t testing.TB, db *gorm.DB, name string) *models.User {
	t.Helper()

	u := CreateUser(t, db, name)
	if err := db.Model(u).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("promote %q: %v", name, err)
	}
	u.Role = models.RoleAdmin
	return u
}

// CreateArticle inserts an article by author created at the given time.
func CreateArticle(t testing.TB, db *gorm.DB, author *models.User, title, content string, createdAt time.Time) *models.Article {
	t.Helper()

	a := &models.Article{
		Title:     title,
		Content:   content,
		AuthorID:  author.ID,
		CreatedAt: createdAt,
	}
	if err := db.Omit("Author").Create(a).Error; err != nil {
		t.Fatalf("create article %q: %v", title, err)
	}
	a.Author = *author
	return a
}

// CreateComment inserts a comment on article.
func CreateComment(t testing.TB, db *gorm.DB, article *models.Article, nickname, body string) *models.Comment {
	t.Helper()

	now := time.Now()
	c := &models.Comment{
		ArticleID: article.ID,
		Nickname:  nickname,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Omit("Article").Create(c).Error; err != nil {
		t.Fatalf("create comment on %d: %v", article.ID, err)
	}
	return c
}

// Names returns n distinct usernames with the given prefix.
func Names(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return out
}
