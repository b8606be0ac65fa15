// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plain-text password of every generated user.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	Users    int
	Articles int
	// Comments is the maximum number of comments per article.
	Comments int
	// MaxDays bounds how far back article timestamps are spread.
	MaxDays int
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Result counts the rows a seeding run created.
type Result struct {
	Users    int
	Articles int
	Comments int
}

// Seeder writes demo data straight through GORM.
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	rng   *rand.Rand
}

// NewSeeder creates a seeder with a time-seeded faker.
func NewSeeder(db *gorm.DB) *Seeder {
	return NewSeederWithSeed(db, time.Now().UnixNano())
}

// NewSeederWithSeed creates a seeder whose generated content is reproducible.
func NewSeederWithSeed(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{
		db:    db,
		faker: gofakeit.New(seed),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// ClearAll removes every comment, article and user.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Comment{}, &models.Article{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		observability.Logger.Info("Database cleared")
		return nil
	})
}

// Seed generates users, then articles spread across them, then comments on each article.
// The whole run is one transaction.
func (s *Seeder) Seed(ctx context.Context, opts Options) (Result, error) {
	var res Result
	if opts.Users <= 0 {
		return res, fmt.Errorf("at least one user is required")
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), opts.BcryptCost)
	if err != nil {
		return res, fmt.Errorf("hash password: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := make([]*models.User, 0, opts.Users)
		for i := 0; i < opts.Users; i++ {
			users = append(users, s.buildUser(i, string(hash)))
		}
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("create users: %w", err)
		}
		res.Users = len(users)

		if opts.Articles <= 0 {
			return nil
		}
		articles := make([]*models.Article, 0, opts.Articles)
		for i := 0; i < opts.Articles; i++ {
			articles = append(articles, s.buildArticle(users[s.rng.Intn(len(users))], opts.MaxDays))
		}
		if err := tx.Omit("Author").Create(&articles).Error; err != nil {
			return fmt.Errorf("create articles: %w", err)
		}
		res.Articles = len(articles)

		if opts.Comments <= 0 {
			return nil
		}
		var comments []*models.Comment
		for _, a := range articles {
			for n := s.rng.Intn(opts.Comments + 1); n > 0; n-- {
				comments = append(comments, s.buildComment(a, users[s.rng.Intn(len(users))]))
			}
		}
		if len(comments) > 0 {
			if err := tx.Omit("Article").CreateInBatches(&comments, 200).Error; err != nil {
				return fmt.Errorf("create comments: %w", err)
			}
		}
		res.Comments = len(comments)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	observability.Logger.Info("Seeding complete",
		zap.Int("users", res.Users),
		zap.Int("articles", res.Articles),
		zap.Int("comments", res.Comments),
	)
	return res, nil
}

// buildUser keeps username and nickname inside their 20 character columns;
// the index suffix keeps them unique within a run.
func (s *Seeder) buildUser(i int, passwordHash string) *models.User {
	suffix := fmt.Sprintf("%d", i+1)
	now := time.Now()
	return &models.User{
		Username:              truncate(s.faker.Username(), 20-len(suffix)) + suffix,
		Password:              passwordHash,
		Email:                 fmt.Sprintf("%s.%s@%s", suffix, s.faker.Username(), s.faker.DomainName()),
		Nickname:              truncate(s.faker.FirstName(), 20-len(suffix)-1) + "_" + suffix,
		Role:                  models.RoleOrdinary,
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func (s *Seeder) buildArticle(author *models.User, maxDays int) *models.Article {
	back := time.Duration(s.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(s.rng.Intn(24))*time.Hour +
		time.Duration(s.rng.Intn(60))*time.Minute
	return &models.Article{
		Title:     truncate(s.faker.Sentence(5), models.ArticleTitleMaxLen),
		Content:   truncate(s.faker.Paragraph(2, 4, 12, "\n\n"), models.ArticleContentMaxLen),
		AuthorID:  author.ID,
		ViewCount: int64(s.rng.Intn(500)),
		CreatedAt: time.Now().Add(-back),
	}
}

func (s *Seeder) buildComment(a *models.Article, by *models.User) *models.Comment {
	at := a.CreatedAt.Add(time.Duration(s.rng.Intn(72)+1) * time.Hour)
	if now := time.Now(); at.After(now) {
		at = now
	}
	return &models.Comment{
		ArticleID: a.ID,
		Nickname:  by.Nickname,
		Body:      s.faker.Sentence(s.rng.Intn(12) + 3),
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
