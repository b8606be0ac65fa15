package seed

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixture is a hand-written data set. Articles refer to their author by username.
type Fixture struct {
	Users    []FixtureUser    `yaml:"users"`
	Articles []FixtureArticle `yaml:"articles"`
}

// FixtureUser describes one account. Password defaults to DefaultPassword and Role to ORDINARY.
type FixtureUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
	Nickname string `yaml:"nickname"`
	Role     string `yaml:"role"`
}

// FixtureArticle is an article with its comments.
type FixtureArticle struct {
	Author    string           `yaml:"author"`
	Title     string           `yaml:"title"`
	Content   string           `yaml:"content"`
	Views     int64            `yaml:"views"`
	CreatedAt time.Time        `yaml:"created_at"`
	Comments  []FixtureComment `yaml:"comments"`
}

// FixtureComment is one nickname-signed comment.
type FixtureComment struct {
	Nickname string `yaml:"nickname"`
	Body     string `yaml:"body"`
}

// ParseFixture decodes YAML, rejecting unknown keys.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) check() error {
	known := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		if u.Username == "" {
			return fmt.Errorf("user %d: username is required", i)
		}
		if known[u.Username] {
			return fmt.Errorf("user %q listed twice", u.Username)
		}
		switch models.Role(u.Role) {
		case "", models.RoleOrdinary, models.RoleAdmin:
		default:
			return fmt.Errorf("user %q: unknown role %q", u.Username, u.Role)
		}
		known[u.Username] = true
	}
	for i, a := range f.Articles {
		if !known[a.Author] {
			return fmt.Errorf("article %d: unknown author %q", i, a.Author)
		}
		if a.Title == "" {
			return fmt.Errorf("article %d: title is required", i)
		}
	}
	return nil
}

// LoadFixtureFile reads a fixture from disk and inserts it.
func (s *Seeder) LoadFixtureFile(ctx context.Context, path string, bcryptCost int) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read fixture: %w", err)
	}
	f, err := ParseFixture(data)
	if err != nil {
		return Result{}, err
	}
	return s.LoadFixture(ctx, f, bcryptCost)
}

// LoadFixture inserts every user, article and comment of f in one transaction.
func (s *Seeder) LoadFixture(ctx context.Context, f *Fixture, bcryptCost int) (Result, error) {
	var res Result
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		byName := make(map[string]*models.User, len(f.Users))
		for _, fu := range f.Users {
			u, err := fixtureUser(fu, bcryptCost)
			if err != nil {
				return err
			}
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("create user %q: %w", fu.Username, err)
			}
			byName[u.Username] = u
			res.Users++
		}

		for _, fa := range f.Articles {
			created := fa.CreatedAt
			if created.IsZero() {
				created = time.Now()
			}
			a := &models.Article{
				Title:     fa.Title,
				Content:   fa.Content,
				AuthorID:  byName[fa.Author].ID,
				ViewCount: fa.Views,
				CreatedAt: created,
			}
			if err := tx.Omit("Author").Create(a).Error; err != nil {
				return fmt.Errorf("create article %q: %w", fa.Title, err)
			}
			res.Articles++

			for _, fc := range fa.Comments {
				c := &models.Comment{
					ArticleID: a.ID,
					Nickname:  fc.Nickname,
					Body:      fc.Body,
					CreatedAt: created,
					UpdatedAt: created,
				}
				if err := tx.Omit("Article").Create(c).Error; err != nil {
					return fmt.Errorf("create comment on %q: %w", fa.Title, err)
				}
				res.Comments++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	observability.Logger.Info("Fixture loaded",
		zap.Int("users", res.Users),
		zap.Int("articles", res.Articles),
		zap.Int("comments", res.Comments),
	)
	return res, nil
}

func fixtureUser(fu FixtureUser, cost int) (*models.User, error) {
	password := fu.Password
	if password == "" {
		password = DefaultPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password for %q: %w", fu.Username, err)
	}

	u := &models.User{
		Username:              fu.Username,
		Password:              string(hash),
		Email:                 fu.Email,
		Nickname:              fu.Nickname,
		Role:                  models.RoleOrdinary,
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
	}
	if fu.Role != "" {
		u.Role = models.Role(fu.Role)
	}
	if u.Email == "" {
		u.Email = fu.Username + "@example.com"
	}
	if u.Nickname == "" {
		u.Nickname = fu.Username
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	return u, nil
}
