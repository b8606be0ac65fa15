// Package service contains the domain services that sit between HTTP handlers and repositories.
package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentialsMessage = "Invalid username or password"

type UserService struct {
	store      repository.Store
	bcryptCost int
}

type RegisterInput struct {
	Username        string `json:"username" form:"username"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	Email           string `json:"email" form:"email"`
	Nickname        string `json:"nickname" form:"nickname"`
}

// Availability reports, per supplied field, whether the value is still free.
type Availability map[string]bool

func NewUserService(store repository.Store, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{store: store, bcryptCost: bcryptCost}
}

func (in RegisterInput) validate() error {
	checks := []error{
		validation.ValidateUsername(in.Username),
		validation.ValidatePassword(in.Password),
		validation.ValidateEmail(in.Email),
		validation.ValidateNickname(in.Nickname),
	}
	for _, err := range checks {
		if err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	if in.Password != in.ConfirmPassword {
		return models.NewValidationError("Passwords do not match")
	}
	return nil
}

// Register creates an ORDINARY user with every account flag set.
// Duplicates are reported in the order username, email, nickname.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (user *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "Register",
		attribute.String("user.username", in.Username))
	defer func() { observability.EndSpan(span, err) }()

	if err = in.validate(); err != nil {
		observability.Registrations.WithLabelValues("invalid").Inc()
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	now := timeNow()
	user = &models.User{
		Username:              in.Username,
		Password:              string(hash),
		Email:                 in.Email,
		Nickname:              in.Nickname,
		Role:                  models.RoleOrdinary,
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		users := tx.Users()
		uniques := []struct {
			exists  func(context.Context, string) (bool, error)
			value   string
			message string
		}{
			{users.ExistsByUsername, in.Username, "Username already exists"},
			{users.ExistsByEmail, in.Email, "Email already exists"},
			{users.ExistsByNickname, in.Nickname, "Nickname already exists"},
		}
		for _, u := range uniques {
			taken, err := u.exists(ctx, u.value)
			if err != nil {
				return err
			}
			if taken {
				return models.NewConflictError(u.message)
			}
		}
		return users.Create(ctx, user)
	})
	if err != nil {
		if models.IsCode(err, models.CodeConflict) {
			observability.Registrations.WithLabelValues("conflict").Inc()
		}
		return nil, err
	}

	observability.Registrations.WithLabelValues("success").Inc()
	observability.L(ctx).Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username))
	return user, nil
}

// LoadByUsername returns the account for username or a NotFound error.
func (s *UserService) LoadByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.store.Users().GetByUsername(ctx, username)
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.store.Users().GetByID(ctx, id)
}

// Authenticate verifies credentials. Unknown users, wrong passwords and
// disabled accounts all produce the same Unauthorized error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (user *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "Authenticate")
	defer func() { observability.EndSpan(span, err) }()

	log := observability.L(ctx).With(zap.String("username", username))

	user, err = s.LoadByUsername(ctx, username)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			observability.Logins.WithLabelValues("unknown_user").Inc()
			log.Info("Login rejected: unknown user")
			return nil, models.NewUnauthorizedError(invalidCredentialsMessage)
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		observability.Logins.WithLabelValues("bad_password").Inc()
		log.Info("Login rejected: bad password")
		return nil, models.NewUnauthorizedError(invalidCredentialsMessage)
	}
	if !user.CanSignIn() {
		observability.Logins.WithLabelValues("disabled").Inc()
		log.Warn("Login rejected: account disabled")
		return nil, models.NewUnauthorizedError(invalidCredentialsMessage)
	}

	observability.Logins.WithLabelValues("success").Inc()
	return user, nil
}

// Availability checks each non-empty value against existing accounts.
func (s *UserService) Availability(ctx context.Context, username, email, nickname string) (Availability, error) {
	users := s.store.Users()
	checks := []struct {
		field  string
		value  string
		exists func(context.Context, string) (bool, error)
	}{
		{"username", username, users.ExistsByUsername},
		{"email", email, users.ExistsByEmail},
		{"nickname", nickname, users.ExistsByNickname},
	}

	out := Availability{}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		taken, err := c.exists(ctx, c.value)
		if err != nil {
			return nil, err
		}
		out[c.field] = !taken
	}
	if len(out) == 0 {
		return nil, models.NewValidationError("At least one of username, email or nickname is required")
	}
	return out, nil
}

// SetRole changes the role of the named account.
func (s *UserService) SetRole(ctx context.Context, username string, role models.Role) (*models.User, error) {
	if role != models.RoleAdmin && role != models.RoleOrdinary {
		return nil, models.NewValidationError("Unknown role " + string(role))
	}

	var user *models.User
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		u, err := tx.Users().GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if err := tx.Users().UpdateRole(ctx, u.ID, role); err != nil {
			return err
		}
		u.Role = role
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.L(ctx).Info("User role changed",
		zap.String("username", username),
		zap.String("role", string(role)))
	return user, nil
}

func (s *UserService) ListAdmins(ctx context.Context) ([]*models.User, error) {
	return s.store.Users().ListByRole(ctx, models.RoleAdmin)
}
