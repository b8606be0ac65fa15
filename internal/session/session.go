// Package session issues and verifies signed session tokens and tracks revoked sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	issuer   = "inkwell"
	audience = "inkwell-web"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid or expired session")

// ErrRevoked is returned for a token whose session was logged out.
var ErrRevoked = errors.New("session has been revoked")

// Principal is the authenticated identity carried by a session.
type Principal struct {
	UserID    uint
	Username  string
	Role      models.Role
	SessionID string
	ExpiresAt time.Time
}

// IsAdmin reports whether the session was issued to an ADMIN.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

type claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// RevocationStore remembers logged-out session ids until their tokens expire.
type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// Manager signs session tokens with HS256.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

// NewManager returns a Manager. revoked may be nil, in which case logout only clears the cookie.
func NewManager(secret string, ttl time.Duration, revoked RevocationStore) *Manager {
	return &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// TTL is the lifetime of newly issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new session token for user.
func (m *Manager) Issue(user *models.User) (string, Principal, error) {
	if len(m.secret) == 0 {
		return "", Principal{}, fmt.Errorf("session secret not configured")
	}

	now := m.now()
	p := Principal{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		SessionID: uuid.NewString(),
		ExpiresAt: now.Add(m.ttl),
	}
	c := claims{
		Username: p.Username,
		Role:     string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(p.UserID), 10),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        p.SessionID,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", Principal{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, p, nil
}

// Parse verifies the token and returns its principal. Revocation lookups that
// fail are logged and the session is accepted.
func (m *Manager) Parse(ctx context.Context, token string) (Principal, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || userID == 0 || c.ID == "" {
		return Principal{}, ErrInvalidToken
	}

	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(ctx, c.ID)
		if err != nil {
			observability.L(ctx).Warn("Session revocation lookup failed", zap.Error(err))
		} else if revoked {
			return Principal{}, ErrRevoked
		}
	}

	return Principal{
		UserID:    uint(userID),
		Username:  c.Username,
		Role:      models.Role(c.Role),
		SessionID: c.ID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// Revoke marks the principal's session as logged out for the rest of its lifetime.
func (m *Manager) Revoke(ctx context.Context, p Principal) error {
	if m.revoked == nil || p.SessionID == "" {
		return nil
	}
	ttl := p.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.revoked.Revoke(ctx, p.SessionID, ttl)
}
