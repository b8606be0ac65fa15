// Package middleware provides authentication and request plumbing middleware for the application.
package middleware

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals set by Authenticate.
const (
	LocalUserID    = "userID"
	LocalPrincipal = "principal"
	LocalAuthError = "authError"
)

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

// Authenticate resolves the session token, if any, into a principal. It never
// rejects a request; Guard decides whether a principal is required.
// The session cookie is checked first, then a Bearer token on /api paths.
func Authenticate(sessions *session.Manager, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if token == "" && isAPIPath(c.Path()) {
			token = bearerToken(c.Get(fiber.HeaderAuthorization))
		}
		if token == "" {
			return c.Next()
		}

		p, err := sessions.Parse(c.UserContext(), token)
		if err != nil {
			c.Locals(LocalAuthError, err)
			return c.Next()
		}

		c.Locals(LocalUserID, p.UserID)
		c.Locals(LocalPrincipal, p)
		ctx := context.WithValue(c.UserContext(), observability.UserIDKey, p.UserID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// CurrentPrincipal returns the authenticated principal of the request.
func CurrentPrincipal(c *fiber.Ctx) (session.Principal, bool) {
	p, ok := c.Locals(LocalPrincipal).(session.Principal)
	return p, ok
}

// UserID returns the authenticated user id, or 0 for anonymous requests.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalUserID).(uint)
	return id
}

// Rule is one entry of the access list. Pattern segments starting with ':'
// match any single path segment; a trailing "*" matches any remainder.
type Rule struct {
	Method  string
	Pattern string
	Public  bool
}

func (r Rule) matches(method, path string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	want := splitPath(r.Pattern)
	got := splitPath(path)
	for i, seg := range want {
		if seg == "*" {
			return true
		}
		if i >= len(got) {
			return false
		}
		if !strings.HasPrefix(seg, ":") && seg != got[i] {
			return false
		}
	}
	return len(want) == len(got)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Guard evaluates rules in order; the first match decides whether the route is
// public. Unmatched routes require authentication.
func Guard(rules []Rule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, r := range rules {
			if r.matches(c.Method(), c.Path()) {
				if r.Public {
					return c.Next()
				}
				break
			}
		}
		if _, ok := CurrentPrincipal(c); ok {
			return c.Next()
		}
		return Unauthenticated(c)
	}
}

// Unauthenticated answers 401 JSON on /api and redirects pages to the login form.
func Unauthenticated(c *fiber.Ctx) error {
	msg := "Authentication required"
	if err, ok := c.Locals(LocalAuthError).(error); ok && errors.Is(err, session.ErrRevoked) {
		msg = "Session has been revoked"
	}
	if isAPIPath(c.Path()) {
		return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
	}
	return c.Redirect(LoginPath, fiber.StatusSeeOther)
}
