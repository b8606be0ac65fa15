package server

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds the parsed page/size query parameters. Page is zero-based.
type Pagination struct {
	Page int
	Size int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Limit and Offset translate the page into repository terms.
func (p Pagination) Limit() int  { return p.Size }
func (p Pagination) Offset() int { return p.Page * p.Size }

// parsePagination extracts page and size query parameters with the given default size.
func parsePagination(c *fiber.Ctx, defaultSize int) Pagination {
	size := c.QueryInt("size", defaultSize)
	if size <= 0 {
		size = defaultSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	page := c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}

	return Pagination{Page: page, Size: size}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// pageID is parseID for the form surface, where a malformed id is treated like a missing article.
func pageID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// respondError writes err with the status its code maps to. Unexpected errors are logged.
func respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status == fiber.StatusInternalServerError {
		observability.L(c.UserContext()).Error("Request failed",
			zap.String("path", c.Path()), zap.Error(err))
	}
	return models.RespondWithError(c, status, err)
}

// bindBody parses a form-urlencoded or JSON body into out.
func bindBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// requirePrincipal returns the signed-in principal. Routes behind the guard
// always have one; the check protects handlers mounted without it.
func requirePrincipal(c *fiber.Ctx) (session.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		_ = middleware.Unauthenticated(c)
	}
	return p, ok
}

func articlePath(id uint) string {
	return fmt.Sprintf("/articles/%d", id)
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
