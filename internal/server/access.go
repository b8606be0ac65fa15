package server

import (
	"inkwell/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// DefaultRules is the access list evaluated by middleware.Guard. Order
// matters: the form routes under /articles that need a session are listed
// before the public /articles/:id they would otherwise match, and every
// session-only GET is listed before the closing GET catch-all. The catch-all
// lets unknown paths reach Fiber's 404 instead of the login redirect.
func DefaultRules() []middleware.Rule {
	get := fiber.MethodGet
	return []middleware.Rule{
		{Method: get, Pattern: "/", Public: true},
		{Method: get, Pattern: "/health/*", Public: true},
		{Method: get, Pattern: "/metrics", Public: true},
		{Method: get, Pattern: "/api/swagger/*", Public: true},

		{Pattern: "/login", Public: true},
		{Pattern: "/users/register", Public: true},
		{Method: fiber.MethodPost, Pattern: "/api/auth/login", Public: true},

		{Method: get, Pattern: "/my-articles"},
		{Method: get, Pattern: "/articles/new"},
		{Method: get, Pattern: "/articles/:id/edit"},
		{Method: get, Pattern: "/articles", Public: true},
		{Method: get, Pattern: "/articles/:id", Public: true},

		{Method: get, Pattern: "/api/articles", Public: true},
		{Method: get, Pattern: "/api/articles/:id", Public: true},
		{Method: get, Pattern: "/api/articles/:id/comments", Public: true},
		{Method: get, Pattern: "/api/users/availability", Public: true},
		{Method: get, Pattern: "/api/users/:id/articles/count", Public: true},
		{Method: get, Pattern: "/api/stats", Public: true},

		{Method: get, Pattern: "/*", Public: true},
		{Method: fiber.MethodHead, Pattern: "/*", Public: true},
	}
}
