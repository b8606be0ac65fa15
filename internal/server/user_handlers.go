package server

import (
	"inkwell/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// CheckAvailability handles GET /api/users/availability
// @Summary Check registration field availability
// @Description Reports, for each supplied field, whether the value is unused
// @Tags users
// @Produce json
// @Param username query string false "Username"
// @Param email query string false "Email"
// @Param nickname query string false "Nickname"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} models.ErrorResponse
// @Router /users/availability [get]
func (s *Server) CheckAvailability(c *fiber.Ctx) error {
	result, err := s.userService.Availability(c.UserContext(),
		c.Query("username"), c.Query("email"), c.Query("nickname"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// CountUserArticles handles GET /api/users/:id/articles/count
// @Summary Count a user's articles
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{user_id=int,count=int}
// @Router /users/{id}/articles/count [get]
func (s *Server) CountUserArticles(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	count, err := s.articleService.CountByAuthor(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user_id": id, "count": count})
}

// GetStats handles GET /api/stats
// @Summary Article statistics
// @Description Totals; "mine" is included for signed-in callers
// @Tags articles
// @Produce json
// @Success 200 {object} service.ArticleStats
// @Router /stats [get]
func (s *Server) GetStats(c *fiber.Ctx) error {
	stats, err := s.articleService.Stats(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
