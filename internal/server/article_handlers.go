package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) listArticles(c *fiber.Ctx, includeAuthor bool) error {
	page := parsePagination(c, defaultPageSize)

	articles, err := s.articleService.List(c.UserContext(), models.ArticleFilter{
		Keyword:       c.Query("keyword"),
		Type:          models.SearchType(c.Query("type")),
		IncludeAuthor: includeAuthor,
		Limit:         page.Limit(),
		Offset:        page.Offset(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(articles)
}

// ListArticles handles GET /api/articles
// @Summary List articles
// @Description Newest first; keyword narrows by title, content or both
// @Tags articles
// @Produce json
// @Param keyword query string false "Search keyword"
// @Param type query string false "title, content or all"
// @Param page query int false "Zero-based page"
// @Param size query int false "Page size (max 100)"
// @Success 200 {array} models.ArticleDto
// @Router /articles [get]
func (s *Server) ListArticles(c *fiber.Ctx) error {
	return s.listArticles(c, false)
}

// SearchArticles handles GET /api/articles/search. With type=all the keyword
// also matches the author's nickname.
// @Summary Search articles
// @Tags articles
// @Produce json
// @Param keyword query string false "Search keyword"
// @Param type query string false "title, content or all"
// @Param page query int false "Zero-based page"
// @Param size query int false "Page size (max 100)"
// @Success 200 {array} models.ArticleDto
// @Router /articles/search [get]
func (s *Server) SearchArticles(c *fiber.Ctx) error {
	return s.listArticles(c, true)
}

// PopularArticles handles GET /api/articles/popular
// @Summary Most viewed articles
// @Tags articles
// @Produce json
// @Success 200 {array} models.ArticleDto
// @Router /articles/popular [get]
func (s *Server) PopularArticles(c *fiber.Ctx) error {
	articles, err := s.articleService.Popular(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(articles)
}

// RecentArticles handles GET /api/articles/recent
// @Summary Newest articles
// @Tags articles
// @Produce json
// @Success 200 {array} models.ArticleDto
// @Router /articles/recent [get]
func (s *Server) RecentArticles(c *fiber.Ctx) error {
	articles, err := s.articleService.Recent(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(articles)
}

// GetArticle handles GET /api/articles/:id
// @Summary Get an article
// @Description Returns the article and counts one view
// @Tags articles
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} models.ArticleView
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{id} [get]
func (s *Server) GetArticle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	article, err := s.articleService.GetAndIncrementViews(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.NewArticleView(article, middleware.UserID(c), nil))
}

// CreateArticle handles POST /api/articles
// @Summary Create an article
// @Tags articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ArticleInput true "Article"
// @Success 201 {object} models.ArticleDto
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /articles [post]
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	p, ok := requirePrincipal(c)
	if !ok {
		return nil
	}

	var in service.ArticleInput
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}

	article, err := s.articleService.Create(c.UserContext(), p.UserID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

// CreateArticles handles POST /api/articles/bulk. Either every article is
// created or none is.
// @Summary Create several articles
// @Tags articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body []service.ArticleInput true "Articles"
// @Success 201 {array} models.ArticleDto
// @Failure 400 {object} models.ErrorResponse
// @Router /articles/bulk [post]
func (s *Server) CreateArticles(c *fiber.Ctx) error {
	p, ok := requirePrincipal(c)
	if !ok {
		return nil
	}

	var in []service.ArticleInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	articles, err := s.articleService.CreateBatch(c.UserContext(), p.UserID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(articles)
}

// UpdateArticle handles PATCH /api/articles/:id
// @Summary Update an article
// @Description Blank fields keep their stored value. Author only.
// @Tags articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Article ID"
// @Param request body service.ArticleInput true "Changes"
// @Success 200 {object} models.ArticleDto
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{id} [patch]
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	p, ok := requirePrincipal(c)
	if !ok {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.ArticleInput
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}

	article, err := s.articleService.Update(c.UserContext(), id, p.UserID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(article)
}

// DeleteArticle handles DELETE /api/articles/:id
// @Summary Delete an article
// @Description Author or administrator. Returns the deleted article.
// @Tags articles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Article ID"
// @Success 200 {object} models.ArticleDto
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{id} [delete]
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	p, ok := requirePrincipal(c)
	if !ok {
		return nil
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	article, err := s.articleService.Delete(c.UserContext(), id, p.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(article)
}
