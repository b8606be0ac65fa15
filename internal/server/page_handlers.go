package server

import (
	"errors"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// formPage is the model behind an HTML form. Pages render it as JSON.
type formPage struct {
	Form  interface{} `json:"form"`
	Error string      `json:"error,omitempty"`
	Code  string      `json:"code,omitempty"`
}

// articleListPage is the model of the article index and the caller's own listing.
type articleListPage struct {
	Articles []models.ArticleDto `json:"articles"`
	Search   string              `json:"search,omitempty"`
	Type     models.SearchType   `json:"type,omitempty"`
	Page     int                 `json:"page"`
	Size     int                 `json:"size"`
}

// renderForm re-renders a form with the message of err. Only validation and
// conflict errors carry a user-facing message; anything else is internal.
func renderForm(c *fiber.Ctx, form interface{}, err error) error {
	status := models.StatusFor(err)
	var appErr *models.AppError
	if status == fiber.StatusInternalServerError || !errors.As(err, &appErr) {
		return respondError(c, err)
	}
	return c.Status(status).JSON(formPage{Form: form, Error: appErr.Message, Code: appErr.Code})
}

// ArticleListPage handles GET /articles
func (s *Server) ArticleListPage(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	search := c.Query("search")
	searchType := models.ParseSearchType(c.Query("type"))

	articles, err := s.articleService.List(c.UserContext(), models.ArticleFilter{
		Keyword: search,
		Type:    searchType,
		Limit:   page.Limit(),
		Offset:  page.Offset(),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(articleListPage{
		Articles: articles,
		Search:   search,
		Type:     searchType,
		Page:     page.Page,
		Size:     page.Size,
	})
}

// ArticleDetailPage handles GET /articles/:id and counts the view.
func (s *Server) ArticleDetailPage(c *fiber.Ctx) error {
	id, ok := pageID(c)
	if !ok {
		return c.Redirect("/articles", fiber.StatusSeeOther)
	}

	ctx := c.UserContext()
	article, err := s.articleService.GetAndIncrementViews(ctx, id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return c.Redirect("/articles", fiber.StatusSeeOther)
		}
		return respondError(c, err)
	}

	comments, err := s.commentService.ListByArticle(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.NewArticleView(article, middleware.UserID(c), comments))
}

// NewArticlePage handles GET /articles/new
func (s *Server) NewArticlePage(c *fiber.Ctx) error {
	return c.JSON(formPage{Form: service.ArticleInput{}})
}

// CreateArticleSubmit handles POST /articles
func (s *Server) CreateArticleSubmit(c *fiber.Ctx) error {
	p, ok := requirePrincipal(c)
	if !ok {
		return nil
	}

	var in service.ArticleInput
	if err := bindBody(c, &in); err != nil {
		return renderForm(c, in, err)
	}

	article, err := s.articleService.Create(c.UserContext(), p.UserID, in)
	if err != nil {
		return renderForm(c, in, err)
	}
	return c.Redirect(articlePath(article.ID), fiber.StatusSeeOther)
}

// EditArticlePage handles GET /articles/:id/edit
func (s *Server) EditArticlePage(c *fiber.Ctx) error {
	p, ok := requirePrincipal(c)
	if !ok {
		return nil
	}
	id, ok := pageID(c)
	if !ok {
		return c.Redirect("/articles", fiber.StatusSeeOther)
	}

	article, err := s.articleService.Get(c.UserContext(), id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return c.Redirect("/articles", fiber.StatusSeeOther)
		}
		return respondError(c, err)
	}
	if !article.IsAuthor(p.UserID) {
		return c.Redirect(articlePath(id), fiber.StatusSeeOther)
	}

	return c.JSON(formPage{Form: service.ArticleInput{Title: article.Title, Content: article.Content}})
}

// UpdateArticleSubmit handles POST /articles/:id
func (s *Server) UpdateArticleSubmit(c *fiber.Ctx) error {
	p, ok := requirePrincipal(c)
	if !ok {
		return nil
	}
	id, ok := pageID(c)
	if !ok {
		return c.Redirect("/articles", fiber.StatusSeeOther)
	}

	var in service.ArticleInput
	if err := bindBody(c, &in); err != nil {
		return renderForm(c, in, err)
	}

	_, err := s.articleService.Update(c.UserContext(), id, p.UserID, in)
	switch {
	case err == nil, models.IsCode(err, models.CodeForbidden):
		return c.Redirect(articlePath(id), fiber.StatusSeeOther)
	case models.IsCode(err, models.CodeNotFound):
		return c.Redirect("/articles", fiber.StatusSeeOther)
	default:
		return renderForm(c, in, err)
	}
}

// DeleteArticleSubmit handles POST /articles/:id/delete
func (s *Server) DeleteArticleSubmit(c *fiber.Ctx) error {
	p, ok := requirePrincipal(c)
	if !ok {
		return nil
	}
	id, ok := pageID(c)
	if !ok {
		return c.Redirect("/articles", fiber.StatusSeeOther)
	}

	_, err := s.articleService.Delete(c.UserContext(), id, p.UserID)
	switch {
	case err == nil, models.IsCode(err, models.CodeNotFound):
		return c.Redirect("/articles", fiber.StatusSeeOther)
	case models.IsCode(err, models.CodeForbidden):
		return c.Redirect(articlePath(id)+"?error=forbidden", fiber.StatusSeeOther)
	default:
		return respondError(c, err)
	}
}

// MyArticles handles GET /my-articles
func (s *Server) MyArticles(c *fiber.Ctx) error {
	p, ok := requirePrincipal(c)
	if !ok {
		return nil
	}
	page := parsePagination(c, defaultPageSize)

	articles, err := s.articleService.ListByAuthor(c.UserContext(), p.UserID, page.Limit(), page.Offset())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(articleListPage{Articles: articles, Page: page.Page, Size: page.Size})
}
