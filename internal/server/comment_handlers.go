package server

import (
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/articles/:id/comments
// @Summary List comments of an article
// @Tags comments
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {array} models.CommentDto
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	articleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListByArticle(c.UserContext(), articleID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/articles/:id/comments
// @Summary Comment on an article
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Article ID"
// @Param request body service.CreateCommentInput true "Comment"
// @Success 201 {object} models.CommentDto
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	articleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.CreateCommentInput
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}

	comment, err := s.commentService.Create(c.UserContext(), articleID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PATCH /api/comments/:id. Any signed-in user may edit
// any comment; comments carry no owner.
// @Summary Update a comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body service.UpdateCommentInput true "Changes"
// @Success 200 {object} models.CommentDto
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [patch]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var in service.UpdateCommentInput
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}

	comment, err := s.commentService.Update(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} models.CommentDto
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.Delete(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}
