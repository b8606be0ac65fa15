package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type loginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password,omitempty" form:"password"`
}

// loginPage is the model of the sign-in form. The flags mirror the query
// parameters the other auth routes redirect with.
type loginPage struct {
	Form       loginForm `json:"form"`
	Error      bool      `json:"error"`
	Logout     bool      `json:"logout"`
	Registered bool      `json:"registered"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expires_at"`
	User      *models.User `json:"user"`
}

// RegisterPage handles GET /users/register
func (s *Server) RegisterPage(c *fiber.Ctx) error {
	return c.JSON(formPage{Form: service.RegisterInput{}})
}

// RegisterSubmit handles POST /users/register
func (s *Server) RegisterSubmit(c *fiber.Ctx) error {
	var in service.RegisterInput
	if err := bindBody(c, &in); err != nil {
		return renderForm(c, in, err)
	}

	if _, err := s.userService.Register(c.UserContext(), in); err != nil {
		in.Password, in.ConfirmPassword = "", ""
		return renderForm(c, in, err)
	}
	return c.Redirect(middleware.LoginPath+"?registered=true", fiber.StatusSeeOther)
}

// LoginPage handles GET /login
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return c.JSON(loginPage{
		Error:      c.QueryBool("error"),
		Logout:     c.QueryBool("logout"),
		Registered: c.QueryBool("registered"),
	})
}

// LoginSubmit handles POST /login. Any failure redirects back to the form
// without saying which credential was wrong.
func (s *Server) LoginSubmit(c *fiber.Ctx) error {
	var in loginForm
	if err := bindBody(c, &in); err != nil {
		return c.Redirect(middleware.LoginPath+"?error=true", fiber.StatusSeeOther)
	}

	user, err := s.userService.Authenticate(c.UserContext(), in.Username, in.Password)
	if err != nil {
		if models.StatusFor(err) == fiber.StatusInternalServerError {
			return respondError(c, err)
		}
		return c.Redirect(middleware.LoginPath+"?error=true", fiber.StatusSeeOther)
	}

	token, p, err := s.sessions.Issue(user)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	s.setSessionCookie(c, token, p.ExpiresAt)
	return c.Redirect("/articles", fiber.StatusSeeOther)
}

// Logout handles POST /logout
func (s *Server) Logout(c *fiber.Ctx) error {
	s.endSession(c)
	return c.Redirect(middleware.LoginPath+"?logout=true", fiber.StatusSeeOther)
}

// endSession revokes the current session, if any, and clears the cookie.
func (s *Server) endSession(c *fiber.Ctx) {
	if p, ok := middleware.CurrentPrincipal(c); ok {
		if err := s.sessions.Revoke(c.UserContext(), p); err != nil {
			observability.L(c.UserContext()).Warn("Session revocation failed",
				zap.String("session_id", p.SessionID), zap.Error(err))
		}
	}
	s.clearSessionCookie(c)
}

// APILogin handles POST /api/auth/login
// @Summary Sign in
// @Description Authenticate with username and password and receive a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} loginResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) APILogin(c *fiber.Ctx) error {
	var in loginForm
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}

	user, err := s.userService.Authenticate(c.UserContext(), in.Username, in.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, p, err := s.sessions.Issue(user)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	s.setSessionCookie(c, token, p.ExpiresAt)
	return c.JSON(loginResponse{Token: token, ExpiresAt: p.ExpiresAt.Unix(), User: user})
}

// APILogout handles POST /api/auth/logout
// @Summary Sign out
// @Description Revoke the current session token
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) APILogout(c *fiber.Ctx) error {
	s.endSession(c)
	return c.SendStatus(fiber.StatusNoContent)
}
