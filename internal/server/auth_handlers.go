package server

import (
	"devconnector/internal/auth"
	"devconnector/internal/service"

	"github.com/gofiber/fiber/v2"
)

// tokenResponse is returned by register and login.
type tokenResponse struct {
	Token string `json:"token"`
}

// Register handles POST /api/users
// @Summary Register user
// @Description Create an account and receive a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var in service.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	token, err := s.authService.Register(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, scopeDefault, err)
	}
	return c.JSON(tokenResponse{Token: token})
}

// Login handles POST /api/auth
// @Summary Authenticate user
// @Description Exchange email and password for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Credentials"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /auth [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var in service.LoginInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	token, err := s.authService.Login(c.UserContext(), in)
	if err != nil {
		return s.respondError(c, scopeDefault, err)
	}
	return c.JSON(tokenResponse{Token: token})
}

// GetCurrentUser handles GET /api/auth
// @Summary Current user
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /auth [get]
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	user, err := s.authService.CurrentUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, scopeDefault, err)
	}
	return c.JSON(user)
}

// Logout handles POST /api/auth/logout by revoking the presented token.
// @Summary Logout
// @Tags auth
// @Security ApiKeyAuth
// @Success 200 {object} object{msg=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if claims, ok := c.Locals("claims").(*auth.Claims); ok {
		if err := s.tokens.Revoke(c.UserContext(), claims); err != nil {
			return s.respondError(c, scopeDefault, err)
		}
	}
	return c.JSON(fiber.Map{"msg": "Logged out"})
}
