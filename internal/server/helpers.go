package server

import (
	"errors"

	"devconnector/internal/middleware"
	"devconnector/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// notFoundScope selects the status a NOT_FOUND error is reported with.
// Profile and post routes have historically disagreed, so each is configurable.
type notFoundScope int

const (
	scopeDefault notFoundScope = iota
	scopeProfile
	scopePost
)

func (s *Server) notFoundStatus(scope notFoundScope) int {
	switch scope {
	case scopeProfile:
		if s.config.ProfileNotFoundStatus != 0 {
			return s.config.ProfileNotFoundStatus
		}
		return fiber.StatusBadRequest
	case scopePost:
		if s.config.PostNotFoundStatus != 0 {
			return s.config.PostNotFoundStatus
		}
		return fiber.StatusNotFound
	default:
		return fiber.StatusNotFound
	}
}

// respondError maps an AppError code to an HTTP status and writes the standard
// error body. Anything unclassified is logged and reported as a bare 500.
func (s *Server) respondError(c *fiber.Ctx, scope notFoundScope, err error) error {
	var status int
	switch models.ErrorCode(err) {
	case models.CodeValidation, models.CodeConflict:
		status = fiber.StatusBadRequest
	case models.CodeUnauthorized, models.CodeForbidden:
		status = fiber.StatusUnauthorized
	case models.CodeNotFound:
		status = s.notFoundStatus(scope)
	default:
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(), "path", c.Path(), "error", err)
		status = fiber.StatusInternalServerError
		err = models.NewInternalError(err)
	}
	return models.RespondWithError(c, status, err)
}

// parseID extracts a route parameter as a positive uint. A malformed id is
// reported the same way as a missing record of that scope.
// On failure it writes the response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string, scope notFoundScope) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = s.respondError(c, scope, models.NewNotFoundMessage(notFoundMessage(scope)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

func notFoundMessage(scope notFoundScope) string {
	switch scope {
	case scopeProfile:
		return "Profile not found"
	case scopePost:
		return "Post not found"
	default:
		return "Not found"
	}
}

// parseBody decodes the JSON request body into dst.
// On failure it writes a 400 and returns errResponseWritten.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// currentUserID returns the caller set by the auth guard. Routes using it are
// always mounted behind middleware.AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := middleware.UserID(c)
	return id
}
