package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"devconnector/internal/config"
	"devconnector/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.Config
		scope      notFoundScope
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"Validation", config.Config{}, scopeDefault, models.NewValidationError("Text is required"), 400, "Text is required"},
		{"Conflict", config.Config{}, scopePost, models.NewConflictError("Post already liked"), 400, "Post already liked"},
		{"Forbidden", config.Config{}, scopePost, models.NewForbiddenError("User not authorized"), 401, "User not authorized"},
		{"Unauthorized", config.Config{}, scopeDefault, models.NewUnauthorizedError("Token is not valid"), 401, "Token is not valid"},
		{"Profile not found default", config.Config{}, scopeProfile, models.NewNotFoundMessage("Profile not found"), 400, "Profile not found"},
		{"Profile not found configured", config.Config{ProfileNotFoundStatus: 404}, scopeProfile, models.NewNotFoundMessage("Profile not found"), 404, "Profile not found"},
		{"Post not found default", config.Config{}, scopePost, models.NewNotFoundMessage("Post not found"), 404, "Post not found"},
		{"Post not found configured", config.Config{PostNotFoundStatus: 400}, scopePost, models.NewNotFoundMessage("Post not found"), 400, "Post not found"},
		{"User not found", config.Config{ProfileNotFoundStatus: 400}, scopeDefault, models.NewNotFoundMessage("User not found"), 404, "User not found"},
		{"Internal app error", config.Config{}, scopeDefault, models.NewInternalError(errors.New("db down")), 500, "Server Error"},
		{"Plain error", config.Config{}, scopePost, errors.New("boom"), 500, "Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			s := &Server{config: &cfg}
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return s.respondError(c, tt.scope, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body models.ErrorResponse
			require.NoError(t, decodeJSON(resp.Body, &body))
			assert.Equal(t, tt.wantMsg, body.Msg)
			assert.NotContains(t, body.Msg, "db down")
		})
	}
}

func TestParseID(t *testing.T) {
	s := &Server{config: &config.Config{ProfileNotFoundStatus: 400, PostNotFoundStatus: 404}}
	app := fiber.New()
	app.Get("/profile/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id", scopeProfile)
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})
	app.Get("/post/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id", scopePost)
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		path       string
		wantStatus int
		wantMsg    string
	}{
		{"/profile/12", 200, ""},
		{"/profile/abc", 400, "Profile not found"},
		{"/profile/0", 400, "Profile not found"},
		{"/post/-3", 404, "Post not found"},
		{"/post/5f1a2b3c4d5e6f7a8b9c0d1e", 404, "Post not found"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantMsg != "" {
				var body models.ErrorResponse
				require.NoError(t, decodeJSON(resp.Body, &body))
				assert.Equal(t, tt.wantMsg, body.Msg)
			}
		})
	}
}
