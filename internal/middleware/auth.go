package middleware

import (
	"context"
	"errors"
	"strings"

	"devconnector/internal/auth"
	"devconnector/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenHeader is the legacy header the web client sends the token in.
const TokenHeader = "x-auth-token"

// TokenVerifier validates a signed session token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// AuthRequired rejects requests without a valid token and stores the caller's
// id in c.Locals("userID") and the verified claims in c.Locals("claims").
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Msg: "No token, authorization denied"})
		}

		claims, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrRevokedToken) {
				Logger.WarnContext(c.UserContext(), "token verification failed", "error", err)
			}
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Msg: "Token is not valid"})
		}

		c.Locals("userID", claims.UserID)
		c.Locals("claims", claims)
		c.SetUserContext(WithUserID(c.UserContext(), claims.UserID))

		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is presented and
// otherwise lets the request through anonymously. Browsers cannot set headers
// on websocket upgrades, so a "token" query parameter is also accepted.
func OptionalAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			token = strings.TrimSpace(c.Query("token"))
		}
		if token == "" {
			return c.Next()
		}
		if claims, err := verifier.Verify(c.UserContext(), token); err == nil {
			c.Locals("userID", claims.UserID)
			c.SetUserContext(WithUserID(c.UserContext(), claims.UserID))
		}
		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(c.Get(TokenHeader))
}

// UserID returns the authenticated caller set by AuthRequired.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}
