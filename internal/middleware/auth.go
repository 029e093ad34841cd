// Package middleware provides authentication, request checks and the ambient
// logging, tracing and metrics layers for the HTTP server.
package middleware

import (
	"context"
	"strings"

	"agora/internal/auth"
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	msgNoToken      = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
)

// tokenFromRequest reads the x-auth-token header, falling back to an
// "Authorization: Bearer <token>" header.
func tokenFromRequest(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Get("x-auth-token")); token != "" {
		return token
	}
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// AuthRequired rejects requests without a valid token and stores the
// caller's user id in c.Locals("userID") and the request context.
func AuthRequired(tokens *auth.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(msgNoToken))
		}

		claims, err := tokens.Parse(c.UserContext(), tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(msgInvalidToken))
		}

		c.Locals("userID", claims.Subject)
		ctx := context.WithValue(c.UserContext(), UserIDKey, claims.Subject)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// UserID returns the authenticated caller set by AuthRequired.
func UserID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals("userID").(string)
	return id, ok && id != ""
}
