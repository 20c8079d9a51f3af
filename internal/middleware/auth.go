// Package middleware provides authentication, logging, tracing and rate limiting middleware.
package middleware

import (
	"context"
	"errors"
	"strings"

	"devhub/internal/auth"
	"devhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Locals keys populated by the auth middleware.
const (
	LocalUserID = "userID"
	LocalClaims = "claims"
)

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*auth.Claims, error)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) string {
	parts := strings.Split(c.Get(fiber.HeaderAuthorization), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// AuthRequired rejects requests without a valid bearer token. On success the
// user id and claims are stored in locals and the user id in the request context.
func AuthRequired(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c)
		if raw == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := v.Verify(c.UserContext(), raw)
		if err != nil {
			var appErr *models.AppError
			if !errors.As(err, &appErr) {
				appErr = models.NewUnauthorizedError("Invalid or expired token")
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		}

		setIdentity(c, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := bearerToken(c); raw != "" {
			if claims, err := v.Verify(c.UserContext(), raw); err == nil {
				setIdentity(c, claims)
			}
		}
		return c.Next()
	}
}

func setIdentity(c *fiber.Ctx, claims *auth.Claims) {
	userID, _ := claims.UserID()
	c.Locals(LocalUserID, userID)
	c.Locals(LocalClaims, claims)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// CurrentUserID returns the authenticated user id, if any.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok && id != 0
}

// CurrentClaims returns the verified token claims, if any.
func CurrentClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(LocalClaims).(*auth.Claims)
	return claims, ok
}
