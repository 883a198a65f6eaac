package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const localsBusinessID = "businessID"

// AuthMiddleware validates the bearer token of every request. When the service
// has no secret the API runs open and a warning is logged once.
func AuthMiddleware(jwtService *JWTService) fiber.Handler {
	if !jwtService.Enabled() {
		log.Warn().Msg("⚠️ JWT secret not set, routes are running without authentication")
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c *fiber.Ctx) error {
		// Get token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(localsBusinessID, claims.BusinessID)
		return c.Next()
	}
}

// BusinessFromContext returns the business the request's token is scoped to.
// ok is false on unauthenticated requests.
func BusinessFromContext(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(localsBusinessID).(uuid.UUID)
	return id, ok
}

// AuthorizeBusiness reports whether the request may touch rows of businessID.
// Unauthenticated requests (auth disabled) are always allowed.
func AuthorizeBusiness(c *fiber.Ctx, businessID uuid.UUID) bool {
	tokenBusiness, ok := BusinessFromContext(c)
	if !ok {
		return true
	}
	return tokenBusiness == businessID
}
