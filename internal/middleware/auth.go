package middleware

import (
	"LeftoverLink/domain"
	"LeftoverLink/internal/api/presenters"
	"LeftoverLink/pkg/jwt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenFromRequest reads a bearer token from the Authorization header, falling
// back to the token query parameter for clients that cannot set headers.
func TokenFromRequest(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return c.Query("token")
}

func (m *middleware) AuthMiddleware(jwtService jwt.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		if token == "" {
			return presenters.HandleError(c, domain.ErrTokenNotFound)
		}

		userID, role, err := jwtService.GetUserIDByToken(token)
		if err != nil {
			return presenters.HandleError(c, err)
		}

		c.Locals("user_id", userID)
		c.Locals("role", role)
		return c.Next()
	}
}
