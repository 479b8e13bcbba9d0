package middleware

import (
	"LeftoverLink/pkg/cache"
	"LeftoverLink/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type (
	Middleware interface {
		CORSMiddleware() fiber.Handler
		AuthMiddleware(jwtService jwt.JWTService) fiber.Handler
		CacheUserData(prefix string) fiber.Handler
		CacheKey(key string) fiber.Handler
	}

	middleware struct {
		cache *cache.Cache
	}
)

// NewMiddleware accepts a nil cache; the cache handlers then pass through.
func NewMiddleware(responseCache *cache.Cache) Middleware {
	return &middleware{cache: responseCache}
}
