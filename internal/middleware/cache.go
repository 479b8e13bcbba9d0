package middleware

import (
	"LeftoverLink/pkg/cache"

	"github.com/gofiber/fiber/v2"
)

const headerCache = "X-Cache"

// CacheUserData serves the caller's cached response for prefix when present.
// On a miss the handler runs and a 200 body is stored as-is, so hits and
// misses return identical bytes. A fill is dropped when the key was
// invalidated while the handler ran. Requires AuthMiddleware upstream.
func (m *middleware) CacheUserData(prefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return c.Next()
		}
		return m.readThrough(c, cache.Key(prefix, userID))
	}
}

// CacheKey is CacheUserData for responses shared by every caller.
func (m *middleware) CacheKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return m.readThrough(c, key)
	}
}

func (m *middleware) readThrough(c *fiber.Ctx, key string) error {
	if m.cache == nil {
		return c.Next()
	}

	if payload, ok := m.cache.Get(c.UserContext(), key); ok {
		c.Set(headerCache, "HIT")
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(fiber.StatusOK).Send(payload)
	}

	// read before the handler so a write landing mid-request discards the fill
	gen, fillable := m.cache.Generation(c.UserContext(), key)

	if err := c.Next(); err != nil {
		return err
	}
	c.Set(headerCache, "MISS")
	if fillable && c.Response().StatusCode() == fiber.StatusOK {
		body := append([]byte(nil), c.Response().Body()...)
		m.cache.Fill(c.UserContext(), key, gen, body)
	}
	return nil
}
