package presenters

import (
	"LeftoverLink/domain"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// SuccessResponse writes data with message merged in at the top level.
func SuccessResponse(c *fiber.Ctx, data fiber.Map, statusCode int, message string) error {
	body := fiber.Map{"message": message}
	for k, v := range data {
		body[k] = v
	}
	return c.Status(statusCode).JSON(body)
}

func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	body := fiber.Map{"message": message}
	if err != nil && err.Error() != message {
		body["error"] = err.Error()
	}
	return c.Status(statusCode).JSON(body)
}

func StatusFromError(err error) int {
	var upstream *domain.UpstreamError
	switch {
	case errors.As(err, &upstream) && upstream.Status >= 400:
		return upstream.Status
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrAuth):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// HandleError reports domain errors with their own message. Anything else is
// logged and hidden behind a generic server error.
func HandleError(c *fiber.Ctx, err error) error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return c.Status(StatusFromError(err)).JSON(fiber.Map{"message": derr.Message})
	}
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return c.Status(StatusFromError(err)).JSON(fiber.Map{"message": upstream.Message})
	}

	log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": domain.MessageServerError})
}
