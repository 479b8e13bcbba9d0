package handlers

import (
	"LeftoverLink/domain"
	"LeftoverLink/internal/api/presenters"
	"LeftoverLink/pkg/ngo"
	"errors"

	"github.com/gofiber/fiber/v2"
)

type (
	NGOHandler interface {
		GetNGOs(c *fiber.Ctx) error
		SuggestNGOs(c *fiber.Ctx) error
		MatchSuggestions(c *fiber.Ctx) error
	}

	ngoHandler struct {
		ngoService ngo.NGOService
	}
)

func NewNGOHandler(ngoService ngo.NGOService) NGOHandler {
	return &ngoHandler{
		ngoService: ngoService,
	}
}

func (h *ngoHandler) GetNGOs(c *fiber.Ctx) error {
	ngos, err := h.ngoService.ListNGOs(c.Context())
	if err != nil {
		return presenters.HandleError(c, err)
	}
	return c.JSON(fiber.Map{"ngos": ngos})
}

func (h *ngoHandler) SuggestNGOs(c *fiber.Ctx) error {
	req := new(domain.SuggestNGOsRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	ngos, err := h.ngoService.SuggestNGOs(c.Context(), *req)
	if err != nil {
		return presenters.HandleError(c, err)
	}
	return c.JSON(fiber.Map{"ngos": ngos})
}

// MatchSuggestions answers failures as {"error": ...}, relaying the matching
// service's own status and message when it rejects the request.
func (h *ngoHandler) MatchSuggestions(c *fiber.Ctx) error {
	req := new(domain.MatchSuggestionsRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": domain.ErrMissingMatchFields.Message})
	}

	suggestions, err := h.ngoService.MatchSuggestions(c.Context(), *req)
	if err != nil {
		var derr *domain.Error
		var upstream *domain.UpstreamError
		switch {
		case errors.As(err, &upstream):
			return c.Status(presenters.StatusFromError(err)).JSON(fiber.Map{"error": upstream.Message})
		case errors.As(err, &derr):
			return c.Status(presenters.StatusFromError(err)).JSON(fiber.Map{"error": derr.Message})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": domain.ErrMatchingFailed.Message})
		}
	}
	return c.JSON(fiber.Map{"ngos": suggestions})
}
