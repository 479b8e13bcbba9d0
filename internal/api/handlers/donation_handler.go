package handlers

import (
	"LeftoverLink/domain"
	"LeftoverLink/internal/api/presenters"
	"LeftoverLink/pkg/donation"

	"github.com/gofiber/fiber/v2"
)

type (
	DonationHandler interface {
		CreateDonation(c *fiber.Ctx) error
		AcceptDonation(c *fiber.Ctx) error
		GetMyDonations(c *fiber.Ctx) error
		GetMyReceived(c *fiber.Ctx) error
		GetDonationHistory(c *fiber.Ctx) error
		GetReceivedHistory(c *fiber.Ctx) error
		GetDonationSummary(c *fiber.Ctx) error
		GetReceivedSummary(c *fiber.Ctx) error
	}

	donationHandler struct {
		donationService donation.DonationService
	}
)

// Request validation lives in DonationService, since accept criteria are checked across fields.
func NewDonationHandler(donationService donation.DonationService) DonationHandler {
	return &donationHandler{
		donationService: donationService,
	}
}

// CreateDonation accepts JSON or multipart bodies; a multipart food_image part is uploaded.
func (h *donationHandler) CreateDonation(c *fiber.Ctx) error {
	req := new(domain.CreateDonationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if file, err := c.FormFile("food_image"); err == nil {
		req.FoodImage = file
	}

	food, err := h.donationService.CreateDonation(c.Context(), *req)
	if err != nil {
		return presenters.HandleError(c, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{"food": food}, fiber.StatusCreated, domain.MessageSuccessCreateDonation)
}

func (h *donationHandler) AcceptDonation(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	req := new(domain.AcceptDonationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	record, err := h.donationService.AcceptDonation(c.Context(), *req, userID)
	if err != nil {
		return presenters.HandleError(c, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{"record": record}, fiber.StatusOK, domain.MessageSuccessAcceptDonation)
}

func (h *donationHandler) GetMyDonations(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	donations, err := h.donationService.GetMyDonations(c.Context(), userID)
	if err != nil {
		return presenters.HandleError(c, err)
	}
	return c.JSON(fiber.Map{"donations": donations})
}

func (h *donationHandler) GetMyReceived(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	total, err := h.donationService.GetReceivedCount(c.Context(), userID)
	if err != nil {
		return presenters.HandleError(c, err)
	}
	return c.JSON(fiber.Map{"totalReceived": total})
}

func (h *donationHandler) GetDonationHistory(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	history, err := h.donationService.GetDonationHistory(c.Context(), userID)
	if err != nil {
		return presenters.HandleError(c, err)
	}
	return c.JSON(fiber.Map{"donations": history})
}

func (h *donationHandler) GetReceivedHistory(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	history, err := h.donationService.GetReceivedHistory(c.Context(), userID)
	if err != nil {
		return presenters.HandleError(c, err)
	}
	return c.JSON(fiber.Map{"received": history})
}

func (h *donationHandler) GetDonationSummary(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	summary, err := h.donationService.GetDonationSummary(c.Context(), userID)
	if err != nil {
		return presenters.HandleError(c, err)
	}
	return c.JSON(summary)
}

func (h *donationHandler) GetReceivedSummary(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	summary, err := h.donationService.GetReceivedSummary(c.Context(), userID)
	if err != nil {
		return presenters.HandleError(c, err)
	}
	return c.JSON(summary)
}
