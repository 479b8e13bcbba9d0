package domain

import (
	"mime/multipart"
	"time"
)

const (
	FoodStatusAvailable = "available"
	FoodStatusClaimed   = "claimed"
	FoodStatusExpired   = "expired"
)

var (
	MessageSuccessCreateDonation = "Donation added successfully"
	MessageSuccessAcceptDonation = "Donation accepted successfully"

	ErrFoodNotFound           = NewError(ErrNotFound, "Food not found")
	ErrFoodAlreadyClaimed     = NewError(ErrConflict, "Food already claimed or expired")
	ErrNoDonationHistory      = NewError(ErrNotFound, "No donation history found")
	ErrNoReceivedHistory      = NewError(ErrNotFound, "No received history found")
	ErrInvalidQuantity        = NewError(ErrValidation, "Quantity must be a positive number.")
	ErrInvalidFoodType        = NewError(ErrValidation, "Food type must be one of cooked, raw, packed, others.")
	ErrInvalidExpiryDate      = NewError(ErrValidation, "Please enter a valid expiry date.")
	ErrInvalidManufactureDate = NewError(ErrValidation, "Please enter a valid manufacture date.")
	ErrMissingDonationFields  = NewError(ErrValidation, "Donor, food type and location are required.")
	ErrMissingAcceptCriteria  = NewError(ErrValidation, "Either foodId or donor, quantity, foodtype, location and expiry are required.")
	ErrInvalidImageType       = NewError(ErrValidation, "Food image must be a JPEG, PNG or WebP file.")
	ErrDonorNotFound          = NewError(ErrNotFound, "Donor not found")
	ErrImageUploadFailed      = NewError(ErrDependency, "failed to upload food image")
)

type (
	CreateDonationRequest struct {
		Donor           string                `json:"donor" form:"donor" validate:"required,uuid"`
		FoodType        string                `json:"foodType" form:"foodType" validate:"required,oneof=cooked raw packed others"`
		Quantity        float64               `json:"quantity" form:"quantity" validate:"required,gt=0"`
		Description     string                `json:"description" form:"description"`
		Expiry          string                `json:"expiry" form:"expiry" validate:"required,isodate"`
		Location        string                `json:"location" form:"location" validate:"required"`
		ManufactureDate string                `json:"manufactureDate" form:"manufactureDate" validate:"omitempty,isodate"`
		FoodImage       *multipart.FileHeader `json:"-" form:"-"`
	}

	// AcceptDonationRequest identifies a listing by FoodID, or by the legacy
	// tuple of donor, quantity, food type, location and expiry.
	AcceptDonationRequest struct {
		FoodID   string  `json:"foodId" validate:"omitempty,uuid"`
		Donor    string  `json:"donor" validate:"omitempty,uuid"`
		Quantity float64 `json:"quantity" validate:"omitempty,gt=0"`
		FoodType string  `json:"foodtype" validate:"omitempty,oneof=cooked raw packed others"`
		Location string  `json:"location"`
		Expiry   string  `json:"expiry" validate:"omitempty,isodate"`
	}

	Food struct {
		ID              string     `json:"id"`
		Donor           string     `json:"donor"`
		FoodType        string     `json:"foodType"`
		Quantity        float64    `json:"quantity"`
		Description     string     `json:"description"`
		Expiry          time.Time  `json:"expiry"`
		ManufactureDate *time.Time `json:"manufactureDate,omitempty"`
		Location        string     `json:"location"`
		Status          string     `json:"status"`
		ImageURL        string     `json:"imageUrl,omitempty"`
		CreatedAt       time.Time  `json:"createdAt"`
	}

	ReceiveRecord struct {
		ID         string    `json:"id"`
		Food       string    `json:"food"`
		DonatedBy  string    `json:"donatedBy"`
		ReceivedBy string    `json:"receivedBy"`
		ReceivedAt time.Time `json:"receivedAt"`
	}

	FoodSummary struct {
		ID       string    `json:"id"`
		FoodType string    `json:"foodType"`
		Quantity float64   `json:"quantity"`
		Expiry   time.Time `json:"expiry"`
		Location string    `json:"location"`
	}

	// HistoryRecord is a receive record with the food and the counterparty expanded.
	HistoryRecord struct {
		ID         string       `json:"id"`
		Food       *FoodSummary `json:"food"`
		DonatedBy  *UserSummary `json:"donatedBy"`
		ReceivedBy *UserSummary `json:"receivedBy"`
		ReceivedAt time.Time    `json:"receivedAt"`
	}

	CounterpartySummary struct {
		User  string `json:"user"`
		Name  string `json:"name"`
		Count int64  `json:"count"`
	}

	DonationAcceptedEvent struct {
		ReceiverID string  `json:"receiverId"`
		FoodID     string  `json:"foodId"`
		FoodType   string  `json:"foodType"`
		Quantity   float64 `json:"quantity"`
		Location   string  `json:"location"`
	}
)
