package donation

import (
	"LeftoverLink/domain"
	"LeftoverLink/entities"
	"LeftoverLink/internal/utils"
	"LeftoverLink/internal/utils/storage"
	"LeftoverLink/pkg/cache"
	"LeftoverLink/pkg/notification"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const imageFolder = "donations"

type (
	DonationService interface {
		CreateDonation(ctx context.Context, req domain.CreateDonationRequest) (domain.Food, error)
		AcceptDonation(ctx context.Context, req domain.AcceptDonationRequest, receiverID string) (domain.ReceiveRecord, error)

		GetMyDonations(ctx context.Context, userID string) ([]domain.Food, error)
		GetReceivedCount(ctx context.Context, userID string) (int64, error)
		GetDonationHistory(ctx context.Context, userID string) ([]domain.HistoryRecord, error)
		GetReceivedHistory(ctx context.Context, userID string) ([]domain.HistoryRecord, error)
		GetDonationSummary(ctx context.Context, userID string) ([]domain.CounterpartySummary, error)
		GetReceivedSummary(ctx context.Context, userID string) ([]domain.CounterpartySummary, error)

		ExpireStale(ctx context.Context, now time.Time) (int, error)
		RunExpirySweep(ctx context.Context, interval time.Duration)
	}

	donationService struct {
		donationRepository DonationRepository
		cache              *cache.Cache
		notifier           notification.Notifier
		s3                 storage.AwsS3
	}
)

// NewDonationService accepts a nil cache, notifier or s3; the matching side effect is skipped.
func NewDonationService(
	donationRepository DonationRepository,
	responseCache *cache.Cache,
	notifier notification.Notifier,
	s3 storage.AwsS3,
) DonationService {
	utils.InitValidator()
	return &donationService{
		donationRepository: donationRepository,
		cache:              responseCache,
		notifier:           notifier,
		s3:                 s3,
	}
}

func (s *donationService) CreateDonation(ctx context.Context, req domain.CreateDonationRequest) (domain.Food, error) {
	if err := utils.Validate.Struct(req); err != nil {
		return domain.Food{}, createValidationError(err)
	}

	donorID, err := uuid.Parse(req.Donor)
	if err != nil {
		return domain.Food{}, domain.ErrParseUUID
	}
	expiry, err := utils.ParseDate(req.Expiry)
	if err != nil {
		return domain.Food{}, domain.ErrInvalidExpiryDate
	}

	food := &entities.Food{
		ID:          uuid.New(),
		DonorID:     donorID,
		FoodType:    req.FoodType,
		Quantity:    req.Quantity,
		Description: strings.TrimSpace(req.Description),
		Expiry:      expiry,
		Location:    strings.TrimSpace(req.Location),
		Status:      domain.FoodStatusAvailable,
	}
	if req.ManufactureDate != "" {
		manufactured, err := utils.ParseDate(req.ManufactureDate)
		if err != nil {
			return domain.Food{}, domain.ErrInvalidManufactureDate
		}
		food.ManufactureDate = &manufactured
	}

	if req.FoodImage != nil {
		if s.s3 == nil {
			log.Warnw("food image ignored, storage not configured", "donor", req.Donor)
		} else {
			key, err := s.s3.UploadFile(ctx, food.ID.String(), req.FoodImage, imageFolder, storage.AllowImage...)
			if err != nil {
				if errors.Is(err, storage.ErrFileTypeNotAllowed) {
					return domain.Food{}, domain.ErrInvalidImageType
				}
				log.Errorw("upload food image failed", "food", food.ID, "error", err)
				return domain.Food{}, domain.ErrImageUploadFailed
			}
			food.ImageURL = s.s3.GetPublicLinkKey(key)
		}
	}

	if err := s.donationRepository.CreateFood(ctx, food); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return domain.Food{}, domain.ErrDonorNotFound
		}
		return domain.Food{}, fmt.Errorf("create food: %w", err)
	}

	s.cache.InvalidateUsers(ctx, cache.DonorPrefixes, food.DonorID.String())
	log.Infow("donation created", "food", food.ID, "donor", food.DonorID)

	return ToDomainFood(food), nil
}

func (s *donationService) AcceptDonation(ctx context.Context, req domain.AcceptDonationRequest, receiverID string) (domain.ReceiveRecord, error) {
	receiver, err := uuid.Parse(receiverID)
	if err != nil {
		return domain.ReceiveRecord{}, domain.ErrParseUUID
	}

	food, err := s.findFood(ctx, req)
	if err != nil {
		return domain.ReceiveRecord{}, err
	}
	if food.Status != domain.FoodStatusAvailable {
		return domain.ReceiveRecord{}, domain.ErrFoodAlreadyClaimed
	}

	receive, err := s.donationRepository.ClaimFood(ctx, food, receiver)
	if err != nil {
		if errors.Is(err, domain.ErrFoodAlreadyClaimed) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ReceiveRecord{}, domain.ErrFoodAlreadyClaimed
		}
		return domain.ReceiveRecord{}, fmt.Errorf("claim food: %w", err)
	}

	donorID := food.DonorID.String()
	s.cache.InvalidateUsers(ctx, cache.AllPrefixes, donorID, receiverID)
	log.Infow("donation accepted", "food", food.ID, "donor", donorID, "receiver", receiverID)

	if s.notifier != nil {
		donor := notification.Recipient{ID: donorID}
		if food.Donor != nil {
			donor.Name = strings.TrimSpace(food.Donor.FirstName + " " + food.Donor.LastName)
			donor.Email = food.Donor.Email
		}
		s.notifier.DonationAccepted(ctx, donor, domain.DonationAcceptedEvent{
			ReceiverID: receiverID,
			FoodID:     food.ID.String(),
			FoodType:   food.FoodType,
			Quantity:   food.Quantity,
			Location:   food.Location,
		})
	}

	return ToReceiveRecord(receive), nil
}

func (s *donationService) findFood(ctx context.Context, req domain.AcceptDonationRequest) (*entities.Food, error) {
	if err := utils.Validate.Struct(req); err != nil {
		return nil, acceptValidationError(err)
	}

	var (
		food *entities.Food
		err  error
	)
	if req.FoodID != "" {
		food, err = s.donationRepository.GetFoodByID(ctx, req.FoodID)
	} else {
		if req.Donor == "" || req.Quantity <= 0 || req.FoodType == "" || strings.TrimSpace(req.Location) == "" || req.Expiry == "" {
			return nil, domain.ErrMissingAcceptCriteria
		}
		expiry, perr := utils.ParseDate(req.Expiry)
		if perr != nil {
			return nil, domain.ErrInvalidExpiryDate
		}
		food, err = s.donationRepository.FindFood(ctx, FoodCriteria{
			DonorID:  req.Donor,
			Quantity: req.Quantity,
			FoodType: req.FoodType,
			Location: strings.TrimSpace(req.Location),
			Expiry:   expiry,
		})
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFoodNotFound
		}
		return nil, fmt.Errorf("find food: %w", err)
	}
	return food, nil
}

func (s *donationService) GetMyDonations(ctx context.Context, userID string) ([]domain.Food, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrParseUUID
	}
	foods, err := s.donationRepository.GetDonorFoods(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}

	res := make([]domain.Food, 0, len(foods))
	for _, f := range foods {
		res = append(res, ToDomainFood(f))
	}
	return res, nil
}

func (s *donationService) GetReceivedCount(ctx context.Context, userID string) (int64, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return 0, domain.ErrParseUUID
	}
	count, err := s.donationRepository.CountReceived(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count received: %w", err)
	}
	return count, nil
}

func (s *donationService) GetDonationHistory(ctx context.Context, userID string) ([]domain.HistoryRecord, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrParseUUID
	}
	records, err := s.donationRepository.GetDonationHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("donation history: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrNoDonationHistory
	}
	return toHistory(records), nil
}

func (s *donationService) GetReceivedHistory(ctx context.Context, userID string) ([]domain.HistoryRecord, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrParseUUID
	}
	records, err := s.donationRepository.GetReceivedHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("received history: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrNoReceivedHistory
	}
	return toHistory(records), nil
}

func (s *donationService) GetDonationSummary(ctx context.Context, userID string) ([]domain.CounterpartySummary, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrParseUUID
	}
	summary, err := s.donationRepository.GetDonationSummary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("donation summary: %w", err)
	}
	return summary, nil
}

func (s *donationService) GetReceivedSummary(ctx context.Context, userID string) ([]domain.CounterpartySummary, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrParseUUID
	}
	summary, err := s.donationRepository.GetReceivedSummary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("received summary: %w", err)
	}
	return summary, nil
}

// ExpireStale expires overdue listings and drops the donors' cached reads.
// It returns the number of donors affected.
func (s *donationService) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	donors, err := s.donationRepository.ExpireStale(ctx, expiryCutoff(now))
	if err != nil {
		return 0, fmt.Errorf("expire stale: %w", err)
	}
	if len(donors) > 0 {
		s.cache.InvalidateUsers(ctx, cache.AllPrefixes, donors...)
		log.Infow("expired stale donations", "donors", len(donors))
	}
	return len(donors), nil
}

// expiryCutoff is the start of now's UTC day. Expiry is a calendar date, so a
// listing stays claimable through the whole of its expiry day.
func expiryCutoff(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RunExpirySweep blocks until ctx is done.
func (s *donationService) RunExpirySweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := s.ExpireStale(ctx, now); err != nil && ctx.Err() == nil {
				log.Errorw("expiry sweep failed", "error", err)
			}
		}
	}
}

func createValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewError(domain.ErrValidation, err.Error())
	}

	fe := verrs[0]
	switch fe.Field() {
	case "quantity":
		return domain.ErrInvalidQuantity
	case "foodType":
		if fe.Tag() == "oneof" {
			return domain.ErrInvalidFoodType
		}
	case "expiry":
		if fe.Tag() == "isodate" {
			return domain.ErrInvalidExpiryDate
		}
	case "manufactureDate":
		return domain.ErrInvalidManufactureDate
	case "donor":
		if fe.Tag() == "uuid" {
			return domain.ErrParseUUID
		}
	}
	return domain.ErrMissingDonationFields
}

func acceptValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewError(domain.ErrValidation, err.Error())
	}

	switch verrs[0].Field() {
	case "foodId":
		return domain.ErrFoodNotFound
	case "donor":
		return domain.ErrParseUUID
	case "quantity":
		return domain.ErrInvalidQuantity
	case "foodtype":
		return domain.ErrInvalidFoodType
	case "expiry":
		return domain.ErrInvalidExpiryDate
	}
	return domain.ErrMissingAcceptCriteria
}
