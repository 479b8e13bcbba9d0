package donation

import (
	"LeftoverLink/domain"
	"LeftoverLink/entities"
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// FoodCriteria matches a listing by its descriptive fields.
	FoodCriteria struct {
		DonorID  string
		Quantity float64
		FoodType string
		Location string
		Expiry   time.Time
	}

	DonationRepository interface {
		CreateFood(ctx context.Context, food *entities.Food) error
		GetFoodByID(ctx context.Context, id string) (*entities.Food, error)
		FindFood(ctx context.Context, criteria FoodCriteria) (*entities.Food, error)
		GetDonorFoods(ctx context.Context, donorID string) ([]*entities.Food, error)
		CountReceived(ctx context.Context, receiverID string) (int64, error)

		GetDonationHistory(ctx context.Context, donorID string) ([]*entities.Receive, error)
		GetReceivedHistory(ctx context.Context, receiverID string) ([]*entities.Receive, error)
		GetDonationSummary(ctx context.Context, donorID string) ([]domain.CounterpartySummary, error)
		GetReceivedSummary(ctx context.Context, receiverID string) ([]domain.CounterpartySummary, error)

		ClaimFood(ctx context.Context, food *entities.Food, receiverID uuid.UUID) (*entities.Receive, error)
		ExpireStale(ctx context.Context, cutoff time.Time) ([]string, error)
	}

	donationRepository struct {
		db *gorm.DB
	}

	summaryRow struct {
		UserID string
		Name   string
		Count  int64
	}
)

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) CreateFood(ctx context.Context, food *entities.Food) error {
	return r.db.WithContext(ctx).Create(food).Error
}

func (r *donationRepository) GetFoodByID(ctx context.Context, id string) (*entities.Food, error) {
	var food entities.Food
	if err := r.db.WithContext(ctx).
		Preload("Donor").
		Where("id = ?", id).
		First(&food).Error; err != nil {
		return nil, err
	}
	return &food, nil
}

// FindFood prefers an available listing when several share the same fields.
func (r *donationRepository) FindFood(ctx context.Context, criteria FoodCriteria) (*entities.Food, error) {
	var food entities.Food
	if err := r.db.WithContext(ctx).
		Preload("Donor").
		Where("donor_id = ? AND quantity = ? AND food_type = ? AND location = ? AND expiry = ?",
			criteria.DonorID, criteria.Quantity, criteria.FoodType, criteria.Location, criteria.Expiry.UTC()).
		Order("CASE WHEN status = '" + domain.FoodStatusAvailable + "' THEN 0 ELSE 1 END").
		Order("created_at ASC").
		First(&food).Error; err != nil {
		return nil, err
	}
	return &food, nil
}

func (r *donationRepository) GetDonorFoods(ctx context.Context, donorID string) ([]*entities.Food, error) {
	var foods []*entities.Food
	if err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&foods).Error; err != nil {
		return nil, err
	}
	return foods, nil
}

func (r *donationRepository) CountReceived(ctx context.Context, receiverID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Receive{}).
		Where("received_by_id = ?", receiverID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *donationRepository) GetDonationHistory(ctx context.Context, donorID string) ([]*entities.Receive, error) {
	return r.history(ctx, "donated_by_id = ?", donorID)
}

func (r *donationRepository) GetReceivedHistory(ctx context.Context, receiverID string) ([]*entities.Receive, error) {
	return r.history(ctx, "received_by_id = ?", receiverID)
}

func (r *donationRepository) history(ctx context.Context, cond string, userID string) ([]*entities.Receive, error) {
	var records []*entities.Receive
	if err := r.db.WithContext(ctx).
		Preload("Food").
		Preload("DonatedBy").
		Preload("ReceivedBy").
		Where(cond, userID).
		Order("received_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetDonationSummary counts the donor's accepted listings per receiver.
func (r *donationRepository) GetDonationSummary(ctx context.Context, donorID string) ([]domain.CounterpartySummary, error) {
	return r.summary(ctx, "received_by_id", "donated_by_id", donorID)
}

// GetReceivedSummary counts the receiver's accepted listings per donor.
func (r *donationRepository) GetReceivedSummary(ctx context.Context, receiverID string) ([]domain.CounterpartySummary, error) {
	return r.summary(ctx, "donated_by_id", "received_by_id", receiverID)
}

func (r *donationRepository) summary(ctx context.Context, groupCol, filterCol, userID string) ([]domain.CounterpartySummary, error) {
	query := `
		SELECT receives.` + groupCol + ` AS user_id,
		       users.first_name || ' ' || users.last_name AS name,
		       COUNT(*) AS count
		FROM receives
		JOIN users ON users.id = receives.` + groupCol + `
		WHERE receives.` + filterCol + ` = ?
		GROUP BY receives.` + groupCol + `, users.first_name, users.last_name
		ORDER BY count DESC, name ASC
	`

	var rows []summaryRow
	if err := r.db.WithContext(ctx).Raw(query, userID).Scan(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]domain.CounterpartySummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.CounterpartySummary{
			User:  row.UserID,
			Name:  row.Name,
			Count: row.Count,
		})
	}
	return summaries, nil
}

// ClaimFood flips an available listing to claimed and records the receive in
// one transaction. A listing that is no longer available yields ErrFoodAlreadyClaimed.
func (r *donationRepository) ClaimFood(ctx context.Context, food *entities.Food, receiverID uuid.UUID) (*entities.Receive, error) {
	receive := &entities.Receive{
		FoodID:       food.ID,
		DonatedByID:  food.DonorID,
		ReceivedByID: receiverID,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entities.Food{}).
			Where("id = ? AND status = ?", food.ID, domain.FoodStatusAvailable).
			Update("status", domain.FoodStatusClaimed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrFoodAlreadyClaimed
		}
		return tx.Create(receive).Error
	})
	if err != nil {
		return nil, err
	}

	food.Status = domain.FoodStatusClaimed
	return receive, nil
}

// ExpireStale marks available listings with expiry before cutoff as expired
// and returns the distinct donors affected.
func (r *donationRepository) ExpireStale(ctx context.Context, cutoff time.Time) ([]string, error) {
	var donors []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []entities.Food
		if err := tx.Select("id", "donor_id").
			Where("status = ? AND expiry < ?", domain.FoodStatusAvailable, cutoff.UTC()).
			Find(&stale).Error; err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(stale))
		seen := make(map[uuid.UUID]struct{}, len(stale))
		for _, f := range stale {
			ids = append(ids, f.ID)
			if _, ok := seen[f.DonorID]; !ok {
				seen[f.DonorID] = struct{}{}
				donors = append(donors, f.DonorID.String())
			}
		}

		return tx.Model(&entities.Food{}).
			Where("id IN ? AND status = ?", ids, domain.FoodStatusAvailable).
			Update("status", domain.FoodStatusExpired).Error
	})
	if err != nil {
		return nil, err
	}
	return donors, nil
}
