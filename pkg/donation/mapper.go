package donation

import (
	"LeftoverLink/domain"
	"LeftoverLink/entities"
)

func ToDomainFood(f *entities.Food) domain.Food {
	return domain.Food{
		ID:              f.ID.String(),
		Donor:           f.DonorID.String(),
		FoodType:        f.FoodType,
		Quantity:        f.Quantity,
		Description:     f.Description,
		Expiry:          f.Expiry.UTC(),
		ManufactureDate: f.ManufactureDate,
		Location:        f.Location,
		Status:          f.Status,
		ImageURL:        f.ImageURL,
		CreatedAt:       f.CreatedAt,
	}
}

func ToReceiveRecord(r *entities.Receive) domain.ReceiveRecord {
	return domain.ReceiveRecord{
		ID:         r.ID.String(),
		Food:       r.FoodID.String(),
		DonatedBy:  r.DonatedByID.String(),
		ReceivedBy: r.ReceivedByID.String(),
		ReceivedAt: r.ReceivedAt,
	}
}

func toHistory(records []*entities.Receive) []domain.HistoryRecord {
	res := make([]domain.HistoryRecord, 0, len(records))
	for _, r := range records {
		h := domain.HistoryRecord{
			ID:         r.ID.String(),
			DonatedBy:  toUserSummary(r.DonatedBy),
			ReceivedBy: toUserSummary(r.ReceivedBy),
			ReceivedAt: r.ReceivedAt,
		}
		if r.Food != nil {
			h.Food = &domain.FoodSummary{
				ID:       r.Food.ID.String(),
				FoodType: r.Food.FoodType,
				Quantity: r.Food.Quantity,
				Expiry:   r.Food.Expiry.UTC(),
				Location: r.Food.Location,
			}
		}
		res = append(res, h)
	}
	return res
}

func toUserSummary(u *entities.User) *domain.UserSummary {
	if u == nil {
		return nil
	}
	return &domain.UserSummary{
		ID: u.ID.String(),
		Fullname: domain.Fullname{
			Firstname: u.FirstName,
			Lastname:  u.LastName,
		},
		Email: u.Email,
	}
}
