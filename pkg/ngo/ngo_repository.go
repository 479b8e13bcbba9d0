package ngo

import (
	"LeftoverLink/entities"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	NGORepository interface {
		GetAllNGOs(ctx context.Context) ([]*entities.NGO, error)
		GetNGOsByNames(ctx context.Context, names []string) ([]*entities.NGO, error)
		UpsertNGO(ctx context.Context, ngo *entities.NGO) error
	}

	ngoRepository struct {
		db *gorm.DB
	}
)

func NewNGORepository(db *gorm.DB) NGORepository {
	return &ngoRepository{db: db}
}

func (r *ngoRepository) GetAllNGOs(ctx context.Context) ([]*entities.NGO, error) {
	var ngos []*entities.NGO
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&ngos).Error; err != nil {
		return nil, err
	}
	return ngos, nil
}

func (r *ngoRepository) GetNGOsByNames(ctx context.Context, names []string) ([]*entities.NGO, error) {
	var ngos []*entities.NGO
	if len(names) == 0 {
		return ngos, nil
	}
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&ngos).Error; err != nil {
		return nil, err
	}
	return ngos, nil
}

// UpsertNGO keys on email, so re-running the seed refreshes rows in place.
func (r *ngoRepository) UpsertNGO(ctx context.Context, ngo *entities.NGO) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "location", "lat", "lng", "phone", "address", "updated_at"}),
	}).Create(ngo).Error
}
