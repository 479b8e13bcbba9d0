package seed

import (
	"LeftoverLink/pkg/cache"
	"LeftoverLink/pkg/ngo"
	"context"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Seed loads the NGO reference rows and drops the cached NGO list.
func Seed(ctx context.Context, db *gorm.DB, responseCache *cache.Cache) error {
	ngoService := ngo.NewNGOService(ngo.NewNGORepository(db), nil)

	n, err := ngoService.SeedNGOs(ctx, ngo.DefaultNGOs)
	if err != nil {
		log.Errorf("Error seeding ngos: %v", err)
		return err
	}
	responseCache.Delete(ctx, cache.KeyAllNGOs)

	log.Infow("NGO data seeded", "count", n)
	return nil
}
