package seed

import (
	"context"
	"testing"
	"time"

	"LeftoverLink/entities"
	"LeftoverLink/internal/testutil"
	"LeftoverLink/pkg/cache"
	"LeftoverLink/pkg/ngo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	db := testutil.NewDB(t)
	c := cache.New(cache.NewMemoryStore(time.Minute), time.Hour)
	defer c.Close()
	ctx := context.Background()
	c.Set(ctx, cache.KeyAllNGOs, []byte(`{"ngos":[]}`))

	require.NoError(t, Seed(ctx, db, c))
	require.NoError(t, Seed(ctx, db, c))

	var count int64
	require.NoError(t, db.Model(&entities.NGO{}).Count(&count).Error)
	assert.Equal(t, int64(len(ngo.DefaultNGOs)), count)

	_, ok := c.Get(ctx, cache.KeyAllNGOs)
	assert.False(t, ok)
}
