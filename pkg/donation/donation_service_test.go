package donation

import (
	"context"
	"sync"
	"testing"
	"time"

	"LeftoverLink/domain"
	"LeftoverLink/entities"
	"LeftoverLink/internal/testutil"
	"LeftoverLink/pkg/cache"
	"LeftoverLink/pkg/notification"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type acceptedCall struct {
	donor notification.Recipient
	event domain.DonationAcceptedEvent
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []acceptedCall
}

func (n *recordingNotifier) DonationAccepted(ctx context.Context, donor notification.Recipient, ev domain.DonationAcceptedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, acceptedCall{donor: donor, event: ev})
}

type fixture struct {
	db       *gorm.DB
	cache    *cache.Cache
	notifier *recordingNotifier
	svc      DonationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, cache.NewMemoryStore(time.Minute))
}

func newValkeyFixture(t *testing.T) *fixture {
	t.Helper()
	srv := miniredis.RunT(t)
	store, err := cache.NewValkeyStore(&cache.ValkeyConfig{
		Addr:         srv.Addr(),
		DialTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	require.NoError(t, err)
	return newFixtureWithStore(t, store)
}

func newFixtureWithStore(t *testing.T, store cache.Store) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	c := cache.New(store, time.Hour)
	t.Cleanup(func() { _ = c.Close() })

	n := &recordingNotifier{}
	return &fixture{
		db:       db,
		cache:    c,
		notifier: n,
		svc:      NewDonationService(NewDonationRepository(db), c, n, nil),
	}
}

func (f *fixture) seedCache(t *testing.T, userIDs ...string) {
	t.Helper()
	for _, id := range userIDs {
		for _, p := range cache.AllPrefixes {
			f.cache.Set(context.Background(), cache.Key(p, id), []byte(`{"stale":true}`))
		}
	}
}

func (f *fixture) cached(userID, prefix string) bool {
	_, ok := f.cache.Get(context.Background(), cache.Key(prefix, userID))
	return ok
}

func validCreate(donor string) domain.CreateDonationRequest {
	return domain.CreateDonationRequest{
		Donor:    donor,
		FoodType: "cooked",
		Quantity: 5,
		Expiry:   "2025-01-01",
		Location: "Gwalior",
	}
}

func TestCreateDonation(t *testing.T) {
	f := newFixture(t)
	donor := testutil.CreateUser(t, f.db, "Rohit", "Mishra")
	f.seedCache(t, donor.ID.String())

	req := validCreate(donor.ID.String())
	req.Description = "  rice and dal "
	req.ManufactureDate = "2024-12-30"

	food, err := f.svc.CreateDonation(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, domain.FoodStatusAvailable, food.Status)
	assert.Equal(t, 5.0, food.Quantity)
	assert.Equal(t, "rice and dal", food.Description)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), food.Expiry)
	require.NotNil(t, food.ManufactureDate)
	assert.Equal(t, donor.ID.String(), food.Donor)

	var stored entities.Food
	require.NoError(t, f.db.First(&stored, "id = ?", food.ID).Error)
	assert.Equal(t, domain.FoodStatusAvailable, stored.Status)

	id := donor.ID.String()
	for _, p := range cache.DonorPrefixes {
		assert.False(t, f.cached(id, p), p)
	}
	assert.True(t, f.cached(id, cache.PrefixMyReceived))
	assert.True(t, f.cached(id, cache.PrefixReceivedHistory))
}

func TestCreateAndAccept_OverValkey(t *testing.T) {
	f := newValkeyFixture(t)
	donor := testutil.CreateUser(t, f.db, "Rohit", "Mishra")
	receiver := testutil.CreateUser(t, f.db, "Deepa", "Mishra")
	f.seedCache(t, donor.ID.String(), receiver.ID.String())
	require.True(t, f.cached(donor.ID.String(), cache.PrefixMyDonations))

	var food domain.Food
	require.NotPanics(t, func() {
		var err error
		food, err = f.svc.CreateDonation(context.Background(), validCreate(donor.ID.String()))
		require.NoError(t, err)
	})
	for _, p := range cache.DonorPrefixes {
		assert.False(t, f.cached(donor.ID.String(), p), p)
	}
	assert.True(t, f.cached(donor.ID.String(), cache.PrefixMyReceived))

	require.NotPanics(t, func() {
		_, err := f.svc.AcceptDonation(context.Background(), domain.AcceptDonationRequest{FoodID: food.ID}, receiver.ID.String())
		require.NoError(t, err)
	})
	for _, id := range []string{donor.ID.String(), receiver.ID.String()} {
		for _, p := range cache.AllPrefixes {
			assert.False(t, f.cached(id, p), "%s:%s", p, id)
		}
	}
	require.Len(t, f.notifier.calls, 1)
	assert.Equal(t, food.ID, f.notifier.calls[0].event.FoodID)
}

func TestCreateDonation_Validation(t *testing.T) {
	f := newFixture(t)
	donor := testutil.CreateUser(t, f.db, "Rohit", "Mishra").ID.String()

	tests := []struct {
		name   string
		mutate func(*domain.CreateDonationRequest)
		want   error
	}{
		{"zero quantity", func(r *domain.CreateDonationRequest) { r.Quantity = 0 }, domain.ErrInvalidQuantity},
		{"negative quantity", func(r *domain.CreateDonationRequest) { r.Quantity = -2 }, domain.ErrInvalidQuantity},
		{"unknown food type", func(r *domain.CreateDonationRequest) { r.FoodType = "frozen" }, domain.ErrInvalidFoodType},
		{"bad expiry", func(r *domain.CreateDonationRequest) { r.Expiry = "next week" }, domain.ErrInvalidExpiryDate},
		{"bad manufacture date", func(r *domain.CreateDonationRequest) { r.ManufactureDate = "31/12/2024" }, domain.ErrInvalidManufactureDate},
		{"missing location", func(r *domain.CreateDonationRequest) { r.Location = "" }, domain.ErrMissingDonationFields},
		{"missing donor", func(r *domain.CreateDonationRequest) { r.Donor = "" }, domain.ErrMissingDonationFields},
		{"malformed donor", func(r *domain.CreateDonationRequest) { r.Donor = "u1" }, domain.ErrParseUUID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate(donor)
			tt.mutate(&req)

			_, err := f.svc.CreateDonation(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&entities.Food{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAcceptDonation_ByID(t *testing.T) {
	f := newFixture(t)
	donor := testutil.CreateUser(t, f.db, "Rohit", "Mishra")
	receiver := testutil.CreateUser(t, f.db, "Deepa", "Mishra")
	food := testutil.CreateFood(t, f.db, donor, domain.FoodStatusAvailable)
	f.seedCache(t, donor.ID.String(), receiver.ID.String())

	record, err := f.svc.AcceptDonation(context.Background(), domain.AcceptDonationRequest{FoodID: food.ID.String()}, receiver.ID.String())
	require.NoError(t, err)

	assert.Equal(t, food.ID.String(), record.Food)
	assert.Equal(t, donor.ID.String(), record.DonatedBy)
	assert.Equal(t, receiver.ID.String(), record.ReceivedBy)
	assert.False(t, record.ReceivedAt.IsZero())

	var stored entities.Food
	require.NoError(t, f.db.First(&stored, "id = ?", food.ID).Error)
	assert.Equal(t, domain.FoodStatusClaimed, stored.Status)

	for _, id := range []string{donor.ID.String(), receiver.ID.String()} {
		for _, p := range cache.AllPrefixes {
			assert.False(t, f.cached(id, p), "%s:%s", p, id)
		}
	}

	require.Len(t, f.notifier.calls, 1)
	call := f.notifier.calls[0]
	assert.Equal(t, donor.ID.String(), call.donor.ID)
	assert.Equal(t, donor.Email, call.donor.Email)
	assert.Equal(t, "Rohit Mishra", call.donor.Name)
	assert.Equal(t, domain.DonationAcceptedEvent{
		ReceiverID: receiver.ID.String(),
		FoodID:     food.ID.String(),
		FoodType:   "cooked",
		Quantity:   5,
		Location:   "Gwalior",
	}, call.event)
}

func TestAcceptDonation_ByCriteria(t *testing.T) {
	f := newFixture(t)
	donor := testutil.CreateUser(t, f.db, "Rohit", "Mishra")
	receiver := testutil.CreateUser(t, f.db, "Karan", "Mishra")
	claimed := testutil.CreateFood(t, f.db, donor, domain.FoodStatusClaimed)
	food := testutil.CreateFood(t, f.db, donor, domain.FoodStatusAvailable)

	record, err := f.svc.AcceptDonation(context.Background(), domain.AcceptDonationRequest{
		Donor:    donor.ID.String(),
		Quantity: 5,
		FoodType: "cooked",
		Location: "Gwalior",
		Expiry:   "2030-01-01",
	}, receiver.ID.String())
	require.NoError(t, err)

	assert.Equal(t, food.ID.String(), record.Food)
	assert.NotEqual(t, claimed.ID.String(), record.Food)
}

func TestAcceptDonation_NotFound(t *testing.T) {
	f := newFixture(t)
	donor := testutil.CreateUser(t, f.db, "Rohit", "Mishra")
	receiver := testutil.CreateUser(t, f.db, "Deepa", "Mishra").ID.String()
	testutil.CreateFood(t, f.db, donor, domain.FoodStatusAvailable)

	tests := []struct {
		name string
		req  domain.AcceptDonationRequest
	}{
		{"unknown id", domain.AcceptDonationRequest{FoodID: uuid.NewString()}},
		{"malformed id", domain.AcceptDonationRequest{FoodID: "abc"}},
		{"no matching tuple", domain.AcceptDonationRequest{
			Donor:    donor.ID.String(),
			Quantity: 7,
			FoodType: "cooked",
			Location: "Gwalior",
			Expiry:   "2030-01-01",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AcceptDonation(context.Background(), tt.req, receiver)
			assert.ErrorIs(t, err, domain.ErrFoodNotFound)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
	assert.Empty(t, f.notifier.calls)
}

func TestAcceptDonation_MissingCriteria(t *testing.T) {
	f := newFixture(t)
	receiver := testutil.CreateUser(t, f.db, "Deepa", "Mishra").ID.String()

	_, err := f.svc.AcceptDonation(context.Background(), domain.AcceptDonationRequest{
		Donor:    uuid.NewString(),
		FoodType: "cooked",
	}, receiver)
	assert.ErrorIs(t, err, domain.ErrMissingAcceptCriteria)
}

func TestAcceptDonation_AlreadyClaimed(t *testing.T) {
	f := newFixture(t)
	donor := testutil.CreateUser(t, f.db, "Rohit", "Mishra")
	first := testutil.CreateUser(t, f.db, "Deepa", "Mishra")
	second := testutil.CreateUser(t, f.db, "Karan", "Mishra")
	food := testutil.CreateFood(t, f.db, donor, domain.FoodStatusAvailable)
	req := domain.AcceptDonationRequest{FoodID: food.ID.String()}

	_, err := f.svc.AcceptDonation(context.Background(), req, first.ID.String())
	require.NoError(t, err)

	_, err = f.svc.AcceptDonation(context.Background(), req, second.ID.String())
	assert.ErrorIs(t, err, domain.ErrFoodAlreadyClaimed)
	assert.ErrorIs(t, err, domain.ErrConflict)

	expired := testutil.CreateFood(t, f.db, donor, domain.FoodStatusExpired)
	_, err = f.svc.AcceptDonation(context.Background(), domain.AcceptDonationRequest{FoodID: expired.ID.String()}, second.ID.String())
	assert.ErrorIs(t, err, domain.ErrFoodAlreadyClaimed)
}

func TestAcceptDonation_ConcurrentClaimsOnce(t *testing.T) {
	f := newFixture(t)
	donor := testutil.CreateUser(t, f.db, "Rohit", "Mishra")
	food := testutil.CreateFood(t, f.db, donor, domain.FoodStatusAvailable)

	const workers = 8
	receivers := make([]string, workers)
	for i := range receivers {
		receivers[i] = testutil.CreateUser(t, f.db, "Receiver", uuid.NewString()[:6]).ID.String()
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for _, receiver := range receivers {
		wg.Add(1)
		go func(receiver string) {
			defer wg.Done()
			<-start
			_, err := f.svc.AcceptDonation(context.Background(), domain.AcceptDonationRequest{FoodID: food.ID.String()}, receiver)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, domain.ErrFoodAlreadyClaimed):
				conflicts++
			}
		}(receiver)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	var count int64
	require.NoError(t, f.db.Model(&entities.Receive{}).Where("food_id = ?", food.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Len(t, f.notifier.calls, 1)
}

func TestHistoryAndSummaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := testutil.CreateUser(t, f.db, "Rohit", "Mishra")
	deepa := testutil.CreateUser(t, f.db, "Deepa", "Mishra")
	karan := testutil.CreateUser(t, f.db, "Karan", "Mishra")

	_, err := f.svc.GetDonationHistory(ctx, donor.ID.String())
	assert.ErrorIs(t, err, domain.ErrNoDonationHistory)
	_, err = f.svc.GetReceivedHistory(ctx, deepa.ID.String())
	assert.ErrorIs(t, err, domain.ErrNoReceivedHistory)

	accept := func(receiver *entities.User) {
		food := testutil.CreateFood(t, f.db, donor, domain.FoodStatusAvailable)
		_, err := f.svc.AcceptDonation(ctx, domain.AcceptDonationRequest{FoodID: food.ID.String()}, receiver.ID.String())
		require.NoError(t, err)
	}
	accept(deepa)
	accept(deepa)
	accept(karan)
	testutil.CreateFood(t, f.db, donor, domain.FoodStatusAvailable)

	foods, err := f.svc.GetMyDonations(ctx, donor.ID.String())
	require.NoError(t, err)
	assert.Len(t, foods, 4)

	count, err := f.svc.GetReceivedCount(ctx, deepa.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	history, err := f.svc.GetDonationHistory(ctx, donor.ID.String())
	require.NoError(t, err)
	require.Len(t, history, 3)
	for _, h := range history {
		require.NotNil(t, h.Food)
		assert.Equal(t, "cooked", h.Food.FoodType)
		require.NotNil(t, h.DonatedBy)
		assert.Equal(t, donor.ID.String(), h.DonatedBy.ID)
		require.NotNil(t, h.ReceivedBy)
	}

	received, err := f.svc.GetReceivedHistory(ctx, karan.ID.String())
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "Rohit", received[0].DonatedBy.Fullname.Firstname)

	summary, err := f.svc.GetDonationSummary(ctx, donor.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []domain.CounterpartySummary{
		{User: deepa.ID.String(), Name: "Deepa Mishra", Count: 2},
		{User: karan.ID.String(), Name: "Karan Mishra", Count: 1},
	}, summary)

	receivedSummary, err := f.svc.GetReceivedSummary(ctx, deepa.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []domain.CounterpartySummary{
		{User: donor.ID.String(), Name: "Rohit Mishra", Count: 2},
	}, receivedSummary)

	empty, err := f.svc.GetReceivedSummary(ctx, donor.ID.String())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReads_RejectMalformedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetMyDonations(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrParseUUID)
	_, err = f.svc.GetReceivedCount(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrParseUUID)
	_, err = f.svc.GetDonationSummary(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrParseUUID)
}

func TestExpireStale(t *testing.T) {
	f := newFixture(t)
	donor := testutil.CreateUser(t, f.db, "Rohit", "Mishra")
	other := testutil.CreateUser(t, f.db, "Karan", "Mishra")
	stale := testutil.CreateFood(t, f.db, donor, domain.FoodStatusAvailable)
	claimed := testutil.CreateFood(t, f.db, donor, domain.FoodStatusClaimed)
	fresh := testutil.CreateFood(t, f.db, other, domain.FoodStatusAvailable)
	require.NoError(t, f.db.Model(fresh).Update("expiry", time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)).Error)
	f.seedCache(t, donor.ID.String(), other.ID.String())

	affected, err := f.svc.ExpireStale(context.Background(), time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	statusOf := func(id uuid.UUID) string {
		var food entities.Food
		require.NoError(t, f.db.First(&food, "id = ?", id).Error)
		return food.Status
	}
	assert.Equal(t, domain.FoodStatusExpired, statusOf(stale.ID))
	assert.Equal(t, domain.FoodStatusClaimed, statusOf(claimed.ID))
	assert.Equal(t, domain.FoodStatusAvailable, statusOf(fresh.ID))

	assert.False(t, f.cached(donor.ID.String(), cache.PrefixMyDonations))
	assert.True(t, f.cached(other.ID.String(), cache.PrefixMyDonations))

	_, err = f.svc.AcceptDonation(context.Background(), domain.AcceptDonationRequest{FoodID: stale.ID.String()}, other.ID.String())
	assert.ErrorIs(t, err, domain.ErrFoodAlreadyClaimed)

	affected, err = f.svc.ExpireStale(context.Background(), time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestExpireStale_KeepsListingThroughExpiryDay(t *testing.T) {
	f := newFixture(t)
	donor := testutil.CreateUser(t, f.db, "Rohit", "Mishra")
	food := testutil.CreateFood(t, f.db, donor, domain.FoodStatusAvailable)

	statusOf := func() string {
		var stored entities.Food
		require.NoError(t, f.db.First(&stored, "id = ?", food.ID).Error)
		return stored.Status
	}

	for _, now := range []time.Time{
		time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 1, 1, 18, 30, 0, 0, time.UTC),
		time.Date(2030, 1, 1, 23, 59, 59, 0, time.UTC),
	} {
		affected, err := f.svc.ExpireStale(context.Background(), now)
		require.NoError(t, err)
		assert.Zero(t, affected, now)
		assert.Equal(t, domain.FoodStatusAvailable, statusOf(), now)
	}

	affected, err := f.svc.ExpireStale(context.Background(), time.Date(2030, 1, 2, 0, 0, 1, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, affected)
	assert.Equal(t, domain.FoodStatusExpired, statusOf())
}

func TestRunExpirySweep_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.svc.RunExpirySweep(ctx, 10*time.Millisecond)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep did not stop")
	}
}
