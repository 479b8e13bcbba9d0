package ngo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"LeftoverLink/domain"
	"LeftoverLink/entities"
	"LeftoverLink/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubRecommender struct {
	names    []string
	match    json.RawMessage
	err      error
	predicts int
	matches  int
}

func (s *stubRecommender) PredictSuggestions(ctx context.Context, req domain.SuggestNGOsRequest) ([]string, error) {
	s.predicts++
	return s.names, s.err
}

func (s *stubRecommender) MatchNGOs(ctx context.Context, req domain.MatchSuggestionsRequest) (json.RawMessage, error) {
	s.matches++
	return s.match, s.err
}

func newService(t *testing.T, rec Recommender) (NGOService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return NewNGOService(NewNGORepository(db), rec), db
}

func TestSeedNGOs_Idempotent(t *testing.T) {
	svc, db := newService(t, &stubRecommender{})
	ctx := context.Background()

	n, err := svc.SeedNGOs(ctx, DefaultNGOs)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultNGOs), n)

	updated := append([]domain.NGO(nil), DefaultNGOs...)
	updated[0].Phone = "1112223334"
	_, err = svc.SeedNGOs(ctx, updated)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&entities.NGO{}).Count(&count).Error)
	assert.Equal(t, int64(len(DefaultNGOs)), count)

	ngos, err := svc.ListNGOs(ctx)
	require.NoError(t, err)
	require.Len(t, ngos, len(DefaultNGOs))
	for _, n := range ngos {
		if n.Email == updated[0].Email {
			assert.Equal(t, "1112223334", n.Phone)
		}
	}
}

func TestSuggestNGOs(t *testing.T) {
	rec := &stubRecommender{names: []string{"john wick", "Unknown NGO", "Deepa Mishra"}}
	svc, _ := newService(t, rec)
	ctx := context.Background()
	_, err := svc.SeedNGOs(ctx, DefaultNGOs)
	require.NoError(t, err)

	ngos, err := svc.SuggestNGOs(ctx, domain.SuggestNGOsRequest{Location: "Gwalior", FoodType: "cooked", Quantity: 5})
	require.NoError(t, err)

	require.Len(t, ngos, 2)
	assert.Equal(t, "john wick", ngos[0].Name)
	assert.Equal(t, "Deepa Mishra", ngos[1].Name)
	assert.Equal(t, "Morar, Gwalior, MP", ngos[1].Address)
}

func TestSuggestNGOs_Errors(t *testing.T) {
	rec := &stubRecommender{err: errors.New("connection refused")}
	svc, _ := newService(t, rec)
	ctx := context.Background()

	_, err := svc.SuggestNGOs(ctx, domain.SuggestNGOsRequest{Location: "Gwalior", FoodType: "cooked"})
	assert.ErrorIs(t, err, domain.ErrMissingSuggestionFields)
	assert.Zero(t, rec.predicts)

	_, err = svc.SuggestNGOs(ctx, domain.SuggestNGOsRequest{Location: "Gwalior", FoodType: "cooked", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrSuggestionFailed)
	assert.Equal(t, 1, rec.predicts)
}

func TestMatchSuggestions(t *testing.T) {
	rec := &stubRecommender{match: json.RawMessage(`[{"name":"Helping Legs"}]`)}
	svc, _ := newService(t, rec)
	ctx := context.Background()

	_, err := svc.MatchSuggestions(ctx, domain.MatchSuggestionsRequest{Location: "Gwalior", FoodType: "raw", Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrMissingMatchFields)

	raw, err := svc.MatchSuggestions(ctx, domain.MatchSuggestionsRequest{Location: "Gwalior", FoodType: "raw", Quantity: 3, Expiry: "2025-01-01"})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Helping Legs"}]`, string(raw))
}

func TestMatchSuggestions_Errors(t *testing.T) {
	req := domain.MatchSuggestionsRequest{Location: "Gwalior", FoodType: "raw", Quantity: 3, Expiry: "2025-01-01"}

	upstream := &domain.UpstreamError{Status: 422, Message: "unknown food type"}
	svc, _ := newService(t, &stubRecommender{err: upstream})
	_, err := svc.MatchSuggestions(context.Background(), req)
	assert.Same(t, upstream, err)

	svc, _ = newService(t, &stubRecommender{err: errors.New("timeout")})
	_, err = svc.MatchSuggestions(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrMatchingFailed)
}
