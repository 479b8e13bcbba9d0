package ngo

import (
	"LeftoverLink/domain"
	"LeftoverLink/entities"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
)

type (
	NGOService interface {
		ListNGOs(ctx context.Context) ([]domain.NGO, error)
		SuggestNGOs(ctx context.Context, req domain.SuggestNGOsRequest) ([]domain.NGO, error)
		MatchSuggestions(ctx context.Context, req domain.MatchSuggestionsRequest) (json.RawMessage, error)
		SeedNGOs(ctx context.Context, ngos []domain.NGO) (int, error)
	}

	ngoService struct {
		ngoRepository NGORepository
		recommender   Recommender
	}
)

func NewNGOService(ngoRepository NGORepository, recommender Recommender) NGOService {
	return &ngoService{
		ngoRepository: ngoRepository,
		recommender:   recommender,
	}
}

func (s *ngoService) ListNGOs(ctx context.Context) ([]domain.NGO, error) {
	ngos, err := s.ngoRepository.GetAllNGOs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ngos: %w", err)
	}
	return toDomainNGOs(ngos), nil
}

// SuggestNGOs resolves the names suggested by the prediction service to stored
// NGOs, keeping the service's order. Unknown names are dropped.
func (s *ngoService) SuggestNGOs(ctx context.Context, req domain.SuggestNGOsRequest) ([]domain.NGO, error) {
	if strings.TrimSpace(req.Location) == "" || strings.TrimSpace(req.FoodType) == "" || req.Quantity <= 0 {
		return nil, domain.ErrMissingSuggestionFields
	}

	names, err := s.recommender.PredictSuggestions(ctx, req)
	if err != nil {
		log.Errorw("ngo prediction failed", "error", err)
		return nil, domain.ErrSuggestionFailed
	}

	ngos, err := s.ngoRepository.GetNGOsByNames(ctx, names)
	if err != nil {
		log.Errorw("lookup suggested ngos failed", "error", err)
		return nil, domain.ErrSuggestionFailed
	}

	byName := make(map[string][]*entities.NGO, len(ngos))
	for _, n := range ngos {
		byName[n.Name] = append(byName[n.Name], n)
	}
	ordered := make([]*entities.NGO, 0, len(ngos))
	for _, name := range names {
		ordered = append(ordered, byName[name]...)
		delete(byName, name)
	}
	return toDomainNGOs(ordered), nil
}

func (s *ngoService) MatchSuggestions(ctx context.Context, req domain.MatchSuggestionsRequest) (json.RawMessage, error) {
	if strings.TrimSpace(req.Location) == "" || strings.TrimSpace(req.FoodType) == "" || req.Quantity <= 0 || strings.TrimSpace(req.Expiry) == "" {
		return nil, domain.ErrMissingMatchFields
	}

	suggestions, err := s.recommender.MatchNGOs(ctx, req)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			log.Warnw("matching service rejected request", "status", upstream.Status, "error", upstream.Message)
			return nil, upstream
		}
		log.Errorw("ngo matching failed", "error", err)
		return nil, domain.ErrMatchingFailed
	}
	return suggestions, nil
}

func (s *ngoService) SeedNGOs(ctx context.Context, ngos []domain.NGO) (int, error) {
	for i, n := range ngos {
		if err := s.ngoRepository.UpsertNGO(ctx, &entities.NGO{
			Name:     n.Name,
			Email:    strings.ToLower(n.Email),
			Location: n.Location,
			Lat:      n.Lat,
			Lng:      n.Lng,
			Phone:    n.Phone,
			Address:  n.Address,
		}); err != nil {
			return i, fmt.Errorf("seed ngo %s: %w", n.Email, err)
		}
	}
	return len(ngos), nil
}

func toDomainNGOs(ngos []*entities.NGO) []domain.NGO {
	res := make([]domain.NGO, 0, len(ngos))
	for _, n := range ngos {
		res = append(res, domain.NGO{
			ID:       n.ID.String(),
			Name:     n.Name,
			Email:    n.Email,
			Location: n.Location,
			Lat:      n.Lat,
			Lng:      n.Lng,
			Phone:    n.Phone,
			Address:  n.Address,
		})
	}
	return res
}
