package ngo

import (
	"LeftoverLink/domain"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	predictPath = "/api/predict-suggestions"
	matchPath   = "/suggest-ngos"

	defaultClientTimeout = 30 * time.Second
)

var ErrRecommenderNotConfigured = errors.New("recommendation service url not configured")

type (
	// Recommender talks to the external NGO recommendation services.
	Recommender interface {
		// PredictSuggestions returns the names of suggested NGOs.
		PredictSuggestions(ctx context.Context, req domain.SuggestNGOsRequest) ([]string, error)
		// MatchNGOs returns the matching service's body unchanged. Non-2xx
		// answers come back as *domain.UpstreamError.
		MatchNGOs(ctx context.Context, req domain.MatchSuggestionsRequest) (json.RawMessage, error)
	}

	recommender struct {
		modelURL    string
		matchingURL string
		client      *http.Client
	}

	predictRequest struct {
		Location   string  `json:"location"`
		FoodType   string  `json:"foodType"`
		Quantity   float64 `json:"quantity"`
		ExpiryDate string  `json:"expiryDate,omitempty"`
	}

	predictResponse struct {
		SuggestedNgos []string `json:"suggestedNgos"`
	}

	matchRequest struct {
		DonorAddress string `json:"donor_address"`
		FoodType     string `json:"food_type"`
		Quantity     int    `json:"quantity"`
		ExpiryDate   string `json:"expiry_date"`
	}

	upstreamErrorBody struct {
		Error string `json:"error"`
	}
)

func NewRecommender(modelURL, matchingURL string) Recommender {
	return &recommender{
		modelURL:    strings.TrimRight(modelURL, "/"),
		matchingURL: strings.TrimRight(matchingURL, "/"),
		client:      &http.Client{Timeout: defaultClientTimeout},
	}
}

func (r *recommender) PredictSuggestions(ctx context.Context, req domain.SuggestNGOsRequest) ([]string, error) {
	if r.modelURL == "" {
		return nil, ErrRecommenderNotConfigured
	}

	resp, err := r.post(ctx, r.modelURL+predictPath, predictRequest{
		Location:   req.Location,
		FoodType:   req.FoodType,
		Quantity:   req.Quantity,
		ExpiryDate: req.ExpiryDate,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("prediction API error: %s - %s", resp.Status, string(bodyBytes))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode prediction: %w", err)
	}
	return out.SuggestedNgos, nil
}

func (r *recommender) MatchNGOs(ctx context.Context, req domain.MatchSuggestionsRequest) (json.RawMessage, error) {
	if r.matchingURL == "" {
		return nil, ErrRecommenderNotConfigured
	}

	resp, err := r.post(ctx, r.matchingURL+matchPath, matchRequest{
		DonorAddress: req.Location,
		FoodType:     req.FoodType,
		Quantity:     int(req.Quantity),
		ExpiryDate:   req.Expiry,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read matching response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := domain.MessageUpstreamMatchingFailed
		var body upstreamErrorBody
		if json.Unmarshal(bodyBytes, &body) == nil && body.Error != "" {
			msg = body.Error
		}
		return nil, &domain.UpstreamError{Status: resp.StatusCode, Message: msg}
	}

	if !json.Valid(bodyBytes) {
		return nil, fmt.Errorf("matching service returned invalid JSON")
	}
	return json.RawMessage(bodyBytes), nil
}

func (r *recommender) post(ctx context.Context, url string, payload any) (*http.Response, error) {
	requestJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestJSON))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return r.client.Do(req)
}
