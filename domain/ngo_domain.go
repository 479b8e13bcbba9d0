package domain

var (
	ErrMissingSuggestionFields = NewError(ErrValidation, "Missing required fields")
	ErrMissingMatchFields      = NewError(ErrValidation, "Missing required donation details for suggestions.")
	ErrSuggestionFailed        = NewError(ErrDependency, "AI suggestion failed")
	ErrMatchingFailed          = NewError(ErrDependency, "Server error while fetching suggestions.")

	MessageUpstreamMatchingFailed = "Failed to get NGO suggestions from AI model."
)

type (
	NGO struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Email    string  `json:"email"`
		Location string  `json:"location"`
		Lat      float64 `json:"lat"`
		Lng      float64 `json:"lng"`
		Phone    string  `json:"phone,omitempty"`
		Address  string  `json:"address,omitempty"`
	}

	SuggestNGOsRequest struct {
		Location   string  `json:"location"`
		FoodType   string  `json:"foodType"`
		Quantity   float64 `json:"quantity"`
		ExpiryDate string  `json:"expiryDate"`
	}

	MatchSuggestionsRequest struct {
		Location string  `json:"location"`
		FoodType string  `json:"foodType"`
		Quantity float64 `json:"quantity"`
		Expiry   string  `json:"expiry"`
	}

	// UpstreamError carries the status and message returned by the recommendation service.
	UpstreamError struct {
		Status  int
		Message string
	}
)

func (e *UpstreamError) Error() string {
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return ErrDependency
}
