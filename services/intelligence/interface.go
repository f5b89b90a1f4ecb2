package intelligence

import (
	"context"

	"helpr/models"
)

// IntelligenceService produces advisory price estimates for service
// requests. Estimates never bind anyone; the customer still sets the price.
type IntelligenceService interface {
	EstimatePrice(ctx context.Context, req models.PriceEstimateRequest) (*models.PriceEstimate, error)
}

// DefaultIntelligenceService asks Gemini for a quote, with a Redis
// memoization layer in front. Cache may be nil.
type DefaultIntelligenceService struct {
	Gemini ContentGenerator
	Cache  EstimateCache
}
