package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"helpr/models"
	"helpr/utils"

	"go.uber.org/zap"
)

// EstimatePrice returns a suggested quote for the described job.
func (s *DefaultIntelligenceService) EstimatePrice(ctx context.Context, req models.PriceEstimateRequest) (*models.PriceEstimate, error) {
	logger := utils.GetLogger()

	if req.ServiceType == "" || req.Description == "" {
		return nil, fmt.Errorf("service type and description are required")
	}

	if s.Cache != nil {
		if est, err := s.Cache.Get(ctx, req); err != nil {
			logger.Warn("estimate cache read failed", zap.Error(err))
		} else if est != nil {
			return est, nil
		}
	}

	raw, err := s.Gemini.Generate(ctx, estimatePrompt(req))
	if err != nil {
		return nil, fmt.Errorf("price estimation failed: %w", err)
	}
	est, err := parseEstimate(raw)
	if err != nil {
		logger.Warn("unusable model estimate", zap.String("raw", raw), zap.Error(err))
		return nil, fmt.Errorf("price estimation failed: %w", err)
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, req, est); err != nil {
			logger.Warn("estimate cache write failed", zap.Error(err))
		}
	}
	return est, nil
}

func estimatePrompt(req models.PriceEstimateRequest) string {
	var sb strings.Builder
	sb.WriteString("You price on-demand home services. Suggest a fair total price in USD for the job below.\n")
	sb.WriteString(fmt.Sprintf("Service type: %s\n", req.ServiceType))
	sb.WriteString(fmt.Sprintf("Description: %s\n", req.Description))
	if req.StartLocation != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", req.StartLocation))
	}
	if req.EndLocation != "" {
		sb.WriteString(fmt.Sprintf("Destination: %s\n", req.EndLocation))
	}
	sb.WriteString(`Answer with strict JSON only, no prose: {"amount": <number>, "currency": "USD", "rationale": "<one sentence>"}`)
	return sb.String()
}

// parseEstimate decodes the model reply, tolerating markdown code fences.
func parseEstimate(raw string) (*models.PriceEstimate, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var est models.PriceEstimate
	if err := json.Unmarshal([]byte(cleaned), &est); err != nil {
		return nil, fmt.Errorf("parse estimate: %w", err)
	}
	if math.IsNaN(est.Amount) || math.IsInf(est.Amount, 0) || est.Amount <= 0 {
		return nil, fmt.Errorf("estimate amount %v out of range", est.Amount)
	}
	if est.Currency == "" {
		est.Currency = "USD"
	}
	est.Rationale = strings.TrimSpace(est.Rationale)
	return &est, nil
}
