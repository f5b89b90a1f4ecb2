package models

// PriceEstimateRequest is the payload coming from the apps into
// /api/ai/estimate. Locations are the free-text addresses as typed.
type PriceEstimateRequest struct {
	ServiceType   string `json:"serviceType" binding:"required"`
	Description   string `json:"description" binding:"required"`
	StartLocation string `json:"startLocation"`
	EndLocation   string `json:"endLocation"`
}

// PriceEstimate is the model-produced quote suggestion. Estimates are
// advisory; the customer sets the final price on the service request.
type PriceEstimate struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Rationale string  `json:"rationale,omitempty"`
}

// Transcription is the result of a voice-note transcription.
type Transcription struct {
	Text       string  `json:"text"`
	Confidence float32 `json:"confidence"`
}
