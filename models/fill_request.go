package models

import "time"

// ServiceFillRequest is a provider's priced offer to fulfil an open
// ServiceRequest. At most one exists per (service, provider) pair; placing a
// second offer replaces the first. All fill requests for a service are deleted
// the moment one of them is accepted.
type ServiceFillRequest struct {
	ID         string    `bson:"id" json:"id"`
	ServiceID  string    `bson:"service_id" json:"serviceId"`
	ProviderID string    `bson:"provider_id" json:"providerId"`
	BidAmount  float64   `bson:"bid_amount" json:"bidAmount"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
