package models

import "time"

// Provider is a service-provider account ("helpr"). Like User, authentication
// and onboarding live upstream; this is the projection the lifecycle needs.
type Provider struct {
	ID            string    `bson:"id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Email         string    `bson:"email" json:"email"`
	PhoneNumber   string    `bson:"phone_number" json:"phoneNumber,omitempty"`
	ServiceTypes  []string  `bson:"service_types" json:"serviceTypes"` // categories the provider works, e.g. ["Moving"]
	Rating        float64   `bson:"rating" json:"rating"`
	CompletedJobs int       `bson:"completed_jobs" json:"completedJobs"`
	FCMToken      string    `bson:"fcm_token,omitempty" json:"-"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}

// ProviderDTO is the public projection of a provider, shown to customers
// weighing an offer. No contact details.
type ProviderDTO struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ServiceTypes  []string `json:"serviceTypes"`
	Rating        float64  `json:"rating"`
	CompletedJobs int      `json:"completedJobs"`
}
