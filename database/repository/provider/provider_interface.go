package providerRepo

import "helpr/models"

// ProviderRepository defines methods for provider profile data access.
type ProviderRepository interface {
	// GetByID retrieves a provider by its unique ID.
	GetByID(id string) (*models.Provider, error)
	// ListByServiceType retrieves providers registered for the given
	// service category.
	ListByServiceType(serviceType string) ([]models.Provider, error)
	// Create inserts a new provider record.
	Create(provider *models.Provider) error
	// Update modifies an existing provider record.
	Update(provider *models.Provider) error
	// UpdateFCMToken stores the device push token for the provider.
	UpdateFCMToken(id, token string) error
	// IncrementCompletedJobs bumps the provider's completed-job counter.
	IncrementCompletedJobs(id string) error
	// Delete removes a provider record by its ID.
	Delete(id string) error
}
