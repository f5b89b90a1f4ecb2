package provider

import (
	"context"

	providerRepo "helpr/database/repository/provider"
	serviceRepo "helpr/database/repository/service"
	"helpr/models"
)

// ProviderService manages provider ("helpr") profiles and their job history.
type ProviderService interface {
	GetProviderByID(providerID string) (*models.Provider, error)
	ListProvidersByServiceType(serviceType string) ([]models.Provider, error)
	CreateProvider(p *models.Provider) (*models.Provider, error)
	UpdateProvider(p models.Provider) (*models.Provider, error)
	// RegisterDevice stores the device's FCM push token for the provider.
	RegisterDevice(providerID, fcmToken string) error
	// JobHistory returns every service request ever assigned to the
	// provider, newest first.
	JobHistory(ctx context.Context, providerID string) ([]models.ServiceRequest, error)
	DeleteProvider(providerID string) error
}

// DefaultProviderService is the production implementation.
type DefaultProviderService struct {
	Repo        providerRepo.ProviderRepository
	ServiceRepo serviceRepo.ServiceRepository
}
