package provider

import (
	"context"
	"fmt"
	"strings"

	"helpr/models"
	"helpr/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetProviderByID retrieves a provider by its unique ID.
func (s *DefaultProviderService) GetProviderByID(providerID string) (*models.Provider, error) {
	p, err := s.Repo.GetByID(providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider %s: %w", providerID, err)
	}
	return p, nil
}

// ListProvidersByServiceType retrieves providers registered for the category.
func (s *DefaultProviderService) ListProvidersByServiceType(serviceType string) ([]models.Provider, error) {
	providers, err := s.Repo.ListByServiceType(serviceType)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers for %s: %w", serviceType, err)
	}
	return providers, nil
}

// CreateProvider inserts a new provider profile, minting an ID when none is
// given.
func (s *DefaultProviderService) CreateProvider(p *models.Provider) (*models.Provider, error) {
	logger := utils.GetLogger()

	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Email == "" || p.Name == "" {
		return nil, fmt.Errorf("provider name and email are required")
	}
	if len(p.ServiceTypes) == 0 {
		return nil, fmt.Errorf("provider must register at least one service type")
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	if err := s.Repo.Create(p); err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	logger.Info("created provider", zap.String("providerID", p.ID), zap.Strings("serviceTypes", p.ServiceTypes))
	return p, nil
}

// UpdateProvider rewrites the provider's profile fields.
func (s *DefaultProviderService) UpdateProvider(p models.Provider) (*models.Provider, error) {
	existing, err := s.Repo.GetByID(p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider %s: %w", p.ID, err)
	}

	existing.Name = p.Name
	existing.PhoneNumber = p.PhoneNumber
	if p.Email != "" {
		existing.Email = strings.ToLower(strings.TrimSpace(p.Email))
	}
	if len(p.ServiceTypes) > 0 {
		existing.ServiceTypes = p.ServiceTypes
	}

	if err := s.Repo.Update(existing); err != nil {
		return nil, fmt.Errorf("failed to update provider %s: %w", p.ID, err)
	}
	return existing, nil
}

// RegisterDevice stores the device's FCM push token for the provider.
func (s *DefaultProviderService) RegisterDevice(providerID, fcmToken string) error {
	if fcmToken == "" {
		return fmt.Errorf("fcm token is required")
	}
	if err := s.Repo.UpdateFCMToken(providerID, fcmToken); err != nil {
		return fmt.Errorf("failed to register device for provider %s: %w", providerID, err)
	}
	return nil
}

// JobHistory returns every service request ever assigned to the provider.
func (s *DefaultProviderService) JobHistory(ctx context.Context, providerID string) ([]models.ServiceRequest, error) {
	jobs, err := s.ServiceRepo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job history for provider %s: %w", providerID, err)
	}
	return jobs, nil
}

// DeleteProvider removes the provider profile.
func (s *DefaultProviderService) DeleteProvider(providerID string) error {
	if err := s.Repo.Delete(providerID); err != nil {
		return fmt.Errorf("failed to delete provider %s: %w", providerID, err)
	}
	return nil
}
