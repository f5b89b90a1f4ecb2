package request

import (
	"context"
	"fmt"
	"math"
	"time"

	"helpr/models"
	"helpr/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateRequest stores a new service request. The lifecycle fields are never
// taken from the payload: every request starts in finding_pros with no
// assigned provider.
func (s *DefaultRequestService) CreateRequest(ctx context.Context, svc *models.ServiceRequest) (*models.ServiceRequest, error) {
	logger := utils.GetLogger()

	if svc.CustomerID == "" {
		return nil, newInvalid("customer id is required")
	}
	if svc.ServiceType == "" {
		return nil, newInvalid("service type is required")
	}
	if svc.StartLocation.Address == "" {
		return nil, newInvalid("start location is required")
	}
	if math.IsNaN(svc.Price) || math.IsInf(svc.Price, 0) || svc.Price < 0 {
		return nil, newInvalid("price must be a non-negative number")
	}

	switch svc.SchedulingType {
	case "":
		svc.SchedulingType = models.SchedulingASAP
	case models.SchedulingASAP:
		svc.ScheduledAt = nil
	case models.SchedulingScheduled:
		if svc.ScheduledAt == nil || svc.ScheduledAt.Before(time.Now()) {
			return nil, newInvalid("scheduled requests need a future scheduled time")
		}
	default:
		return nil, newInvalid("unknown scheduling type %q", svc.SchedulingType)
	}

	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	svc.Status = models.StatusFindingPros
	svc.AssignedProviderID = ""
	s.resolveLocations(ctx, svc)

	if err := s.Repo.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service request: %w", err)
	}

	logger.Info("service request created",
		zap.String("serviceID", svc.ID),
		zap.String("customerID", svc.CustomerID),
		zap.String("serviceType", svc.ServiceType),
		zap.String("scheduling", svc.SchedulingType))
	return svc, nil
}

// GetRequest retrieves a single service request.
func (s *DefaultRequestService) GetRequest(ctx context.Context, id string) (*models.ServiceRequest, error) {
	return s.Repo.GetByID(ctx, id)
}

// ListByCustomer returns the customer's requests, newest first.
func (s *DefaultRequestService) ListByCustomer(ctx context.Context, customerID string) ([]models.ServiceRequest, error) {
	return s.Repo.ListByCustomer(ctx, customerID)
}

// ListAssigned returns the jobs assigned to the provider, newest first.
func (s *DefaultRequestService) ListAssigned(ctx context.Context, providerID string) ([]models.ServiceRequest, error) {
	return s.Repo.ListByProvider(ctx, providerID)
}

// UpdateDetails edits the descriptive fields of the customer's own open
// request. The store refuses the write once a provider is confirmed.
func (s *DefaultRequestService) UpdateDetails(ctx context.Context, customerID string, svc models.ServiceRequest) (*models.ServiceRequest, error) {
	existing, err := s.Repo.GetByID(ctx, svc.ID)
	if err != nil {
		return nil, err
	}
	if existing.CustomerID != customerID {
		return nil, ErrNotOwner
	}
	if math.IsNaN(svc.Price) || math.IsInf(svc.Price, 0) || svc.Price < 0 {
		return nil, newInvalid("price must be a non-negative number")
	}

	if svc.ServiceType == "" {
		svc.ServiceType = existing.ServiceType
	}
	if svc.SchedulingType == "" {
		svc.SchedulingType = existing.SchedulingType
		svc.ScheduledAt = existing.ScheduledAt
	}
	if svc.StartLocation.Address == "" {
		svc.StartLocation = existing.StartLocation
	}
	if svc.EndLocation.Address == "" {
		svc.EndLocation = existing.EndLocation
	}
	s.resolveLocations(ctx, &svc)

	if err := s.Repo.UpdateDetails(ctx, &svc); err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, svc.ID)
}

// resolveLocations fills in missing coordinates for any address present.
// Best effort: nothing in the lifecycle depends on a coordinate being there.
func (s *DefaultRequestService) resolveLocations(ctx context.Context, svc *models.ServiceRequest) {
	if s.Geocoder == nil {
		return
	}
	for _, loc := range []*models.Location{&svc.StartLocation, &svc.EndLocation} {
		if loc.Address == "" || loc.Geo != nil {
			continue
		}
		geo, err := s.Geocoder.Geocode(ctx, loc.Address)
		if err != nil {
			utils.GetLogger().Warn("failed to geocode address",
				zap.String("address", loc.Address), zap.Error(err))
			continue
		}
		loc.Geo = geo
	}
}

// DeleteRequest removes the customer's own open request, then sweeps its
// outstanding offers.
func (s *DefaultRequestService) DeleteRequest(ctx context.Context, customerID, serviceID string) error {
	logger := utils.GetLogger()

	existing, err := s.Repo.GetByID(ctx, serviceID)
	if err != nil {
		return err
	}
	if existing.CustomerID != customerID {
		return ErrNotOwner
	}

	if err := s.Repo.DeleteOpen(ctx, serviceID); err != nil {
		return err
	}
	if _, err := s.FillRepo.DeleteByService(ctx, serviceID); err != nil {
		logger.Error("failed to sweep offers after delete",
			zap.String("serviceID", serviceID), zap.Error(err))
	}

	logger.Info("service request deleted",
		zap.String("serviceID", serviceID), zap.String("customerID", customerID))
	return nil
}
