package bid

import (
	"context"

	fillRequestRepo "helpr/database/repository/fillrequest"
	serviceRepo "helpr/database/repository/service"
	"helpr/models"
	"helpr/services/notification"

	"github.com/hibiken/asynq"
)

// BidService manages provider offers (fill requests) on open service
// requests: placing, withdrawing and accepting them.
type BidService interface {
	// PlaceBid records the provider's priced offer on an open service.
	// Re-bidding replaces the previous amount; there is never more than one
	// offer per (service, provider) pair.
	PlaceBid(ctx context.Context, serviceID, providerID string, amount float64) (*models.ServiceFillRequest, error)
	// WithdrawBid removes the provider's offer. Withdrawing an offer that
	// does not exist is a no-op.
	WithdrawBid(ctx context.Context, serviceID, providerID string) error
	// AcceptBid confirms the chosen provider on behalf of the customer and
	// sweeps every outstanding offer on the service.
	AcceptBid(ctx context.Context, serviceID, customerID, providerID string) (*models.ServiceRequest, error)
	// ListByService returns all offers on the customer's service request.
	ListByService(ctx context.Context, serviceID, customerID string) ([]models.ServiceFillRequest, error)
	// ListByProvider returns the provider's outstanding offers.
	ListByProvider(ctx context.Context, providerID string) ([]models.ServiceFillRequest, error)
}

// DefaultBidService is the production implementation.
type DefaultBidService struct {
	ServiceRepo serviceRepo.ServiceRepository
	FillRepo    fillRequestRepo.FillRequestRepository
	Notifier    notification.NotificationService
	AsynqClient *asynq.Client
}
