package fillRequestRepo

import (
	"context"
	"errors"

	"helpr/models"
)

// ErrNotFound is returned when no fill request matches the given pair.
var ErrNotFound = errors.New("service fill request not found")

// FillRequestRepository defines methods for fill request (bid) data access.
// The store enforces at most one row per (service, provider) pair.
type FillRequestRepository interface {
	// Upsert inserts the provider's bid on a service, or replaces the bid
	// amount if one already exists for the pair.
	Upsert(ctx context.Context, fr *models.ServiceFillRequest) error
	// Get retrieves the bid for the given pair.
	Get(ctx context.Context, serviceID, providerID string) (*models.ServiceFillRequest, error)
	// GetByID retrieves a bid by its row ID.
	GetByID(ctx context.Context, id string) (*models.ServiceFillRequest, error)
	// ListByService retrieves all bids on a service in arrival order.
	ListByService(ctx context.Context, serviceID string) ([]models.ServiceFillRequest, error)
	// ListByProvider retrieves all bids a provider has outstanding, newest
	// first.
	ListByProvider(ctx context.Context, providerID string) ([]models.ServiceFillRequest, error)
	// Delete removes the bid for the given pair. Reports whether a row was
	// actually deleted; deleting a missing bid is not an error.
	Delete(ctx context.Context, serviceID, providerID string) (bool, error)
	// DeleteByService removes every bid on a service and returns how many
	// rows went away.
	DeleteByService(ctx context.Context, serviceID string) (int64, error)

	// Watch streams change events for the fill request collection until ctx
	// is canceled.
	Watch(ctx context.Context) (<-chan models.ChangeEvent, error)
}
