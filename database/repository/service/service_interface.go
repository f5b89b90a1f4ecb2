package serviceRepo

import (
	"context"
	"errors"

	"helpr/models"
)

// ErrNotFound is returned when no service request matches the given ID.
var ErrNotFound = errors.New("service request not found")

// ErrStatusConflict is returned by the conditional updates when the stored
// row no longer satisfies the expected status/assignment precondition. The
// row exists but someone else changed it first.
var ErrStatusConflict = errors.New("service request changed concurrently")

// ServiceRepository defines methods for service request data access.
type ServiceRepository interface {
	// Create inserts a new service request record.
	Create(ctx context.Context, svc *models.ServiceRequest) error
	// GetByID retrieves a service request by its unique ID.
	GetByID(ctx context.Context, id string) (*models.ServiceRequest, error)
	// ListOpen retrieves all requests still finding pros, ASAP jobs first
	// (oldest first), then scheduled jobs by their scheduled time.
	ListOpen(ctx context.Context) ([]models.ServiceRequest, error)
	// ListByCustomer retrieves all requests created by the given customer,
	// newest first.
	ListByCustomer(ctx context.Context, customerID string) ([]models.ServiceRequest, error)
	// ListByProvider retrieves all requests assigned to the given provider,
	// newest first.
	ListByProvider(ctx context.Context, providerID string) ([]models.ServiceRequest, error)
	// UpdateDetails rewrites the editable fields of a request that is still
	// finding pros. Returns ErrStatusConflict once a provider is confirmed.
	UpdateDetails(ctx context.Context, svc *models.ServiceRequest) error
	// DeleteOpen removes a service request that is still finding pros.
	// Returns ErrStatusConflict once a provider is confirmed.
	DeleteOpen(ctx context.Context, id string) error

	// AssignProvider conditionally moves an open request to confirmed with
	// the given provider. Returns ErrStatusConflict if the request is no
	// longer finding pros.
	AssignProvider(ctx context.Context, serviceID, providerID string) error
	// AdvanceStatus conditionally moves a request from one status to the
	// next, but only while it is still in the expected status and assigned
	// to the expected provider. Returns ErrStatusConflict otherwise.
	AdvanceStatus(ctx context.Context, serviceID, providerID string, from, to models.ServiceStatus) error
	// ClearAssignment conditionally releases a confirmed request back to
	// finding pros, clearing the provider assignment. Returns
	// ErrStatusConflict if the request has moved on.
	ClearAssignment(ctx context.Context, serviceID, providerID string) error

	// Watch streams change events for the services collection until ctx is
	// canceled. Events carry row identity only, never row payloads.
	Watch(ctx context.Context) (<-chan models.ChangeEvent, error)
}
