package request

import (
	"context"
	"errors"

	fillRequestRepo "helpr/database/repository/fillrequest"
	providerRepo "helpr/database/repository/provider"
	serviceRepo "helpr/database/repository/service"
	"helpr/models"
	"helpr/services/notification"
)

// ErrNotOwner marks an operation attempted by someone other than the
// request's customer. Handlers translate it to a permission failure.
var ErrNotOwner = errors.New("service request belongs to another customer")

// RequestService manages service requests through their whole life: creation
// by the customer, detail edits while open, and the provider-driven status
// walk once a helpr is confirmed.
type RequestService interface {
	// CreateRequest stores a new request in finding_pros, whatever status
	// the payload claimed.
	CreateRequest(ctx context.Context, svc *models.ServiceRequest) (*models.ServiceRequest, error)
	GetRequest(ctx context.Context, id string) (*models.ServiceRequest, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.ServiceRequest, error)
	// ListAssigned returns the jobs currently or previously assigned to the
	// provider.
	ListAssigned(ctx context.Context, providerID string) ([]models.ServiceRequest, error)
	// UpdateDetails edits the descriptive fields. Only the owning customer,
	// and only while the request is still finding pros.
	UpdateDetails(ctx context.Context, customerID string, svc models.ServiceRequest) (*models.ServiceRequest, error)
	// DeleteRequest removes an open request and its outstanding offers.
	DeleteRequest(ctx context.Context, customerID, serviceID string) error

	// AdvanceStatus moves the request one step along the status chain on
	// behalf of the assigned provider. expected is the status the caller
	// believes the request is in; the store refuses the write if the row
	// has moved. A repeat of an already-applied advance succeeds and
	// returns the current row.
	AdvanceStatus(ctx context.Context, serviceID, providerID string, expected models.ServiceStatus) (*models.ServiceRequest, error)
	// CancelAssignment releases a confirmed job back to the open pool on
	// behalf of the assigned provider.
	CancelAssignment(ctx context.Context, serviceID, providerID string) (*models.ServiceRequest, error)
}

// DefaultRequestService is the production implementation.
type DefaultRequestService struct {
	Repo         serviceRepo.ServiceRepository
	FillRepo     fillRequestRepo.FillRequestRepository
	ProviderRepo providerRepo.ProviderRepository
	Notifier     notification.NotificationService
	Geocoder     Geocoder // may be nil; locations then keep address only
}
