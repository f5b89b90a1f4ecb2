package notification

import (
	"context"
	"fmt"

	"helpr/models"
	"helpr/services/provider"
	"helpr/services/user"
)

// NotificationService defines methods for sending FCM pushes. Visible
// notifications carry a title and body; data messages are silent refresh
// triggers that tell the app which table changed and nothing more.
type NotificationService interface {
	SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
	SendProviderPushNotification(ctx context.Context, providerID, title, body string, data map[string]string) error
	SendUserDataMessage(ctx context.Context, userID string, data map[string]string) error
	SendProviderDataMessage(ctx context.Context, providerID string, data map[string]string) error
	// NotifyOpenJob announces a newly open service request to every
	// provider registered for its service type.
	NotifyOpenJob(ctx context.Context, svc models.ServiceRequest) error
	// NotifyJobReopened silently refreshes matching providers' feeds after
	// an open service request changes.
	NotifyJobReopened(ctx context.Context, svc models.ServiceRequest) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	user     user.UserService
	provider provider.ProviderService
}

func NewDefaultNotificationService(
	userSvc user.UserService,
	providerSvc provider.ProviderService,
) (*DefaultNotificationService, error) {
	if userSvc == nil || providerSvc == nil {
		return nil, fmt.Errorf("notification service initialization error: user or provider service is nil")
	}
	return &DefaultNotificationService{
		user:     userSvc,
		provider: providerSvc,
	}, nil
}
