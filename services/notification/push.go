package notification

import (
	"context"
	"fmt"

	"helpr/models"
	"helpr/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// SendUserPushNotification looks up a user's FCM token and sends a visible push.
func (s *DefaultNotificationService) SendUserPushNotification(
	ctx context.Context,
	userID, title, body string,
	data map[string]string,
) error {
	u, err := s.user.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		return fmt.Errorf("SendUserPushNotification: user %s has no FCM token", userID)
	}

	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["role"]; !ok {
		data["role"] = "user"
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendUserPushNotification: failed to send FCM message: %w", err)
	}
	return nil
}

// SendProviderPushNotification looks up a provider's FCM token and sends a
// visible push. Provider pushes ride the high-priority channel so job alerts
// surface even when the app is backgrounded.
func (s *DefaultNotificationService) SendProviderPushNotification(
	ctx context.Context,
	providerID, title, body string,
	data map[string]string,
) error {
	p, err := s.provider.GetProviderByID(providerID)
	if err != nil {
		return fmt.Errorf("SendProviderPushNotification: could not find provider %s: %w", providerID, err)
	}
	if p.FCMToken == "" {
		return fmt.Errorf("SendProviderPushNotification: provider %s has no FCM token", providerID)
	}

	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["role"]; !ok {
		data["role"] = "provider"
	}

	msg := &messaging.Message{
		Token: p.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendProviderPushNotification: failed to send FCM message: %w", err)
	}
	return nil
}

// sendData sends a silent data-only message to one device token. The payload
// names the changed table; apps re-fetch through their normal query path
// rather than reading state out of the push.
func (s *DefaultNotificationService) sendData(ctx context.Context, token string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Data:  data,
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-push-type": "background",
				"apns-priority":  "5",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					ContentAvailable: true,
				},
			},
		},
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM data message: %w", err)
	}
	return nil
}

// SendUserDataMessage sends a silent refresh trigger to the user's device.
func (s *DefaultNotificationService) SendUserDataMessage(
	ctx context.Context,
	userID string,
	data map[string]string,
) error {
	u, err := s.user.GetUserByID(userID)
	if err != nil || u.FCMToken == "" {
		return nil // no push target, nothing to do
	}
	return s.sendData(ctx, u.FCMToken, data)
}

// SendProviderDataMessage sends a silent refresh trigger to the provider's
// device.
func (s *DefaultNotificationService) SendProviderDataMessage(
	ctx context.Context,
	providerID string,
	data map[string]string,
) error {
	p, err := s.provider.GetProviderByID(providerID)
	if err != nil || p.FCMToken == "" {
		return nil
	}
	return s.sendData(ctx, p.FCMToken, data)
}

// NotifyOpenJob announces a newly open service request to every provider
// registered for its service type. Delivery is best-effort per provider;
// one dead token must not starve the rest.
func (s *DefaultNotificationService) NotifyOpenJob(ctx context.Context, svc models.ServiceRequest) error {
	logger := utils.GetLogger()

	providers, err := s.provider.ListProvidersByServiceType(svc.ServiceType)
	if err != nil {
		return fmt.Errorf("NotifyOpenJob: failed to list providers: %w", err)
	}

	title := fmt.Sprintf("New %s job available", svc.ServiceType)
	body := svc.Description
	if body == "" {
		body = "A customer near you needs help. Open the app to place an offer."
	}
	data := models.ChangeEvent{
		Table:     "services",
		Operation: models.ChangeOpInsert,
		RowID:     svc.ID,
	}.Data()
	data["role"] = "provider"

	for _, p := range providers {
		if p.FCMToken == "" {
			continue
		}
		if err := s.SendProviderPushNotification(ctx, p.ID, title, body, data); err != nil {
			logger.Warn("NotifyOpenJob: push failed",
				zap.String("providerID", p.ID), zap.Error(err))
		}
	}
	return nil
}

// NotifyJobReopened silently pokes every matching provider's feed after a
// service request returns to the open pool or changes while open.
func (s *DefaultNotificationService) NotifyJobReopened(ctx context.Context, svc models.ServiceRequest) error {
	logger := utils.GetLogger()

	providers, err := s.provider.ListProvidersByServiceType(svc.ServiceType)
	if err != nil {
		return fmt.Errorf("NotifyJobReopened: failed to list providers: %w", err)
	}

	data := models.ChangeEvent{
		Table:     "services",
		Operation: models.ChangeOpUpdate,
		RowID:     svc.ID,
	}.Data()
	data["role"] = "provider"

	for _, p := range providers {
		if p.FCMToken == "" {
			continue
		}
		if err := s.sendData(ctx, p.FCMToken, data); err != nil {
			logger.Debug("NotifyJobReopened: data push failed",
				zap.String("providerID", p.ID), zap.Error(err))
		}
	}
	return nil
}
