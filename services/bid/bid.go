package bid

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	fillRequestRepo "helpr/database/repository/fillrequest"
	serviceRepo "helpr/database/repository/service"
	"helpr/models"
	"helpr/services/tasks"
	"helpr/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlaceBid records the provider's priced offer on an open service request.
func (s *DefaultBidService) PlaceBid(ctx context.Context, serviceID, providerID string, amount float64) (*models.ServiceFillRequest, error) {
	logger := utils.GetLogger()

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, newError(CodeInvalidAmount,
			fmt.Sprintf("bid amount must be a positive number, got %v", amount))
	}

	svc, err := s.ServiceRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrNotFound) {
			return nil, newError(CodeServiceNotOpen,
				fmt.Sprintf("service request %s not found", serviceID))
		}
		return nil, fmt.Errorf("failed to fetch service request %s: %w", serviceID, err)
	}
	if !svc.Open() {
		return nil, newError(CodeServiceNotOpen,
			fmt.Sprintf("service request %s is not accepting offers (status %q)", serviceID, svc.Status))
	}

	fr := &models.ServiceFillRequest{
		ID:         uuid.New().String(),
		ServiceID:  serviceID,
		ProviderID: providerID,
		BidAmount:  amount,
		CreatedAt:  time.Now(),
	}
	if err := s.FillRepo.Upsert(ctx, fr); err != nil {
		return nil, fmt.Errorf("failed to place bid on service %s: %w", serviceID, err)
	}

	// Acceptance may have landed between the open check and the upsert; a
	// row written after the sweep would outlive it, so look again.
	svc, err = s.ServiceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-check service request %s: %w", serviceID, err)
	}
	if !svc.Open() {
		if _, delErr := s.FillRepo.Delete(ctx, serviceID, providerID); delErr != nil {
			logger.Warn("failed to roll back late bid",
				zap.String("serviceID", serviceID), zap.String("providerID", providerID), zap.Error(delErr))
		}
		return nil, newError(CodeServiceNotOpen,
			fmt.Sprintf("service request %s is no longer accepting offers", serviceID))
	}

	// Re-read the row: on a re-bid the upsert keeps the original id and
	// created_at, and the caller should see what is actually stored.
	placed, err := s.FillRepo.Get(ctx, serviceID, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back bid on service %s: %w", serviceID, err)
	}

	logger.Debug("bid placed",
		zap.String("serviceID", serviceID),
		zap.String("providerID", providerID),
		zap.Float64("amount", amount))
	return placed, nil
}

// WithdrawBid removes the provider's offer. Absent offers are ignored so the
// operation can be retried safely.
func (s *DefaultBidService) WithdrawBid(ctx context.Context, serviceID, providerID string) error {
	deleted, err := s.FillRepo.Delete(ctx, serviceID, providerID)
	if err != nil {
		return fmt.Errorf("failed to withdraw bid on service %s: %w", serviceID, err)
	}
	if !deleted {
		utils.GetLogger().Debug("withdraw of absent bid ignored",
			zap.String("serviceID", serviceID), zap.String("providerID", providerID))
	}
	return nil
}

// AcceptBid confirms the chosen provider and sweeps every outstanding offer
// on the service, the losing provider's included.
func (s *DefaultBidService) AcceptBid(ctx context.Context, serviceID, customerID, providerID string) (*models.ServiceRequest, error) {
	logger := utils.GetLogger()

	svc, err := s.ServiceRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrNotFound) {
			return nil, newError(CodeServiceNotOpen,
				fmt.Sprintf("service request %s not found", serviceID))
		}
		return nil, fmt.Errorf("failed to fetch service request %s: %w", serviceID, err)
	}
	if svc.CustomerID != customerID {
		return nil, ErrNotOwner
	}
	if !svc.Open() {
		return nil, newError(CodeServiceNotOpen,
			fmt.Sprintf("service request %s is not accepting offers (status %q)", serviceID, svc.Status))
	}

	if _, err := s.FillRepo.Get(ctx, serviceID, providerID); err != nil {
		if errors.Is(err, fillRequestRepo.ErrNotFound) {
			return nil, newError(CodeBidNotFound,
				fmt.Sprintf("no offer from provider %s on service request %s", providerID, serviceID))
		}
		return nil, fmt.Errorf("failed to fetch bid on service %s: %w", serviceID, err)
	}

	// Snapshot the field before the sweep so losing bidders can be told.
	bidders, err := s.FillRepo.ListByService(ctx, serviceID)
	if err != nil {
		logger.Warn("failed to list bidders before acceptance",
			zap.String("serviceID", serviceID), zap.Error(err))
		bidders = nil
	}

	// The store enforces the open precondition again here; whoever loses
	// the race gets a conflict no matter how stale their view was.
	if err := s.ServiceRepo.AssignProvider(ctx, serviceID, providerID); err != nil {
		switch {
		case errors.Is(err, serviceRepo.ErrStatusConflict):
			return nil, newError(CodeServiceNotOpen,
				fmt.Sprintf("service request %s was filled first", serviceID))
		case errors.Is(err, serviceRepo.ErrNotFound):
			return nil, newError(CodeServiceNotOpen,
				fmt.Sprintf("service request %s not found", serviceID))
		default:
			return nil, fmt.Errorf("failed to confirm provider on service %s: %w", serviceID, err)
		}
	}

	// The assignment is committed. Sweep failures leave garbage rows, not
	// wrong state, so they must not fail the acceptance.
	if _, err := s.FillRepo.DeleteByService(ctx, serviceID); err != nil {
		logger.Error("failed to sweep offers after acceptance",
			zap.String("serviceID", serviceID), zap.Error(err))
	}

	confirmed, err := s.ServiceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("accepted offer but failed to re-read service request %s: %w", serviceID, err)
	}

	s.notifyAcceptance(ctx, confirmed, providerID, bidders)
	s.scheduleReminders(confirmed)

	logger.Info("bid accepted",
		zap.String("serviceID", serviceID),
		zap.String("providerID", providerID),
		zap.Int("sweptBids", len(bidders)))
	return confirmed, nil
}

// ListByService returns all offers on the customer's own service request.
func (s *DefaultBidService) ListByService(ctx context.Context, serviceID, customerID string) ([]models.ServiceFillRequest, error) {
	svc, err := s.ServiceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service request %s: %w", serviceID, err)
	}
	if svc.CustomerID != customerID {
		return nil, ErrNotOwner
	}
	return s.FillRepo.ListByService(ctx, serviceID)
}

// ListByProvider returns the provider's outstanding offers.
func (s *DefaultBidService) ListByProvider(ctx context.Context, providerID string) ([]models.ServiceFillRequest, error) {
	return s.FillRepo.ListByProvider(ctx, providerID)
}

// notifyAcceptance tells the winner and the losing bidders. Best effort:
// the acceptance already happened.
func (s *DefaultBidService) notifyAcceptance(ctx context.Context, svc *models.ServiceRequest, winnerID string, bidders []models.ServiceFillRequest) {
	if s.Notifier == nil {
		return
	}
	logger := utils.GetLogger()

	data := models.ChangeEvent{
		Table:     "services",
		Operation: models.ChangeOpUpdate,
		RowID:     svc.ID,
	}.Data()

	title := "You got the job!"
	body := fmt.Sprintf("Your offer on the %s request was accepted.", svc.ServiceType)
	if err := s.Notifier.SendProviderPushNotification(ctx, winnerID, title, body, data); err != nil {
		logger.Warn("failed to notify accepted provider",
			zap.String("providerID", winnerID), zap.Error(err))
	}

	for _, b := range bidders {
		if b.ProviderID == winnerID {
			continue
		}
		title := "Job filled"
		body := fmt.Sprintf("The %s request you offered on went to another helpr.", svc.ServiceType)
		if err := s.Notifier.SendProviderPushNotification(ctx, b.ProviderID, title, body, data); err != nil {
			logger.Debug("failed to notify losing bidder",
				zap.String("providerID", b.ProviderID), zap.Error(err))
		}
	}
}

// scheduleReminders enqueues pre-appointment reminders for scheduled jobs.
func (s *DefaultBidService) scheduleReminders(svc *models.ServiceRequest) {
	if s.AsynqClient == nil || svc.SchedulingType != models.SchedulingScheduled || svc.ScheduledAt == nil {
		return
	}
	fireAt := svc.ScheduledAt.Add(-1 * time.Hour)
	if fireAt.Before(time.Now()) {
		return
	}
	logger := utils.GetLogger()

	reminders := []models.ReminderPayload{
		{
			ServiceID: svc.ID,
			Target:    "provider",
			TargetID:  svc.AssignedProviderID,
			Title:     "Upcoming job",
			Body:      fmt.Sprintf("Your %s job starts in one hour.", svc.ServiceType),
			FireAt:    fireAt,
		},
		{
			ServiceID: svc.ID,
			Target:    "user",
			TargetID:  svc.CustomerID,
			Title:     "Helpr on the way soon",
			Body:      fmt.Sprintf("Your %s service is scheduled to start in one hour.", svc.ServiceType),
			FireAt:    fireAt,
		},
	}

	for _, payload := range reminders {
		task, opts, err := tasks.NewReminderTask(payload, fireAt)
		if err != nil {
			logger.Error("failed to build reminder task",
				zap.String("serviceID", svc.ID), zap.Error(err))
			continue
		}
		if _, err := s.AsynqClient.Enqueue(task, opts...); err != nil {
			logger.Error("failed to enqueue reminder task",
				zap.String("serviceID", svc.ID), zap.String("target", payload.Target), zap.Error(err))
		}
	}
}
