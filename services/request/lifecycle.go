package request

import (
	"context"
	"errors"
	"fmt"

	serviceRepo "helpr/database/repository/service"
	"helpr/models"
	"helpr/services/lifecycle"
	"helpr/utils"

	"go.uber.org/zap"
)

// AdvanceStatus moves the request one step along the status chain. The pure
// transition rules decide the target; the store then applies it only if the
// row still matches what the caller saw. Losing that race gets resolved by
// re-reading, so a duplicate tap on an already-applied advance comes back as
// success rather than a scary error.
func (s *DefaultRequestService) AdvanceStatus(ctx context.Context, serviceID, providerID string, expected models.ServiceStatus) (*models.ServiceRequest, error) {
	svc, err := s.Repo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	// The caller's expected status guards the write; without one, the
	// freshly read status serves.
	from := svc.Status
	if expected != "" {
		from = models.NormalizeStatus(expected)
	}

	probe := *svc
	probe.Status = from
	advanced, err := lifecycle.Advance(probe, providerID)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.AdvanceStatus(ctx, serviceID, providerID, from, advanced.Status); err != nil {
		if errors.Is(err, serviceRepo.ErrStatusConflict) {
			return s.resolveAdvanceConflict(ctx, serviceID, providerID, advanced.Status)
		}
		return nil, err
	}

	current, err := s.Repo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("advanced service request %s but failed to re-read: %w", serviceID, err)
	}

	s.afterAdvance(ctx, current)
	return current, nil
}

// resolveAdvanceConflict re-reads the row once after a refused write and
// decides what the caller should see.
func (s *DefaultRequestService) resolveAdvanceConflict(ctx context.Context, serviceID, providerID string, target models.ServiceStatus) (*models.ServiceRequest, error) {
	current, err := s.Repo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	// The advance already landed, usually a double tap racing itself.
	if current.Status == target && current.AssignedProviderID == providerID {
		return current, nil
	}

	// Let the transition rules name the real problem: wrong provider or
	// terminal state.
	if _, lerr := lifecycle.Advance(*current, providerID); lerr != nil {
		return nil, lerr
	}

	// The rules would allow an advance from where the row is now, so the
	// caller's expected status was simply stale. Refresh and retry.
	return nil, serviceRepo.ErrStatusConflict
}

func (s *DefaultRequestService) afterAdvance(ctx context.Context, svc *models.ServiceRequest) {
	logger := utils.GetLogger()

	logger.Info("service request advanced",
		zap.String("serviceID", svc.ID),
		zap.String("providerID", svc.AssignedProviderID),
		zap.String("status", string(svc.Status)))

	if svc.Status == models.StatusCompleted && s.ProviderRepo != nil {
		if err := s.ProviderRepo.IncrementCompletedJobs(svc.AssignedProviderID); err != nil {
			logger.Warn("failed to bump completed jobs",
				zap.String("providerID", svc.AssignedProviderID), zap.Error(err))
		}
	}

	if s.Notifier == nil {
		return
	}
	var title, body string
	switch svc.Status {
	case models.StatusHelprOTW:
		title = "Your helpr is on the way!"
		body = fmt.Sprintf("Your %s helpr is heading to you now.", svc.ServiceType)
	case models.StatusInProgress:
		title = "Work has started"
		body = fmt.Sprintf("Your %s service is now in progress.", svc.ServiceType)
	case models.StatusCompleted:
		title = "Job completed"
		body = fmt.Sprintf("Your %s service is done. Thanks for using helpr!", svc.ServiceType)
	default:
		return
	}

	data := models.ChangeEvent{
		Table:     "services",
		Operation: models.ChangeOpUpdate,
		RowID:     svc.ID,
	}.Data()
	if err := s.Notifier.SendUserPushNotification(ctx, svc.CustomerID, title, body, data); err != nil {
		logger.Debug("status push failed",
			zap.String("serviceID", svc.ID), zap.Error(err))
	}
}

// CancelAssignment releases a confirmed job back to the open pool on behalf
// of the assigned provider.
func (s *DefaultRequestService) CancelAssignment(ctx context.Context, serviceID, providerID string) (*models.ServiceRequest, error) {
	logger := utils.GetLogger()

	svc, err := s.Repo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if _, err := lifecycle.CancelAssignment(*svc, providerID); err != nil {
		return nil, err
	}

	if err := s.Repo.ClearAssignment(ctx, serviceID, providerID); err != nil {
		if errors.Is(err, serviceRepo.ErrStatusConflict) {
			current, rerr := s.Repo.GetByID(ctx, serviceID)
			if rerr != nil {
				return nil, rerr
			}
			if _, lerr := lifecycle.CancelAssignment(*current, providerID); lerr != nil {
				return nil, lerr
			}
			return nil, serviceRepo.ErrStatusConflict
		}
		return nil, err
	}

	// The provider's own pre-acceptance offer must not resurface in the
	// reopened pool.
	if _, err := s.FillRepo.Delete(ctx, serviceID, providerID); err != nil {
		logger.Warn("failed to drop canceling provider's offer",
			zap.String("serviceID", serviceID), zap.String("providerID", providerID), zap.Error(err))
	}

	current, err := s.Repo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("cleared assignment on service request %s but failed to re-read: %w", serviceID, err)
	}

	if s.Notifier != nil {
		data := models.ChangeEvent{
			Table:     "services",
			Operation: models.ChangeOpUpdate,
			RowID:     serviceID,
		}.Data()
		title := "Your helpr canceled"
		body := fmt.Sprintf("Your %s request is back in the pool and visible to other helprs.", current.ServiceType)
		if err := s.Notifier.SendUserPushNotification(ctx, current.CustomerID, title, body, data); err != nil {
			logger.Debug("cancel push failed",
				zap.String("serviceID", serviceID), zap.Error(err))
		}
	}

	logger.Info("assignment canceled",
		zap.String("serviceID", serviceID), zap.String("providerID", providerID))
	return current, nil
}
