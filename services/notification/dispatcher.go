package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	fillRequestRepo "helpr/database/repository/fillrequest"
	serviceRepo "helpr/database/repository/service"
	"helpr/models"
	"helpr/utils"

	"go.uber.org/zap"
)

// Dispatcher consumes the store's change streams and turns row changes into
// refresh triggers: FCM messages for the apps and local hook calls for
// in-process listeners (the open-jobs feed watcher). Events never carry row
// payloads; every consumer re-reads through its query path.
type Dispatcher struct {
	ServiceRepo serviceRepo.ServiceRepository
	FillRepo    fillRequestRepo.FillRequestRepository
	Notifier    NotificationService

	// Hooks run in-process on every event, before any push goes out.
	Hooks []func(models.ChangeEvent)
}

// Run opens both change streams and dispatches until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	svcEvents, err := d.ServiceRepo.Watch(ctx)
	if err != nil {
		return fmt.Errorf("dispatcher: failed to watch services: %w", err)
	}
	frEvents, err := d.FillRepo.Watch(ctx)
	if err != nil {
		return fmt.Errorf("dispatcher: failed to watch fill requests: %w", err)
	}

	go d.loop(ctx, svcEvents, frEvents)
	return nil
}

func (d *Dispatcher) loop(ctx context.Context, svcEvents, frEvents <-chan models.ChangeEvent) {
	logger := utils.GetLogger()
	for svcEvents != nil || frEvents != nil {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-svcEvents:
			if !ok {
				svcEvents = nil
				continue
			}
			d.dispatch(ctx, ev)
		case ev, ok := <-frEvents:
			if !ok {
				frEvents = nil
				continue
			}
			d.dispatch(ctx, ev)
		}
	}
	logger.Warn("dispatcher: change streams closed")
}

func (d *Dispatcher) dispatch(ctx context.Context, ev models.ChangeEvent) {
	for _, hook := range d.Hooks {
		hook(ev)
	}

	pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch ev.Table {
	case "services":
		d.onServiceChange(pushCtx, ev)
	case "service_fill_requests":
		d.onFillRequestChange(pushCtx, ev)
	}
}

func (d *Dispatcher) onServiceChange(ctx context.Context, ev models.ChangeEvent) {
	logger := utils.GetLogger()

	// Deletes carry no row identity; hooks already forced a full re-read.
	if ev.RowID == "" {
		return
	}

	svc, err := d.ServiceRepo.GetByID(ctx, ev.RowID)
	if err != nil {
		if !errors.Is(err, serviceRepo.ErrNotFound) {
			logger.Warn("dispatcher: failed to resolve service change",
				zap.String("rowID", ev.RowID), zap.Error(err))
		}
		return
	}

	if err := d.Notifier.SendUserDataMessage(ctx, svc.CustomerID, ev.Data()); err != nil {
		logger.Debug("dispatcher: customer data push failed",
			zap.String("serviceID", svc.ID), zap.Error(err))
	}
	if svc.Assigned() {
		if err := d.Notifier.SendProviderDataMessage(ctx, svc.AssignedProviderID, ev.Data()); err != nil {
			logger.Debug("dispatcher: provider data push failed",
				zap.String("serviceID", svc.ID), zap.Error(err))
		}
	}

	switch {
	case ev.Operation == models.ChangeOpInsert && svc.Open():
		if err := d.Notifier.NotifyOpenJob(ctx, *svc); err != nil {
			logger.Warn("dispatcher: open job announcement failed",
				zap.String("serviceID", svc.ID), zap.Error(err))
		}
	case ev.Operation == models.ChangeOpUpdate && svc.Open():
		// Still (or again) in the pool: matching providers re-pull the feed.
		if err := d.Notifier.NotifyJobReopened(ctx, *svc); err != nil {
			logger.Warn("dispatcher: job reopen push failed",
				zap.String("serviceID", svc.ID), zap.Error(err))
		}
	}
}

func (d *Dispatcher) onFillRequestChange(ctx context.Context, ev models.ChangeEvent) {
	logger := utils.GetLogger()

	if ev.RowID == "" {
		return
	}

	fr, err := d.FillRepo.GetByID(ctx, ev.RowID)
	if err != nil {
		if !errors.Is(err, fillRequestRepo.ErrNotFound) {
			logger.Warn("dispatcher: failed to resolve fill request change",
				zap.String("rowID", ev.RowID), zap.Error(err))
		}
		return
	}
	svc, err := d.ServiceRepo.GetByID(ctx, fr.ServiceID)
	if err != nil {
		return
	}

	if ev.Operation == models.ChangeOpInsert {
		title := "New offer received"
		body := fmt.Sprintf("A helpr offered $%.2f for your %s request", fr.BidAmount, svc.ServiceType)
		if err := d.Notifier.SendUserPushNotification(ctx, svc.CustomerID, title, body, ev.Data()); err != nil {
			logger.Debug("dispatcher: offer push failed",
				zap.String("serviceID", svc.ID), zap.Error(err))
		}
		return
	}

	if err := d.Notifier.SendUserDataMessage(ctx, svc.CustomerID, ev.Data()); err != nil {
		logger.Debug("dispatcher: offer data push failed",
			zap.String("serviceID", svc.ID), zap.Error(err))
	}
}
