package feed

import (
	"context"
	"sort"

	"helpr/models"
	"helpr/utils"

	"go.uber.org/zap"
)

// OpenJobs serves the open-jobs feed. The watcher snapshot is the fast path;
// a process that has not refreshed yet falls back to the shared cache and
// then to the store.
func (s *DefaultFeedService) OpenJobs(ctx context.Context, providerID string) ([]models.FeedItem, error) {
	items, err := s.openSnapshot(ctx)
	if err != nil {
		return nil, newTransient("open jobs feed unavailable", err)
	}
	return s.decorate(ctx, items, providerID), nil
}

func (s *DefaultFeedService) openSnapshot(ctx context.Context) ([]models.ServiceRequest, error) {
	logger := utils.GetLogger()

	if s.watcher != nil {
		if items, ok := s.watcher.Snapshot(); ok {
			return items, nil
		}
	}

	if s.Cache != nil {
		items, err := s.Cache.Load(ctx)
		if err != nil {
			logger.Warn("feed cache read failed", zap.Error(err))
		} else if items != nil {
			return items, nil
		}
	}

	items, err := s.fetchOpen(ctx)
	if err != nil {
		return nil, err
	}
	s.saveSnapshot(ctx, items)
	return items, nil
}

func (s *DefaultFeedService) fetchOpen(ctx context.Context) ([]models.ServiceRequest, error) {
	items, err := s.Repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	sortOpenJobs(items)
	return items, nil
}

func (s *DefaultFeedService) saveSnapshot(ctx context.Context, items []models.ServiceRequest) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Save(ctx, items); err != nil {
		utils.GetLogger().Warn("feed cache write failed", zap.Error(err))
	}
}

// decorate attaches the provider's own outstanding offers. A failure to load
// them degrades to an undecorated feed rather than no feed.
func (s *DefaultFeedService) decorate(ctx context.Context, items []models.ServiceRequest, providerID string) []models.FeedItem {
	out := make([]models.FeedItem, 0, len(items))
	for _, svc := range items {
		out = append(out, models.FeedItem{ServiceRequest: svc})
	}
	if providerID == "" || s.FillRepo == nil {
		return out
	}

	bids, err := s.FillRepo.ListByProvider(ctx, providerID)
	if err != nil {
		utils.GetLogger().Warn("failed to load provider offers for feed",
			zap.String("providerID", providerID), zap.Error(err))
		return out
	}
	byService := make(map[string]models.ServiceFillRequest, len(bids))
	for _, b := range bids {
		byService[b.ServiceID] = b
	}
	for i := range out {
		if b, ok := byService[out[i].ID]; ok {
			bid := b
			out[i].MyBid = &bid
		}
	}
	return out
}

// sortOpenJobs orders the feed the way providers work it: ASAP requests
// first in arrival order, then scheduled ones by their scheduled time.
func sortOpenJobs(items []models.ServiceRequest) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		aScheduled := a.SchedulingType == models.SchedulingScheduled && a.ScheduledAt != nil
		bScheduled := b.SchedulingType == models.SchedulingScheduled && b.ScheduledAt != nil
		if aScheduled != bScheduled {
			return !aScheduled
		}
		if aScheduled && bScheduled && !a.ScheduledAt.Equal(*b.ScheduledAt) {
			return a.ScheduledAt.Before(*b.ScheduledAt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
