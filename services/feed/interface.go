package feed

import (
	"context"
	"time"

	fillRequestRepo "helpr/database/repository/fillrequest"
	serviceRepo "helpr/database/repository/service"
	"helpr/models"
)

// FeedService serves providers the list of open service requests.
type FeedService interface {
	// OpenJobs returns every request still finding pros, ASAP work first,
	// decorated with the calling provider's own outstanding offer.
	OpenJobs(ctx context.Context, providerID string) ([]models.FeedItem, error)
}

// DefaultFeedService assembles the feed from the store, fronted by the
// watcher's snapshot and a shared Redis copy.
type DefaultFeedService struct {
	Repo     serviceRepo.ServiceRepository
	FillRepo fillRequestRepo.FillRequestRepository
	Cache    SnapshotCache

	watcher *Watcher
}

// StartWatcher launches the background reconciler that keeps the snapshot
// fresh and mirrored into the cache. The returned watcher's Notify is meant
// to be hooked into the change-event dispatcher; Stop it on shutdown.
func (s *DefaultFeedService) StartWatcher(interval time.Duration) *Watcher {
	w := &Watcher{
		Fetch:    s.fetchOpen,
		Interval: interval,
		OnApply:  s.saveSnapshot,
	}
	s.watcher = w
	w.Start()
	return w
}
