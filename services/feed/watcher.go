package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"helpr/models"
	"helpr/utils"

	"go.uber.org/zap"
)

// FetchFunc loads the current open-jobs list from the store.
type FetchFunc func(ctx context.Context) ([]models.ServiceRequest, error)

// Watcher keeps an in-memory snapshot of the open-jobs feed fresh. Every
// refresh carries a strictly increasing sequence number, and a completed
// refresh is applied only while its sequence is still the highest one issued;
// anything slower than a later refresh is discarded. A refresh that fails
// leaves the snapshot exactly as it was. The poll ticker alone keeps the
// snapshot converging; change notifications just make it converge sooner.
type Watcher struct {
	Fetch    FetchFunc
	Interval time.Duration
	// OnApply runs after a refresh lands, outside the snapshot lock.
	OnApply func(ctx context.Context, items []models.ServiceRequest)

	initOnce sync.Once
	ctx      context.Context
	cancel   context.CancelFunc
	trigger  chan struct{}

	issued uint64 // atomic

	mu          sync.RWMutex
	snapshot    []models.ServiceRequest
	refreshedAt time.Time
}

func (w *Watcher) init() {
	w.initOnce.Do(func() {
		w.ctx, w.cancel = context.WithCancel(context.Background())
		w.trigger = make(chan struct{}, 1)
		if w.Interval <= 0 {
			w.Interval = 15 * time.Second
		}
	})
}

// Start launches the poll loop. Safe to call once.
func (w *Watcher) Start() {
	w.init()
	go w.run()
}

// Stop cancels the poll loop and the change subscription. Refreshes still in
// flight are discarded when they complete.
func (w *Watcher) Stop() {
	w.init()
	w.cancel()
}

func (w *Watcher) run() {
	logger := utils.GetLogger()
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	w.Refresh()
	for {
		select {
		case <-w.ctx.Done():
			logger.Info("feed watcher stopped")
			return
		case <-ticker.C:
			w.Refresh()
		case <-w.trigger:
			w.Refresh()
		}
	}
}

// Notify schedules a refresh. The event payload is deliberately unused:
// change notifications are triggers, the data always comes from a fresh
// fetch. Pending triggers coalesce.
func (w *Watcher) Notify(_ models.ChangeEvent) {
	w.init()
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Refresh issues a new refresh and returns immediately; the fetch runs in the
// background under the sequence discipline.
func (w *Watcher) Refresh() {
	w.init()
	seq := atomic.AddUint64(&w.issued, 1)
	go w.runRefresh(seq)
}

func (w *Watcher) runRefresh(seq uint64) {
	logger := utils.GetLogger()

	items, err := w.Fetch(w.ctx)
	if err != nil {
		// Snapshot stays as it was; the next tick retries.
		if w.ctx.Err() == nil {
			logger.Warn("feed refresh failed",
				zap.Uint64("seq", seq), zap.Error(err))
		}
		return
	}

	if !w.applyResult(seq, items) {
		logger.Debug("discarding stale feed refresh",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", atomic.LoadUint64(&w.issued)))
		return
	}
	if w.OnApply != nil {
		w.OnApply(w.ctx, items)
	}
}

func (w *Watcher) applyResult(seq uint64, items []models.ServiceRequest) bool {
	if w.ctx.Err() != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != atomic.LoadUint64(&w.issued) {
		return false
	}
	w.snapshot = items
	w.refreshedAt = time.Now()
	return true
}

// Snapshot returns a copy of the last applied feed, and false if no refresh
// has landed yet.
func (w *Watcher) Snapshot() ([]models.ServiceRequest, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.refreshedAt.IsZero() {
		return nil, false
	}
	out := make([]models.ServiceRequest, len(w.snapshot))
	copy(out, w.snapshot)
	return out, true
}
