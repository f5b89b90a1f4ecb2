package feed

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpr/models"
)

type fetchResult struct {
	items []models.ServiceRequest
	err   error
}

// gatedFetch hands the test one reply channel per fetch call, in call order,
// so overlapping refreshes can be completed in any order the test wants.
func gatedFetch() (FetchFunc, chan chan fetchResult) {
	calls := make(chan chan fetchResult, 8)
	fetch := func(ctx context.Context) ([]models.ServiceRequest, error) {
		reply := make(chan fetchResult)
		calls <- reply
		select {
		case r := <-reply:
			return r.items, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return fetch, calls
}

func snapshotIDs(w *Watcher) []string {
	items, ok := w.Snapshot()
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func TestWatcherDiscardsStaleRefresh(t *testing.T) {
	fetch, calls := gatedFetch()
	w := &Watcher{Fetch: fetch, Interval: time.Hour}
	defer w.Stop()

	// Two refreshes in flight: the older one stalls, the newer one lands.
	w.Refresh()
	first := <-calls
	w.Refresh()
	second := <-calls

	second <- fetchResult{items: []models.ServiceRequest{{ID: "svc-new"}}}
	require.Eventually(t, func() bool {
		ids := snapshotIDs(w)
		return len(ids) == 1 && ids[0] == "svc-new"
	}, time.Second, 5*time.Millisecond)

	// The slow one finally completes carrying older data. It must not win.
	first <- fetchResult{items: []models.ServiceRequest{{ID: "svc-old"}}}
	assert.Never(t, func() bool {
		ids := snapshotIDs(w)
		return len(ids) == 1 && ids[0] == "svc-old"
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestWatcherFailedRefreshKeepsSnapshot(t *testing.T) {
	fetch, calls := gatedFetch()
	w := &Watcher{Fetch: fetch, Interval: time.Hour}
	defer w.Stop()

	w.Refresh()
	(<-calls) <- fetchResult{items: []models.ServiceRequest{{ID: "svc-1"}}}
	require.Eventually(t, func() bool {
		ids := snapshotIDs(w)
		return len(ids) == 1 && ids[0] == "svc-1"
	}, time.Second, 5*time.Millisecond)

	w.Refresh()
	(<-calls) <- fetchResult{err: errors.New("store down")}

	assert.Never(t, func() bool {
		ids := snapshotIDs(w)
		return len(ids) != 1 || ids[0] != "svc-1"
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestWatcherNotifyTriggersRefresh(t *testing.T) {
	fetch, calls := gatedFetch()
	w := &Watcher{Fetch: fetch, Interval: time.Hour}
	w.Start()
	defer w.Stop()

	// The startup refresh.
	(<-calls) <- fetchResult{}

	w.Notify(models.ChangeEvent{Table: "services", Operation: models.ChangeOpInsert, RowID: "svc-1"})

	select {
	case reply := <-calls:
		reply <- fetchResult{items: []models.ServiceRequest{{ID: "svc-1"}}}
	case <-time.After(time.Second):
		t.Fatal("change notification did not trigger a refresh")
	}

	require.Eventually(t, func() bool {
		ids := snapshotIDs(w)
		return len(ids) == 1 && ids[0] == "svc-1"
	}, time.Second, 5*time.Millisecond)
}

func TestWatcherStopDiscardsInFlight(t *testing.T) {
	release := make(chan struct{})
	// Deliberately ignores cancellation so the result arrives post-Stop.
	fetch := func(context.Context) ([]models.ServiceRequest, error) {
		<-release
		return []models.ServiceRequest{{ID: "svc-late"}}, nil
	}
	w := &Watcher{Fetch: fetch, Interval: time.Hour}

	w.Refresh()
	w.Stop()
	close(release)

	assert.Never(t, func() bool {
		_, ok := w.Snapshot()
		return ok
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestWatcherPollsOnInterval(t *testing.T) {
	var count int32
	fetch := func(context.Context) ([]models.ServiceRequest, error) {
		atomic.AddInt32(&count, 1)
		return nil, nil
	}
	w := &Watcher{Fetch: fetch, Interval: 10 * time.Millisecond}
	w.Start()
	defer w.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&count) >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestWatcherSnapshotBeforeFirstRefresh(t *testing.T) {
	w := &Watcher{Fetch: func(context.Context) ([]models.ServiceRequest, error) { return nil, nil }}
	_, ok := w.Snapshot()
	assert.False(t, ok)
}
