package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fillRequestRepo "helpr/database/repository/fillrequest"
	serviceRepo "helpr/database/repository/service"
	"helpr/models"
)

// Partial fakes: only the methods the feed touches are implemented; anything
// else panics through the embedded nil interface.

type fakeServiceRepo struct {
	serviceRepo.ServiceRepository
	mu   sync.Mutex
	open []models.ServiceRequest
	err  error
}

func (f *fakeServiceRepo) ListOpen(context.Context) ([]models.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.ServiceRequest, len(f.open))
	copy(out, f.open)
	return out, nil
}

func (f *fakeServiceRepo) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeFillRepo struct {
	fillRequestRepo.FillRequestRepository
	byProvider map[string][]models.ServiceFillRequest
	err        error
}

func (f *fakeFillRepo) ListByProvider(_ context.Context, providerID string) ([]models.ServiceFillRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byProvider[providerID], nil
}

type fakeCache struct {
	mu     sync.Mutex
	stored []models.ServiceRequest
	has    bool
	err    error
}

func (c *fakeCache) Save(_ context.Context, items []models.ServiceRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = items
	c.has = true
	return nil
}

func (c *fakeCache) Load(context.Context) ([]models.ServiceRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	if !c.has {
		return nil, nil
	}
	return c.stored, nil
}

func at(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}

func TestSortOpenJobs(t *testing.T) {
	base := time.Now()
	items := []models.ServiceRequest{
		{ID: "sched-late", SchedulingType: models.SchedulingScheduled, ScheduledAt: at(2 * time.Hour), CreatedAt: base},
		{ID: "asap-new", SchedulingType: models.SchedulingASAP, CreatedAt: base.Add(10 * time.Minute)},
		{ID: "sched-soon", SchedulingType: models.SchedulingScheduled, ScheduledAt: at(time.Hour), CreatedAt: base.Add(20 * time.Minute)},
		{ID: "asap-old", SchedulingType: models.SchedulingASAP, CreatedAt: base},
		// Scheduled rows that lost their time behave like ASAP work.
		{ID: "sched-broken", SchedulingType: models.SchedulingScheduled, CreatedAt: base.Add(5 * time.Minute)},
	}

	sortOpenJobs(items)

	got := make([]string, len(items))
	for i, it := range items {
		got[i] = it.ID
	}
	assert.Equal(t, []string{"asap-old", "sched-broken", "asap-new", "sched-soon", "sched-late"}, got)
}

func TestOpenJobsDecoratesOwnOffers(t *testing.T) {
	repo := &fakeServiceRepo{open: []models.ServiceRequest{{ID: "svc-1"}, {ID: "svc-2"}}}
	fills := &fakeFillRepo{byProvider: map[string][]models.ServiceFillRequest{
		"p1": {{ID: "fr-1", ServiceID: "svc-1", ProviderID: "p1", BidAmount: 80}},
	}}
	svc := &DefaultFeedService{Repo: repo, FillRepo: fills}

	items, err := svc.OpenJobs(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].MyBid)
	assert.Equal(t, 80.0, items[0].MyBid.BidAmount)
	assert.Nil(t, items[1].MyBid)

	// Anonymous reads get the plain feed.
	items, err = svc.OpenJobs(context.Background(), "")
	require.NoError(t, err)
	for _, it := range items {
		assert.Nil(t, it.MyBid)
	}
}

func TestOpenJobsDegradesWhenOffersUnavailable(t *testing.T) {
	repo := &fakeServiceRepo{open: []models.ServiceRequest{{ID: "svc-1"}}}
	fills := &fakeFillRepo{err: errors.New("down")}
	svc := &DefaultFeedService{Repo: repo, FillRepo: fills}

	items, err := svc.OpenJobs(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].MyBid)
}

func TestOpenJobsFallsBackToCache(t *testing.T) {
	repo := &fakeServiceRepo{err: errors.New("store down")}
	cache := &fakeCache{stored: []models.ServiceRequest{{ID: "svc-9"}}, has: true}
	svc := &DefaultFeedService{Repo: repo, Cache: cache}

	items, err := svc.OpenJobs(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "svc-9", items[0].ID)
}

func TestOpenJobsStoreFailureIsTransient(t *testing.T) {
	repo := &fakeServiceRepo{err: errors.New("store down")}
	svc := &DefaultFeedService{Repo: repo}

	_, err := svc.OpenJobs(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestOpenJobsWarmsCache(t *testing.T) {
	repo := &fakeServiceRepo{open: []models.ServiceRequest{{ID: "svc-1"}}}
	cache := &fakeCache{}
	svc := &DefaultFeedService{Repo: repo, Cache: cache}

	_, err := svc.OpenJobs(context.Background(), "")
	require.NoError(t, err)
	cached, err := cache.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "svc-1", cached[0].ID)
}

func TestOpenJobsServesWatcherSnapshot(t *testing.T) {
	repo := &fakeServiceRepo{open: []models.ServiceRequest{{ID: "svc-1"}}}
	svc := &DefaultFeedService{Repo: repo}
	w := svc.StartWatcher(time.Hour)
	defer w.Stop()

	require.Eventually(t, func() bool {
		items, err := svc.OpenJobs(context.Background(), "")
		return err == nil && len(items) == 1
	}, time.Second, 5*time.Millisecond)

	// Store goes away; the snapshot keeps serving.
	repo.setErr(errors.New("store down"))
	items, err := svc.OpenJobs(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "svc-1", items[0].ID)
}
