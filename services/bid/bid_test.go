package bid

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fillRequestRepo "helpr/database/repository/fillrequest"
	serviceRepo "helpr/database/repository/service"
	"helpr/models"
)

// --- in-memory fakes ---

type fakeServiceRepo struct {
	mu        sync.Mutex
	rows      map[string]models.ServiceRequest
	assignErr error // overrides AssignProvider when set
}

var _ serviceRepo.ServiceRepository = (*fakeServiceRepo)(nil)

func newFakeServiceRepo(rows ...models.ServiceRequest) *fakeServiceRepo {
	f := &fakeServiceRepo{rows: make(map[string]models.ServiceRequest)}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeServiceRepo) Create(_ context.Context, svc *models.ServiceRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	svc.Status = models.NormalizeStatus(svc.Status)
	f.rows[svc.ID] = *svc
	return nil
}

func (f *fakeServiceRepo) GetByID(_ context.Context, id string) (*models.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, serviceRepo.ErrNotFound
	}
	row.Status = models.NormalizeStatus(row.Status)
	return &row, nil
}

func (f *fakeServiceRepo) ListOpen(_ context.Context) ([]models.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ServiceRequest
	for _, r := range f.rows {
		if r.Open() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeServiceRepo) ListByCustomer(_ context.Context, customerID string) ([]models.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ServiceRequest
	for _, r := range f.rows {
		if r.CustomerID == customerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeServiceRepo) ListByProvider(_ context.Context, providerID string) ([]models.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ServiceRequest
	for _, r := range f.rows {
		if r.AssignedProviderID == providerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeServiceRepo) UpdateDetails(_ context.Context, svc *models.ServiceRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[svc.ID]
	if !ok {
		return serviceRepo.ErrNotFound
	}
	if models.NormalizeStatus(row.Status) != models.StatusFindingPros {
		return serviceRepo.ErrStatusConflict
	}
	row.ServiceType = svc.ServiceType
	row.Description = svc.Description
	row.Price = svc.Price
	f.rows[svc.ID] = row
	return nil
}

func (f *fakeServiceRepo) DeleteOpen(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return serviceRepo.ErrNotFound
	}
	if models.NormalizeStatus(row.Status) != models.StatusFindingPros {
		return serviceRepo.ErrStatusConflict
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeServiceRepo) AssignProvider(_ context.Context, serviceID, providerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assignErr != nil {
		return f.assignErr
	}
	row, ok := f.rows[serviceID]
	if !ok {
		return serviceRepo.ErrNotFound
	}
	if models.NormalizeStatus(row.Status) != models.StatusFindingPros {
		return serviceRepo.ErrStatusConflict
	}
	row.Status = models.StatusConfirmed
	row.AssignedProviderID = providerID
	f.rows[serviceID] = row
	return nil
}

func (f *fakeServiceRepo) AdvanceStatus(_ context.Context, serviceID, providerID string, from, to models.ServiceStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[serviceID]
	if !ok {
		return serviceRepo.ErrNotFound
	}
	if models.NormalizeStatus(row.Status) != models.NormalizeStatus(from) || row.AssignedProviderID != providerID {
		return serviceRepo.ErrStatusConflict
	}
	row.Status = models.NormalizeStatus(to)
	f.rows[serviceID] = row
	return nil
}

func (f *fakeServiceRepo) ClearAssignment(_ context.Context, serviceID, providerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[serviceID]
	if !ok {
		return serviceRepo.ErrNotFound
	}
	if models.NormalizeStatus(row.Status) != models.StatusConfirmed || row.AssignedProviderID != providerID {
		return serviceRepo.ErrStatusConflict
	}
	row.Status = models.StatusFindingPros
	row.AssignedProviderID = ""
	f.rows[serviceID] = row
	return nil
}

func (f *fakeServiceRepo) Watch(_ context.Context) (<-chan models.ChangeEvent, error) {
	ch := make(chan models.ChangeEvent)
	close(ch)
	return ch, nil
}

// set force-writes a row, bypassing preconditions.
func (f *fakeServiceRepo) set(svc models.ServiceRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[svc.ID] = svc
}

type fakeFillRepo struct {
	mu       sync.Mutex
	rows     map[string]models.ServiceFillRequest // key: serviceID/providerID
	order    []string
	onUpsert func() // runs after each upsert, before it returns
}

var _ fillRequestRepo.FillRequestRepository = (*fakeFillRepo)(nil)

func newFakeFillRepo() *fakeFillRepo {
	return &fakeFillRepo{rows: make(map[string]models.ServiceFillRequest)}
}

func fillKey(serviceID, providerID string) string {
	return serviceID + "/" + providerID
}

func (f *fakeFillRepo) Upsert(_ context.Context, fr *models.ServiceFillRequest) error {
	f.mu.Lock()
	key := fillKey(fr.ServiceID, fr.ProviderID)
	if existing, ok := f.rows[key]; ok {
		existing.BidAmount = fr.BidAmount
		f.rows[key] = existing
	} else {
		f.rows[key] = *fr
		f.order = append(f.order, key)
	}
	hook := f.onUpsert
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (f *fakeFillRepo) Get(_ context.Context, serviceID, providerID string) (*models.ServiceFillRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[fillKey(serviceID, providerID)]
	if !ok {
		return nil, fillRequestRepo.ErrNotFound
	}
	return &row, nil
}

func (f *fakeFillRepo) GetByID(_ context.Context, id string) (*models.ServiceFillRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ID == id {
			r := row
			return &r, nil
		}
	}
	return nil, fillRequestRepo.ErrNotFound
}

func (f *fakeFillRepo) ListByService(_ context.Context, serviceID string) ([]models.ServiceFillRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ServiceFillRequest
	for _, key := range f.order {
		row, ok := f.rows[key]
		if ok && row.ServiceID == serviceID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeFillRepo) ListByProvider(_ context.Context, providerID string) ([]models.ServiceFillRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ServiceFillRequest
	for _, key := range f.order {
		row, ok := f.rows[key]
		if ok && row.ProviderID == providerID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeFillRepo) Delete(_ context.Context, serviceID, providerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fillKey(serviceID, providerID)
	if _, ok := f.rows[key]; !ok {
		return false, nil
	}
	delete(f.rows, key)
	return true, nil
}

func (f *fakeFillRepo) DeleteByService(_ context.Context, serviceID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for key, row := range f.rows {
		if row.ServiceID == serviceID {
			delete(f.rows, key)
			n++
		}
	}
	return n, nil
}

func (f *fakeFillRepo) Watch(_ context.Context) (<-chan models.ChangeEvent, error) {
	ch := make(chan models.ChangeEvent)
	close(ch)
	return ch, nil
}

func (f *fakeFillRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// --- tests ---

func openService(id, customerID string) models.ServiceRequest {
	return models.ServiceRequest{
		ID:          id,
		CustomerID:  customerID,
		ServiceType: "Moving",
		Status:      models.StatusFindingPros,
	}
}

func newBidService(svcRepo *fakeServiceRepo, fillRepo *fakeFillRepo) *DefaultBidService {
	return &DefaultBidService{ServiceRepo: svcRepo, FillRepo: fillRepo}
}

func TestPlaceBidRejectsBadAmounts(t *testing.T) {
	svc := newBidService(newFakeServiceRepo(openService("svc-1", "cust-1")), newFakeFillRepo())

	for _, amount := range []float64{0, -25, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := svc.PlaceBid(context.Background(), "svc-1", "p1", amount)
		require.Error(t, err, "amount %v", amount)
		assert.True(t, IsInvalidAmount(err), "amount %v should be invalid", amount)
	}
}

func TestPlaceBidOnMissingService(t *testing.T) {
	svc := newBidService(newFakeServiceRepo(), newFakeFillRepo())

	_, err := svc.PlaceBid(context.Background(), "nope", "p1", 100)
	require.Error(t, err)
	assert.True(t, IsServiceNotOpen(err))
}

func TestPlaceBidOnConfirmedService(t *testing.T) {
	confirmed := openService("svc-1", "cust-1")
	confirmed.Status = models.StatusConfirmed
	confirmed.AssignedProviderID = "p9"
	svc := newBidService(newFakeServiceRepo(confirmed), newFakeFillRepo())

	_, err := svc.PlaceBid(context.Background(), "svc-1", "p1", 100)
	require.Error(t, err)
	assert.True(t, IsServiceNotOpen(err))
}

func TestPlaceBidReplacesPreviousOffer(t *testing.T) {
	fillRepo := newFakeFillRepo()
	svc := newBidService(newFakeServiceRepo(openService("svc-1", "cust-1")), fillRepo)
	ctx := context.Background()

	first, err := svc.PlaceBid(ctx, "svc-1", "p1", 120)
	require.NoError(t, err)

	second, err := svc.PlaceBid(ctx, "svc-1", "p1", 95)
	require.NoError(t, err)

	// Still exactly one row for the pair, identity preserved from the
	// first placement, only the amount moved.
	assert.Equal(t, 1, fillRepo.count())
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, 95.0, second.BidAmount)
}

func TestPlaceBidRolledBackWhenServiceCloses(t *testing.T) {
	svcRepo := newFakeServiceRepo(openService("svc-1", "cust-1"))
	fillRepo := newFakeFillRepo()
	// Simulate an acceptance landing between the open check and the write.
	fillRepo.onUpsert = func() {
		confirmed := openService("svc-1", "cust-1")
		confirmed.Status = models.StatusConfirmed
		confirmed.AssignedProviderID = "p9"
		svcRepo.set(confirmed)
	}
	svc := newBidService(svcRepo, fillRepo)

	_, err := svc.PlaceBid(context.Background(), "svc-1", "p1", 100)
	require.Error(t, err)
	assert.True(t, IsServiceNotOpen(err))
	assert.Equal(t, 0, fillRepo.count(), "late bid must not survive")
}

func TestWithdrawBidIsIdempotent(t *testing.T) {
	fillRepo := newFakeFillRepo()
	svc := newBidService(newFakeServiceRepo(openService("svc-1", "cust-1")), fillRepo)
	ctx := context.Background()

	_, err := svc.PlaceBid(ctx, "svc-1", "p1", 100)
	require.NoError(t, err)

	require.NoError(t, svc.WithdrawBid(ctx, "svc-1", "p1"))
	assert.Equal(t, 0, fillRepo.count())

	// Withdrawing again, or withdrawing something never placed, succeeds.
	require.NoError(t, svc.WithdrawBid(ctx, "svc-1", "p1"))
	require.NoError(t, svc.WithdrawBid(ctx, "svc-1", "p2"))
}

func TestAcceptBidConfirmsAndSweepsAllOffers(t *testing.T) {
	svcRepo := newFakeServiceRepo(openService("svc-1", "cust-1"))
	fillRepo := newFakeFillRepo()
	svc := newBidService(svcRepo, fillRepo)
	ctx := context.Background()

	_, err := svc.PlaceBid(ctx, "svc-1", "p1", 120)
	require.NoError(t, err)
	_, err = svc.PlaceBid(ctx, "svc-1", "p2", 95)
	require.NoError(t, err)

	confirmed, err := svc.AcceptBid(ctx, "svc-1", "cust-1", "p2")
	require.NoError(t, err)

	assert.Equal(t, models.StatusConfirmed, confirmed.Status)
	assert.Equal(t, "p2", confirmed.AssignedProviderID)
	// Both offers are gone, the accepted one included.
	assert.Equal(t, 0, fillRepo.count())

	own, err := svc.ListByProvider(ctx, "p2")
	require.NoError(t, err)
	assert.Empty(t, own, "winner keeps no outstanding offer rows")
}

func TestAcceptBidWithoutOffer(t *testing.T) {
	svc := newBidService(newFakeServiceRepo(openService("svc-1", "cust-1")), newFakeFillRepo())

	_, err := svc.AcceptBid(context.Background(), "svc-1", "cust-1", "p1")
	require.Error(t, err)
	assert.True(t, IsBidNotFound(err))
}

func TestAcceptBidByWrongCustomer(t *testing.T) {
	fillRepo := newFakeFillRepo()
	svc := newBidService(newFakeServiceRepo(openService("svc-1", "cust-1")), fillRepo)
	ctx := context.Background()

	_, err := svc.PlaceBid(ctx, "svc-1", "p1", 100)
	require.NoError(t, err)

	_, err = svc.AcceptBid(ctx, "svc-1", "cust-2", "p1")
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, 1, fillRepo.count(), "offers untouched on rejected accept")
}

func TestAcceptBidLosesStoreRace(t *testing.T) {
	svcRepo := newFakeServiceRepo(openService("svc-1", "cust-1"))
	fillRepo := newFakeFillRepo()
	svc := newBidService(svcRepo, fillRepo)
	ctx := context.Background()

	_, err := svc.PlaceBid(ctx, "svc-1", "p1", 100)
	require.NoError(t, err)

	// The local read said open, but the store says someone else won.
	svcRepo.assignErr = serviceRepo.ErrStatusConflict

	_, err = svc.AcceptBid(ctx, "svc-1", "cust-1", "p1")
	require.Error(t, err)
	assert.True(t, IsServiceNotOpen(err))
}

func TestAcceptBidOnAlreadyConfirmedService(t *testing.T) {
	svcRepo := newFakeServiceRepo(openService("svc-1", "cust-1"))
	fillRepo := newFakeFillRepo()
	svc := newBidService(svcRepo, fillRepo)
	ctx := context.Background()

	_, err := svc.PlaceBid(ctx, "svc-1", "p1", 120)
	require.NoError(t, err)
	_, err = svc.PlaceBid(ctx, "svc-1", "p2", 95)
	require.NoError(t, err)

	_, err = svc.AcceptBid(ctx, "svc-1", "cust-1", "p2")
	require.NoError(t, err)

	// The second acceptance arrives after the sweep: the service is no
	// longer open, so the stale accept fails cleanly.
	_, err = svc.AcceptBid(ctx, "svc-1", "cust-1", "p1")
	require.Error(t, err)
	assert.True(t, IsServiceNotOpen(err))
}

func TestListByServiceRequiresOwnership(t *testing.T) {
	svc := newBidService(newFakeServiceRepo(openService("svc-1", "cust-1")), newFakeFillRepo())
	ctx := context.Background()

	_, err := svc.PlaceBid(ctx, "svc-1", "p1", 100)
	require.NoError(t, err)

	_, err = svc.ListByService(ctx, "svc-1", "cust-2")
	assert.ErrorIs(t, err, ErrNotOwner)

	bids, err := svc.ListByService(ctx, "svc-1", "cust-1")
	require.NoError(t, err)
	assert.Len(t, bids, 1)
}
