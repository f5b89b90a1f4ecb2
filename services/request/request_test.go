package request

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fillRequestRepo "helpr/database/repository/fillrequest"
	providerRepo "helpr/database/repository/provider"
	serviceRepo "helpr/database/repository/service"
	"helpr/models"
	"helpr/services/lifecycle"
)

// --- in-memory fakes ---

type fakeServiceRepo struct {
	mu   sync.Mutex
	rows map[string]models.ServiceRequest
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
	now := time.Now()
	svc.CreatedAt = now
	svc.UpdatedAt = now
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
	row.StartLocation = svc.StartLocation
	row.EndLocation = svc.EndLocation
	row.SchedulingType = svc.SchedulingType
	row.ScheduledAt = svc.ScheduledAt
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

type fakeFillRepo struct {
	mu   sync.Mutex
	rows map[string]models.ServiceFillRequest // key: serviceID/providerID
}

var _ fillRequestRepo.FillRequestRepository = (*fakeFillRepo)(nil)

func newFakeFillRepo() *fakeFillRepo {
	return &fakeFillRepo{rows: make(map[string]models.ServiceFillRequest)}
}

func (f *fakeFillRepo) Upsert(_ context.Context, fr *models.ServiceFillRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fr.ServiceID + "/" + fr.ProviderID
	if existing, ok := f.rows[key]; ok {
		existing.BidAmount = fr.BidAmount
		f.rows[key] = existing
		return nil
	}
	f.rows[key] = *fr
	return nil
}

func (f *fakeFillRepo) Get(_ context.Context, serviceID, providerID string) (*models.ServiceFillRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[serviceID+"/"+providerID]
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
	for _, row := range f.rows {
		if row.ServiceID == serviceID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeFillRepo) ListByProvider(_ context.Context, providerID string) ([]models.ServiceFillRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ServiceFillRequest
	for _, row := range f.rows {
		if row.ProviderID == providerID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeFillRepo) Delete(_ context.Context, serviceID, providerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := serviceID + "/" + providerID
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

type fakeProviderRepo struct {
	mu        sync.Mutex
	completed map[string]int
}

var _ providerRepo.ProviderRepository = (*fakeProviderRepo)(nil)

func newFakeProviderRepo() *fakeProviderRepo {
	return &fakeProviderRepo{completed: make(map[string]int)}
}

func (f *fakeProviderRepo) GetByID(id string) (*models.Provider, error) {
	return &models.Provider{ID: id}, nil
}
func (f *fakeProviderRepo) ListByServiceType(string) ([]models.Provider, error) { return nil, nil }
func (f *fakeProviderRepo) Create(*models.Provider) error                       { return nil }
func (f *fakeProviderRepo) Update(*models.Provider) error                       { return nil }
func (f *fakeProviderRepo) UpdateFCMToken(string, string) error                 { return nil }
func (f *fakeProviderRepo) Delete(string) error                                 { return nil }

func (f *fakeProviderRepo) IncrementCompletedJobs(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[id]++
	return nil
}

func (f *fakeProviderRepo) completedJobs(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed[id]
}

// --- tests ---

func newRequestService(svcRepo *fakeServiceRepo, fillRepo *fakeFillRepo, provRepo *fakeProviderRepo) *DefaultRequestService {
	return &DefaultRequestService{Repo: svcRepo, FillRepo: fillRepo, ProviderRepo: provRepo}
}

func confirmedService(id, customerID, providerID string) models.ServiceRequest {
	return models.ServiceRequest{
		ID:                 id,
		CustomerID:         customerID,
		ServiceType:        "Moving",
		Status:             models.StatusConfirmed,
		AssignedProviderID: providerID,
	}
}

func TestCreateRequestForcesLifecycleFields(t *testing.T) {
	svc := newRequestService(newFakeServiceRepo(), newFakeFillRepo(), newFakeProviderRepo())

	// A hostile payload claims to be mid-lifecycle already.
	created, err := svc.CreateRequest(context.Background(), &models.ServiceRequest{
		CustomerID:         "cust-1",
		ServiceType:        "Moving",
		Status:             models.StatusCompleted,
		AssignedProviderID: "p1",
		StartLocation:      models.Location{Address: "12 Main St"},
		Price:              80,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusFindingPros, created.Status)
	assert.Empty(t, created.AssignedProviderID)
	assert.Equal(t, models.SchedulingASAP, created.SchedulingType)
}

func TestCreateRequestValidation(t *testing.T) {
	svc := newRequestService(newFakeServiceRepo(), newFakeFillRepo(), newFakeProviderRepo())
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name string
		in   models.ServiceRequest
	}{
		{"missing customer", models.ServiceRequest{ServiceType: "Moving", StartLocation: models.Location{Address: "x"}}},
		{"missing service type", models.ServiceRequest{CustomerID: "c", StartLocation: models.Location{Address: "x"}}},
		{"missing start location", models.ServiceRequest{CustomerID: "c", ServiceType: "Moving"}},
		{"negative price", models.ServiceRequest{CustomerID: "c", ServiceType: "Moving", StartLocation: models.Location{Address: "x"}, Price: -5}},
		{"scheduled without time", models.ServiceRequest{CustomerID: "c", ServiceType: "Moving", StartLocation: models.Location{Address: "x"}, SchedulingType: models.SchedulingScheduled}},
		{"scheduled in the past", models.ServiceRequest{CustomerID: "c", ServiceType: "Moving", StartLocation: models.Location{Address: "x"}, SchedulingType: models.SchedulingScheduled, ScheduledAt: &past}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			_, err := svc.CreateRequest(ctx, &in)
			assert.Error(t, err)
		})
	}
}

func TestAdvanceStatusFullChain(t *testing.T) {
	svcRepo := newFakeServiceRepo(confirmedService("svc-1", "cust-1", "p1"))
	provRepo := newFakeProviderRepo()
	svc := newRequestService(svcRepo, newFakeFillRepo(), provRepo)
	ctx := context.Background()

	out, err := svc.AdvanceStatus(ctx, "svc-1", "p1", models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusHelprOTW, out.Status)

	out, err = svc.AdvanceStatus(ctx, "svc-1", "p1", models.StatusHelprOTW)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, out.Status)

	// A different provider can never advance this job.
	_, err = svc.AdvanceStatus(ctx, "svc-1", "p2", models.StatusInProgress)
	require.Error(t, err)
	assert.True(t, lifecycle.IsNotAssignedProvider(err))

	out, err = svc.AdvanceStatus(ctx, "svc-1", "p1", models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, out.Status)
	assert.Equal(t, "p1", out.AssignedProviderID)
	assert.Equal(t, 1, provRepo.completedJobs("p1"))

	_, err = svc.AdvanceStatus(ctx, "svc-1", "p1", models.StatusCompleted)
	require.Error(t, err)
	assert.True(t, lifecycle.IsTerminalState(err))
}

func TestAdvanceStatusDuplicateIsIdempotent(t *testing.T) {
	svcRepo := newFakeServiceRepo(confirmedService("svc-1", "cust-1", "p1"))
	svc := newRequestService(svcRepo, newFakeFillRepo(), newFakeProviderRepo())
	ctx := context.Background()

	_, err := svc.AdvanceStatus(ctx, "svc-1", "p1", models.StatusConfirmed)
	require.NoError(t, err)

	// The client never saw the first response and retries with the same
	// expected status. The store refuses the write, but the advance it
	// wanted already happened.
	out, err := svc.AdvanceStatus(ctx, "svc-1", "p1", models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusHelprOTW, out.Status)
}

func TestAdvanceStatusStaleExpectedStatus(t *testing.T) {
	svcRepo := newFakeServiceRepo(confirmedService("svc-1", "cust-1", "p1"))
	svc := newRequestService(svcRepo, newFakeFillRepo(), newFakeProviderRepo())
	ctx := context.Background()

	_, err := svc.AdvanceStatus(ctx, "svc-1", "p1", models.StatusConfirmed)
	require.NoError(t, err)
	_, err = svc.AdvanceStatus(ctx, "svc-1", "p1", models.StatusHelprOTW)
	require.NoError(t, err)

	// Two steps behind: not a duplicate of the last advance, and not a
	// lifecycle violation either. The caller must refresh and retry.
	_, err = svc.AdvanceStatus(ctx, "svc-1", "p1", models.StatusConfirmed)
	assert.ErrorIs(t, err, serviceRepo.ErrStatusConflict)
}

func TestAdvanceStatusUnknownService(t *testing.T) {
	svc := newRequestService(newFakeServiceRepo(), newFakeFillRepo(), newFakeProviderRepo())

	_, err := svc.AdvanceStatus(context.Background(), "nope", "p1", "")
	assert.ErrorIs(t, err, serviceRepo.ErrNotFound)
}

func TestCancelAssignmentReopensJob(t *testing.T) {
	svcRepo := newFakeServiceRepo(confirmedService("svc-1", "cust-1", "p1"))
	fillRepo := newFakeFillRepo()
	// A leftover offer row from before acceptance must not resurface.
	require.NoError(t, fillRepo.Upsert(context.Background(), &models.ServiceFillRequest{
		ID: "fr-1", ServiceID: "svc-1", ProviderID: "p1", BidAmount: 100,
	}))
	svc := newRequestService(svcRepo, fillRepo, newFakeProviderRepo())

	out, err := svc.CancelAssignment(context.Background(), "svc-1", "p1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusFindingPros, out.Status)
	assert.Empty(t, out.AssignedProviderID)
	_, err = fillRepo.Get(context.Background(), "svc-1", "p1")
	assert.ErrorIs(t, err, fillRequestRepo.ErrNotFound)
}

func TestCancelAssignmentRejections(t *testing.T) {
	started := confirmedService("svc-2", "cust-1", "p1")
	started.Status = models.StatusHelprOTW
	svcRepo := newFakeServiceRepo(confirmedService("svc-1", "cust-1", "p1"), started)
	svc := newRequestService(svcRepo, newFakeFillRepo(), newFakeProviderRepo())
	ctx := context.Background()

	// Wrong provider.
	_, err := svc.CancelAssignment(ctx, "svc-1", "p2")
	require.Error(t, err)
	assert.True(t, lifecycle.IsInvalidCancellation(err))

	// Work already started.
	_, err = svc.CancelAssignment(ctx, "svc-2", "p1")
	require.Error(t, err)
	assert.True(t, lifecycle.IsInvalidCancellation(err))
}

func TestUpdateDetailsOnlyWhileOpen(t *testing.T) {
	open := models.ServiceRequest{
		ID: "svc-1", CustomerID: "cust-1", ServiceType: "Moving",
		Status: models.StatusFindingPros, Price: 80,
		StartLocation: models.Location{Address: "12 Main St"},
	}
	svcRepo := newFakeServiceRepo(open, confirmedService("svc-2", "cust-1", "p1"))
	svc := newRequestService(svcRepo, newFakeFillRepo(), newFakeProviderRepo())
	ctx := context.Background()

	updated, err := svc.UpdateDetails(ctx, "cust-1", models.ServiceRequest{
		ID: "svc-1", Description: "three heavy couches", Price: 120,
	})
	require.NoError(t, err)
	assert.Equal(t, "three heavy couches", updated.Description)
	assert.Equal(t, 120.0, updated.Price)
	assert.Equal(t, "Moving", updated.ServiceType, "unset fields keep their values")

	_, err = svc.UpdateDetails(ctx, "cust-2", models.ServiceRequest{ID: "svc-1", Price: 1})
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.UpdateDetails(ctx, "cust-1", models.ServiceRequest{ID: "svc-2", Price: 1})
	assert.ErrorIs(t, err, serviceRepo.ErrStatusConflict)
}

func TestDeleteRequestSweepsOffers(t *testing.T) {
	open := models.ServiceRequest{
		ID: "svc-1", CustomerID: "cust-1", ServiceType: "Moving",
		Status: models.StatusFindingPros,
	}
	svcRepo := newFakeServiceRepo(open, confirmedService("svc-2", "cust-1", "p1"))
	fillRepo := newFakeFillRepo()
	ctx := context.Background()
	for _, p := range []string{"p1", "p2"} {
		require.NoError(t, fillRepo.Upsert(ctx, &models.ServiceFillRequest{
			ID: "fr-" + p, ServiceID: "svc-1", ProviderID: p, BidAmount: 50,
		}))
	}
	svc := newRequestService(svcRepo, fillRepo, newFakeProviderRepo())

	require.NoError(t, svc.DeleteRequest(ctx, "cust-1", "svc-1"))
	_, err := svc.GetRequest(ctx, "svc-1")
	assert.ErrorIs(t, err, serviceRepo.ErrNotFound)
	left, err := fillRepo.ListByService(ctx, "svc-1")
	require.NoError(t, err)
	assert.Empty(t, left)

	// Confirmed jobs cannot be deleted out from under the provider.
	err = svc.DeleteRequest(ctx, "cust-1", "svc-2")
	assert.ErrorIs(t, err, serviceRepo.ErrStatusConflict)
}

type fakeGeocoder struct {
	known map[string]*models.GeoPoint
	calls int
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (*models.GeoPoint, error) {
	g.calls++
	if geo, ok := g.known[address]; ok {
		return geo, nil
	}
	return nil, errors.New("address not found")
}

func TestCreateRequestGeocodesAddresses(t *testing.T) {
	geo := &fakeGeocoder{known: map[string]*models.GeoPoint{
		"12 Main St": models.NewGeoPoint(36.82, -1.29),
	}}
	svc := newRequestService(newFakeServiceRepo(), newFakeFillRepo(), newFakeProviderRepo())
	svc.Geocoder = geo

	created, err := svc.CreateRequest(context.Background(), &models.ServiceRequest{
		CustomerID:    "cust-1",
		ServiceType:   "Moving",
		StartLocation: models.Location{Address: "12 Main St"},
		EndLocation:   models.Location{Address: "nowhere, really"},
		Price:         80,
	})
	require.NoError(t, err)

	require.NotNil(t, created.StartLocation.Geo)
	assert.Equal(t, []float64{36.82, -1.29}, created.StartLocation.Geo.Coordinates)
	// The end address did not resolve; creation goes through regardless.
	assert.Nil(t, created.EndLocation.Geo)
	assert.Equal(t, 2, geo.calls)
}

func TestCreateRequestKeepsClientCoordinates(t *testing.T) {
	geo := &fakeGeocoder{known: map[string]*models.GeoPoint{}}
	svc := newRequestService(newFakeServiceRepo(), newFakeFillRepo(), newFakeProviderRepo())
	svc.Geocoder = geo

	created, err := svc.CreateRequest(context.Background(), &models.ServiceRequest{
		CustomerID:    "cust-1",
		ServiceType:   "Moving",
		StartLocation: models.Location{Address: "12 Main St", Geo: models.NewGeoPoint(1, 2)},
		Price:         80,
	})
	require.NoError(t, err)

	// Already-resolved locations are not re-geocoded.
	assert.Equal(t, 0, geo.calls)
	assert.Equal(t, []float64{1, 2}, created.StartLocation.Geo.Coordinates)
}
