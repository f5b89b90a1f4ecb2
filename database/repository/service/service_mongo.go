package serviceRepo

import (
	"context"
	"fmt"
	"time"

	"helpr/database"
	"helpr/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoServiceRepo implements ServiceRepository using MongoDB.
type MongoServiceRepo struct {
	coll *mongo.Collection
}

// NewMongoServiceRepo creates a new instance of ServiceRepository using MongoDB.
func NewMongoServiceRepo() ServiceRepository {
	coll := database.MongoClient.Database("helpr").Collection("services")
	repo := &MongoServiceRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoServiceRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "assigned_provider_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "scheduling_type", Value: 1}, {Key: "scheduled_at", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new service request document. The stored status is always
// canonical lower-case.
func (r *MongoServiceRepo) Create(ctx context.Context, svc *models.ServiceRequest) error {
	now := time.Now()
	svc.Status = models.NormalizeStatus(svc.Status)
	svc.CreatedAt = now
	svc.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, svc); err != nil {
		return fmt.Errorf("failed to create service request: %w", err)
	}
	return nil
}

// GetByID retrieves a service request by its unique ID.
func (r *MongoServiceRepo) GetByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	var svc models.ServiceRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&svc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch service request %s: %w", id, err)
	}
	svc.Status = models.NormalizeStatus(svc.Status)
	return &svc, nil
}

// ListOpen retrieves all requests still finding pros. ASAP jobs sort before
// scheduled ones because scheduled_at is unset on them; ties break on
// creation time, oldest first.
func (r *MongoServiceRepo) ListOpen(ctx context.Context) ([]models.ServiceRequest, error) {
	filter := bson.M{"status": models.StatusFindingPros}
	opts := options.Find().SetSort(bson.D{
		{Key: "scheduling_type", Value: 1},
		{Key: "scheduled_at", Value: 1},
		{Key: "created_at", Value: 1},
	})
	return r.list(ctx, filter, opts)
}

// ListByCustomer retrieves all requests created by the given customer.
func (r *MongoServiceRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.ServiceRequest, error) {
	filter := bson.M{"customer_id": customerID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.list(ctx, filter, opts)
}

// ListByProvider retrieves all requests assigned to the given provider.
func (r *MongoServiceRepo) ListByProvider(ctx context.Context, providerID string) ([]models.ServiceRequest, error) {
	filter := bson.M{"assigned_provider_id": providerID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.list(ctx, filter, opts)
}

func (r *MongoServiceRepo) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.ServiceRequest, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve service requests: %w", err)
	}
	defer cursor.Close(ctx)

	var svcs []models.ServiceRequest
	if err := cursor.All(ctx, &svcs); err != nil {
		return nil, fmt.Errorf("failed to decode service requests: %w", err)
	}
	for i := range svcs {
		svcs[i].Status = models.NormalizeStatus(svcs[i].Status)
	}
	return svcs, nil
}

// UpdateDetails rewrites the customer-editable fields. The request must still
// be finding pros; once a provider is confirmed the descriptive fields are
// frozen.
func (r *MongoServiceRepo) UpdateDetails(ctx context.Context, svc *models.ServiceRequest) error {
	filter := bson.M{"id": svc.ID, "status": models.StatusFindingPros}
	update := bson.M{"$set": bson.M{
		"service_type":    svc.ServiceType,
		"description":     svc.Description,
		"price":           svc.Price,
		"start_location":  svc.StartLocation,
		"end_location":    svc.EndLocation,
		"scheduling_type": svc.SchedulingType,
		"scheduled_at":    svc.ScheduledAt,
		"updated_at":      time.Now(),
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update service request %s: %w", svc.ID, err)
	}
	if result.MatchedCount == 0 {
		return r.classifyMiss(ctx, svc.ID)
	}
	return nil
}

// DeleteOpen removes a service request that is still finding pros. The
// status guard keeps a stale client from deleting a job a provider already
// holds.
func (r *MongoServiceRepo) DeleteOpen(ctx context.Context, id string) error {
	filter := bson.M{"id": id, "status": models.StatusFindingPros}
	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete service request %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return r.classifyMiss(ctx, id)
	}
	return nil
}

// classifyMiss distinguishes a missing row from a row that failed its status
// precondition, so callers get the right error from the conditional updates.
func (r *MongoServiceRepo) classifyMiss(ctx context.Context, id string) error {
	count, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to check service request %s: %w", id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStatusConflict
}
