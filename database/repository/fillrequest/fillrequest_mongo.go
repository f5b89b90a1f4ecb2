package fillRequestRepo

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

// MongoFillRequestRepo implements FillRequestRepository using MongoDB.
type MongoFillRequestRepo struct {
	coll *mongo.Collection
}

// NewMongoFillRequestRepo creates a new instance of FillRequestRepository
// using MongoDB.
func NewMongoFillRequestRepo() FillRequestRepository {
	coll := database.MongoClient.Database("helpr").Collection("service_fill_requests")
	repo := &MongoFillRequestRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// ensureIndexes creates the uniqueness and lookup indexes. The unique
// compound index is what actually guarantees one bid per (service, provider)
// pair even when two backends upsert at once.
func (r *MongoFillRequestRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "service_id", Value: 1}, {Key: "provider_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Upsert inserts or replaces the provider's bid on a service. The filter
// fields seed the new document on insert; id and created_at stick from the
// first insert, so re-bidding only moves the amount.
func (r *MongoFillRequestRepo) Upsert(ctx context.Context, fr *models.ServiceFillRequest) error {
	filter := bson.M{"service_id": fr.ServiceID, "provider_id": fr.ProviderID}
	update := bson.M{
		"$set":         bson.M{"bid_amount": fr.BidAmount},
		"$setOnInsert": bson.M{"id": fr.ID, "created_at": fr.CreatedAt},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.coll.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// Two concurrent first bids raced on the unique index; the row now
		// exists, so the second attempt takes the update path.
		_, err = r.coll.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert fill request for service %s: %w", fr.ServiceID, err)
	}
	return nil
}

// Get retrieves the bid for the given (service, provider) pair.
func (r *MongoFillRequestRepo) Get(ctx context.Context, serviceID, providerID string) (*models.ServiceFillRequest, error) {
	filter := bson.M{"service_id": serviceID, "provider_id": providerID}

	var fr models.ServiceFillRequest
	if err := r.coll.FindOne(ctx, filter).Decode(&fr); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch fill request for service %s: %w", serviceID, err)
	}
	return &fr, nil
}

// GetByID retrieves a bid by its row ID.
func (r *MongoFillRequestRepo) GetByID(ctx context.Context, id string) (*models.ServiceFillRequest, error) {
	var fr models.ServiceFillRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&fr); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch fill request %s: %w", id, err)
	}
	return &fr, nil
}

// ListByService retrieves all bids on a service in arrival order.
func (r *MongoFillRequestRepo) ListByService(ctx context.Context, serviceID string) ([]models.ServiceFillRequest, error) {
	filter := bson.M{"service_id": serviceID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.list(ctx, filter, opts)
}

// ListByProvider retrieves all bids a provider has outstanding, newest first.
func (r *MongoFillRequestRepo) ListByProvider(ctx context.Context, providerID string) ([]models.ServiceFillRequest, error) {
	filter := bson.M{"provider_id": providerID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.list(ctx, filter, opts)
}

func (r *MongoFillRequestRepo) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.ServiceFillRequest, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve fill requests: %w", err)
	}
	defer cursor.Close(ctx)

	var frs []models.ServiceFillRequest
	if err := cursor.All(ctx, &frs); err != nil {
		return nil, fmt.Errorf("failed to decode fill requests: %w", err)
	}
	return frs, nil
}

// Delete removes the bid for the given pair, reporting whether one existed.
func (r *MongoFillRequestRepo) Delete(ctx context.Context, serviceID, providerID string) (bool, error) {
	filter := bson.M{"service_id": serviceID, "provider_id": providerID}

	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete fill request for service %s: %w", serviceID, err)
	}
	return result.DeletedCount > 0, nil
}

// DeleteByService removes every bid on a service.
func (r *MongoFillRequestRepo) DeleteByService(ctx context.Context, serviceID string) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{"service_id": serviceID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete fill requests for service %s: %w", serviceID, err)
	}
	return result.DeletedCount, nil
}

// Watch opens a change stream on the fill request collection and emits one
// ChangeEvent per row change until ctx is canceled.
func (r *MongoFillRequestRepo) Watch(ctx context.Context) (<-chan models.ChangeEvent, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}},
		}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := r.coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream on service_fill_requests: %w", err)
	}

	out := make(chan models.ChangeEvent, 32)
	go func() {
		defer close(out)
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = stream.Close(closeCtx)
		}()

		for stream.Next(ctx) {
			var doc struct {
				OperationType string `bson:"operationType"`
				FullDocument  struct {
					ID string `bson:"id"`
				} `bson:"fullDocument"`
			}
			if err := stream.Decode(&doc); err != nil {
				continue
			}
			ev := models.ChangeEvent{
				Table:     "service_fill_requests",
				Operation: mapOperation(doc.OperationType),
				RowID:     doc.FullDocument.ID,
			}
			select {
			case out <- ev:
			default:
			}
		}
	}()
	return out, nil
}

func mapOperation(op string) string {
	switch op {
	case "insert":
		return models.ChangeOpInsert
	case "delete":
		return models.ChangeOpDelete
	default:
		return models.ChangeOpUpdate
	}
}
