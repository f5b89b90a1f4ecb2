package serviceRepo

import (
	"context"
	"fmt"
	"time"

	"helpr/models"

	"go.mongodb.org/mongo-driver/bson"
)

// The conditional updates below carry their lifecycle preconditions in the
// filter itself, so a stale caller can never overwrite a row that has already
// moved on. MatchedCount == 0 means the precondition failed on the server,
// regardless of how many backends race on the same row.

// AssignProvider moves an open request to confirmed with the given provider.
func (r *MongoServiceRepo) AssignProvider(ctx context.Context, serviceID, providerID string) error {
	filter := bson.M{
		"id":     serviceID,
		"status": models.StatusFindingPros,
	}
	update := bson.M{"$set": bson.M{
		"status":               models.StatusConfirmed,
		"assigned_provider_id": providerID,
		"updated_at":           time.Now(),
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to assign provider to service request %s: %w", serviceID, err)
	}
	if result.MatchedCount == 0 {
		return r.classifyMiss(ctx, serviceID)
	}
	return nil
}

// AdvanceStatus moves a request from one status to the next on behalf of its
// assigned provider.
func (r *MongoServiceRepo) AdvanceStatus(ctx context.Context, serviceID, providerID string, from, to models.ServiceStatus) error {
	filter := bson.M{
		"id":                   serviceID,
		"status":               models.NormalizeStatus(from),
		"assigned_provider_id": providerID,
	}
	update := bson.M{"$set": bson.M{
		"status":     models.NormalizeStatus(to),
		"updated_at": time.Now(),
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to advance service request %s: %w", serviceID, err)
	}
	if result.MatchedCount == 0 {
		return r.classifyMiss(ctx, serviceID)
	}
	return nil
}

// ClearAssignment releases a confirmed request back to the open pool.
func (r *MongoServiceRepo) ClearAssignment(ctx context.Context, serviceID, providerID string) error {
	filter := bson.M{
		"id":                   serviceID,
		"status":               models.StatusConfirmed,
		"assigned_provider_id": providerID,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     models.StatusFindingPros,
			"updated_at": time.Now(),
		},
		"$unset": bson.M{"assigned_provider_id": ""},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to clear assignment on service request %s: %w", serviceID, err)
	}
	if result.MatchedCount == 0 {
		return r.classifyMiss(ctx, serviceID)
	}
	return nil
}
