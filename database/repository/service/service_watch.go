package serviceRepo

import (
	"context"
	"fmt"
	"time"

	"helpr/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// changeDoc is the slice of a change-stream document we care about.
type changeDoc struct {
	OperationType string `bson:"operationType"`
	FullDocument  struct {
		ID string `bson:"id"`
	} `bson:"fullDocument"`
}

// Watch opens a change stream on the services collection and emits one
// ChangeEvent per row change until ctx is canceled. Events identify the row
// at most; consumers re-read through the query path instead of trusting any
// event payload.
func (r *MongoServiceRepo) Watch(ctx context.Context) (<-chan models.ChangeEvent, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}},
		}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := r.coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream on services: %w", err)
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
			var doc changeDoc
			if err := stream.Decode(&doc); err != nil {
				continue
			}
			ev := models.ChangeEvent{
				Table:     "services",
				Operation: mapOperation(doc.OperationType),
				RowID:     doc.FullDocument.ID,
			}
			select {
			case out <- ev:
			default:
				// Buffer full: a queued event already forces the same
				// full re-read, so this one carries no extra information.
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
