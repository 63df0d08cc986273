package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/repositories"
)

// FleetRepository implements repositories.FleetRepository over the
// drones collection. Access is strictly read-only.
type FleetRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewFleetRepository creates a new fleet repository
func NewFleetRepository(db *DB, collection string, logger *zap.Logger) repositories.FleetRepository {
	return &FleetRepository{
		collection: db.Collection(collection),
		logger:     logger,
	}
}

// Find runs a filtered, projected read.
func (r *FleetRepository) Find(ctx context.Context, filter map[string]interface{}, projection map[string]bool) ([]map[string]interface{}, error) {
	if filter == nil {
		filter = map[string]interface{}{}
	}

	opts := options.Find()
	if len(projection) > 0 {
		proj := bson.M{}
		for field, include := range projection {
			if include {
				proj[field] = 1
			} else {
				proj[field] = 0
			}
		}
		opts.SetProjection(proj)
	}

	cursor, err := r.collection.Find(ctx, bson.M(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("fleet find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var records []map[string]interface{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("fleet record decode failed: %w", err)
		}
		records = append(records, map[string]interface{}(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("fleet cursor failed: %w", err)
	}

	r.logger.Debug("fleet find executed", zap.Int("records", len(records)))
	return records, nil
}

// AggregateOne runs a pipeline and returns its first output document,
// or nil when the pipeline matched nothing.
func (r *FleetRepository) AggregateOne(ctx context.Context, pipeline []map[string]interface{}) (map[string]interface{}, error) {
	stages := make(mongo.Pipeline, 0, len(pipeline))
	for _, stage := range pipeline {
		doc := bson.D{}
		for op, spec := range stage {
			doc = append(doc, bson.E{Key: op, Value: spec})
		}
		stages = append(stages, doc)
	}

	cursor, err := r.collection.Aggregate(ctx, stages)
	if err != nil {
		return nil, fmt.Errorf("fleet aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("fleet aggregation cursor failed: %w", err)
		}
		return nil, nil
	}

	var doc bson.M
	if err := cursor.Decode(&doc); err != nil {
		return nil, fmt.Errorf("fleet aggregate decode failed: %w", err)
	}

	return map[string]interface{}(doc), nil
}
