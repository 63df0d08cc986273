package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/models"
	"github.com/junction-boxers/fleetgate/repositories"
)

// SettingsRepository implements repositories.SettingsRepository over
// the userSettings collection.
type SettingsRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB, collection string, logger *zap.Logger) repositories.SettingsRepository {
	return &SettingsRepository{
		collection: db.Collection(collection),
		logger:     logger,
	}
}

// Get returns the caller's settings, or nil when none are stored.
func (r *SettingsRepository) Get(ctx context.Context, callerID string) (*models.CallerSettings, error) {
	var settings models.CallerSettings
	err := r.collection.FindOne(ctx, bson.M{"callerId": callerID}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get caller settings: %w", err)
	}
	return &settings, nil
}

// Upsert stores the caller's settings, stamping updatedAt always and
// createdAt only on first insert.
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.CallerSettings) (bool, error) {
	now := time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"callerId":       settings.CallerID,
			"highRiskFields": settings.HighRiskFields,
			"allowedFields":  settings.AllowedFields,
			"allowedQueries": settings.AllowedQueries,
			"updatedAt":      now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"callerId": settings.CallerID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert caller settings: %w", err)
	}

	created := result.UpsertedCount > 0
	r.logger.Debug("caller settings stored",
		zap.String("caller_id", settings.CallerID),
		zap.Bool("created", created))
	return created, nil
}
