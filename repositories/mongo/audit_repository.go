package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/models"
	"github.com/junction-boxers/fleetgate/repositories"
)

// AuditRepository implements repositories.AuditRepository over the
// auditLogs collection.
type AuditRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, collection string, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		collection: db.Collection(collection),
		logger:     logger,
	}
}

// EnsureIndexes creates the unique logId index that makes inserts
// idempotent, plus the timestamp index used by List.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "logId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}
	return nil
}

// Insert writes one audit record. A duplicate-key error on logId means
// the record is already durable and is treated as success.
func (r *AuditRepository) Insert(ctx context.Context, record *models.AuditRecord) error {
	_, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Debug("audit record already persisted", zap.String("log_id", record.ID))
			return nil
		}
		return fmt.Errorf("failed to insert audit record: %w", err)
	}

	r.logger.Debug("audit record inserted",
		zap.String("log_id", record.ID),
		zap.String("status", string(record.DecisionStatus)))
	return nil
}

// List returns the most recent records, newest first.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]*models.AuditRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 0})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*models.AuditRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode audit records: %w", err)
	}

	return records, nil
}
