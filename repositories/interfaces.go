// Package repositories defines the persistence contracts consumed by
// the services layer. The mongo subpackage provides the production
// implementations; tests substitute mocks.
package repositories

import (
	"context"

	"github.com/junction-boxers/fleetgate/models"
)

// FleetRepository provides read-only access to the fleet dataset.
type FleetRepository interface {
	// Find runs a filtered, projected read and returns the matching
	// records in store order. An empty result is a valid outcome, not
	// an error.
	Find(ctx context.Context, filter map[string]interface{}, projection map[string]bool) ([]map[string]interface{}, error)

	// AggregateOne runs a two-stage match+count or match+group pipeline
	// and returns the first result document, or nil when the pipeline
	// produced no output.
	AggregateOne(ctx context.Context, pipeline []map[string]interface{}) (map[string]interface{}, error)
}

// AuditRepository persists audit records.
type AuditRepository interface {
	// Insert writes one audit record. Inserts are idempotent per record
	// ID: re-inserting an already persisted ID succeeds without
	// producing a duplicate.
	Insert(ctx context.Context, record *models.AuditRecord) error

	// List returns the most recent records, newest first.
	List(ctx context.Context, limit int) ([]*models.AuditRecord, error)
}

// SettingsRepository stores per-caller policy taxonomies.
type SettingsRepository interface {
	// Get returns the caller's settings, or nil when none are stored.
	Get(ctx context.Context, callerID string) (*models.CallerSettings, error)

	// Upsert stores the caller's settings, creating the document when
	// absent. Reports whether a new document was created.
	Upsert(ctx context.Context, settings *models.CallerSettings) (created bool, err error)
}
