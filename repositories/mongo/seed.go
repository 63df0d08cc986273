package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/config"
	"github.com/junction-boxers/fleetgate/models"
)

// Seeder loads fleet fixtures and creates indexes. Used by the seed
// subcommand and by integration setups; the serving path never writes
// to the fleet collection.
type Seeder struct {
	db     *DB
	cfg    config.MongoConfig
	logger *zap.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(db *DB, cfg config.MongoConfig, logger *zap.Logger) *Seeder {
	return &Seeder{db: db, cfg: cfg, logger: logger}
}

// Seed inserts the fixture fleet when the collection is empty (or
// force is set), then creates indexes. It also stores a default
// settings document so the settings endpoints have a live example.
func (s *Seeder) Seed(ctx context.Context, force bool) error {
	drones := s.db.Collection(s.cfg.FleetCollection)

	count, err := drones.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count fleet records: %w", err)
	}

	if count == 0 || force {
		if _, err := drones.DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("failed to clear fleet collection: %w", err)
		}

		fixtures := FixtureFleet()
		docs := make([]interface{}, len(fixtures))
		for i := range fixtures {
			docs[i] = fixtures[i]
		}
		result, err := drones.InsertMany(ctx, docs)
		if err != nil {
			return fmt.Errorf("failed to insert fleet fixtures: %w", err)
		}
		s.logger.Info("fleet fixtures inserted", zap.Int("records", len(result.InsertedIDs)))
	} else {
		s.logger.Info("fleet already seeded", zap.Int64("records", count))
	}

	if err := s.ensureFleetIndexes(ctx, drones); err != nil {
		return err
	}

	audit := NewAuditRepository(s.db, s.cfg.AuditCollection, s.logger)
	if err := audit.(*AuditRepository).EnsureIndexes(ctx); err != nil {
		return err
	}

	settings := NewSettingsRepository(s.db, s.cfg.SettingsCollection, s.logger)
	defaults := config.DefaultTaxonomy()
	if _, err := settings.Upsert(ctx, &models.CallerSettings{
		CallerID:       "default",
		HighRiskFields: defaults.HighRiskFields,
		AllowedFields:  defaults.AllowedFields,
		AllowedQueries: []string{"drone status", "active drones", "battery level", "location", "flight duration"},
	}); err != nil {
		return err
	}

	return nil
}

func (s *Seeder) ensureFleetIndexes(ctx context.Context, drones *mongo.Collection) error {
	_, err := drones.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "droneId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "location.latitude", Value: 1}, {Key: "location.longitude", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create fleet indexes: %w", err)
	}
	return nil
}

// FixtureFleet returns the sample fleet used by seeding and tests.
// Pilot blocks carry the PII the pipeline must never emit.
func FixtureFleet() []models.Drone {
	return []models.Drone{
		{
			DroneID: "DS-001", Model: "Skyhawk X2", Status: "Active",
			Location:     &models.DroneLocation{Latitude: 60.1699, Longitude: 24.9384},
			Owner:        "Junction Logistics", PrivacyLevel: "standard", Purpose: "Delivery",
			Telemetry:    &models.Telemetry{BatteryLevel: 87, AltitudeMeters: 120, SpeedMps: 14.2, FlightDuration: 42},
			Pilot:        &models.Pilot{PilotID: "P-101", FirstName: "Alex", LastName: "Chen", Email: "alex.chen@junction.com", Phone: "+358-40-1234567", LicenseNumber: "FI-UAV-2291"},
		},
		{
			DroneID: "DS-002", Model: "Skyhawk X2", Status: "Active",
			Location:     &models.DroneLocation{Latitude: 60.1921, Longitude: 24.9458},
			Owner:        "Junction Logistics", PrivacyLevel: "standard", Purpose: "Survey",
			Telemetry:    &models.Telemetry{BatteryLevel: 64, AltitudeMeters: 95, SpeedMps: 11.8, FlightDuration: 75},
			Pilot:        &models.Pilot{PilotID: "P-102", FirstName: "Maya", LastName: "Virtanen", Email: "maya.virtanen@junction.com", Phone: "+358-40-7654321", LicenseNumber: "FI-UAV-1874"},
		},
		{
			DroneID: "DS-003", Model: "Falcon Lite", Status: "Inactive",
			Location:     &models.DroneLocation{Latitude: 60.2055, Longitude: 24.6559},
			Owner:        "Harbor Patrol", PrivacyLevel: "high", Purpose: "Inspection",
			Telemetry:    &models.Telemetry{BatteryLevel: 12, AltitudeMeters: 0, SpeedMps: 0, FlightDuration: 0},
			Pilot:        &models.Pilot{PilotID: "P-103", FirstName: "Jordan", LastName: "Lee", Email: "jordan.lee@harbor.example", Phone: "+358-50-2223344", LicenseNumber: "FI-UAV-0042"},
		},
		{
			DroneID: "DS-004", Model: "Falcon Lite", Status: "Active",
			Location:     &models.DroneLocation{Latitude: 60.1608, Longitude: 24.7383},
			Owner:        "Harbor Patrol", PrivacyLevel: "high", Purpose: "Patrol",
			Telemetry:    &models.Telemetry{BatteryLevel: 91, AltitudeMeters: 60, SpeedMps: 9.4, FlightDuration: 18},
			Pilot:        &models.Pilot{PilotID: "P-104", FirstName: "Sam", LastName: "Taylor", Email: "sam.taylor@harbor.example", Phone: "+358-50-9988776", LicenseNumber: "FI-UAV-3310"},
		},
		{
			DroneID: "DS-005", Model: "Condor Max", Status: "Maintenance",
			Location:     &models.DroneLocation{Latitude: 60.2934, Longitude: 25.0378},
			Owner:        "AeroWorks", PrivacyLevel: "standard", Purpose: "Cargo",
			Telemetry:    &models.Telemetry{BatteryLevel: 45, AltitudeMeters: 0, SpeedMps: 0, FlightDuration: 0},
			Pilot:        &models.Pilot{PilotID: "P-105", FirstName: "Riikka", LastName: "Korhonen", Email: "riikka.korhonen@aeroworks.example", Phone: "+358-44-5556677", LicenseNumber: "FI-UAV-4471"},
		},
	}
}
