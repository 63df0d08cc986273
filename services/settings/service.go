// Package settings resolves the policy taxonomy for a caller. Callers
// with stored settings get their own field partition; everyone else
// gets the configured defaults. The callerId is an opaque attribution
// string, never a trust decision.
package settings

import (
	"context"

	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/models"
	"github.com/junction-boxers/fleetgate/repositories"
	"github.com/junction-boxers/fleetgate/services"
)

// Service resolves and stores per-caller taxonomies.
type Service struct {
	repo     repositories.SettingsRepository
	defaults models.FieldTaxonomy
	logger   *zap.Logger
}

// NewService creates a new settings service
func NewService(repo repositories.SettingsRepository, defaults models.FieldTaxonomy, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		defaults: defaults,
		logger:   logger,
	}
}

// Defaults returns the configured default taxonomy.
func (s *Service) Defaults() models.FieldTaxonomy {
	return s.defaults
}

// Resolve returns the taxonomy in effect for a caller. A store failure
// here falls back to the defaults rather than failing the request; the
// defaults are the stricter, known-good partition.
func (s *Service) Resolve(ctx context.Context, callerID string) models.FieldTaxonomy {
	if callerID == "" {
		return s.defaults
	}

	stored, err := s.repo.Get(ctx, callerID)
	if err != nil {
		s.logger.Warn("failed to load caller settings, using defaults",
			zap.String("caller_id", callerID),
			zap.Error(err))
		return s.defaults
	}
	if stored == nil || len(stored.AllowedFields) == 0 {
		return s.defaults
	}

	return stored.Taxonomy()
}

// Get returns the caller's stored settings, or a default-filled
// document when none exist.
func (s *Service) Get(ctx context.Context, callerID string) (*models.CallerSettings, error) {
	stored, err := s.repo.Get(ctx, callerID)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeInternal, "failed to load caller settings", err)
	}
	if stored != nil {
		return stored, nil
	}

	return &models.CallerSettings{
		CallerID:       callerID,
		HighRiskFields: s.defaults.HighRiskFields,
		AllowedFields:  s.defaults.AllowedFields,
	}, nil
}

// Update validates and stores a caller's taxonomy. The two field sets
// must stay disjoint. Reports whether a new document was created.
func (s *Service) Update(ctx context.Context, updated *models.CallerSettings) (bool, error) {
	if updated.CallerID == "" {
		return false, services.NewValidationError("callerId is required", nil)
	}
	if len(updated.AllowedFields) == 0 {
		return false, services.NewValidationError("allowedFields must not be empty", nil)
	}

	tax := updated.Taxonomy()
	for _, f := range updated.HighRiskFields {
		if tax.IsAllowed(f) {
			return false, services.NewValidationError("field cannot be both high-risk and allowed", nil).
				WithDetail("field", f)
		}
	}

	created, err := s.repo.Upsert(ctx, updated)
	if err != nil {
		return false, services.NewDomainError(services.ErrorTypeInternal, "failed to store caller settings", err)
	}

	s.logger.Info("caller settings updated",
		zap.String("caller_id", updated.CallerID),
		zap.Bool("created", created))
	return created, nil
}
