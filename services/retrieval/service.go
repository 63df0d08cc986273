// Package retrieval executes validated structured queries against the
// fleet store. It dispatches on the aggregate tag and normalizes empty
// aggregates to documented zero defaults so downstream synthesis stays
// well-defined.
package retrieval

import (
	"context"

	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/models"
	"github.com/junction-boxers/fleetgate/repositories"
	"github.com/junction-boxers/fleetgate/services"
)

// Service implements the query executor. Access is read-only; no
// query rewriting or retries happen here.
type Service struct {
	fleet  repositories.FleetRepository
	logger *zap.Logger
}

// NewService creates a new retrieval service
func NewService(fleet repositories.FleetRepository, logger *zap.Logger) *Service {
	return &Service{
		fleet:  fleet,
		logger: logger,
	}
}

// Execute runs the structured query and returns the raw result. A
// store failure is fatal for the request and carries the store's
// native error text for diagnostics.
func (s *Service) Execute(ctx context.Context, query *models.StructuredQuery) (*models.RetrievalResult, error) {
	if query == nil {
		return nil, services.ErrEmptyDecision
	}

	if query.Aggregate != nil {
		switch query.Aggregate.Kind {
		case models.AggregateCount:
			return s.executeCount(ctx, query)
		case models.AggregateAvg, models.AggregateSum:
			return s.executeGroup(ctx, query)
		default:
			return nil, services.NewExecutionError("unknown aggregate kind", nil).
				WithDetail("kind", string(query.Aggregate.Kind))
		}
	}

	return s.executeFind(ctx, query)
}

// executeCount builds the two-stage match+count pipeline. No matches
// yields a zero count under the output name, not an error.
func (s *Service) executeCount(ctx context.Context, query *models.StructuredQuery) (*models.RetrievalResult, error) {
	name := query.Aggregate.OutputName
	pipeline := []map[string]interface{}{
		{"$match": query.Filter},
		{"$count": name},
	}

	doc, err := s.fleet.AggregateOne(ctx, pipeline)
	if err != nil {
		return nil, services.NewExecutionError("count aggregation failed", err)
	}
	if doc == nil {
		doc = map[string]interface{}{name: int32(0)}
	}

	s.logger.Debug("count aggregation executed", zap.String("output", name))
	return &models.RetrievalResult{Aggregate: doc}, nil
}

// executeGroup builds the match+group pipeline for avg and sum. The
// accumulator is floating point; no matches yields an explicit zero.
func (s *Service) executeGroup(ctx context.Context, query *models.StructuredQuery) (*models.RetrievalResult, error) {
	operator := "$avg"
	output := "average"
	if query.Aggregate.Kind == models.AggregateSum {
		operator = "$sum"
		output = "total"
	}

	pipeline := []map[string]interface{}{
		{"$match": query.Filter},
		{"$group": map[string]interface{}{
			"_id":  nil,
			output: map[string]interface{}{operator: "$" + query.Aggregate.Field},
		}},
	}

	doc, err := s.fleet.AggregateOne(ctx, pipeline)
	if err != nil {
		return nil, services.NewExecutionError("group aggregation failed", err)
	}

	result := map[string]interface{}{output: float64(0)}
	if doc != nil {
		if v, ok := doc[output]; ok && v != nil {
			result[output] = v
		}
	}

	s.logger.Debug("group aggregation executed",
		zap.String("operator", operator),
		zap.String("field", query.Aggregate.Field))
	return &models.RetrievalResult{Aggregate: result}, nil
}

// executeFind runs a plain projected read. An empty match is a valid
// empty sequence.
func (s *Service) executeFind(ctx context.Context, query *models.StructuredQuery) (*models.RetrievalResult, error) {
	records, err := s.fleet.Find(ctx, query.Filter, query.Projection)
	if err != nil {
		return nil, services.NewExecutionError("fleet read failed", err)
	}
	if records == nil {
		records = []map[string]interface{}{}
	}

	s.logger.Debug("fleet read executed", zap.Int("records", len(records)))
	return &models.RetrievalResult{Records: records}, nil
}
