// Package pipeline sequences the mediation stages and owns the
// short-circuiting rules: denials and errors route straight to the
// audit recorder before returning, and every request — success,
// denial, or failure — produces exactly one audit record.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/mssola/useragent"
	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/models"
	"github.com/junction-boxers/fleetgate/services"
	"github.com/junction-boxers/fleetgate/services/sanitize"
)

// Service orchestrates one request through the pipeline. Stages run
// strictly sequentially; all request-scoped state lives on the stack,
// so concurrent requests share nothing but the injected handles.
type Service struct {
	gate        Gate
	executor    Executor
	synthesizer Synthesizer
	recorder    Recorder
	taxonomies  TaxonomyResolver
	metrics     Metrics
	logger      *zap.Logger
}

// NewService creates a new pipeline service with all dependencies
func NewService(
	gate Gate,
	executor Executor,
	synthesizer Synthesizer,
	recorder Recorder,
	taxonomies TaxonomyResolver,
	metrics Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		gate:        gate,
		executor:    executor,
		synthesizer: synthesizer,
		recorder:    recorder,
		taxonomies:  taxonomies,
		metrics:     metrics,
		logger:      logger,
	}
}

// Process mediates one question. The returned Result is non-nil on
// every path and always carries the audit ID; on denial and error
// paths the error describes the outcome and Answer stays empty.
func (s *Service) Process(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	record := models.NewAuditRecord(req.Question, req.CallerID, start).
		WithClient(req.SourceIP, req.UserAgent)
	if req.UserAgent != "" {
		ua := useragent.New(req.UserAgent)
		browser, _ := ua.Browser()
		record.WithBrowser(browser, ua.OS())
	}

	result := &Result{AuditID: record.ID}

	s.logger.Info("starting mediation pipeline",
		zap.String("audit_id", record.ID),
		zap.String("caller_id", req.CallerID))

	// Step 1: validate input
	if strings.TrimSpace(req.Question) == "" {
		err := services.ErrMissingQuestion
		s.terminate(ctx, record.WithError(err), "validation_error")
		return result, err
	}

	// Step 2: resolve the caller's taxonomy
	taxonomy := s.taxonomies.Resolve(ctx, req.CallerID)

	// Step 3: policy classification
	s.logger.Debug("step 3: classifying question", zap.String("audit_id", record.ID))
	decision, err := s.classify(ctx, req.Question, taxonomy)
	if err != nil {
		s.terminate(ctx, record.WithError(err), "error")
		return result, err
	}

	if !decision.Allowed() {
		s.logger.Info("question denied by policy",
			zap.String("audit_id", record.ID),
			zap.String("reason", decision.Reason))
		record.WithDecision(models.DecisionDisallowed, decision.Reason)
		s.terminate(ctx, record, "denied")
		return result, services.NewPolicyDenial(decision.Reason)
	}

	record.WithDecision(models.DecisionAllowed, decision.Reason)

	// An allowed decision with no usable query is an orchestrator-level
	// error, not a denial; the gate should never emit one.
	if decision.Query == nil {
		err := services.ErrEmptyDecision
		s.terminate(ctx, record.WithError(err), "error")
		return result, err
	}

	if err := ctx.Err(); err != nil {
		s.terminate(ctx, record.WithError(err), "error")
		return result, services.NewDomainError(services.ErrorTypeInternal, "request cancelled", err)
	}

	// Step 4: execute the structured query
	s.logger.Debug("step 4: executing structured query", zap.String("audit_id", record.ID))
	raw, err := s.execute(ctx, decision.Query)
	if err != nil {
		s.terminate(ctx, record.WithError(err), "error")
		return result, err
	}

	// Step 5: sanitize the result
	sanitized := sanitize.Apply(raw, taxonomy)
	transparency := transparencyNote(decision.Query)

	if err := ctx.Err(); err != nil {
		s.terminate(ctx, record.WithError(err), "error")
		return result, services.NewDomainError(services.ErrorTypeInternal, "request cancelled", err)
	}

	// Step 6: synthesize the answer
	s.logger.Debug("step 6: synthesizing answer", zap.String("audit_id", record.ID))
	answer, err := s.synthesize(ctx, req.Question, raw, sanitized, transparency)
	if err != nil {
		s.terminate(ctx, record.WithError(err), "error")
		return result, err
	}

	record.WithResponse(answer, transparency)
	s.terminate(ctx, record, "success")

	result.Answer = answer
	result.Transparency = transparency

	s.logger.Info("mediation pipeline completed",
		zap.String("audit_id", record.ID),
		zap.Int64("duration_ms", record.DurationMs))

	return result, nil
}

// terminate is the single exit gate: it stamps the record, writes the
// audit trail, and counts the outcome. Audit failures are swallowed
// inside the recorder and never block the response.
func (s *Service) terminate(ctx context.Context, record *models.AuditRecord, outcome string) {
	record.Finish(time.Now())
	s.recorder.Record(ctx, record)
	if s.metrics != nil {
		s.metrics.ObserveOutcome(outcome)
	}
}

func (s *Service) classify(ctx context.Context, question string, taxonomy models.FieldTaxonomy) (*models.PolicyDecision, error) {
	stageStart := time.Now()
	decision, err := s.gate.Classify(ctx, question, taxonomy)
	s.observeStage("classify", stageStart)
	return decision, err
}

func (s *Service) execute(ctx context.Context, query *models.StructuredQuery) (*models.RetrievalResult, error) {
	stageStart := time.Now()
	raw, err := s.executor.Execute(ctx, query)
	s.observeStage("execute", stageStart)
	return raw, err
}

func (s *Service) synthesize(ctx context.Context, question string, raw *models.RetrievalResult, sanitized *models.SanitizedResult, transparency string) (string, error) {
	stageStart := time.Now()
	answer, err := s.synthesizer.Synthesize(ctx, question, raw, sanitized, transparency)
	s.observeStage("synthesize", stageStart)
	return answer, err
}

func (s *Service) observeStage(stage string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStage(stage, time.Since(start).Seconds())
	}
}

// transparencyNote picks the disclosure statement for a query shape.
// The differential-privacy wording is a labeled stand-in, not a real
// differential-privacy mechanism.
func transparencyNote(query *models.StructuredQuery) string {
	if query.DifferentialPrivacy {
		return "The system used differential privacy to protect individual drone and pilot data."
	}
	if query.Aggregate != nil {
		switch query.Aggregate.Kind {
		case models.AggregateCount:
			return "The system returned a total count to protect individual drone and pilot data."
		case models.AggregateSum:
			return "The system returned an aggregated total to protect individual drone and pilot data."
		default:
			return "The system returned an aggregated average to protect individual drone and pilot data."
		}
	}
	return "The system retrieved drone data and redacted sensitive pilot information to protect privacy."
}
