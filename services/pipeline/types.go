package pipeline

import (
	"context"

	"github.com/junction-boxers/fleetgate/models"
)

// Request is one inbound question with its attribution metadata.
type Request struct {
	Question  string
	CallerID  string
	SourceIP  string
	UserAgent string
}

// Result is the mediated answer. On denial and error paths only
// AuditID is populated; the accompanying error carries the outcome.
type Result struct {
	AuditID      string
	Answer       string
	Transparency string
}

// Gate classifies a question against a taxonomy.
type Gate interface {
	Classify(ctx context.Context, question string, taxonomy models.FieldTaxonomy) (*models.PolicyDecision, error)
}

// Executor runs a validated structured query.
type Executor interface {
	Execute(ctx context.Context, query *models.StructuredQuery) (*models.RetrievalResult, error)
}

// Synthesizer produces the final natural-language answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, raw *models.RetrievalResult, sanitized *models.SanitizedResult, transparency string) (string, error)
}

// Recorder persists the audit trail; it never fails the request.
type Recorder interface {
	Record(ctx context.Context, record *models.AuditRecord)
}

// TaxonomyResolver supplies the taxonomy in effect for a caller.
type TaxonomyResolver interface {
	Resolve(ctx context.Context, callerID string) models.FieldTaxonomy
}

// Metrics is the subset of instrumentation the orchestrator reports to.
type Metrics interface {
	ObserveOutcome(outcome string)
	ObserveStage(stage string, seconds float64)
}
