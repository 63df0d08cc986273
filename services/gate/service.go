// Package gate classifies natural-language questions against a field
// taxonomy, producing either a denial or a validated structured query.
// It is the first of the pipeline's two independent privacy layers; the
// sanitizer is the second.
package gate

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/llm"
	"github.com/junction-boxers/fleetgate/models"
	"github.com/junction-boxers/fleetgate/services"
)

// Classifier is the capability the gate needs from the language-model
// service. Pluggable so tests substitute a deterministic stub.
type Classifier interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var _ Classifier = (llm.Client)(nil)

// Config holds the gate configuration.
type Config struct {
	// PrecheckEnabled turns on the lexical screen before the classifier
	PrecheckEnabled bool

	// Blocklist phrases are denied outright by the pre-check
	Blocklist []string
}

// Service implements the policy gate.
type Service struct {
	classifier Classifier
	config     Config
	logger     *zap.Logger
}

// NewService creates a new gate service
func NewService(classifier Classifier, config Config, logger *zap.Logger) *Service {
	return &Service{
		classifier: classifier,
		config:     config,
		logger:     logger,
	}
}

// codeFence strips markdown fencing some models wrap around JSON.
var codeFence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// rephraseReason is returned when the model claims an allowed decision
// without a usable query.
const rephraseReason = "The query could not be processed. Please try rephrasing."

// Classify classifies a question against a taxonomy. The caller
// validates non-emptiness first; an empty question here is a
// programming error surfaced as a validation error. The returned
// decision carries a query iff it is allowed, and any allowed query has
// at least one of filter or aggregate populated.
func (s *Service) Classify(ctx context.Context, question string, taxonomy models.FieldTaxonomy) (*models.PolicyDecision, error) {
	if strings.TrimSpace(question) == "" {
		return nil, services.ErrMissingQuestion
	}

	if s.config.PrecheckEnabled {
		if decision := s.precheck(question, taxonomy); decision != nil {
			s.logger.Debug("question denied by lexical pre-check",
				zap.String("reason", decision.Reason))
			return decision, nil
		}
	}

	prompt := buildPrompt(question, taxonomy.HighRiskFields, taxonomy.AllowedFields)

	s.logger.Debug("sending classification prompt",
		zap.String("prompt_version", promptVersion),
		zap.Int("prompt_len", len(prompt)))

	raw, err := s.classifier.Generate(ctx, prompt)
	if err != nil {
		return nil, services.NewGateError("classifier call failed", err)
	}

	decision, err := s.parseDecision(raw, taxonomy)
	if err != nil {
		return nil, err
	}

	s.logger.Info("question classified",
		zap.String("status", string(decision.Status)),
		zap.Bool("has_query", decision.Query != nil))

	return decision, nil
}

// precheck runs the deterministic lexical screen: blocklisted phrases
// deny outright, and the question must mention at least one
// recognizable fleet term. Returns nil when the question passes.
func (s *Service) precheck(question string, taxonomy models.FieldTaxonomy) *models.PolicyDecision {
	lowered := strings.ToLower(question)

	for _, phrase := range s.config.Blocklist {
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			return &models.PolicyDecision{
				Status: models.DecisionDisallowed,
				Reason: "Disallowed query: personal information detected.",
			}
		}
	}

	// Questions naming a protected field go to the classifier so the
	// denial reason names the field instead of the generic screen text.
	for _, f := range taxonomy.HighRiskFields {
		if strings.Contains(lowered, strings.ToLower(f)) {
			return nil
		}
	}

	for _, term := range vocabulary(taxonomy) {
		if strings.Contains(lowered, term) {
			return nil
		}
	}

	return &models.PolicyDecision{
		Status: models.DecisionDisallowed,
		Reason: "Query structure not allowed. Ask about fleet fields such as status, battery level or location.",
	}
}

// vocabulary derives the recognizable terms from the taxonomy's allowed
// fields plus the generic fleet phrasing users actually type.
func vocabulary(taxonomy models.FieldTaxonomy) []string {
	terms := []string{
		"drone", "fleet", "pilot", "how many", "count", "average",
		"total", "list", "active", "inactive", "battery", "location",
		"speed", "altitude", "flight", "status", "model",
	}
	for _, f := range taxonomy.AllowedFields {
		leaf := f
		if i := strings.LastIndex(f, "."); i >= 0 {
			leaf = f[i+1:]
		}
		terms = append(terms, strings.ToLower(leaf))
	}
	return terms
}

// decisionWire is the JSON shape the classifier is instructed to emit.
type decisionWire struct {
	Status string     `json:"status"`
	Reason string     `json:"reason"`
	Query  *queryWire `json:"query,omitempty"`
}

type queryWire struct {
	Find       map[string]interface{} `json:"find"`
	Aggregate  map[string]interface{} `json:"aggregate,omitempty"`
	Projection map[string]interface{} `json:"projection,omitempty"`
	Privacy    string                 `json:"privacy,omitempty"`
}

// parseDecision validates the raw model output into a typed decision.
// Malformed shapes are gate errors; an allowed claim without a usable
// query degrades to a denial rather than crossing the boundary.
func (s *Service) parseDecision(raw string, taxonomy models.FieldTaxonomy) (*models.PolicyDecision, error) {
	cleaned := raw
	if m := codeFence.FindStringSubmatch(raw); m != nil {
		cleaned = m[1]
	}
	cleaned = strings.TrimSpace(cleaned)

	var wire decisionWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, services.NewGateError("classifier returned unparsable output", err)
	}

	switch wire.Status {
	case string(models.DecisionDisallowed):
		return &models.PolicyDecision{
			Status: models.DecisionDisallowed,
			Reason: wire.Reason,
		}, nil

	case string(models.DecisionAllowed):
		if wire.Query == nil || (wire.Query.Find == nil && wire.Query.Aggregate == nil) {
			return &models.PolicyDecision{
				Status: models.DecisionDisallowed,
				Reason: rephraseReason,
			}, nil
		}
		return s.buildQuery(wire, taxonomy)

	default:
		return nil, services.NewGateError("classifier returned unknown status", nil).
			WithDetail("status", wire.Status)
	}
}

// buildQuery converts the wire query into the typed structured query,
// enforcing the taxonomy on projections and aggregate fields.
func (s *Service) buildQuery(wire decisionWire, taxonomy models.FieldTaxonomy) (*models.PolicyDecision, error) {
	query := &models.StructuredQuery{
		Filter:              wire.Query.Find,
		DifferentialPrivacy: wire.Query.Privacy == "differential_privacy",
	}
	if query.Filter == nil {
		query.Filter = map[string]interface{}{}
	}

	if wire.Query.Aggregate != nil {
		agg, err := s.buildAggregate(wire.Query.Aggregate, taxonomy)
		if err != nil {
			return nil, err
		}
		if agg == nil {
			// Aggregation over a field outside the allowed set: deny,
			// don't error.
			return &models.PolicyDecision{
				Status: models.DecisionDisallowed,
				Reason: "The query aggregates over a protected or non-permitted field. This is not allowed to protect privacy.",
			}, nil
		}
		query.Aggregate = agg
	} else {
		query.Projection = s.buildProjection(wire.Query.Projection, taxonomy)
	}

	return &models.PolicyDecision{
		Status: models.DecisionAllowed,
		Reason: wire.Reason,
		Query:  query,
	}, nil
}

// buildAggregate validates the single-operator aggregate document.
// Returns (nil, nil) when the target field is outside the allowed set.
func (s *Service) buildAggregate(raw map[string]interface{}, taxonomy models.FieldTaxonomy) (*models.Aggregate, error) {
	if len(raw) != 1 {
		return nil, services.NewGateError("aggregate must contain exactly one operator", nil).
			WithDetail("operators", len(raw))
	}

	for op, value := range raw {
		spec, ok := value.(string)
		if !ok {
			return nil, services.NewGateError("aggregate operand must be a string", nil).
				WithDetail("operator", op)
		}

		switch op {
		case "$count":
			name := strings.TrimSpace(spec)
			if name == "" {
				name = "count"
			}
			return &models.Aggregate{Kind: models.AggregateCount, OutputName: name}, nil

		case "$avg", "$sum":
			field := strings.TrimPrefix(strings.TrimSpace(spec), "$")
			if field == "" {
				return nil, services.NewGateError("aggregate field is required", nil).
					WithDetail("operator", op)
			}
			if !taxonomy.IsAllowed(field) {
				return nil, nil
			}
			kind := models.AggregateAvg
			if op == "$sum" {
				kind = models.AggregateSum
			}
			return &models.Aggregate{Kind: kind, Field: field}, nil

		default:
			return nil, services.NewGateError("unsupported aggregate operator", nil).
				WithDetail("operator", op)
		}
	}

	return nil, services.ErrEmptyDecision
}

// buildProjection keeps only allowed fields from the model's projection
// and always excludes _id. An absent or fully filtered projection
// defaults to the complete allowed set so a find never crosses the
// boundary unprojected.
func (s *Service) buildProjection(raw map[string]interface{}, taxonomy models.FieldTaxonomy) map[string]bool {
	projection := map[string]bool{}
	for field, flag := range raw {
		if field == "_id" {
			continue
		}
		if !included(flag) {
			continue
		}
		if taxonomy.IsAllowed(field) {
			projection[field] = true
		}
	}

	if len(projection) == 0 {
		for _, field := range taxonomy.AllowedFields {
			projection[field] = true
		}
	}

	projection["_id"] = false
	return projection
}

// included interprets the include flag shapes JSON decoding produces.
func included(flag interface{}) bool {
	switch v := flag.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	default:
		return false
	}
}
