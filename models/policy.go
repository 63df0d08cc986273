package models

import "strings"

// DecisionStatus represents the outcome of a policy classification
type DecisionStatus string

const (
	DecisionAllowed    DecisionStatus = "allowed"
	DecisionDisallowed DecisionStatus = "disallowed"
	DecisionError      DecisionStatus = "error"
)

// FieldTaxonomy partitions record fields into PII that must never be
// emitted and operational fields eligible for output. Any field outside
// AllowedFields is treated as forbidden even when it is not listed as
// high risk.
type FieldTaxonomy struct {
	HighRiskFields []string `json:"highRiskFields" yaml:"high_risk_fields"`
	AllowedFields  []string `json:"allowedFields" yaml:"allowed_fields"`
}

// IsAllowed reports whether a field name may appear in output. A bare
// prefix of an allowed dotted path (e.g. "telemetry" when
// "telemetry.batteryLevel" is allowed) counts as allowed so that nested
// documents survive projection.
func (t FieldTaxonomy) IsAllowed(field string) bool {
	for _, f := range t.AllowedFields {
		if f == field || strings.HasPrefix(f, field+".") {
			return true
		}
	}
	return false
}

// IsHighRisk reports whether a field name is classified as PII.
func (t FieldTaxonomy) IsHighRisk(field string) bool {
	for _, f := range t.HighRiskFields {
		if f == field {
			return true
		}
	}
	return false
}

// AggregateKind identifies the aggregation shape of a structured query
type AggregateKind string

const (
	AggregateCount AggregateKind = "count"
	AggregateAvg   AggregateKind = "avg"
	AggregateSum   AggregateKind = "sum"
)

// Aggregate describes the aggregation stage of a structured query.
// Count requires OutputName; Avg and Sum require Field.
type Aggregate struct {
	Kind       AggregateKind `json:"kind"`
	Field      string        `json:"field,omitempty"`
	OutputName string        `json:"outputName,omitempty"`
}

// StructuredQuery is the validated filter/aggregate/projection triple
// produced by the policy gate and consumed by the query executor. When
// Aggregate is nil the query is a plain projected find; the gate
// guarantees the projection excludes every high-risk field.
type StructuredQuery struct {
	Filter              map[string]interface{} `json:"filter"`
	Aggregate           *Aggregate             `json:"aggregate,omitempty"`
	Projection          map[string]bool        `json:"projection,omitempty"`
	DifferentialPrivacy bool                   `json:"differentialPrivacy,omitempty"`
}

// IsFind reports whether the query is a plain filtered read.
func (q *StructuredQuery) IsFind() bool {
	return q.Aggregate == nil
}

// PolicyDecision is the outcome of classifying a question against a
// field taxonomy. Query is non-nil iff Status is DecisionAllowed.
type PolicyDecision struct {
	Status DecisionStatus   `json:"status"`
	Reason string           `json:"reason"`
	Query  *StructuredQuery `json:"query,omitempty"`
}

// Allowed reports whether the decision permits execution.
func (d *PolicyDecision) Allowed() bool {
	return d.Status == DecisionAllowed
}

// RetrievalResult holds the raw output of query execution: either an
// ordered sequence of records (find) or a single aggregate document
// (count/avg/sum). Exactly one of the two is populated.
type RetrievalResult struct {
	Records   []map[string]interface{}
	Aggregate map[string]interface{}
}

// IsAggregate reports whether the result carries an aggregate document.
func (r *RetrievalResult) IsAggregate() bool {
	return r.Aggregate != nil
}

// SanitizedResult is a retrieval result with every non-allowed field
// removed record by record. Aggregate documents pass through wrapped as
// a single-element sequence; they carry no per-entity PII by
// construction.
type SanitizedResult struct {
	Records []map[string]interface{}
}
