package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord is the durable trail entry written once per inbound
// request. Records are immutable after insert; retention is an external
// concern.
type AuditRecord struct {
	ID               string         `json:"logId" bson:"logId"`
	RequestTimestamp time.Time      `json:"timestamp" bson:"timestamp"`
	EndTimestamp     time.Time      `json:"endTime" bson:"endTime"`
	CallerID         string         `json:"callerId,omitempty" bson:"callerId,omitempty"`
	UserAgent        string         `json:"userAgent" bson:"userAgent"`
	Browser          string         `json:"browser,omitempty" bson:"browser,omitempty"`
	Platform         string         `json:"platform,omitempty" bson:"platform,omitempty"`
	SourceIP         string         `json:"ipAddress" bson:"ipAddress"`
	InputQuery       string         `json:"inputQuery" bson:"inputQuery"`
	DecisionStatus   DecisionStatus `json:"queryStatus" bson:"queryStatus"`
	PolicyReason     string         `json:"policyReason,omitempty" bson:"policyReason,omitempty"`
	FinalResponse    string         `json:"finalResponse,omitempty" bson:"finalResponse,omitempty"`
	TransparencyNote string         `json:"transparency,omitempty" bson:"transparency,omitempty"`
	DurationMs       int64          `json:"processingTimeMs" bson:"processingTimeMs"`
	Error            string         `json:"error,omitempty" bson:"error,omitempty"`
	Version          string         `json:"version" bson:"version"`
}

// auditSchemaVersion stamps records so downstream consumers can detect
// shape changes.
const auditSchemaVersion = "1.0"

// NewAuditRecord creates a record for a request that started at start.
func NewAuditRecord(question, callerID string, start time.Time) *AuditRecord {
	return &AuditRecord{
		ID:               uuid.New().String(),
		RequestTimestamp: start,
		CallerID:         callerID,
		InputQuery:       question,
		Version:          auditSchemaVersion,
	}
}

// WithClient sets request origin metadata.
func (a *AuditRecord) WithClient(sourceIP, userAgent string) *AuditRecord {
	a.SourceIP = sourceIP
	a.UserAgent = userAgent
	return a
}

// WithBrowser sets the parsed user-agent breakdown.
func (a *AuditRecord) WithBrowser(browser, platform string) *AuditRecord {
	a.Browser = browser
	a.Platform = platform
	return a
}

// WithDecision sets the policy outcome.
func (a *AuditRecord) WithDecision(status DecisionStatus, reason string) *AuditRecord {
	a.DecisionStatus = status
	a.PolicyReason = reason
	return a
}

// WithResponse sets the synthesized answer and its transparency note.
func (a *AuditRecord) WithResponse(finalResponse, transparency string) *AuditRecord {
	a.FinalResponse = finalResponse
	a.TransparencyNote = transparency
	return a
}

// WithError marks the record as failed and stores the error text.
func (a *AuditRecord) WithError(err error) *AuditRecord {
	a.DecisionStatus = DecisionError
	if err != nil {
		a.Error = err.Error()
	}
	return a
}

// Finish stamps the end time and derives the processing duration.
func (a *AuditRecord) Finish(end time.Time) *AuditRecord {
	a.EndTimestamp = end
	a.DurationMs = end.Sub(a.RequestTimestamp).Milliseconds()
	return a
}
