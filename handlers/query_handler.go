package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/services"
	"github.com/junction-boxers/fleetgate/services/pipeline"
	"github.com/junction-boxers/fleetgate/utils"
)

// QueryRequest is the request body for POST /api/v1/query. A missing
// question is not rejected here; the pipeline validates it so the
// request still produces an audit record.
type QueryRequest struct {
	Question string `json:"question"`
	CallerID string `json:"callerId,omitempty"`
}

// QueryResponse is the success body. AuditID is returned on every
// outcome so callers can correlate with the audit trail.
type QueryResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	Transparency string `json:"transparency,omitempty"`
	AuditID      string `json:"auditId"`
}

// QueryService defines the interface for query mediation
type QueryService interface {
	Process(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// QueryHandler handles natural-language query requests
type QueryHandler struct {
	service QueryService
	logger  *zap.Logger
}

// NewQueryHandler creates a new QueryHandler
func NewQueryHandler(service QueryService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		service: service,
		logger:  logger,
	}
}

// HandleQuery handles POST /api/v1/query
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var queryReq QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&queryReq); err != nil {
		h.logger.Warn("failed to parse request body", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	serviceReq := pipeline.Request{
		Question:  queryReq.Question,
		CallerID:  queryReq.CallerID,
		SourceIP:  getClientIP(r),
		UserAgent: r.UserAgent(),
	}

	result, err := h.service.Process(ctx, serviceReq)
	if err != nil {
		h.writeFailure(w, result, err)
		return
	}

	response := QueryResponse{
		Status:       "success",
		Message:      result.Answer,
		Transparency: result.Transparency,
		AuditID:      result.AuditID,
	}

	if err := utils.WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

// writeFailure maps pipeline errors to HTTP, preserving the audit ID
// the pipeline already minted for this request.
func (h *QueryHandler) writeFailure(w http.ResponseWriter, result *pipeline.Result, err error) {
	auditID := ""
	if result != nil {
		auditID = result.AuditID
	}

	switch {
	case services.IsValidationError(err):
		_ = utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
			AuditID: auditID,
			Details: services.GetErrorDetails(err),
		})

	case services.IsPolicyDenial(err):
		h.logger.Info("query denied", zap.String("audit_id", auditID))
		_ = utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse{
			Error:   "forbidden",
			Message: services.DenialReason(err),
			AuditID: auditID,
		})

	default:
		h.logger.Error("query processing failed",
			zap.String("audit_id", auditID),
			zap.Error(err))
		_ = utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse{
			Error:   "internal_error",
			Message: "Internal Server Error",
			AuditID: auditID,
		})
	}
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
