package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/models"
	"github.com/junction-boxers/fleetgate/utils"
)

// AuditService defines the interface for audit trail reads
type AuditService interface {
	List(ctx context.Context, limit int) ([]*models.AuditRecord, error)
}

// AuditListResponse is the response body for GET /api/v1/audit/logs
type AuditListResponse struct {
	Logs  []*models.AuditRecord `json:"logs"`
	Count int                   `json:"count"`
}

// AuditHandler handles audit trail HTTP requests
type AuditHandler struct {
	service AuditService
	logger  *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger,
	}
}

// HandleList handles GET /api/v1/audit/logs. Returns the most recent
// records newest first; limit defaults to 50 and is clamped server-side.
func (h *AuditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			_ = utils.WriteBadRequest(w, "limit must be a non-negative integer", nil)
			return
		}
		limit = parsed
	}

	logs, err := h.service.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list audit logs", zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	if logs == nil {
		logs = []*models.AuditRecord{}
	}

	if err := utils.WriteJSON(w, http.StatusOK, AuditListResponse{
		Logs:  logs,
		Count: len(logs),
	}); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}
