package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/models"
	"github.com/junction-boxers/fleetgate/utils"
)

// SettingsService defines the interface for per-caller policy settings
type SettingsService interface {
	Get(ctx context.Context, callerID string) (*models.CallerSettings, error)
	Update(ctx context.Context, updated *models.CallerSettings) (bool, error)
}

// SettingsUpdateRequest is the request body for PATCH /api/v1/settings
type SettingsUpdateRequest struct {
	CallerID       string   `json:"callerId" validate:"required"`
	HighRiskFields []string `json:"highRiskFields"`
	AllowedFields  []string `json:"allowedFields" validate:"required,min=1"`
	AllowedQueries []string `json:"allowedQueries"`
}

// SettingsHandler handles caller settings HTTP requests
type SettingsHandler struct {
	service SettingsService
	logger  *zap.Logger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(service SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  logger,
	}
}

// HandleGet handles GET /api/v1/settings/{callerId}
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	callerID := chi.URLParam(r, "callerId")
	if callerID == "" {
		_ = utils.WriteBadRequest(w, "callerId is required", nil)
		return
	}

	stored, err := h.service.Get(r.Context(), callerID)
	if err != nil {
		h.logger.Error("failed to load caller settings",
			zap.String("caller_id", callerID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, stored); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

// HandleUpdate handles PATCH /api/v1/settings
func (h *SettingsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var updateReq SettingsUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		h.logger.Warn("failed to parse request body", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&updateReq); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	settings := &models.CallerSettings{
		CallerID:       updateReq.CallerID,
		HighRiskFields: updateReq.HighRiskFields,
		AllowedFields:  updateReq.AllowedFields,
		AllowedQueries: updateReq.AllowedQueries,
	}

	created, err := h.service.Update(r.Context(), settings)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	if err := utils.WriteJSON(w, status, settings); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}
