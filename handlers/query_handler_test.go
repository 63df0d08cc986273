package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/services"
	"github.com/junction-boxers/fleetgate/services/pipeline"
)

// MockQueryService is a mock implementation of QueryService
type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Process(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	args := m.Called(ctx, req)
	if result := args.Get(0); result != nil {
		return result.(*pipeline.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func doQuery(t *testing.T, service *MockQueryService, body string) *httptest.ResponseRecorder {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	handler := NewQueryHandler(service, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.HandleQuery(rec, req)
	return rec
}

func TestHandleQuery_Success(t *testing.T) {
	service := new(MockQueryService)
	service.On("Process", mock.Anything, mock.MatchedBy(func(req pipeline.Request) bool {
		return req.Question == "How many drones are active?" && req.CallerID == "caller-1"
	})).Return(&pipeline.Result{
		AuditID:      "log-123",
		Answer:       "There are 8 active drones in the fleet.",
		Transparency: "The system returned a total count to protect individual drone and pilot data.",
	}, nil)

	rec := doQuery(t, service, `{"question":"How many drones are active?","callerId":"caller-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "There are 8 active drones in the fleet.", resp.Message)
	assert.Equal(t, "log-123", resp.AuditID)
	assert.NotEmpty(t, resp.Transparency)
}

func TestHandleQuery_MissingQuestion(t *testing.T) {
	service := new(MockQueryService)
	// Missing questions still reach the pipeline so the request gets an
	// audit record; the pipeline rejects them with a validation error.
	service.On("Process", mock.Anything, mock.MatchedBy(func(req pipeline.Request) bool {
		return req.Question == "" && req.CallerID == "caller-1"
	})).Return(&pipeline.Result{AuditID: "log-321"}, services.ErrMissingQuestion)

	rec := doQuery(t, service, `{"callerId":"caller-1"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "log-321")
	service.AssertExpectations(t)
}

func TestHandleQuery_MalformedBody(t *testing.T) {
	service := new(MockQueryService)

	rec := doQuery(t, service, `{"question":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuery_DenialReturns403WithReason(t *testing.T) {
	reason := "Disallowed query: requests pilot email address."
	service := new(MockQueryService)
	service.On("Process", mock.Anything, mock.Anything).Return(
		&pipeline.Result{AuditID: "log-456"},
		services.NewPolicyDenial(reason))

	rec := doQuery(t, service, `{"question":"What is the email of the pilot flying DS-001?"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, reason, resp["message"])
	assert.Equal(t, "log-456", resp["auditId"])
}

func TestHandleQuery_ExecutionFailureReturns500(t *testing.T) {
	service := new(MockQueryService)
	service.On("Process", mock.Anything, mock.Anything).Return(
		&pipeline.Result{AuditID: "log-789"},
		services.NewExecutionError("fleet read failed", nil))

	rec := doQuery(t, service, `{"question":"list drones"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
	// Store error detail must not leak to the caller.
	assert.NotContains(t, rec.Body.String(), "fleet read failed")
	assert.Contains(t, rec.Body.String(), "log-789")
}
