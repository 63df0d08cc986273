package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/models"
)

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Insert(ctx context.Context, record *models.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, limit int) ([]*models.AuditRecord, error) {
	args := m.Called(ctx, limit)
	if records := args.Get(0); records != nil {
		return records.([]*models.AuditRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

// countingMetrics counts audit write failures
type countingMetrics struct {
	failures int
}

func (c *countingMetrics) ObserveAuditWriteFailure() {
	c.failures++
}

func TestRecord_Success(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	repo := new(MockAuditRepository)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	metrics := &countingMetrics{}
	recorder := NewRecorder(repo, metrics, time.Second, logger)

	record := models.NewAuditRecord("how many drones", "caller-1", time.Now())
	recorder.Record(context.Background(), record)

	repo.AssertCalled(t, "Insert", mock.Anything, record)
	assert.Zero(t, metrics.failures)
}

func TestRecord_FailureIsSwallowed(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	repo := new(MockAuditRepository)
	repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("write concern error"))
	metrics := &countingMetrics{}
	recorder := NewRecorder(repo, metrics, time.Second, logger)

	// Must not panic or propagate anything.
	recorder.Record(context.Background(), models.NewAuditRecord("q", "", time.Now()))

	assert.Equal(t, 1, metrics.failures)
}

func TestRecord_SurvivesCancelledCaller(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	repo := new(MockAuditRepository)
	var seenErr error
	repo.On("Insert", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			seenErr = args.Get(0).(context.Context).Err()
		}).
		Return(nil)
	recorder := NewRecorder(repo, nil, time.Second, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	recorder.Record(ctx, models.NewAuditRecord("q", "", time.Now()))

	// The write context must be detached from the cancelled caller.
	assert.NoError(t, seenErr)
}

func TestList_ClampsLimit(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	repo := new(MockAuditRepository)
	repo.On("List", mock.Anything, 50).Return([]*models.AuditRecord{}, nil)
	recorder := NewRecorder(repo, nil, time.Second, logger)

	_, err := recorder.List(context.Background(), 0)
	require.NoError(t, err)
	_, err = recorder.List(context.Background(), 9999)
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "List", 2)
}

func TestList_PassesExplicitLimit(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	repo := new(MockAuditRepository)
	repo.On("List", mock.Anything, 10).Return([]*models.AuditRecord{
		models.NewAuditRecord("q", "", time.Now()),
	}, nil)
	recorder := NewRecorder(repo, nil, time.Second, logger)

	records, err := recorder.List(context.Background(), 10)

	require.NoError(t, err)
	assert.Len(t, records, 1)
}
