package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/junction-boxers/fleetgate/models"
	"github.com/junction-boxers/fleetgate/services"
)

// MockFleetRepository is a mock implementation of FleetRepository
type MockFleetRepository struct {
	mock.Mock
}

func (m *MockFleetRepository) Find(ctx context.Context, filter map[string]interface{}, projection map[string]bool) ([]map[string]interface{}, error) {
	args := m.Called(ctx, filter, projection)
	if records := args.Get(0); records != nil {
		return records.([]map[string]interface{}), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFleetRepository) AggregateOne(ctx context.Context, pipeline []map[string]interface{}) (map[string]interface{}, error) {
	args := m.Called(ctx, pipeline)
	if doc := args.Get(0); doc != nil {
		return doc.(map[string]interface{}), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestService(fleet *MockFleetRepository) *Service {
	logger, _ := zap.NewDevelopment()
	return NewService(fleet, logger)
}

func TestExecute_NilQuery(t *testing.T) {
	service := newTestService(new(MockFleetRepository))

	_, err := service.Execute(context.Background(), nil)

	assert.Error(t, err)
}

func TestExecute_Count(t *testing.T) {
	fleet := new(MockFleetRepository)
	fleet.On("AggregateOne", mock.Anything, mock.MatchedBy(func(pipeline []map[string]interface{}) bool {
		return len(pipeline) == 2 && pipeline[1]["$count"] == "activeDrones"
	})).Return(map[string]interface{}{"activeDrones": int32(8)}, nil)
	service := newTestService(fleet)

	result, err := service.Execute(context.Background(), &models.StructuredQuery{
		Filter:    map[string]interface{}{"status": "active"},
		Aggregate: &models.Aggregate{Kind: models.AggregateCount, OutputName: "activeDrones"},
	})

	require.NoError(t, err)
	assert.True(t, result.IsAggregate())
	assert.Equal(t, int32(8), result.Aggregate["activeDrones"])
}

func TestExecute_CountNoMatchesYieldsZero(t *testing.T) {
	fleet := new(MockFleetRepository)
	fleet.On("AggregateOne", mock.Anything, mock.Anything).Return(nil, nil)
	service := newTestService(fleet)

	result, err := service.Execute(context.Background(), &models.StructuredQuery{
		Filter:    map[string]interface{}{"status": "retired"},
		Aggregate: &models.Aggregate{Kind: models.AggregateCount, OutputName: "count"},
	})

	require.NoError(t, err)
	assert.Equal(t, int32(0), result.Aggregate["count"])
}

func TestExecute_Average(t *testing.T) {
	fleet := new(MockFleetRepository)
	fleet.On("AggregateOne", mock.Anything, mock.MatchedBy(func(pipeline []map[string]interface{}) bool {
		group, ok := pipeline[1]["$group"].(map[string]interface{})
		if !ok {
			return false
		}
		avg, ok := group["average"].(map[string]interface{})
		return ok && avg["$avg"] == "$telemetry.batteryLevel"
	})).Return(map[string]interface{}{"_id": nil, "average": 72.5}, nil)
	service := newTestService(fleet)

	result, err := service.Execute(context.Background(), &models.StructuredQuery{
		Filter:    map[string]interface{}{},
		Aggregate: &models.Aggregate{Kind: models.AggregateAvg, Field: "telemetry.batteryLevel"},
	})

	require.NoError(t, err)
	assert.Equal(t, 72.5, result.Aggregate["average"])
}

func TestExecute_AverageNoMatchesYieldsZero(t *testing.T) {
	fleet := new(MockFleetRepository)
	fleet.On("AggregateOne", mock.Anything, mock.Anything).Return(nil, nil)
	service := newTestService(fleet)

	result, err := service.Execute(context.Background(), &models.StructuredQuery{
		Filter:    map[string]interface{}{"status": "retired"},
		Aggregate: &models.Aggregate{Kind: models.AggregateAvg, Field: "telemetry.batteryLevel"},
	})

	require.NoError(t, err)
	assert.Equal(t, float64(0), result.Aggregate["average"])
}

func TestExecute_SumUsesTotalOutput(t *testing.T) {
	fleet := new(MockFleetRepository)
	fleet.On("AggregateOne", mock.Anything, mock.Anything).Return(
		map[string]interface{}{"_id": nil, "total": 431.0}, nil)
	service := newTestService(fleet)

	result, err := service.Execute(context.Background(), &models.StructuredQuery{
		Filter:    map[string]interface{}{},
		Aggregate: &models.Aggregate{Kind: models.AggregateSum, Field: "telemetry.flightDuration"},
	})

	require.NoError(t, err)
	assert.Equal(t, 431.0, result.Aggregate["total"])
}

func TestExecute_Find(t *testing.T) {
	records := []map[string]interface{}{
		{"droneId": "DS-001", "status": "active"},
		{"droneId": "DS-002", "status": "active"},
	}
	fleet := new(MockFleetRepository)
	fleet.On("Find", mock.Anything,
		map[string]interface{}{"status": "active"},
		map[string]bool{"droneId": true, "status": true, "_id": false},
	).Return(records, nil)
	service := newTestService(fleet)

	result, err := service.Execute(context.Background(), &models.StructuredQuery{
		Filter:     map[string]interface{}{"status": "active"},
		Projection: map[string]bool{"droneId": true, "status": true, "_id": false},
	})

	require.NoError(t, err)
	assert.False(t, result.IsAggregate())
	assert.Len(t, result.Records, 2)
}

func TestExecute_FindEmptyMatch(t *testing.T) {
	fleet := new(MockFleetRepository)
	fleet.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	service := newTestService(fleet)

	result, err := service.Execute(context.Background(), &models.StructuredQuery{
		Filter: map[string]interface{}{"status": "lost"},
	})

	require.NoError(t, err)
	assert.NotNil(t, result.Records)
	assert.Empty(t, result.Records)
}

func TestExecute_StoreFailureWrapped(t *testing.T) {
	fleet := new(MockFleetRepository)
	fleet.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset by peer"))
	service := newTestService(fleet)

	_, err := service.Execute(context.Background(), &models.StructuredQuery{
		Filter: map[string]interface{}{},
	})

	require.Error(t, err)
	assert.True(t, services.IsExecutionError(err))
	assert.Contains(t, err.Error(), "connection reset by peer")
}
