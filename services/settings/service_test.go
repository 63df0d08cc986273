package settings

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

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, callerID string) (*models.CallerSettings, error) {
	args := m.Called(ctx, callerID)
	if settings := args.Get(0); settings != nil {
		return settings.(*models.CallerSettings), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, settings *models.CallerSettings) (bool, error) {
	args := m.Called(ctx, settings)
	return args.Bool(0), args.Error(1)
}

func defaultTaxonomy() models.FieldTaxonomy {
	return models.FieldTaxonomy{
		HighRiskFields: []string{"email", "phone"},
		AllowedFields:  []string{"droneId", "status"},
	}
}

func newTestService(repo *MockSettingsRepository) *Service {
	logger, _ := zap.NewDevelopment()
	return NewService(repo, defaultTaxonomy(), logger)
}

func TestResolve_EmptyCallerGetsDefaults(t *testing.T) {
	repo := new(MockSettingsRepository)
	service := newTestService(repo)

	taxonomy := service.Resolve(context.Background(), "")

	assert.Equal(t, defaultTaxonomy(), taxonomy)
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestResolve_StoredSettingsWin(t *testing.T) {
	repo := new(MockSettingsRepository)
	repo.On("Get", mock.Anything, "caller-1").Return(&models.CallerSettings{
		CallerID:       "caller-1",
		HighRiskFields: []string{"email"},
		AllowedFields:  []string{"droneId", "status", "model"},
	}, nil)
	service := newTestService(repo)

	taxonomy := service.Resolve(context.Background(), "caller-1")

	assert.Contains(t, taxonomy.AllowedFields, "model")
}

func TestResolve_StoreFailureFallsBackToDefaults(t *testing.T) {
	repo := new(MockSettingsRepository)
	repo.On("Get", mock.Anything, "caller-1").Return(nil, errors.New("server selection timeout"))
	service := newTestService(repo)

	taxonomy := service.Resolve(context.Background(), "caller-1")

	assert.Equal(t, defaultTaxonomy(), taxonomy)
}

func TestResolve_MissingSettingsFallBackToDefaults(t *testing.T) {
	repo := new(MockSettingsRepository)
	repo.On("Get", mock.Anything, "caller-2").Return(nil, nil)
	service := newTestService(repo)

	taxonomy := service.Resolve(context.Background(), "caller-2")

	assert.Equal(t, defaultTaxonomy(), taxonomy)
}

func TestGet_DefaultFilledWhenAbsent(t *testing.T) {
	repo := new(MockSettingsRepository)
	repo.On("Get", mock.Anything, "caller-3").Return(nil, nil)
	service := newTestService(repo)

	stored, err := service.Get(context.Background(), "caller-3")

	require.NoError(t, err)
	assert.Equal(t, "caller-3", stored.CallerID)
	assert.Equal(t, defaultTaxonomy().AllowedFields, stored.AllowedFields)
}

func TestUpdate_RequiresCallerID(t *testing.T) {
	service := newTestService(new(MockSettingsRepository))

	_, err := service.Update(context.Background(), &models.CallerSettings{
		AllowedFields: []string{"droneId"},
	})

	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
}

func TestUpdate_RejectsOverlappingPartition(t *testing.T) {
	service := newTestService(new(MockSettingsRepository))

	_, err := service.Update(context.Background(), &models.CallerSettings{
		CallerID:       "caller-1",
		HighRiskFields: []string{"email", "status"},
		AllowedFields:  []string{"droneId", "status"},
	})

	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
}

func TestUpdate_Upserts(t *testing.T) {
	repo := new(MockSettingsRepository)
	repo.On("Upsert", mock.Anything, mock.Anything).Return(true, nil)
	service := newTestService(repo)

	created, err := service.Update(context.Background(), &models.CallerSettings{
		CallerID:      "caller-1",
		AllowedFields: []string{"droneId", "status"},
	})

	require.NoError(t, err)
	assert.True(t, created)
}
