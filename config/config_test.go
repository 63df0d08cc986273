package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "junction-boxers", cfg.Mongo.Database)
	assert.Equal(t, "drones", cfg.Mongo.FleetCollection)
	assert.Equal(t, "auditLogs", cfg.Mongo.AuditCollection)
	assert.True(t, cfg.Policy.PrecheckEnabled)
	assert.Equal(t, 5*time.Second, cfg.Policy.AuditTimeout)
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("MONGODB_DATABASE", "fleet-test")
	t.Setenv("POLICY_PRECHECK_ENABLED", "false")
	t.Setenv("GEMINI_TIMEOUT", "15s")

	cfg, err := New()

	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "fleet-test", cfg.Mongo.Database)
	assert.False(t, cfg.Policy.PrecheckEnabled)
	assert.Equal(t, 15*time.Second, cfg.Gemini.Timeout)
}

func TestValidate_ProductionRequiresAPIKey(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := New()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini API key")
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 8080}
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())
}
