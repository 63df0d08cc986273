package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTaxonomy_Defaults(t *testing.T) {
	tax, blocklist, err := LoadTaxonomy(PolicyConfig{})

	require.NoError(t, err)
	assert.Contains(t, tax.HighRiskFields, "email")
	assert.Contains(t, tax.AllowedFields, "telemetry.batteryLevel")
	assert.NotEmpty(t, blocklist)
}

func TestLoadTaxonomy_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
high_risk_fields:
  - email
allowed_fields:
  - droneId
  - status
blocklist:
  - passport
`), 0o600))

	tax, blocklist, err := LoadTaxonomy(PolicyConfig{TaxonomyFile: path})

	require.NoError(t, err)
	assert.Equal(t, []string{"email"}, tax.HighRiskFields)
	assert.Equal(t, []string{"droneId", "status"}, tax.AllowedFields)
	assert.Equal(t, []string{"passport"}, blocklist)
}

func TestLoadTaxonomy_RejectsOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
high_risk_fields:
  - status
allowed_fields:
  - status
`), 0o600))

	_, _, err := LoadTaxonomy(PolicyConfig{TaxonomyFile: path})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "both high-risk and allowed")
}

func TestLoadTaxonomy_MissingFile(t *testing.T) {
	_, _, err := LoadTaxonomy(PolicyConfig{TaxonomyFile: "/nonexistent/taxonomy.yaml"})

	assert.Error(t, err)
}

func TestLoadTaxonomy_RequiresAllowedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("high_risk_fields:\n  - email\n"), 0o600))

	_, _, err := LoadTaxonomy(PolicyConfig{TaxonomyFile: path})

	assert.Error(t, err)
}
