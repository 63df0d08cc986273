package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/junction-boxers/fleetgate/models"
)

// taxonomyFile is the YAML shape of a taxonomy override file.
type taxonomyFile struct {
	HighRiskFields []string `yaml:"high_risk_fields"`
	AllowedFields  []string `yaml:"allowed_fields"`
	Blocklist      []string `yaml:"blocklist"`
}

// DefaultTaxonomy returns the built-in field taxonomy. High-risk names
// cover pilot identity and contact data; allowed names cover
// operational drone attributes.
func DefaultTaxonomy() models.FieldTaxonomy {
	return models.FieldTaxonomy{
		HighRiskFields: []string{
			"firstName", "lastName", "email", "licenseNumber", "phone",
		},
		AllowedFields: []string{
			"droneId", "model", "status", "location", "owner",
			"privacyLevel", "purpose",
			"telemetry.batteryLevel", "telemetry.altitudeMeters",
			"telemetry.speedMps", "telemetry.flightDuration",
		},
	}
}

// DefaultBlocklist returns the phrases the lexical pre-check denies
// outright without spending a classifier call.
func DefaultBlocklist() []string {
	return []string{"social security", "credit card", "home address", "passport"}
}

// LoadTaxonomy resolves the effective taxonomy and blocklist: the YAML
// file named by the policy config when set, the built-in defaults
// otherwise. The two field sets must not overlap.
func LoadTaxonomy(cfg PolicyConfig) (models.FieldTaxonomy, []string, error) {
	if cfg.TaxonomyFile == "" {
		return DefaultTaxonomy(), DefaultBlocklist(), nil
	}

	data, err := os.ReadFile(cfg.TaxonomyFile)
	if err != nil {
		return models.FieldTaxonomy{}, nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}

	var file taxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return models.FieldTaxonomy{}, nil, fmt.Errorf("failed to parse taxonomy file: %w", err)
	}

	tax := models.FieldTaxonomy{
		HighRiskFields: file.HighRiskFields,
		AllowedFields:  file.AllowedFields,
	}
	if len(tax.AllowedFields) == 0 {
		return models.FieldTaxonomy{}, nil, fmt.Errorf("taxonomy file defines no allowed fields")
	}
	for _, f := range tax.HighRiskFields {
		if tax.IsAllowed(f) {
			return models.FieldTaxonomy{}, nil, fmt.Errorf("taxonomy field %q is both high-risk and allowed", f)
		}
	}

	blocklist := file.Blocklist
	if blocklist == nil {
		blocklist = DefaultBlocklist()
	}

	return tax, blocklist, nil
}
