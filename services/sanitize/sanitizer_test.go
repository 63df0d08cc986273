package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junction-boxers/fleetgate/models"
)

func testTaxonomy() models.FieldTaxonomy {
	return models.FieldTaxonomy{
		HighRiskFields: []string{"firstName", "lastName", "email", "licenseNumber", "phone"},
		AllowedFields: []string{
			"droneId", "model", "status", "location",
			"telemetry.batteryLevel", "telemetry.altitudeMeters",
		},
	}
}

func TestApply_StripsPilotInformation(t *testing.T) {
	result := &models.RetrievalResult{
		Records: []map[string]interface{}{
			{
				"droneId": "DS-001",
				"status":  "active",
				"pilot": map[string]interface{}{
					"firstName": "Alex",
					"lastName":  "Chen",
					"email":     "alex.chen@junction.com",
				},
			},
		},
	}

	sanitized := Apply(result, testTaxonomy())

	require.Len(t, sanitized.Records, 1)
	record := sanitized.Records[0]
	assert.Equal(t, "DS-001", record["droneId"])
	assert.Equal(t, "active", record["status"])
	assert.NotContains(t, record, "pilot")
}

func TestApply_ExactFieldAdmitsWholeValue(t *testing.T) {
	result := &models.RetrievalResult{
		Records: []map[string]interface{}{
			{
				"droneId": "DS-002",
				"location": map[string]interface{}{
					"latitude":  40.4168,
					"longitude": -3.7038,
				},
			},
		},
	}

	sanitized := Apply(result, testTaxonomy())

	location, ok := sanitized.Records[0]["location"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 40.4168, location["latitude"])
}

func TestApply_PrefixFieldFiltersSubdocument(t *testing.T) {
	result := &models.RetrievalResult{
		Records: []map[string]interface{}{
			{
				"droneId": "DS-003",
				"telemetry": map[string]interface{}{
					"batteryLevel":   88.0,
					"altitudeMeters": 120.0,
					"speedMps":       14.2,
				},
			},
		},
	}

	// speedMps is not in this taxonomy's allowed set, so only the
	// allowed telemetry leaves survive.
	sanitized := Apply(result, testTaxonomy())

	telemetry, ok := sanitized.Records[0]["telemetry"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 88.0, telemetry["batteryLevel"])
	assert.Equal(t, 120.0, telemetry["altitudeMeters"])
	assert.NotContains(t, telemetry, "speedMps")
}

func TestApply_Idempotent(t *testing.T) {
	result := &models.RetrievalResult{
		Records: []map[string]interface{}{
			{
				"droneId": "DS-001",
				"status":  "active",
				"pilot":   map[string]interface{}{"email": "alex.chen@junction.com"},
				"telemetry": map[string]interface{}{
					"batteryLevel": 91.0,
					"speedMps":     9.5,
				},
			},
		},
	}
	taxonomy := testTaxonomy()

	once := Apply(result, taxonomy)
	twice := Apply(&models.RetrievalResult{Records: once.Records}, taxonomy)

	assert.Equal(t, once.Records, twice.Records)
}

func TestApply_AggregatePassesThrough(t *testing.T) {
	result := &models.RetrievalResult{
		Aggregate: map[string]interface{}{"activeDrones": int32(8)},
	}

	sanitized := Apply(result, testTaxonomy())

	require.Len(t, sanitized.Records, 1)
	assert.Equal(t, int32(8), sanitized.Records[0]["activeDrones"])
}

func TestApply_NilResult(t *testing.T) {
	sanitized := Apply(nil, testTaxonomy())

	assert.NotNil(t, sanitized.Records)
	assert.Empty(t, sanitized.Records)
}

func TestApply_AbsentFieldsAreNotAnError(t *testing.T) {
	result := &models.RetrievalResult{
		Records: []map[string]interface{}{
			{"droneId": "DS-004"},
		},
	}

	sanitized := Apply(result, testTaxonomy())

	require.Len(t, sanitized.Records, 1)
	assert.Equal(t, map[string]interface{}{"droneId": "DS-004"}, sanitized.Records[0])
}
