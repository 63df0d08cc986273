package models

import "time"

// Drone is a fleet record as stored in the drones collection. Pilot
// fields are the PII the taxonomy protects; everything else is
// operational.
type Drone struct {
	DroneID      string         `json:"droneId" bson:"droneId"`
	Model        string         `json:"model" bson:"model"`
	Status       string         `json:"status" bson:"status"`
	Location     *DroneLocation `json:"location,omitempty" bson:"location,omitempty"`
	Owner        string         `json:"owner,omitempty" bson:"owner,omitempty"`
	PrivacyLevel string         `json:"privacyLevel,omitempty" bson:"privacyLevel,omitempty"`
	Purpose      string         `json:"purpose,omitempty" bson:"purpose,omitempty"`
	Telemetry    *Telemetry     `json:"telemetry,omitempty" bson:"telemetry,omitempty"`
	Pilot        *Pilot         `json:"pilot,omitempty" bson:"pilot,omitempty"`
}

// DroneLocation is a coordinate pair.
type DroneLocation struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Telemetry holds live operational readings.
type Telemetry struct {
	BatteryLevel   float64 `json:"batteryLevel" bson:"batteryLevel"`
	AltitudeMeters float64 `json:"altitudeMeters" bson:"altitudeMeters"`
	SpeedMps       float64 `json:"speedMps" bson:"speedMps"`
	FlightDuration float64 `json:"flightDuration" bson:"flightDuration"`
}

// Pilot identifies the operator. Every field here except PilotID is
// high-risk PII.
type Pilot struct {
	PilotID       string `json:"pilotId" bson:"pilotId"`
	FirstName     string `json:"firstName" bson:"firstName"`
	LastName      string `json:"lastName" bson:"lastName"`
	Email         string `json:"email" bson:"email"`
	Phone         string `json:"phone" bson:"phone"`
	LicenseNumber string `json:"licenseNumber" bson:"licenseNumber"`
}

// CallerSettings is the per-caller policy taxonomy stored in the
// settings collection. Callers without a stored document fall back to
// the configured defaults.
type CallerSettings struct {
	CallerID       string    `json:"callerId" bson:"callerId"`
	HighRiskFields []string  `json:"highRiskFields" bson:"highRiskFields"`
	AllowedFields  []string  `json:"allowedFields" bson:"allowedFields"`
	AllowedQueries []string  `json:"allowedQueries" bson:"allowedQueries"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Taxonomy view of the caller settings.
func (s *CallerSettings) Taxonomy() FieldTaxonomy {
	return FieldTaxonomy{
		HighRiskFields: s.HighRiskFields,
		AllowedFields:  s.AllowedFields,
	}
}
