package models

import (
	"strings"
	"time"
)

// StationStatus is the operational state of a charging station.
type StationStatus string

const (
	StatusActive   StationStatus = "active"
	StatusInactive StationStatus = "inactive"
)

// ConnectorType enumerates supported charging connector standards.
type ConnectorType string

const (
	ConnectorType1   ConnectorType = "Type 1"
	ConnectorType2   ConnectorType = "Type 2"
	ConnectorCCS     ConnectorType = "CCS"
	ConnectorCHAdeMO ConnectorType = "CHAdeMO"
	ConnectorTesla   ConnectorType = "Tesla"
)

// ConnectorTypes lists every valid connector type.
var ConnectorTypes = []ConnectorType{
	ConnectorType1,
	ConnectorType2,
	ConnectorCCS,
	ConnectorCHAdeMO,
	ConnectorTesla,
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Latitude  float64 `db:"latitude" json:"latitude"`
	Longitude float64 `db:"longitude" json:"longitude"`
}

// Station is a persisted charging station record. CreatedBy is set once at
// creation and never reassigned.
type Station struct {
	ID            int64         `db:"id" json:"id"`
	Name          string        `db:"name" json:"name"`
	Location      Location      `json:"location"`
	Status        StationStatus `db:"status" json:"status"`
	PowerOutput   float64       `db:"power_output" json:"powerOutput"`
	ConnectorType ConnectorType `db:"connector_type" json:"connectorType"`
	CreatedBy     int64         `db:"created_by" json:"createdBy"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updatedAt"`
}

// OwnerSummary is the creator info attached to listed stations.
type OwnerSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// StationListItem is a station optionally enriched with owner info and a
// canModify hint for authenticated viewers. The hint is a UI convenience; the
// server re-checks the access policy on every mutation.
type StationListItem struct {
	Station
	Owner     *OwnerSummary `json:"owner,omitempty"`
	CanModify bool          `json:"canModify"`
}

// StationFilters narrows station listings. Zero values mean no filtering;
// filters compose conjunctively.
type StationFilters struct {
	Status        string
	ConnectorType string
	MinPower      *float64
}

// StationInput carries station fields from a client. Nil fields are absent:
// required on create, left unchanged on update.
type StationInput struct {
	Name          *string        `json:"name"`
	Location      *Location      `json:"location"`
	Status        *StationStatus `json:"status"`
	PowerOutput   *float64       `json:"powerOutput"`
	ConnectorType *ConnectorType `json:"connectorType"`
}

// Validate checks a create payload, treating absent fields as violations.
// All failures are collected so a client sees every problem at once.
func (in StationInput) Validate() []FieldError {
	return in.validate(true)
}

// ValidatePartial checks an update payload; absent fields are skipped because
// the merged record keeps their current, already-valid values.
func (in StationInput) ValidatePartial() []FieldError {
	return in.validate(false)
}

func (in StationInput) validate(required bool) []FieldError {
	var errs []FieldError

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			errs = append(errs, FieldError{Field: "name", Message: "Station name is required"})
		}
	} else if required {
		errs = append(errs, FieldError{Field: "name", Message: "Station name is required"})
	}

	if in.Location != nil {
		if in.Location.Latitude < -90 || in.Location.Latitude > 90 {
			errs = append(errs, FieldError{Field: "location.latitude", Message: "Latitude must be between -90 and 90"})
		}
		if in.Location.Longitude < -180 || in.Location.Longitude > 180 {
			errs = append(errs, FieldError{Field: "location.longitude", Message: "Longitude must be between -180 and 180"})
		}
	} else if required {
		errs = append(errs,
			FieldError{Field: "location.latitude", Message: "Latitude must be between -90 and 90"},
			FieldError{Field: "location.longitude", Message: "Longitude must be between -180 and 180"},
		)
	}

	if in.Status != nil && *in.Status != StatusActive && *in.Status != StatusInactive {
		errs = append(errs, FieldError{Field: "status", Message: "Status must be either active or inactive"})
	}

	if in.PowerOutput != nil {
		if *in.PowerOutput < 0 {
			errs = append(errs, FieldError{Field: "powerOutput", Message: "Power output must be a positive number"})
		}
	} else if required {
		errs = append(errs, FieldError{Field: "powerOutput", Message: "Power output must be a positive number"})
	}

	if in.ConnectorType != nil {
		if !validConnector(*in.ConnectorType) {
			errs = append(errs, FieldError{Field: "connectorType", Message: "Invalid connector type"})
		}
	} else if required {
		errs = append(errs, FieldError{Field: "connectorType", Message: "Invalid connector type"})
	}

	return errs
}

// Apply copies present input fields onto the station. CreatedBy is untouched.
func (in StationInput) Apply(station *Station) {
	if in.Name != nil {
		station.Name = strings.TrimSpace(*in.Name)
	}
	if in.Location != nil {
		station.Location = *in.Location
	}
	if in.Status != nil {
		station.Status = *in.Status
	}
	if in.PowerOutput != nil {
		station.PowerOutput = *in.PowerOutput
	}
	if in.ConnectorType != nil {
		station.ConnectorType = *in.ConnectorType
	}
}

func validConnector(ct ConnectorType) bool {
	for _, known := range ConnectorTypes {
		if ct == known {
			return true
		}
	}
	return false
}
