// Package models defines the data shapes exchanged between the bridge core and
// the external charger producer. The producer's process-boundary protocol is the
// only bit-exact contract in the system; everything here mirrors it.
package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// StatusClass is the normalized category of a charger status token.
// The producer reports free-form status strings; classification is
// case-insensitive and anything unrecognized maps to StatusUnknown.
type StatusClass string

const (
	StatusAvailable   StatusClass = "available"
	StatusCharging    StatusClass = "charging"
	StatusPreparing   StatusClass = "preparing"
	StatusSuspendedEV StatusClass = "suspendedev"
	StatusUnknown     StatusClass = "unknown"
)

// ClassifyStatus maps a raw producer status token to its StatusClass.
// Tokens are trimmed and lower-cased before matching.
func ClassifyStatus(raw string) StatusClass {
	switch StatusClass(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusAvailable:
		return StatusAvailable
	case StatusCharging:
		return StatusCharging
	case StatusPreparing:
		return StatusPreparing
	case StatusSuspendedEV:
		return StatusSuspendedEV
	default:
		return StatusUnknown
	}
}

// Measurement is a numeric reading from the producer. The producer substitutes
// the string "N/A" for readings it could not obtain, and occasionally reports
// numbers as strings, so a Measurement decodes from a JSON number, a numeric
// string, or a placeholder string. A placeholder decodes as zero with Valid
// unset; the record as a whole is still usable.
type Measurement struct {
	Value float64
	Valid bool
}

func (m *Measurement) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case float64:
		m.Value, m.Valid = v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			// Placeholder like "N/A"; keep the zero value.
			m.Value, m.Valid = 0, false
			return nil
		}
		m.Value, m.Valid = parsed, true
	case nil:
		m.Value, m.Valid = 0, false
	default:
		m.Value, m.Valid = 0, false
	}
	return nil
}

func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte(`"N/A"`), nil
	}
	return json.Marshal(m.Value)
}

// ChargerRecord is one snapshot of one charger, keyed by IP address.
// Records are immutable once constructed; an update replaces the whole record.
type ChargerRecord struct {
	IP           string `json:"ip" binding:"required"`
	SystemIP     string `json:"system_ip,omitempty"`
	HostnameInfo string `json:"hostname_info"`
	Status       string `json:"status"`

	ChargerVendor string `json:"charger_vendor,omitempty"`
	ChargerModel  string `json:"charger_model,omitempty"`

	SystemTemp     Measurement `json:"system_temp"`     // °C
	ACVoltage      Measurement `json:"ac_voltage"`      // V
	AvailablePower Measurement `json:"available_power"` // W
	Current        Measurement `json:"current"`         // A
	CurrentOffered Measurement `json:"current_offered"` // A
	Energy         Measurement `json:"energy"`          // kWh

	EVSEConnectorType string `json:"evse_connector_type,omitempty"`
	EVSEPPState       string `json:"evse_pp_state,omitempty"`
}

// StatusClass returns the normalized category of the record's status token.
func (r ChargerRecord) StatusClass() StatusClass {
	return ClassifyStatus(r.Status)
}

// SnapshotResult is the discriminated outcome of a one-shot snapshot call.
// Failures are values, never panics: Success=false carries a human-readable
// Message and no devices.
type SnapshotResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Devices []ChargerRecord `json:"devices,omitempty"`
}

// SnapshotFailure builds a failed SnapshotResult from an error.
func SnapshotFailure(err error) SnapshotResult {
	return SnapshotResult{Success: false, Message: err.Error()}
}
