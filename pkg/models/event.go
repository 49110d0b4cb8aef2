package models

// EventType tags a producer event envelope.
type EventType string

const (
	// EventChargerStatusUpdate carries a fresh ChargerRecord for one device.
	// This is the only event kind the registry layer applies.
	EventChargerStatusUpdate EventType = "charger_status_update"

	// EventChargerRemoved is emitted by the producer when a previously seen
	// device stops answering. The registry keeps the last known record
	// (no expiry), so this kind is logged and otherwise ignored.
	EventChargerRemoved EventType = "charger_removed"
)

// BridgeEvent is the tagged envelope the producer writes in monitoring mode,
// one JSON document per line, and the payload pushed to bridge subscribers.
type BridgeEvent struct {
	Event EventType      `json:"event"`
	Data  *ChargerRecord `json:"data,omitempty"`
	IP    string         `json:"ip,omitempty"` // charger_removed only
}

// IsStatusUpdate reports whether the event is a well-formed status update,
// i.e. the one kind the registry applies.
func (e BridgeEvent) IsStatusUpdate() bool {
	return e.Event == EventChargerStatusUpdate && e.Data != nil && e.Data.IP != ""
}
