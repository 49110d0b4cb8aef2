package registry

import "chargerbridge/pkg/models"

// PublishingRegistry wraps a Registry and publishes an event after each upsert.
type PublishingRegistry struct {
	inner   *Registry
	eventCh chan<- models.BridgeEvent
}

// NewPublishingRegistry creates a wrapper that publishes events on Upsert.
func NewPublishingRegistry(inner *Registry, eventCh chan<- models.BridgeEvent) *PublishingRegistry {
	return &PublishingRegistry{inner: inner, eventCh: eventCh}
}

// Upsert applies the record to the inner registry, then re-emits the update
// envelope on the event channel for downstream subscribers. The send happens
// after the mutation so a subscriber reading the registry on notification
// always sees at least this record's state.
func (r *PublishingRegistry) Upsert(record models.ChargerRecord) bool {
	replaced := r.inner.Upsert(record)
	r.eventCh <- models.BridgeEvent{
		Event: models.EventChargerStatusUpdate,
		Data:  &record,
	}
	return replaced
}

// Snapshot passes through to the inner registry (no event).
func (r *PublishingRegistry) Snapshot() []models.ChargerRecord {
	return r.inner.Snapshot()
}

// Get passes through to the inner registry (no event).
func (r *PublishingRegistry) Get(ip string) (models.ChargerRecord, bool) {
	return r.inner.Get(ip)
}
