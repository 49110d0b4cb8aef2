package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargerbridge/pkg/models"
)

func record(ip, status string) models.ChargerRecord {
	return models.ChargerRecord{IP: ip, Status: status}
}

func TestUpsertUniqueness(t *testing.T) {
	r := New()

	// Apply a sequence with repeated IPs; distinct entries must equal
	// distinct IP values.
	sequence := []string{"10.0.0.1", "10.0.0.2", "10.0.0.1", "10.0.0.3", "10.0.0.2", "10.0.0.1"}
	for i, ip := range sequence {
		r.Upsert(record(ip, fmt.Sprintf("update-%d", i)))
	}

	assert.Equal(t, 3, r.Len())
}

func TestUpsertLastWriteWinsPositionStable(t *testing.T) {
	r := New()
	r.Upsert(record("10.0.0.1", "Available"))
	r.Upsert(record("10.0.0.2", "Available"))
	r.Upsert(record("10.0.0.3", "Available"))

	// Update the middle device: it must keep position 1 and carry the new
	// record, not the old one.
	replaced := r.Upsert(record("10.0.0.2", "Charging"))
	assert.True(t, replaced)

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "10.0.0.2", snapshot[1].IP)
	assert.Equal(t, "Charging", snapshot[1].Status)
	assert.Equal(t, "10.0.0.1", snapshot[0].IP)
	assert.Equal(t, "10.0.0.3", snapshot[2].IP)
}

func TestUpsertAppendsNewDevices(t *testing.T) {
	r := New()
	assert.False(t, r.Upsert(record("10.0.0.1", "Available")))
	assert.False(t, r.Upsert(record("10.0.0.2", "Available")))

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "10.0.0.1", snapshot[0].IP)
	assert.Equal(t, "10.0.0.2", snapshot[1].IP)
}

func TestGet(t *testing.T) {
	r := New()
	r.Upsert(record("10.0.0.1", "Preparing"))

	got, ok := r.Get("10.0.0.1")
	require.True(t, ok)
	assert.Equal(t, "Preparing", got.Status)

	_, ok = r.Get("10.0.0.99")
	assert.False(t, ok)
}

func TestSnapshotIsACopy(t *testing.T) {
	r := New()
	r.Upsert(record("10.0.0.1", "Available"))

	snapshot := r.Snapshot()
	snapshot[0].Status = "mutated"

	got, _ := r.Get("10.0.0.1")
	assert.Equal(t, "Available", got.Status)
}

func TestPublishingRegistryEmitsAfterMutation(t *testing.T) {
	inner := New()
	eventCh := make(chan models.BridgeEvent, 4)
	pub := NewPublishingRegistry(inner, eventCh)

	pub.Upsert(record("10.0.0.1", "Available"))
	pub.Upsert(record("10.0.0.1", "Charging"))

	// Two events, in order, and the registry already reflects each one.
	first := <-eventCh
	assert.Equal(t, models.EventChargerStatusUpdate, first.Event)
	assert.Equal(t, "Available", first.Data.Status)

	second := <-eventCh
	assert.Equal(t, "Charging", second.Data.Status)

	got, ok := pub.Get("10.0.0.1")
	require.True(t, ok)
	assert.Equal(t, "Charging", got.Status)
	assert.Len(t, pub.Snapshot(), 1)
}
