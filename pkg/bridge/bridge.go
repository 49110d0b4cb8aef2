// Package bridge is the boundary the presentation layer talks to: a pull
// operation (one-shot snapshot) and a push subscription (live status
// updates). Incoming events are reconciled into the device registry before
// subscribers are notified, so the registry is the single source of truth
// for current charger state.
package bridge

import (
	"context"
	"log/slog"
	"sync"

	"chargerbridge/pkg/models"
	"chargerbridge/pkg/registry"
	"chargerbridge/pkg/supervisor"
)

// Snapshotter is the one-shot snapshot operation (implemented by the gateway).
type Snapshotter interface {
	FetchSnapshot(ctx context.Context) models.SnapshotResult
}

// Monitor is the streaming-session surface the bridge drives (implemented by
// the supervisor). Start's onEvent callback may be handed any producer event;
// the bridge applies only well-formed status updates.
type Monitor interface {
	Start(onEvent func(models.BridgeEvent)) (*supervisor.Handle, error)
	Stop(handle *supervisor.Handle)
	Active() bool
}

// Bridge wires the gateway, supervisor, and registry together behind the
// two-operation facade.
type Bridge struct {
	snapshots Snapshotter
	monitor   Monitor
	devices   *registry.Registry
	publisher *registry.PublishingRegistry
	eventCh   chan models.BridgeEvent

	mu          sync.Mutex
	handle      *supervisor.Handle
	subscribers map[int]func(models.BridgeEvent)
	nextSubID   int
}

// New creates a Bridge. queueSize bounds the in-flight event queue between
// the supervisor's decode loop and subscriber dispatch.
func New(snapshots Snapshotter, monitor Monitor, devices *registry.Registry, queueSize int) *Bridge {
	eventCh := make(chan models.BridgeEvent, queueSize)
	return &Bridge{
		snapshots:   snapshots,
		monitor:     monitor,
		devices:     devices,
		publisher:   registry.NewPublishingRegistry(devices, eventCh),
		eventCh:     eventCh,
		subscribers: make(map[int]func(models.BridgeEvent)),
	}
}

// Run starts the monitoring session and the dispatch loop, then blocks until
// ctx is cancelled. On cancellation the owned subprocess is terminated before
// Run returns (guaranteed release on shutdown).
func (b *Bridge) Run(ctx context.Context) {
	slog.Info("Starting bridge", "component", "Bridge")

	if err := b.ensureMonitor(); err != nil {
		// A missing producer is not fatal to the bridge: the snapshot path
		// and the registry's last known state stay available, and a consumer
		// may call RestartMonitor once the producer is installed.
		slog.Error("Monitoring unavailable", "component", "Bridge", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping bridge", "component", "Bridge")
			b.stopMonitor()
			return
		case event := <-b.eventCh:
			b.dispatch(event)
		}
	}
}

// GetSnapshot triggers the one-shot snapshot call and returns its result
// directly. It does not consult or update the registry.
func (b *Bridge) GetSnapshot(ctx context.Context) models.SnapshotResult {
	return b.snapshots.FetchSnapshot(ctx)
}

// Subscribe registers onUpdate for every future status update and returns
// the corresponding unsubscribe function. Events are delivered one at a
// time, in arrival order, after the registry upsert has been applied.
func (b *Bridge) Subscribe(onUpdate func(models.BridgeEvent)) func() {
	b.mu.Lock()
	id := b.nextSubID
	b.nextSubID++
	b.subscribers[id] = onUpdate
	count := len(b.subscribers)
	b.mu.Unlock()

	slog.Debug("Subscriber added", "component", "Bridge", "subscriber_id", id, "total", count)

	return func() {
		b.mu.Lock()
		delete(b.subscribers, id)
		b.mu.Unlock()
		slog.Debug("Subscriber removed", "component", "Bridge", "subscriber_id", id)
	}
}

// Chargers returns the registry's current contents in stable order.
func (b *Bridge) Chargers() []models.ChargerRecord {
	return b.devices.Snapshot()
}

// Charger returns the last known record for one device.
func (b *Bridge) Charger(ip string) (models.ChargerRecord, bool) {
	return b.devices.Get(ip)
}

// Monitoring reports whether a monitoring subprocess is currently owned.
func (b *Bridge) Monitoring() bool {
	return b.monitor.Active()
}

// RestartMonitor deliberately respawns the monitoring session after the
// producer exited. A no-op while a session is active (the supervisor never
// spawns a second subprocess).
func (b *Bridge) RestartMonitor() error {
	return b.ensureMonitor()
}

func (b *Bridge) ensureMonitor() error {
	handle, err := b.monitor.Start(b.applyEvent)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.handle = handle
	b.mu.Unlock()
	return nil
}

func (b *Bridge) stopMonitor() {
	b.mu.Lock()
	handle := b.handle
	b.handle = nil
	b.mu.Unlock()

	if handle == nil {
		return
	}

	// Stop waits for the supervisor's pump to wind down, and the pump may be
	// blocked delivering into a full eventCh now that the dispatch loop has
	// stopped. Keep draining while Stop runs or shutdown would deadlock.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		b.monitor.Stop(handle)
	}()
	for {
		select {
		case <-stopped:
			return
		case <-b.eventCh:
			// discarded, we are shutting down
		}
	}
}

// applyEvent is the supervisor's callback: reconcile into the registry, which
// re-emits the envelope on eventCh for the dispatch loop. Called sequentially
// from the supervisor's pump goroutine, so same-device updates apply in
// arrival order (last write wins).
func (b *Bridge) applyEvent(event models.BridgeEvent) {
	if !event.IsStatusUpdate() {
		// The supervisor already filters to well-formed updates; tolerate
		// Monitor implementations that do not.
		return
	}
	b.publisher.Upsert(*event.Data)
}

// dispatch fans one event out to the current subscribers, one at a time.
func (b *Bridge) dispatch(event models.BridgeEvent) {
	b.mu.Lock()
	callbacks := make([]func(models.BridgeEvent), 0, len(b.subscribers))
	for _, callback := range b.subscribers {
		callbacks = append(callbacks, callback)
	}
	b.mu.Unlock()

	for _, callback := range callbacks {
		callback(event)
	}
}
