// Package registry holds the latest known record per charger, keyed by IP.
// Insertion order is preserved so list rendering stays stable: new devices
// append, updated devices keep their original position. There is no expiry
// and no deletion; a device that stops reporting keeps its last known state.
package registry

import (
	"sync"

	"chargerbridge/pkg/models"
)

// Registry is an ordered, keyed collection of ChargerRecords.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	index   map[string]int // ip -> position in records
	records []models.ChargerRecord
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Upsert applies a record: replace in place if the IP is already known,
// append otherwise. This is the sole mutation path. Returns true when an
// existing record was replaced.
func (r *Registry) Upsert(record models.ChargerRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pos, ok := r.index[record.IP]; ok {
		r.records[pos] = record
		return true
	}
	r.index[record.IP] = len(r.records)
	r.records = append(r.records, record)
	return false
}

// Get returns the latest record for an IP, if known.
func (r *Registry) Get(ip string) (models.ChargerRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[ip]
	if !ok {
		return models.ChargerRecord{}, false
	}
	return r.records[pos], true
}

// Snapshot returns a copy of the current contents in stable order.
func (r *Registry) Snapshot() []models.ChargerRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ChargerRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of distinct devices seen so far.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
