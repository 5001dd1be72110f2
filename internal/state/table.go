package state

import (
	"sync"

	"github.com/vitalwatch/vitalwatch/internal/analysis"
	"github.com/vitalwatch/vitalwatch/internal/models"
)

// Entry is the latest sample and its analysis for one patient.
type Entry struct {
	LatestData models.TelemetryPayload `json:"latest_data"`
	Analysis   analysis.Result         `json:"analysis"`
}

// Table maps patient IDs to their most recent ingested state. It is written
// only by the ingestion path and read by the query endpoints; writes are
// last-write-wins under concurrent ingestion for the same patient.
type Table struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewTable creates an empty patient state table.
func NewTable() *Table {
	return &Table{
		entries: make(map[string]Entry),
	}
}

// Get returns the entry for one patient, if present.
func (t *Table) Get(patientID string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entry, ok := t.entries[patientID]
	return entry, ok
}

// GetAll returns a snapshot copy of all entries.
func (t *Table) GetAll() map[string]Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make(map[string]Entry, len(t.entries))
	for id, entry := range t.entries {
		snapshot[id] = entry
	}
	return snapshot
}

// Put overwrites the entry for one patient.
func (t *Table) Put(patientID string, entry Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[patientID] = entry
}
