// Package neighbordb tracks per-neighbor routing state: which bundles a
// neighbor has already seen and how many transfers towards it are still
// outstanding.
//
// The database is guarded by a single coarse lock which the caller holds
// explicitly. This lets the routing worker batch a lookup with the decisions
// and reservations that follow it into one atomic section. Neighbor counts
// are small, so simplicity wins over lock granularity here.
package neighbordb

import (
	"sync"

	"github.com/dtngo/dtnd/model/dtn"
)

// DefaultSlotCapacity bounds the concurrent transfers towards one neighbor.
const DefaultSlotCapacity = 5

// Config holds the per-entry tuning knobs. The summary sizing is passed
// through to the underlying bloom filter.
type Config struct {
	// SlotCapacity is the number of transfer slots per neighbor.
	SlotCapacity uint
	// SlotThreshold is the minimum number of free slots required for a
	// routing task to proceed.
	SlotThreshold uint
	// SummaryItems is the expected number of bundle identities per summary.
	SummaryItems uint
	// SummaryFPRate is the acceptable false-positive rate of the summary.
	SummaryFPRate float64
}

// DefaultConfig returns the configuration used when no explicit tuning is
// provided.
func DefaultConfig() Config {
	return Config{
		SlotCapacity:  DefaultSlotCapacity,
		SlotThreshold: 1,
		SummaryItems:  10_000,
		SummaryFPRate: 0.001,
	}
}

// Database is the registry of all known neighbor entries, keyed by the
// neighbor's endpoint identifier.
//
// Database embeds its lock rather than locking per call: callers are expected
// to hold the lock across a lookup and all subsequent reads and mutations of
// the returned entry.
type Database struct {
	sync.Mutex

	cfg     Config
	entries map[dtn.EID]*Entry
}

// NewDatabase creates an empty neighbor database.
func NewDatabase(cfg Config) *Database {
	return &Database{
		cfg:     cfg,
		entries: make(map[dtn.EID]*Entry),
	}
}

// Get returns the entry for the given neighbor. When create is set, a missing
// entry is created on the fly; otherwise ErrEntryNotFound is returned.
// The caller must hold the database lock.
func (db *Database) Get(eid dtn.EID, create bool) (*Entry, error) {
	entry, ok := db.entries[eid]
	if ok {
		return entry, nil
	}
	if !create {
		return nil, ErrEntryNotFound
	}
	entry = newEntry(eid, db.cfg)
	db.entries[eid] = entry
	return entry, nil
}

// Remove drops the entry for the given neighbor, e.g. when it became
// unreachable. It reports whether an entry existed. The caller must hold the
// database lock.
func (db *Database) Remove(eid dtn.EID) bool {
	if _, ok := db.entries[eid]; !ok {
		return false
	}
	delete(db.entries, eid)
	return true
}

// Size returns the number of tracked neighbors. The caller must hold the
// database lock.
func (db *Database) Size() uint {
	return uint(len(db.entries))
}
