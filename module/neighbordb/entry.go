package neighbordb

import (
	"github.com/bits-and-blooms/bloom/v3"

	"github.com/dtngo/dtnd/model/dtn"
)

// Entry holds the routing state of one neighbor: a summary of the bundles the
// neighbor is known to have seen, and the accounting of outstanding transfer
// reservations towards it.
//
// Entries are owned by a Database. None of the methods below lock; all access
// must happen while holding the owning database's lock, so that a caller can
// batch a lookup with subsequent reads and reservations atomically.
type Entry struct {
	EID dtn.EID

	// summary answers "has this neighbor already seen bundle X". False
	// positives are possible, false negatives are not.
	summary *bloom.BloomFilter

	// transit tracks the bundles currently being transferred to this
	// neighbor. Each slot in use corresponds to exactly one entry here.
	transit map[dtn.BundleID]struct{}

	capacity  uint
	threshold uint
}

func newEntry(eid dtn.EID, cfg Config) *Entry {
	return &Entry{
		EID:       eid,
		summary:   bloom.NewWithEstimates(cfg.SummaryItems, cfg.SummaryFPRate),
		transit:   make(map[dtn.BundleID]struct{}),
		capacity:  cfg.SlotCapacity,
		threshold: cfg.SlotThreshold,
	}
}

// Has reports whether the neighbor is known to have seen the given bundle.
func (e *Entry) Has(id dtn.BundleID) bool {
	return e.summary.Test(id.Bytes())
}

// FreeTransferSlots returns the number of transfer reservations that can
// still be made towards this neighbor.
func (e *Entry) FreeTransferSlots() uint {
	used := uint(len(e.transit))
	if used >= e.capacity {
		return 0
	}
	return e.capacity - used
}

// ThresholdReached reports whether enough free slots remain for routing tasks
// to proceed.
func (e *Entry) ThresholdReached() bool {
	return e.FreeTransferSlots() >= e.threshold
}

// Acquire reserves a transfer slot for the given bundle. It fails with
// ErrNoMoreTransfers when the slot threshold is not met and with
// ErrAlreadyInTransit when a reservation for the same bundle already exists.
func (e *Entry) Acquire(id dtn.BundleID) error {
	if !e.ThresholdReached() {
		return ErrNoMoreTransfers
	}
	if _, ok := e.transit[id]; ok {
		return ErrAlreadyInTransit
	}
	e.transit[id] = struct{}{}
	return nil
}

// Release returns the transfer slot reserved for the given bundle. When the
// transfer completed successfully, the bundle is added to the known-bundle
// summary so it is not offered to this neighbor again.
// Releasing a bundle that holds no reservation is a no-op.
func (e *Entry) Release(id dtn.BundleID, delivered bool) {
	if _, ok := e.transit[id]; !ok {
		return
	}
	delete(e.transit, id)
	if delivered {
		e.summary.Add(id.Bytes())
	}
}

// InTransit returns the number of outstanding transfer reservations.
func (e *Entry) InTransit() uint {
	return uint(len(e.transit))
}

// ResetSummary replaces the known-bundle summary with an empty one. Invoked
// when a neighbor announces a fresh summary, e.g. after it purged its
// storage.
func (e *Entry) ResetSummary() {
	e.summary.ClearAll()
}
