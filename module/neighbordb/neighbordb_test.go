package neighbordb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtngo/dtnd/module/neighbordb"
	"github.com/dtngo/dtnd/utils/unittest"
)

func testConfig() neighbordb.Config {
	cfg := neighbordb.DefaultConfig()
	cfg.SlotCapacity = 3
	cfg.SlotThreshold = 1
	return cfg
}

func TestGetCreateIfAbsent(t *testing.T) {
	db := neighbordb.NewDatabase(testConfig())
	peer := unittest.EIDFixture()

	db.Lock()
	defer db.Unlock()

	_, err := db.Get(peer, false)
	require.ErrorIs(t, err, neighbordb.ErrEntryNotFound)

	entry, err := db.Get(peer, true)
	require.NoError(t, err)
	require.Equal(t, peer, entry.EID)
	require.Equal(t, uint(1), db.Size())

	// repeated lookups return the same entry
	again, err := db.Get(peer, false)
	require.NoError(t, err)
	require.Same(t, entry, again)
}

func TestRemove(t *testing.T) {
	db := neighbordb.NewDatabase(testConfig())
	peer := unittest.EIDFixture()

	db.Lock()
	defer db.Unlock()

	require.False(t, db.Remove(peer))

	_, err := db.Get(peer, true)
	require.NoError(t, err)
	require.True(t, db.Remove(peer))
	require.Equal(t, uint(0), db.Size())

	_, err = db.Get(peer, false)
	require.ErrorIs(t, err, neighbordb.ErrEntryNotFound)
}

// TestSlotConservation covers the slot accounting invariants: the free slot
// count never exceeds the configured capacity, never drops below zero, and at
// most one reservation exists per bundle.
func TestSlotConservation(t *testing.T) {
	db := neighbordb.NewDatabase(testConfig())

	db.Lock()
	defer db.Unlock()

	entry, err := db.Get(unittest.EIDFixture(), true)
	require.NoError(t, err)
	require.Equal(t, uint(3), entry.FreeTransferSlots())

	first := unittest.BundleIDFixture()
	second := unittest.BundleIDFixture()
	third := unittest.BundleIDFixture()

	require.NoError(t, entry.Acquire(first))
	require.Equal(t, uint(2), entry.FreeTransferSlots())

	// duplicate reservation for the same bundle must fail
	err = entry.Acquire(first)
	require.ErrorIs(t, err, neighbordb.ErrAlreadyInTransit)
	require.Equal(t, uint(2), entry.FreeTransferSlots())

	require.NoError(t, entry.Acquire(second))
	require.NoError(t, entry.Acquire(third))
	require.Equal(t, uint(0), entry.FreeTransferSlots())
	require.False(t, entry.ThresholdReached())

	// all slots used, acquiring must fail
	err = entry.Acquire(unittest.BundleIDFixture())
	require.ErrorIs(t, err, neighbordb.ErrNoMoreTransfers)

	// releasing an unknown bundle is a no-op
	entry.Release(unittest.BundleIDFixture(), false)
	require.Equal(t, uint(0), entry.FreeTransferSlots())

	// releasing restores slots, never beyond capacity
	entry.Release(first, true)
	entry.Release(second, false)
	entry.Release(third, false)
	require.Equal(t, uint(3), entry.FreeTransferSlots())
	require.Equal(t, uint(0), entry.InTransit())

	// double release must not inflate the slot count
	entry.Release(first, true)
	require.Equal(t, uint(3), entry.FreeTransferSlots())
}

func TestSummary(t *testing.T) {
	db := neighbordb.NewDatabase(testConfig())

	db.Lock()
	defer db.Unlock()

	entry, err := db.Get(unittest.EIDFixture(), true)
	require.NoError(t, err)

	delivered := unittest.BundleIDFixture()
	aborted := unittest.BundleIDFixture()

	assert.False(t, entry.Has(delivered))

	// only successful transfers mark the bundle as known
	require.NoError(t, entry.Acquire(delivered))
	require.NoError(t, entry.Acquire(aborted))
	entry.Release(delivered, true)
	entry.Release(aborted, false)

	assert.True(t, entry.Has(delivered))
	assert.False(t, entry.Has(aborted))

	entry.ResetSummary()
	assert.False(t, entry.Has(delivered))
}

func TestThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.SlotCapacity = 2
	cfg.SlotThreshold = 2
	db := neighbordb.NewDatabase(cfg)

	db.Lock()
	defer db.Unlock()

	entry, err := db.Get(unittest.EIDFixture(), true)
	require.NoError(t, err)
	require.True(t, entry.ThresholdReached())

	id := unittest.BundleIDFixture()
	require.NoError(t, entry.Acquire(id))

	// one slot in use leaves one free, below the threshold of two
	require.False(t, entry.ThresholdReached())
	err = entry.Acquire(unittest.BundleIDFixture())
	require.ErrorIs(t, err, neighbordb.ErrNoMoreTransfers)

	entry.Release(id, false)
	require.True(t, entry.ThresholdReached())
}
