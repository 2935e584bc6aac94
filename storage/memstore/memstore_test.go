package memstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dtngo/dtnd/model/dtn"
	"github.com/dtngo/dtnd/storage"
	"github.com/dtngo/dtnd/storage/memstore"
	"github.com/dtngo/dtnd/utils/unittest"
)

func TestAddRemove(t *testing.T) {
	store := memstore.New()
	meta := unittest.MetaBundleFixture(unittest.EIDFixture())

	require.NoError(t, store.Add(meta))
	require.ErrorIs(t, store.Add(meta), storage.ErrAlreadyStored)
	require.Equal(t, uint(1), store.Size())

	require.True(t, store.Remove(meta.ID))
	require.False(t, store.Remove(meta.ID))
	require.Equal(t, uint(0), store.Size())
}

func TestSelectOrderAndLimit(t *testing.T) {
	store := memstore.New()
	dest := unittest.EIDFixture()

	var stored []dtn.MetaBundle
	for i := 0; i < 5; i++ {
		meta := unittest.MetaBundleFixture(dest)
		require.NoError(t, store.Add(meta))
		stored = append(stored, meta)
	}

	var offered []dtn.MetaBundle
	err := store.Select(storage.Selection{
		Limit: 3,
		Filter: func(meta dtn.MetaBundle) bool {
			offered = append(offered, meta)
			return true
		},
	})
	require.NoError(t, err)

	// candidates arrive in insertion order and stop at the limit
	require.Equal(t, stored[:3], offered)
}

func TestSelectSkipsRejected(t *testing.T) {
	store := memstore.New()
	dest := unittest.EIDFixture()

	first := unittest.MetaBundleFixture(dest)
	second := unittest.MetaBundleFixture(dest)
	require.NoError(t, store.Add(first))
	require.NoError(t, store.Add(second))

	var selected []dtn.MetaBundle
	err := store.Select(storage.Selection{
		Limit: 1,
		Filter: func(meta dtn.MetaBundle) bool {
			if meta.ID == first.ID {
				return false
			}
			selected = append(selected, meta)
			return true
		},
	})
	require.NoError(t, err)

	// rejected candidates do not count against the limit
	require.Equal(t, []dtn.MetaBundle{second}, selected)
}

func TestSelectDestinationHint(t *testing.T) {
	store := memstore.New()
	target := unittest.EIDFixture()
	other := unittest.EIDFixture()

	wanted := unittest.MetaBundleFixture(target)
	require.NoError(t, store.Add(unittest.MetaBundleFixture(other)))
	require.NoError(t, store.Add(wanted))

	var offered []dtn.MetaBundle
	err := store.Select(storage.Selection{
		Limit:           10,
		DestinationNode: target,
		Filter: func(meta dtn.MetaBundle) bool {
			offered = append(offered, meta)
			return true
		},
	})
	require.NoError(t, err)
	require.Equal(t, []dtn.MetaBundle{wanted}, offered)
}

func TestSelectNoBundleFound(t *testing.T) {
	store := memstore.New()

	err := store.Select(storage.Selection{
		Limit:  10,
		Filter: func(dtn.MetaBundle) bool { return true },
	})
	require.ErrorIs(t, err, storage.ErrNoBundleFound)

	// a selection that rejects everything also finds no bundle
	require.NoError(t, store.Add(unittest.MetaBundleFixture(unittest.EIDFixture())))
	err = store.Select(storage.Selection{
		Limit:  10,
		Filter: func(dtn.MetaBundle) bool { return false },
	})
	require.ErrorIs(t, err, storage.ErrNoBundleFound)
}
