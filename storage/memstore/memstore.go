// Package memstore provides an in-memory bundle store. It keeps insertion
// order so selections offer candidates oldest-first.
package memstore

import (
	"sync"

	"github.com/dtngo/dtnd/model/dtn"
	"github.com/dtngo/dtnd/storage"
)

// Store implements storage.Bundles backed by a Go map plus an ordered slice.
type Store struct {
	mu sync.RWMutex

	// order preserves insertion order of identities; lookup maps identities
	// to their metadata.
	order  []dtn.BundleID
	lookup map[dtn.BundleID]dtn.MetaBundle
}

var _ storage.Bundles = (*Store)(nil)

// New creates an empty in-memory bundle store.
func New() *Store {
	return &Store{
		lookup: make(map[dtn.BundleID]dtn.MetaBundle),
	}
}

// Add stores a bundle's metadata, failing with storage.ErrAlreadyStored on a
// duplicate identity.
func (s *Store) Add(meta dtn.MetaBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup[meta.ID]; ok {
		return storage.ErrAlreadyStored
	}
	s.lookup[meta.ID] = meta
	s.order = append(s.order, meta.ID)
	return nil
}

// Remove drops a bundle from the store, reporting whether it existed.
func (s *Store) Remove(id dtn.BundleID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup[id]; !ok {
		return false
	}
	delete(s.lookup, id)
	for i, candidate := range s.order {
		if candidate == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Size returns the number of stored bundles.
func (s *Store) Size() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint(len(s.lookup))
}

// Select offers stored bundles to the selection's filter in insertion order,
// honouring the destination-node hint and the selection limit. It fails with
// storage.ErrNoBundleFound when no candidate was accepted.
func (s *Store) Select(sel storage.Selection) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var selected uint
	for _, id := range s.order {
		if selected >= sel.Limit {
			break
		}
		meta := s.lookup[id]

		// destination pushdown; the filter re-validates, so a miss here is
		// only a skipped candidate
		if sel.DestinationNode != dtn.NullEID && !meta.Destination.SameHost(sel.DestinationNode) {
			continue
		}

		if sel.Filter(meta) {
			selected++
		}
	}

	if selected == 0 {
		return storage.ErrNoBundleFound
	}
	return nil
}
