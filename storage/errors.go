package storage

import (
	"errors"
)

var (
	// ErrNoBundleFound is returned by a selection that matched no stored
	// bundle.
	ErrNoBundleFound = errors.New("no bundle found")

	// ErrAlreadyStored is returned when adding a bundle whose identity is
	// already present in the store.
	ErrAlreadyStored = errors.New("bundle already stored")
)
