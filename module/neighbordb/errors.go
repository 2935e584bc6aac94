package neighbordb

import (
	"errors"
)

var (
	// ErrEntryNotFound is returned when a neighbor is not present in the
	// database and creation was not requested.
	ErrEntryNotFound = errors.New("neighbor entry not found")

	// ErrAlreadyInTransit is returned when a transfer reservation exists for
	// the same bundle towards the same neighbor.
	ErrAlreadyInTransit = errors.New("bundle already in transit to this neighbor")

	// ErrNoMoreTransfers is returned when a neighbor's free transfer slots
	// have dropped below the configured threshold.
	ErrNoMoreTransfers = errors.New("no more transfer slots available")
)
