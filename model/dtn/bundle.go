package dtn

import (
	"encoding/binary"
	"fmt"
)

// BundleID uniquely identifies a bundle by its source endpoint, creation
// timestamp and sequence number. It is the identity used for duplicate
// suppression and for the per-neighbor known-bundle summary.
type BundleID struct {
	Source    EID
	Timestamp uint64
	Sequence  uint64
}

func (id BundleID) String() string {
	return fmt.Sprintf("[%d.%d] %s", id.Timestamp, id.Sequence, id.Source)
}

// Bytes returns a stable byte encoding of the identity, suitable as a key for
// summary structures.
func (id BundleID) Bytes() []byte {
	buf := make([]byte, 0, len(id.Source)+16)
	buf = binary.BigEndian.AppendUint64(buf, id.Timestamp)
	buf = binary.BigEndian.AppendUint64(buf, id.Sequence)
	buf = append(buf, id.Source...)
	return buf
}

// MetaBundle carries the routing-relevant metadata of one stored bundle.
// Instances are immutable once created; they are produced by the bundle
// storage and passed around by value.
type MetaBundle struct {
	ID          BundleID
	Destination EID
	// Singleton is set when the destination denotes exactly one receiving
	// node, as opposed to a group endpoint.
	Singleton bool
	// Hopcount is the remaining forwarding budget.
	Hopcount uint
}

func (m MetaBundle) String() string {
	return fmt.Sprintf("%s -> %s", m.ID, m.Destination)
}
