package unittest

import (
	"time"

	"github.com/google/uuid"

	"github.com/dtngo/dtnd/model/dtn"
)

// EIDFixture returns a unique node EID.
func EIDFixture() dtn.EID {
	return dtn.EID("dtn://node-" + uuid.NewString()[:8])
}

// BundleIDFixture returns a unique bundle identity originating from a fresh
// node.
func BundleIDFixture() dtn.BundleID {
	return dtn.BundleID{
		Source:    EIDFixture() + "/app",
		Timestamp: uint64(time.Now().Unix()),
		Sequence:  uint64(uuid.New().ID()),
	}
}

// MetaBundleFixture returns a singleton bundle addressed to an application
// endpoint of the given node, with a fresh identity and a default hop budget.
func MetaBundleFixture(destination dtn.EID) dtn.MetaBundle {
	return dtn.MetaBundle{
		ID:          BundleIDFixture(),
		Destination: destination + "/inbox",
		Singleton:   true,
		Hopcount:    16,
	}
}
