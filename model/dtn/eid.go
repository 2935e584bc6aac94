package dtn

import (
	"strings"
)

// EID is the endpoint identifier of a node or one of its application
// endpoints, e.g. "dtn://node-one" or "dtn://node-one/inbox". EIDs are
// immutable value types, comparable and usable as map keys.
type EID string

// NullEID is the zero value of an EID and matches no endpoint.
const NullEID EID = ""

const scheme = "dtn://"

func (e EID) String() string {
	return string(e)
}

// Node strips the application suffix from the endpoint and returns the EID of
// the hosting node: Node("dtn://a/inbox") == "dtn://a".
func (e EID) Node() EID {
	s := string(e)
	if !strings.HasPrefix(s, scheme) {
		return e
	}
	host := s[len(scheme):]
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	return EID(scheme + host)
}

// SameHost reports whether both endpoints live on the same node, ignoring any
// endpoint-local suffix.
func (e EID) SameHost(other EID) bool {
	return e.Node() == other.Node()
}

// Valid reports whether the EID carries a non-empty node identity.
func (e EID) Valid() bool {
	return strings.HasPrefix(string(e), scheme) && len(e.Node()) > len(scheme)
}
