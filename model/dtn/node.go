package dtn

// Node describes a directly reachable peer as tracked by the connection
// manager.
type Node struct {
	EID EID
	// Protocols lists the link technologies shared with the local node, in
	// the connection manager's preference order.
	Protocols []Protocol
}
