package dtn

// Protocol enumerates the link technologies a neighbor may be reachable over.
// The connection manager reports them in preference order.
type Protocol uint8

const (
	ProtocolUndefined Protocol = iota
	ProtocolTCP
	ProtocolUDP
	ProtocolBluetooth
	ProtocolHTTP
	ProtocolLoWPAN
)

func (p Protocol) String() string {
	switch p {
	case ProtocolTCP:
		return "tcp"
	case ProtocolUDP:
		return "udp"
	case ProtocolBluetooth:
		return "bluetooth"
	case ProtocolHTTP:
		return "http"
	case ProtocolLoWPAN:
		return "lowpan"
	default:
		return "undefined"
	}
}
