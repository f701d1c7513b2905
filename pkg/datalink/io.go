package datalink

import "github.com/arqlink/linkstack/internal/framer"

// Seq re-exports the wire segmentation marker so callers of this package
// never need to import internal/framer directly.
type Seq = framer.Seq

const (
	SeqMiddle = framer.SeqMiddle
	SeqStop   = framer.SeqStop
	SeqStart  = framer.SeqStart
	SeqSingle = framer.SeqSingle
)

// IOAdapter is the boundary interface to the unreliable byte-stream
// transport. It is the one collaborator this repository treats as
// external: internal/serialio ships a concrete binding over a real UART.
type IOAdapter interface {
	// TimeMS returns a free-running millisecond clock. It wraps roughly
	// every 49.7 days; only differences between calls are meaningful.
	TimeMS() uint32
	// Send writes bytes to the transport. Non-blocking: it must not wait
	// for the bytes to be accepted by the peer, only for local buffering.
	Send(b []byte) error
	// SendAvailable reports instantaneous free room for Send, in bytes.
	SendAvailable() uint32
}

// EventKind distinguishes the two connection lifecycle events the data-link
// raises.
type EventKind int

const (
	ConnectionEstablished EventKind = iota
	ConnectionLost
)

func (k EventKind) String() string {
	if k == ConnectionEstablished {
		return "ConnectionEstablished"
	}
	return "ConnectionLost"
}

// Event is delivered to UpperCallbacks.OnEvent and, via pkg/transport, fanned
// out to every registered port.
type Event struct {
	Kind EventKind
	// SessionID correlates one reset handshake's lifetime across logs and
	// any upper-layer status reporting. It has no wire representation.
	SessionID string
}

// UpperCallbacks is the data-link's client — pkg/transport implements it.
type UpperCallbacks interface {
	// OnRecv delivers one in-order, deduplicated payload. portID, seq, and
	// messageID are exactly the wire fields the peer sent; the data-link
	// does not interpret them.
	OnRecv(portID uint8, seq Seq, messageID uint8, msg []byte)
	// OnMessageFailed reports that a send's frame exhausted MAX_RETRIES.
	// metadata is exactly the value passed to Send, for the caller to
	// correlate the failure with its original request.
	OnMessageFailed(metadata uint32, err error)
	// OnEvent reports a connection lifecycle transition.
	OnEvent(ev Event)
}
