// Package datalink implements the Selective-Repeat ARQ layer: it turns
// internal/framer's validated-but-unreliable frame stream into reliable,
// in-order delivery of opaque metadata-tagged messages, with a bounded
// transmit window, timeout- and NACK-driven retransmission, and
// receive-side reordering.
//
// A Link is single-threaded and cooperative: Send, RecvBytes, Process, and
// Reset must all be called from the same logical execution context.
package datalink

import (
	"github.com/arqlink/linkstack/internal/framer"
	"github.com/arqlink/linkstack/internal/ring"
	"github.com/arqlink/linkstack/internal/timer"
	"github.com/rs/xid"
)

type connState int

const (
	disconnected connState = iota
	negotiating
	connected
)

// Link is one instance of the data-link protocol, bound to one IOAdapter and
// one UpperCallbacks client.
type Link struct {
	cfg   Config
	io    IOAdapter
	upper UpperCallbacks

	rx     *framer.RX
	txRing *ring.Ring

	txSlots []txSlot
	rxSlots []rxSlot

	txFrameIDNext uint16
	txFrameIDMin  uint16
	rxFrameIDNext uint16

	state        connState
	resetRetries int
	resetTimerID timer.ID
	sessionID    xid.ID
	lastEvent    *Event

	// consecutiveFailures counts messages that exhausted MaxRetries with no
	// intervening ack; reaching MaxResetRetries triggers an automatic Reset
	// on the assumption the peer lost sync entirely.
	consecutiveFailures int

	evmgr *timer.Manager
	stats Stats
}

// New allocates the slot arenas and TX ring up front and returns a Link
// ready to Send/RecvBytes/Process.
func New(cfg Config, io IOAdapter, upper UpperCallbacks) (*Link, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if io == nil || upper == nil {
		return nil, errInvalidf("io adapter and upper callbacks are required")
	}
	l := &Link{
		cfg:     cfg,
		io:      io,
		upper:   upper,
		txRing:  ring.New(cfg.TxBufferSize),
		txSlots: make([]txSlot, cfg.TxWindowSize),
		rxSlots: make([]rxSlot, cfg.RxWindowSize),
		evmgr:   timer.New(),
	}
	l.rx = framer.New(l)
	return l, nil
}

// wrapDist computes the signed distance (a - b) mod MaxFrameID, mapped into
// the half-open range used to classify a frame id as past or future
// relative to a reference point. Taking the modulus first and then folding
// the upper half negative stands in for the sign-extension trick sequence
// arithmetic usually leans on, since int11 isn't a native integer width.
func wrapDist(a, b uint16) int {
	raw := (int(a) - int(b) + 2*framer.MaxFrameID) % framer.MaxFrameID
	if raw > framer.WindowMax {
		raw -= framer.MaxFrameID
	}
	return raw
}

func wrapAdd(a uint16, n int) uint16 {
	return uint16((int(a) + n + framer.MaxFrameID) % framer.MaxFrameID)
}

// Status returns a snapshot of the cumulative counters.
func (l *Link) Status() Stats {
	s := l.stats
	s.mergeFramer(l.rx.Stats())
	return s
}

// RecvBytes forwards octets to the framer; its callbacks (implemented below
// in rx.go) drive window and retransmission bookkeeping synchronously.
func (l *Link) RecvBytes(p []byte) {
	l.rx.Recv(p)
}

// RecvByte forwards a single octet, for callers that only have one byte at
// a time (e.g. a UART ISR handing off one byte per interrupt).
func (l *Link) RecvByte(b byte) {
	l.rx.Recv([]byte{b})
}

func (l *Link) now() int64 {
	return int64(l.io.TimeMS())
}
