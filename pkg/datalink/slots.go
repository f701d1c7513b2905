package datalink

import "github.com/arqlink/linkstack/internal/timer"

type txState int

const (
	txFree txState = iota
	txQueued
	txSent
	txAcked
)

// txSlot is one in-flight TX frame. Slots are an arena indexed by
// frame_id mod TxWindowSize — no reference counting is needed because the
// data-link owns a slot exclusively from Send through Ack or final failure.
type txSlot struct {
	state     txState
	frameID   uint16
	portID    uint8
	seq       Seq
	messageID uint8
	metadata  uint32
	payload   []byte // retained so retransmission rebuilds byte-identical wire bytes (Invariant 4)

	sendCount      int
	lastSendTimeMS int64
	timerID        timer.ID

	// nackRetransmitTimeMS dedups repeated NACKs for the same frame that
	// arrive while a NACK-triggered retransmission is still considered in
	// flight.
	nackRetransmitTimeMS int64
}

func (s *txSlot) free() {
	*s = txSlot{}
}

type rxState int

const (
	rxEmpty rxState = iota
	rxReceived
)

// rxSlot is one receivable frame_id in the current window.
type rxSlot struct {
	state     rxState
	frameID   uint16
	seq       Seq
	portID    uint8
	messageID uint8
	payload   []byte
}
