package datalink

import (
	"github.com/arqlink/linkstack/internal/framer"
	"github.com/rs/xid"
)

// The methods below satisfy framer.Callbacks; framer.RX invokes them
// synchronously from within RecvBytes, so they run on the same logical
// thread as Send/Process.

// OnFrame classifies the incoming frame_id against the receive window,
// buffers or drops it, drains any now-contiguous prefix up to the upper
// layer, and acknowledges.
func (l *Link) OnFrame(frameID uint16, seq Seq, portID, messageID uint8, payload []byte) {
	dist := wrapDist(frameID, l.rxFrameIDNext)

	switch {
	case dist < 0:
		// Already delivered; the peer didn't see our earlier ack. Re-ack,
		// don't re-deliver — delivery to the upper layer is exactly-once.
		l.stats.RxDeduplicateCount++
		l.sendAckOne(frameID)
		return

	case dist >= l.cfg.RxWindowSize:
		// Outside the window we can buffer; the peer has drifted past what
		// we can accept without a gap. Tell it where we actually are.
		l.stats.RxFrameIDErrors++
		l.sendNackFrameID(l.rxFrameIDNext)
		return
	}

	idx := int(frameID) % l.cfg.RxWindowSize
	slot := &l.rxSlots[idx]
	if slot.state == rxReceived && slot.frameID == frameID {
		l.stats.RxDeduplicateCount++
		l.sendAckOne(frameID)
		return
	}
	*slot = rxSlot{
		state:     rxReceived,
		frameID:   frameID,
		seq:       seq,
		portID:    portID,
		messageID: messageID,
		payload:   payload,
	}

	if dist == 0 {
		l.deliverContiguous()
		l.sendAckAll(wrapAdd(l.rxFrameIDNext, -1))
	} else {
		// Out-of-order but in-window: hold it, ack it individually so the
		// sender's window can keep sliding while we wait for the gap, and
		// nack every id we're still missing below it so the sender resends
		// without waiting out its retry timer.
		l.sendAckOne(frameID)
		for id := l.rxFrameIDNext; id != frameID; id = wrapAdd(id, 1) {
			gap := &l.rxSlots[int(id)%l.cfg.RxWindowSize]
			if gap.state != rxReceived || gap.frameID != id {
				l.sendNackFrameID(id)
			}
		}
	}
}

// deliverContiguous drains every buffered slot starting at rxFrameIDNext,
// handing each payload to the upper layer in order, until the next id isn't
// buffered yet.
func (l *Link) deliverContiguous() {
	for {
		idx := int(l.rxFrameIDNext) % l.cfg.RxWindowSize
		slot := &l.rxSlots[idx]
		if slot.state != rxReceived || slot.frameID != l.rxFrameIDNext {
			return
		}
		l.upper.OnRecv(slot.portID, slot.seq, slot.messageID, slot.payload)
		*slot = rxSlot{}
		l.rxFrameIDNext = wrapAdd(l.rxFrameIDNext, 1)
	}
}

// OnAck dispatches an inbound ACK to the TX-side window logic (tx.go).
func (l *Link) OnAck(frameType framer.FrameType, frameID uint16) {
	switch frameType {
	case framer.TypeAckAll:
		l.handleAckAll(frameID)
	case framer.TypeAckOne:
		l.handleAckOne(frameID)
	}
}

// OnNack dispatches an inbound NACK. The wire format carries a single
// frame_id whose meaning depends on the cause: for NackFrameID it names the
// specific frame the peer wants retransmitted; for NackFramingError it is
// the last id the peer holds (its next-expected id minus one), and the
// frame it's missing is the one right after it.
func (l *Link) OnNack(frameType framer.FrameType, frameID uint16) {
	l.handleNack(frameType, frameID, frameID)
}

// OnReset implements the peer side of the reset handshake. The Reset
// frame's id field distinguishes the two legs: resetRequest is the peer
// asking to reinitialize, resetResponse is the echo answering our own
// request. Both legs leave every sequence counter at 0 on both ends.
func (l *Link) OnReset(frameID uint16) {
	switch frameID {
	case resetRequest:
		l.stats.ResetCount++
		l.clearWindows()
		if l.state != negotiating {
			// We didn't initiate, so this is a fresh session from our side.
			l.sessionID = xid.New()
		}
		l.evmgr.Cancel(l.resetTimerID)
		l.txRing.Append(framer.BuildLinkFrame(framer.TypeReset, resetResponse))
		l.state = disconnected
		l.raiseConnected()
	case resetResponse:
		if l.state != negotiating {
			return // stale echo from an already-completed handshake
		}
		l.evmgr.Cancel(l.resetTimerID)
		l.state = disconnected
		l.raiseConnected()
	}
}

// OnFrameError handles a broken frame: the framer detected a
// CRC mismatch, so we can't trust the frame_id it would have carried. Tell the peer the last id we know is good
// and let it figure out what to resend.
func (l *Link) OnFrameError() {
	l.sendNackFramingError(wrapAdd(l.rxFrameIDNext, -1))
}

func (l *Link) sendAckAll(frameID uint16) {
	l.stats.AcksSent++
	l.txRing.Append(framer.BuildLinkFrame(framer.TypeAckAll, frameID))
}

func (l *Link) sendAckOne(frameID uint16) {
	l.stats.AcksSent++
	l.txRing.Append(framer.BuildLinkFrame(framer.TypeAckOne, frameID))
}

func (l *Link) sendNackFrameID(frameID uint16) {
	l.stats.NacksSent++
	l.txRing.Append(framer.BuildLinkFrame(framer.TypeNackFrameID, frameID))
}

func (l *Link) sendNackFramingError(frameID uint16) {
	l.stats.NacksSent++
	l.txRing.Append(framer.BuildLinkFrame(framer.TypeNackFramingError, frameID))
}

func (l *Link) raiseConnected() {
	if l.state == connected {
		return
	}
	l.state = connected
	ev := Event{Kind: ConnectionEstablished, SessionID: l.sessionID.String()}
	l.lastEvent = &ev
	l.upper.OnEvent(ev)
}
