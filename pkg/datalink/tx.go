package datalink

import (
	"github.com/arqlink/linkstack/internal/framer"
	"github.com/arqlink/linkstack/internal/linkerr"
)

// Send assigns the next frame_id, stores a TX slot, and attempts immediate
// transmission. metadata is an opaque 24-bit tag the
// data-link never inspects; it comes back verbatim via
// UpperCallbacks.OnMessageFailed if this frame exhausts MaxRetries.
func (l *Link) Send(portID uint8, seq Seq, messageID uint8, metadata uint32, msg []byte) error {
	if portID > framer.PortMax {
		return errInvalidf("port id %d exceeds PortMax %d", portID, framer.PortMax)
	}
	if len(msg) < 1 || len(msg) > framer.MaxPayload {
		return errInvalidf("payload length %d out of range [1,%d]", len(msg), framer.MaxPayload)
	}
	if wrapDist(l.txFrameIDNext, l.txFrameIDMin) >= l.cfg.TxWindowSize {
		return errNoMemory("send")
	}

	idx := int(l.txFrameIDNext) % l.cfg.TxWindowSize
	slot := &l.txSlots[idx]
	if slot.state != txFree {
		// Unreachable while the window invariant holds.
		return errNoMemory("send")
	}

	frameID := l.txFrameIDNext
	payload := append([]byte(nil), msg...)
	wire := framer.BuildDataFrame(frameID, seq, portID, messageID, payload)
	if len(wire) > l.cfg.TxBufferSize {
		// Frame can never fit even when the ring is fully drained.
		return errNoMemory("send")
	}
	*slot = txSlot{
		state:     txQueued,
		frameID:   frameID,
		portID:    portID,
		seq:       seq,
		messageID: messageID,
		metadata:  metadata,
		payload:   payload,
	}
	l.txFrameIDNext = wrapAdd(l.txFrameIDNext, 1)
	l.stats.TxCount++
	l.armSlot(slot, wire)
	return nil
}

// armSlot tries to place wire bytes into the TX ring and arms a
// retransmission timer. If the ring has no room right now the slot stays
// Queued; Process drains queued slots as room frees up.
func (l *Link) armSlot(slot *txSlot, wire []byte) {
	if l.txRing.Append(wire) {
		slot.state = txSent
	}
	slot.sendCount++
	slot.lastSendTimeMS = l.now()
	slot.timerID = l.evmgr.Schedule(slot.lastSendTimeMS+l.cfg.RetryTimeoutMS, l.onRetryTimer, slot.frameID)
}

// onRetryTimer fires when a slot's ACK didn't arrive in time.
func (l *Link) onRetryTimer(userData interface{}) {
	frameID := userData.(uint16)
	idx := int(frameID) % l.cfg.TxWindowSize
	slot := &l.txSlots[idx]
	if slot.state == txFree || slot.frameID != frameID {
		return // already acked and freed
	}
	if slot.sendCount >= l.cfg.MaxRetries {
		l.failSlot(slot, linkerr.New(linkerr.Timeout, "datalink", nil))
		return
	}
	l.retransmit(slot)
}

func (l *Link) retransmit(slot *txSlot) {
	wire := framer.BuildDataFrame(slot.frameID, slot.seq, slot.portID, slot.messageID, slot.payload)
	l.txRing.Append(wire) // best effort; if full, the next timer fires and retries again
	slot.state = txSent
	slot.sendCount++
	slot.lastSendTimeMS = l.now()
	l.stats.TxRetransmitCount++
	slot.timerID = l.evmgr.Schedule(slot.lastSendTimeMS+l.cfg.RetryTimeoutMS, l.onRetryTimer, slot.frameID)
}

func (l *Link) failSlot(slot *txSlot, err error) {
	metadata := slot.metadata
	l.stats.TxFailureCount++
	l.evmgr.Cancel(slot.timerID)
	// Resolved as far as the window is concerned: the slot is freed once the
	// contiguous prefix reaches it, so the window never wedges on a dead frame.
	slot.state = txAcked
	l.advanceAckedPrefix()
	l.upper.OnMessageFailed(metadata, err)

	l.consecutiveFailures++
	if l.consecutiveFailures >= l.cfg.MaxResetRetries {
		l.consecutiveFailures = 0
		l.Reset()
	}
}

// Process drains the TX ring into the adapter, promotes Queued slots that
// now fit, and runs due retransmission timers. It is idempotent and safe to
// call as often as the host loop likes.
func (l *Link) Process() {
	now := l.now()
	// Timers first: a due retransmission or reset retry appends its frame to
	// the ring and goes out in this same call's drain.
	l.evmgr.Process(now)

	// Promote any slot still waiting for ring room.
	for i := range l.txSlots {
		s := &l.txSlots[i]
		if s.state != txQueued {
			continue
		}
		wire := framer.BuildDataFrame(s.frameID, s.seq, s.portID, s.messageID, s.payload)
		if l.txRing.Append(wire) {
			s.state = txSent
		}
	}

	l.drainRing()
}

func (l *Link) drainRing() {
	avail := l.io.SendAvailable()
	if avail == 0 {
		return
	}
	n := l.txRing.Size()
	if n == 0 {
		return
	}
	if uint32(n) > avail {
		n = int(avail)
	}
	chunk := l.txRing.PopN(n)
	_ = l.io.Send(chunk)
}

// ServiceIntervalMS reports how soon Process must next be called to stay on
// schedule, measured from now.
func (l *Link) ServiceIntervalMS() (int64, bool) {
	return l.evmgr.NextInterval(l.now())
}

// handleAckAll frees every slot in [tx_frame_id_min, ackID] and advances the
// window's lower edge.
func (l *Link) handleAckAll(ackID uint16) {
	l.stats.AcksRecv++
	if wrapDist(ackID, l.txFrameIDMin) < 0 {
		return // stale ack; the window already advanced past it
	}
	if wrapDist(ackID, l.txFrameIDNext) >= 0 {
		return // ack for a frame never sent
	}
	l.consecutiveFailures = 0
	for {
		idx := int(l.txFrameIDMin) % l.cfg.TxWindowSize
		slot := &l.txSlots[idx]
		if slot.state != txFree && slot.frameID == l.txFrameIDMin {
			l.evmgr.Cancel(slot.timerID)
			slot.free()
		}
		done := l.txFrameIDMin == ackID
		l.txFrameIDMin = wrapAdd(l.txFrameIDMin, 1)
		if done {
			break
		}
	}
	// Frames beyond ackID may already hold individual acks; slide past them.
	l.advanceAckedPrefix()
}

// handleAckOne marks one slot acknowledged without advancing the window's
// lower edge until the contiguous prefix is acked.
func (l *Link) handleAckOne(ackID uint16) {
	l.stats.AcksRecv++
	l.consecutiveFailures = 0
	idx := int(ackID) % l.cfg.TxWindowSize
	slot := &l.txSlots[idx]
	if slot.state != txFree && slot.frameID == ackID {
		l.evmgr.Cancel(slot.timerID)
		slot.state = txAcked
	}
	l.advanceAckedPrefix()
}

func (l *Link) advanceAckedPrefix() {
	for {
		idx := int(l.txFrameIDMin) % l.cfg.TxWindowSize
		slot := &l.txSlots[idx]
		if slot.state != txAcked || slot.frameID != l.txFrameIDMin {
			return
		}
		slot.free()
		l.txFrameIDMin = wrapAdd(l.txFrameIDMin, 1)
	}
}

// handleNack retransmits the frame the peer named, deduplicating repeated
// NACKs for the same cause frame.
func (l *Link) handleNack(cause framer.FrameType, signalledNext, causeFrameID uint16) {
	l.stats.NacksRecv++
	var target uint16
	switch cause {
	case framer.TypeNackFrameID:
		target = causeFrameID
	case framer.TypeNackFramingError:
		target = wrapAdd(signalledNext, 1)
	default:
		return
	}
	idx := int(target) % l.cfg.TxWindowSize
	slot := &l.txSlots[idx]
	if slot.state == txFree || slot.frameID != target {
		return
	}
	now := l.now()
	if slot.nackRetransmitTimeMS != 0 && now-slot.nackRetransmitTimeMS < l.cfg.RetryTimeoutMS {
		return // dedup: a NACK-triggered retransmit for this frame is already in flight
	}
	slot.nackRetransmitTimeMS = now
	l.evmgr.Cancel(slot.timerID)
	l.retransmit(slot)
}
