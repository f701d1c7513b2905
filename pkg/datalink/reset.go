package datalink

import (
	"github.com/arqlink/linkstack/internal/framer"
	"github.com/rs/xid"
)

// A Reset frame's id field carries the handshake leg, not a sequence number:
// the initiator sends resetRequest, the peer answers with resetResponse.
const (
	resetRequest  uint16 = 0
	resetResponse uint16 = 1
)

// Reset initiates the link handshake: it stamps a new session id,
// drops all in-flight TX/RX state, zeroes every sequence counter, and sends
// a Reset request, retrying up to MaxResetRetries times on ResetTimeoutMS if
// the peer doesn't answer.
func (l *Link) Reset() {
	l.clearWindows()
	l.evmgr.Cancel(l.resetTimerID)

	l.state = negotiating
	l.resetRetries = 0
	l.sessionID = xid.New()
	l.stats.ResetCount++
	l.sendResetFrame()
}

// clearWindows discards every in-flight frame on both sides of the link and
// collapses all three sequence counters back to 0, the state both peers
// agree on after a completed handshake.
func (l *Link) clearWindows() {
	for i := range l.txSlots {
		if l.txSlots[i].state != txFree {
			l.evmgr.Cancel(l.txSlots[i].timerID)
			l.txSlots[i].free()
		}
	}
	for i := range l.rxSlots {
		l.rxSlots[i] = rxSlot{}
	}
	l.txRing.Clear()
	l.txFrameIDNext = 0
	l.txFrameIDMin = 0
	l.rxFrameIDNext = 0
}

func (l *Link) sendResetFrame() {
	l.txRing.Append(framer.BuildLinkFrame(framer.TypeReset, resetRequest))
	l.resetTimerID = l.evmgr.Schedule(l.now()+l.cfg.ResetTimeoutMS, l.onResetTimer, nil)
}

func (l *Link) onResetTimer(_ interface{}) {
	if l.state == connected {
		return
	}
	l.resetRetries++
	if l.resetRetries > l.cfg.MaxResetRetries {
		l.raiseLost()
		return
	}
	l.sendResetFrame()
}

func (l *Link) raiseLost() {
	l.state = disconnected
	ev := Event{Kind: ConnectionLost, SessionID: l.sessionID.String()}
	l.lastEvent = &ev
	l.upper.OnEvent(ev)
}
