// Package timer implements a small monotonic-time-ordered callback queue
// used by the data-link layer to drive retransmission and reset-negotiation
// timeouts.
//
// Events are kept in an insertion-sorted slice rather than a heap. Window
// sizes bound the queue to a few hundred entries at most (one retransmission
// timer per in-flight TX slot), so a heap's better asymptotics buy nothing
// here.
package timer

// Callback is invoked by Process when its scheduled time has arrived. A
// callback may schedule or cancel other events, including ones due at the
// same timestamp; see Manager.Process for the reentrancy guarantee.
type Callback func(userData interface{})

// ID is an opaque, non-zero handle returned by Schedule. The zero ID is
// reserved to mean "no event" (Schedule(ts<=0, ...) and Cancel(0) are
// no-ops).
type ID uint64

type event struct {
	id        ID
	timestamp int64
	cb        Callback
	userData  interface{}
}

// Manager is a single-threaded, single-owner event queue. It has no internal
// locking, matching the rest of the stack's cooperative, single-threaded
// model.
type Manager struct {
	events []event
	nextID ID
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{nextID: 1}
}

// Schedule arranges for cb(userData) to run the next time Process is called
// with now >= timestampMS. timestampMS <= 0 is a no-op that returns 0.
func (m *Manager) Schedule(timestampMS int64, cb Callback, userData interface{}) ID {
	if timestampMS <= 0 || cb == nil {
		return 0
	}
	id := m.nextID
	m.nextID++

	ev := event{id: id, timestamp: timestampMS, cb: cb, userData: userData}
	// Insertion sort: find the first event with a later timestamp and splice
	// in before it, preserving FIFO order among equal timestamps.
	i := len(m.events)
	for i > 0 && m.events[i-1].timestamp > timestampMS {
		i--
	}
	m.events = append(m.events, event{})
	copy(m.events[i+1:], m.events[i:])
	m.events[i] = ev
	return id
}

// Cancel removes a pending event. id 0 is a no-op. Reports false if the
// event already fired or was never scheduled.
func (m *Manager) Cancel(id ID) bool {
	if id == 0 {
		return false
	}
	for i, ev := range m.events {
		if ev.id == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return true
		}
	}
	return false
}

// NextTime returns the timestamp of the earliest pending event, and false if
// the queue is empty.
func (m *Manager) NextTime() (int64, bool) {
	if len(m.events) == 0 {
		return 0, false
	}
	return m.events[0].timestamp, true
}

// NextInterval returns NextTime() - now, clamped to >= 0, and false if the
// queue is empty.
func (m *Manager) NextInterval(now int64) (int64, bool) {
	ts, ok := m.NextTime()
	if !ok {
		return 0, false
	}
	if ts < now {
		return 0, true
	}
	return ts - now, true
}

// Process fires every event due at or before now, in timestamp order (FIFO
// among ties), and returns how many ran. Each event is removed from the
// queue before its callback runs, so a callback that cancels or schedules
// other events — including itself again — never observes or disturbs an
// event already lifted out for firing.
func (m *Manager) Process(now int64) int {
	count := 0
	for {
		if len(m.events) == 0 || m.events[0].timestamp > now {
			return count
		}
		ev := m.events[0]
		m.events = m.events[1:]
		ev.cb(ev.userData)
		count++
	}
}
