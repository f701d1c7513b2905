package timer

import "testing"

func TestScheduleFiresInOrder(t *testing.T) {
	m := New()
	var fired []int

	m.Schedule(30, func(ud interface{}) { fired = append(fired, ud.(int)) }, 3)
	m.Schedule(10, func(ud interface{}) { fired = append(fired, ud.(int)) }, 1)
	m.Schedule(20, func(ud interface{}) { fired = append(fired, ud.(int)) }, 2)

	if n := m.Process(25); n != 2 {
		t.Fatalf("Process(25) fired %d events, want 2", n)
	}
	want := []int{1, 2}
	for i, v := range want {
		if fired[i] != v {
			t.Fatalf("fired[%d] = %d, want %d", i, fired[i], v)
		}
	}
	if n := m.Process(30); n != 1 {
		t.Fatalf("Process(30) fired %d events, want 1", n)
	}
}

func TestScheduleFIFOAmongTies(t *testing.T) {
	m := New()
	var fired []int
	for i := 0; i < 3; i++ {
		i := i
		m.Schedule(100, func(interface{}) { fired = append(fired, i) }, nil)
	}
	m.Process(100)
	for i, v := range fired {
		if v != i {
			t.Fatalf("fired[%d] = %d, want %d (FIFO among ties)", i, v, i)
		}
	}
}

func TestCancelPendingEvent(t *testing.T) {
	m := New()
	fired := false
	id := m.Schedule(10, func(interface{}) { fired = true }, nil)
	if !m.Cancel(id) {
		t.Fatalf("Cancel on a pending event reported false")
	}
	m.Process(100)
	if fired {
		t.Fatalf("cancelled event fired anyway")
	}
	if m.Cancel(id) {
		t.Fatalf("Cancel on an already-cancelled event reported true")
	}
}

func TestCancelZeroIDIsNoop(t *testing.T) {
	m := New()
	if m.Cancel(0) {
		t.Fatalf("Cancel(0) reported true, want false (reserved no-op id)")
	}
}

func TestScheduleNonPositiveTimestampIsNoop(t *testing.T) {
	m := New()
	if id := m.Schedule(0, func(interface{}) {}, nil); id != 0 {
		t.Fatalf("Schedule(0, ...) = %d, want 0", id)
	}
	if _, ok := m.NextTime(); ok {
		t.Fatalf("NextTime reported a pending event after a no-op Schedule")
	}
}

func TestReentrantCancelAndSchedule(t *testing.T) {
	m := New()
	var fired []string

	var laterID ID
	laterID = m.Schedule(20, func(interface{}) { fired = append(fired, "later") }, nil)

	m.Schedule(10, func(interface{}) {
		fired = append(fired, "first")
		// Cancel the already-lifted-or-not event and schedule a fresh one at
		// the same timestamp the loop is currently processing.
		m.Cancel(laterID)
		m.Schedule(10, func(interface{}) { fired = append(fired, "rescheduled") }, nil)
	}, nil)

	n := m.Process(20)
	if n != 2 {
		t.Fatalf("Process(20) fired %d events, want 2 (first + rescheduled; later was cancelled)", n)
	}
	if len(fired) != 2 || fired[0] != "first" || fired[1] != "rescheduled" {
		t.Fatalf("fired = %v, want [first rescheduled]", fired)
	}
}

func TestNextInterval(t *testing.T) {
	m := New()
	if _, ok := m.NextInterval(0); ok {
		t.Fatalf("NextInterval on an empty manager reported ok")
	}
	m.Schedule(50, func(interface{}) {}, nil)
	if interval, ok := m.NextInterval(10); !ok || interval != 40 {
		t.Fatalf("NextInterval(10) = (%d, %v), want (40, true)", interval, ok)
	}
	if interval, ok := m.NextInterval(60); !ok || interval != 0 {
		t.Fatalf("NextInterval(60) = (%d, %v), want (0, true) (clamped, event already due)", interval, ok)
	}
}
