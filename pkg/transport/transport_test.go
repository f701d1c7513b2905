package transport

import (
	"bytes"
	"errors"
	"testing"

	"github.com/arqlink/linkstack/internal/framer"
	"github.com/arqlink/linkstack/internal/linkerr"
	"github.com/arqlink/linkstack/pkg/datalink"
)

type fakeIO struct {
	sent []byte
}

func (f *fakeIO) TimeMS() uint32 { return 1000 }
func (f *fakeIO) Send(b []byte) error {
	f.sent = append(f.sent, b...)
	return nil
}
func (f *fakeIO) SendAvailable() uint32 { return 1 << 16 }

func newTestTransport(t *testing.T) (*Transport, *fakeIO) {
	t.Helper()
	tr := New()
	fio := &fakeIO{}
	link, err := datalink.New(datalink.DefaultConfig(), fio, tr)
	if err != nil {
		t.Fatalf("datalink.New: %v", err)
	}
	tr.BindLink(link)
	return tr, fio
}

type sentFrame struct {
	portID    uint8
	seq       datalink.Seq
	messageID uint8
	payload   []byte
}

type frameSink struct{ frames []sentFrame }

func (s *frameSink) OnFrame(frameID uint16, seq framer.Seq, portID, messageID uint8, payload []byte) {
	s.frames = append(s.frames, sentFrame{portID, seq, messageID, append([]byte(nil), payload...)})
}
func (s *frameSink) OnFrameError()                                {}
func (s *frameSink) OnAck(frameType framer.FrameType, id uint16)  {}
func (s *frameSink) OnNack(frameType framer.FrameType, id uint16) {}
func (s *frameSink) OnReset(id uint16)                            {}

func TestPortRegisterRejectsOutOfRange(t *testing.T) {
	tr, _ := newTestTransport(t)
	err := tr.PortRegister(PortMax+1, "bogus", nil, nil)
	if !errors.Is(err, linkerr.New(linkerr.ParameterInvalid, "", nil)) {
		t.Fatalf("PortRegister(32) = %v, want ParameterInvalid", err)
	}
}

func TestSendRejectsOutOfRange(t *testing.T) {
	tr, _ := newTestTransport(t)
	err := tr.Send(PortMax+1, datalink.SeqSingle, 0, 0, []byte{1})
	if !errors.Is(err, linkerr.New(linkerr.ParameterInvalid, "", nil)) {
		t.Fatalf("Send(port=32) = %v, want ParameterInvalid", err)
	}
}

func TestSendCarriesPortAndSeqOnWire(t *testing.T) {
	tr, fio := newTestTransport(t)

	if err := tr.Send(5, datalink.SeqStart, 9, 0x2211, []byte{1, 2, 3}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	tr.link.Process()

	sink := &frameSink{}
	framer.New(sink).Recv(fio.sent)
	if len(sink.frames) != 1 {
		t.Fatalf("captured %d data frames, want 1", len(sink.frames))
	}
	f := sink.frames[0]
	if f.portID != 5 || f.seq != datalink.SeqStart || f.messageID != 9 {
		t.Fatalf("wire frame = %+v, want portID=5 seq=Start messageID=9", f)
	}
	if !bytes.Equal(f.payload, []byte{1, 2, 3}) {
		t.Fatalf("wire payload = %v, want [1 2 3]", f.payload)
	}
}

func TestOnRecvDispatchesToRegisteredPort(t *testing.T) {
	tr, _ := newTestTransport(t)

	var got []sentFrame
	err := tr.PortRegister(3, "test", nil, func(seq datalink.Seq, messageID uint8, msg []byte) {
		got = append(got, sentFrame{3, seq, messageID, append([]byte(nil), msg...)})
	})
	if err != nil {
		t.Fatalf("PortRegister: %v", err)
	}

	tr.OnRecv(3, datalink.SeqSingle, 7, []byte{0xAA})
	tr.OnRecv(4, datalink.SeqSingle, 7, []byte{0xBB}) // unregistered: dropped silently

	if len(got) != 1 {
		t.Fatalf("port 3 received %d messages, want 1", len(got))
	}
	if got[0].messageID != 7 || !bytes.Equal(got[0].payload, []byte{0xAA}) {
		t.Fatalf("delivered = %+v, want messageID=7 payload=[AA]", got[0])
	}
}

func TestEventFanOutAndLateRegistration(t *testing.T) {
	tr, _ := newTestTransport(t)

	counts := map[uint8]int{}
	register := func(portID uint8) {
		err := tr.PortRegister(portID, "", func(ev datalink.Event) { counts[portID]++ }, nil)
		if err != nil {
			t.Fatalf("PortRegister(%d): %v", portID, err)
		}
	}
	register(0)
	register(1)
	register(5)

	tr.OnEvent(datalink.Event{Kind: datalink.ConnectionEstablished, SessionID: "s1"})
	for _, portID := range []uint8{0, 1, 5} {
		if counts[portID] != 1 {
			t.Fatalf("port %d observed %d events, want 1", portID, counts[portID])
		}
	}

	// A late registration is immediately replayed the cached event without a
	// new fan-out from the data-link.
	register(2)
	if counts[2] != 1 {
		t.Fatalf("late-registered port observed %d events, want 1 (cached replay)", counts[2])
	}
	for _, portID := range []uint8{0, 1, 5} {
		if counts[portID] != 1 {
			t.Fatalf("port %d observed %d events after the late registration, want still 1", portID, counts[portID])
		}
	}
}

func TestLastEventCachingTracksLatest(t *testing.T) {
	tr, _ := newTestTransport(t)

	tr.OnEvent(datalink.Event{Kind: datalink.ConnectionEstablished, SessionID: "s1"})
	tr.OnEvent(datalink.Event{Kind: datalink.ConnectionLost, SessionID: "s1"})

	var got []datalink.Event
	err := tr.PortRegister(4, "", func(ev datalink.Event) { got = append(got, ev) }, nil)
	if err != nil {
		t.Fatalf("PortRegister: %v", err)
	}
	if len(got) != 1 || got[0].Kind != datalink.ConnectionLost {
		t.Fatalf("replayed events = %+v, want the most recent (ConnectionLost)", got)
	}
}

func TestPortUnregisterStopsDelivery(t *testing.T) {
	tr, _ := newTestTransport(t)

	delivered := 0
	if err := tr.PortRegister(6, "", nil, func(datalink.Seq, uint8, []byte) { delivered++ }); err != nil {
		t.Fatalf("PortRegister: %v", err)
	}
	tr.OnRecv(6, datalink.SeqSingle, 0, []byte{1})
	tr.PortUnregister(6)
	tr.OnRecv(6, datalink.SeqSingle, 0, []byte{2})

	if delivered != 1 {
		t.Fatalf("delivered %d messages, want 1 (none after unregister)", delivered)
	}
}

func TestRegisterOverwritesPriorRegistration(t *testing.T) {
	tr, _ := newTestTransport(t)

	var first, second int
	if err := tr.PortRegister(7, "v1", nil, func(datalink.Seq, uint8, []byte) { first++ }); err != nil {
		t.Fatalf("PortRegister v1: %v", err)
	}
	if err := tr.PortRegister(7, "v2", nil, func(datalink.Seq, uint8, []byte) { second++ }); err != nil {
		t.Fatalf("PortRegister v2: %v", err)
	}
	tr.OnRecv(7, datalink.SeqSingle, 0, []byte{1})

	if first != 0 || second != 1 {
		t.Fatalf("deliveries = (%d, %d), want the overwriting handler only", first, second)
	}
}
