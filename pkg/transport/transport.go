// Package transport implements the port multiplexer: it splits the single
// reliable channel a datalink.Link provides into up to 32 independently
// addressable ports, each carrying segmented/reassembled messages tagged
// with the wire seq marker.
//
// Transport is datalink.UpperCallbacks' one implementation in this
// repository; a Transport is always bound to exactly one Link.
package transport

import (
	"github.com/arqlink/linkstack/internal/linkerr"
	"github.com/arqlink/linkstack/pkg/datalink"
)

// PortMax is the highest valid port id; 0 is reserved for management traffic.
const PortMax = 31

// RecvFunc receives one in-order payload delivered on a port, tagged with
// the segmentation marker and the message_id the sender passed to Send.
type RecvFunc func(seq datalink.Seq, messageID uint8, msg []byte)

// EventFunc receives connection lifecycle transitions.
type EventFunc func(ev datalink.Event)

type port struct {
	registered bool
	meta       string
	recv       RecvFunc
	event      EventFunc
}

// Transport multiplexes one Link across up to 32 ports. It is
// single-threaded and cooperative, matching the Link it wraps.
type Transport struct {
	link      *datalink.Link
	ports     [PortMax + 1]port
	lastEvent *datalink.Event
}

// New returns a Transport with no Link bound yet. Because a Link takes its
// UpperCallbacks at construction (datalink.New) while a Transport needs an
// already-built Link to forward Send calls to, callers break the cycle with:
//
//	t := transport.New()
//	link, err := datalink.New(cfg, io, t)
//	t.BindLink(link)
func New() *Transport {
	return &Transport{}
}

// BindLink attaches the Link this Transport forwards Send calls to. Must be
// called exactly once, after the Link has been constructed with this
// Transport as its UpperCallbacks.
func (t *Transport) BindLink(link *datalink.Link) {
	t.link = link
}

// PortRegister binds recv/event handlers to portID, overwriting any prior
// registration. The new event handler is immediately replayed the most
// recent connection event, if any, so late-binding callers observe current
// state instead of waiting for the next transition.
func (t *Transport) PortRegister(portID uint8, meta string, eventFn EventFunc, recvFn RecvFunc) error {
	if portID > PortMax {
		return linkerr.New(linkerr.ParameterInvalid, "transport.PortRegister", nil)
	}
	t.ports[portID] = port{registered: true, meta: meta, recv: recvFn, event: eventFn}
	if eventFn != nil && t.lastEvent != nil {
		eventFn(*t.lastEvent)
	}
	return nil
}

// PortUnregister clears a port's handlers. Sending on an unregistered port
// is still permitted; only delivery is affected.
func (t *Transport) PortUnregister(portID uint8) {
	if portID > PortMax {
		return
	}
	t.ports[portID] = port{}
}

// Send encodes portData/seq/portID into the data-link's opaque metadata tag
// as (port_data<<8)|(seq<<6)|(port_id&0x1F) and hands msg to the underlying
// Link for reliable delivery.
func (t *Transport) Send(portID uint8, seq datalink.Seq, messageID uint8, portData uint16, msg []byte) error {
	if portID > PortMax {
		return linkerr.New(linkerr.ParameterInvalid, "transport.Send", nil)
	}
	metadata := (uint32(portData) << 8) | (uint32(seq) << 6) | uint32(portID&0x1F)
	return t.link.Send(portID, seq, messageID, metadata, msg)
}

// OnRecv implements datalink.UpperCallbacks: it dispatches to the
// registered port's RecvFunc, dropping silently if the port was never
// registered.
func (t *Transport) OnRecv(portID uint8, seq datalink.Seq, messageID uint8, msg []byte) {
	if portID > PortMax {
		return
	}
	p := &t.ports[portID]
	if p.registered && p.recv != nil {
		p.recv(seq, messageID, msg)
	}
}

// OnMessageFailed implements datalink.UpperCallbacks. The port table has no
// dedicated failure callback; exhausted sends are only surfaced in
// aggregate via Link.Status().TxFailureCount, so this is intentionally a
// no-op rather than a half-routed error with nowhere to go.
func (t *Transport) OnMessageFailed(metadata uint32, err error) {}

// OnEvent implements datalink.UpperCallbacks: fans ev out to every
// registered port and caches connection-lifecycle events as lastEvent for
// future PortRegister calls.
func (t *Transport) OnEvent(ev datalink.Event) {
	t.lastEvent = &ev
	for i := range t.ports {
		p := &t.ports[i]
		if p.registered && p.event != nil {
			p.event(ev)
		}
	}
}
