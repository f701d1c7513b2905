package framer

import (
	"github.com/arqlink/linkstack/internal/crc"
	"github.com/arqlink/linkstack/internal/wire"
)

type state int

const (
	stateSearchSOF1 state = iota
	stateSearchSOF2
	stateHeader
	statePayload
	stateFrameCRC
	stateLinkFrame
)

// Callbacks receives exactly one call per frame the deframer completes.
type Callbacks interface {
	OnFrame(frameID uint16, seq Seq, portID, messageID uint8, payload []byte)
	OnAck(frameType FrameType, frameID uint16)
	OnNack(frameType FrameType, frameID uint16)
	OnReset(frameID uint16)
	OnFrameError()
}

// Stats are the framer's own cumulative counters. Window-related
// counters (rx_frame_id_errors, rx_deduplicate_count) live on the data-link
// layer, which is the layer that knows about windows.
type Stats struct {
	RxCount                 uint64
	RxSynchronizationErrors uint64
	RxMICErrors             uint64
}

// RX is the byte-at-a-time deframer. The zero value is not usable; use New.
type RX struct {
	cb    Callbacks
	stats Stats

	st         state
	header     [dataHeaderLen]byte
	headerPos  int
	frameType  FrameType
	frameID    uint16
	length     int // payload length - 1, i.e. remaining-1
	payload    []byte
	payloadPos int
	crcBuf     [crcLen]byte
	crcPos     int
}

// New returns an RX deframer that invokes cb for every completed frame.
func New(cb Callbacks) *RX {
	return &RX{cb: cb, st: stateSearchSOF1}
}

func (r *RX) Stats() Stats { return r.stats }

// Recv feeds p through the state machine, byte by byte. State and any
// partial frame persist across calls.
func (r *RX) Recv(p []byte) {
	for _, b := range p {
		r.step(b)
	}
}

func (r *RX) step(b byte) {
	switch r.st {
	case stateSearchSOF1:
		if b == SOF1 {
			r.st = stateSearchSOF2
		}
		// else: discard, stay.

	case stateSearchSOF2:
		switch b {
		case SOF2:
			r.headerPos = 0
			r.st = stateHeader
		case SOF1:
			// run of SOF1 bytes is legal, no counter, stay put.
		default:
			r.st = stateSearchSOF1
			r.stats.RxSynchronizationErrors++
		}

	case stateHeader:
		r.header[r.headerPos] = b
		r.headerPos++
		r.frameType = FrameType(r.header[0] & 0x0F)
		if r.frameType.isLink() {
			if r.headerPos == linkHeaderLen {
				r.frameID = uint16(r.header[0]&0xE0)<<3 | uint16(r.header[1])
				r.crcPos = 0
				r.st = stateLinkFrame
			}
			return
		}
		if r.headerPos == dataHeaderLen {
			r.length = int(r.header[1]) // payload_len - 1
			r.frameID = uint16(r.header[0]&0xE0)<<3 | uint16(r.header[2])
			r.payload = make([]byte, r.length+1)
			r.payloadPos = 0
			r.st = statePayload
		}

	case statePayload:
		r.payload[r.payloadPos] = b
		r.payloadPos++
		if r.payloadPos == len(r.payload) {
			r.crcPos = 0
			r.st = stateFrameCRC
		}

	case stateFrameCRC:
		r.crcBuf[r.crcPos] = b
		r.crcPos++
		if r.crcPos == crcLen {
			r.finishDataFrame()
		}

	case stateLinkFrame:
		r.crcBuf[r.crcPos] = b
		r.crcPos++
		if r.crcPos == crcLen {
			r.finishLinkFrame()
		}
	}
}

func (r *RX) finishDataFrame() {
	r.st = stateSearchSOF1
	want := wire.Uint32LE(r.crcBuf[:])
	got := crc.CRC32(crc.CRC32(crc.CRC32Seed, r.header[:]), r.payload)
	if got != want {
		r.stats.RxMICErrors++
		r.cb.OnFrameError()
		return
	}
	r.stats.RxCount++
	portID := r.header[3] & 0x1F
	seq := Seq(r.header[3] >> 5)
	messageID := r.header[4]
	r.cb.OnFrame(r.frameID, seq, portID, messageID, r.payload)
}

func (r *RX) finishLinkFrame() {
	r.st = stateSearchSOF1
	want := wire.Uint32LE(r.crcBuf[:])
	got := crc.CRC32(crc.CRC32Seed, r.header[:linkHeaderLen])
	if got != want {
		r.stats.RxMICErrors++
		r.cb.OnFrameError()
		return
	}
	r.stats.RxCount++
	switch r.frameType {
	case TypeAckAll, TypeAckOne:
		r.cb.OnAck(r.frameType, r.frameID)
	case TypeNackFrameID, TypeNackFramingError:
		r.cb.OnNack(r.frameType, r.frameID)
	case TypeReset:
		r.cb.OnReset(r.frameID)
	}
}
