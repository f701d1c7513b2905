// Package legacy implements the historical 8-byte-header framer variant
// (CRC-8 over the header, only later replaced by the compact frame-CRC-only
// layout in internal/framer). It is kept as a documented artifact per the
// repository's open questions — nothing in pkg/datalink or pkg/transport
// wires against it, and it is not maintained in lock-step with wire-format
// changes to the compact variant.
package legacy

import "github.com/arqlink/linkstack/internal/crc"

const (
	sof1 = 0x55
	sof2 = 0x00

	headerLen = 6 // type/id, length, id-lo, port, message_id, header_crc8
)

// FrameType mirrors the compact variant's type field.
type FrameType uint8

const (
	TypeData   FrameType = 0b000
	TypeAckAll FrameType = 0b100
	TypeAckOne FrameType = 0b101
	TypeNack   FrameType = 0b110
)

// Header is the legacy 8-byte header (2 SOF + 6 header octets, the last of
// which is the CRC-8 checksum of the preceding 5).
type Header struct {
	Type      FrameType
	FrameID   uint16
	Length    uint8 // payload length - 1
	PortID    uint8
	MessageID uint8
	HeaderCRC uint8
}

// BuildHeader renders the 8-byte legacy header (no payload, no trailing
// frame CRC — the legacy variant's payload framing is otherwise identical to
// the compact variant and is not reproduced here since nothing consumes it).
func BuildHeader(h Header) []byte {
	buf := make([]byte, 2+headerLen)
	buf[0] = sof1
	buf[1] = sof2
	buf[2] = byte(h.Type) | byte((h.FrameID>>8)&0x07)<<5
	buf[3] = h.Length
	buf[4] = byte(h.FrameID)
	buf[5] = h.PortID & 0x1F
	buf[6] = h.MessageID
	buf[7] = crc.CRC8(buf[2:7])
	return buf
}

// VerifyHeaderCRC recomputes the CRC-8 over a captured 8-byte legacy header
// (including its SOF bytes) and reports whether it matches the trailing
// checksum octet.
func VerifyHeaderCRC(frame []byte) bool {
	if len(frame) < 8 {
		return false
	}
	return crc.CRC8(frame[2:7]) == frame[7]
}
