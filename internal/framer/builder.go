package framer

import (
	"github.com/arqlink/linkstack/internal/crc"
	"github.com/arqlink/linkstack/internal/wire"
)

// header byte 2 layout: frame_type in bits 3:0 (reserved bits 4-7 always 0,
// except frame_id bits 10:8 which the data/link frame both also carry in
// bits 7:5 of this same octet — see typeAndIDHigh).
func typeAndIDHigh(t FrameType, frameID uint16) byte {
	return byte(t) | byte((frameID>>8)&0x07)<<5
}

// BuildDataFrame renders a complete data frame (SOF..CRC) into a freshly
// allocated buffer. It is a pure function of its arguments: the same inputs
// always produce byte-identical output, which is what lets the data-link
// layer retransmit by rebuilding rather than caching wire bytes verbatim.
func BuildDataFrame(frameID uint16, seq Seq, portID, messageID uint8, payload []byte) []byte {
	n := len(payload)
	if n < 1 || n > MaxPayload {
		panic("framer: payload length out of range")
	}
	buf := make([]byte, 2+dataHeaderLen+n+crcLen)
	buf[0] = SOF1
	buf[1] = SOF2
	buf[2] = typeAndIDHigh(TypeData, frameID)
	buf[3] = byte(n - 1)
	buf[4] = byte(frameID)
	buf[5] = (portID & 0x1F) | byte(seq)<<5
	buf[6] = messageID
	buf[7] = 0 // reserved
	copy(buf[8:8+n], payload)

	sum := crc.CRC32(crc.CRC32Seed, buf[2:8+n])
	wire.PutUint32LE(buf[8+n:], sum)
	return buf
}

// BuildLinkFrame renders a complete link frame (Ack/Nack/Reset). frameID
// carries the meaning documented per type: the acknowledged/missing frame
// id for Ack/Nack; for Reset, pkg/datalink uses it to mark the handshake leg
// (0 = request, 1 = response).
func BuildLinkFrame(t FrameType, frameID uint16) []byte {
	if !t.isLink() {
		panic("framer: not a link frame type")
	}
	buf := make([]byte, 2+linkHeaderLen+crcLen)
	buf[0] = SOF1
	buf[1] = SOF2
	buf[2] = typeAndIDHigh(t, frameID)
	buf[3] = byte(frameID)

	sum := crc.CRC32(crc.CRC32Seed, buf[2:4])
	wire.PutUint32LE(buf[4:], sum)
	return buf
}
