// Package wire provides fixed-width encode/decode helpers in both byte
// orders. The frame protocol is little-endian throughout (except for the
// bit-packed header octet, which internal/framer handles directly); the
// big-endian forms serve network-order payloads carried over the link.
package wire

// PutUint16LE writes v into p[0:2], little-endian.
func PutUint16LE(p []byte, v uint16) {
	p[0] = byte(v)
	p[1] = byte(v >> 8)
}

// Uint16LE reads a little-endian uint16 from p[0:2].
func Uint16LE(p []byte) uint16 {
	return uint16(p[0]) | uint16(p[1])<<8
}

// PutUint32LE writes v into p[0:4], little-endian.
func PutUint32LE(p []byte, v uint32) {
	p[0] = byte(v)
	p[1] = byte(v >> 8)
	p[2] = byte(v >> 16)
	p[3] = byte(v >> 24)
}

// Uint32LE reads a little-endian uint32 from p[0:4].
func Uint32LE(p []byte) uint32 {
	return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
}

// PutUint64LE writes v into p[0:8], little-endian.
func PutUint64LE(p []byte, v uint64) {
	PutUint32LE(p[0:4], uint32(v))
	PutUint32LE(p[4:8], uint32(v>>32))
}

// Uint64LE reads a little-endian uint64 from p[0:8].
func Uint64LE(p []byte) uint64 {
	return uint64(Uint32LE(p[0:4])) | uint64(Uint32LE(p[4:8]))<<32
}

// PutUint16BE writes v into p[0:2], big-endian.
func PutUint16BE(p []byte, v uint16) {
	p[0] = byte(v >> 8)
	p[1] = byte(v)
}

// Uint16BE reads a big-endian uint16 from p[0:2].
func Uint16BE(p []byte) uint16 {
	return uint16(p[0])<<8 | uint16(p[1])
}

// PutUint32BE writes v into p[0:4], big-endian.
func PutUint32BE(p []byte, v uint32) {
	p[0] = byte(v >> 24)
	p[1] = byte(v >> 16)
	p[2] = byte(v >> 8)
	p[3] = byte(v)
}

// Uint32BE reads a big-endian uint32 from p[0:4].
func Uint32BE(p []byte) uint32 {
	return uint32(p[0])<<24 | uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3])
}

// PutUint64BE writes v into p[0:8], big-endian.
func PutUint64BE(p []byte, v uint64) {
	PutUint32BE(p[0:4], uint32(v>>32))
	PutUint32BE(p[4:8], uint32(v))
}

// Uint64BE reads a big-endian uint64 from p[0:8].
func Uint64BE(p []byte) uint64 {
	return uint64(Uint32BE(p[0:4]))<<32 | uint64(Uint32BE(p[4:8]))
}
