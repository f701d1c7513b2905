package wire

import "testing"

func TestUint16LERoundTrip(t *testing.T) {
	buf := make([]byte, 2)
	PutUint16LE(buf, 0xABCD)
	if got := Uint16LE(buf); got != 0xABCD {
		t.Fatalf("Uint16LE = 0x%04X, want 0xABCD", got)
	}
	if buf[0] != 0xCD || buf[1] != 0xAB {
		t.Fatalf("buf = %x, want [CD AB] (little-endian)", buf)
	}
}

func TestUint32LERoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	PutUint32LE(buf, 0x01020304)
	if got := Uint32LE(buf); got != 0x01020304 {
		t.Fatalf("Uint32LE = 0x%08X, want 0x01020304", got)
	}
	if buf[0] != 0x04 || buf[3] != 0x01 {
		t.Fatalf("buf = %x, want low byte first", buf)
	}
}

func TestUint64LERoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	PutUint64LE(buf, 0x0102030405060708)
	if got := Uint64LE(buf); got != 0x0102030405060708 {
		t.Fatalf("Uint64LE = 0x%016X, want 0x0102030405060708", got)
	}
}

func TestUint16BERoundTrip(t *testing.T) {
	buf := make([]byte, 2)
	PutUint16BE(buf, 0xABCD)
	if got := Uint16BE(buf); got != 0xABCD {
		t.Fatalf("Uint16BE = 0x%04X, want 0xABCD", got)
	}
	if buf[0] != 0xAB || buf[1] != 0xCD {
		t.Fatalf("buf = %x, want [AB CD] (big-endian)", buf)
	}
}

func TestUint32BERoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	PutUint32BE(buf, 0x01020304)
	if got := Uint32BE(buf); got != 0x01020304 {
		t.Fatalf("Uint32BE = 0x%08X, want 0x01020304", got)
	}
	if buf[0] != 0x01 || buf[3] != 0x04 {
		t.Fatalf("buf = %x, want high byte first", buf)
	}
}

func TestUint64BERoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	PutUint64BE(buf, 0x0102030405060708)
	if got := Uint64BE(buf); got != 0x0102030405060708 {
		t.Fatalf("Uint64BE = 0x%016X, want 0x0102030405060708", got)
	}
	if buf[0] != 0x01 || buf[7] != 0x08 {
		t.Fatalf("buf = %x, want high byte first", buf)
	}
}
