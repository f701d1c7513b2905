package crc

import "testing"

func TestCRC32KnownVector(t *testing.T) {
	// "123456789" is the standard CRC-32/BZIP2 test vector family; for the
	// IEEE 802.3 polynomial used here the known digest is 0xCBF43926.
	got := CRC32(CRC32Seed, []byte("123456789"))
	if want := uint32(0xCBF43926); got != want {
		t.Fatalf("CRC32 = 0x%08X, want 0x%08X", got, want)
	}
}

func TestCRC32Chaining(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	whole := CRC32(CRC32Seed, data)

	split := len(data) / 2
	chained := CRC32(CRC32(CRC32Seed, data[:split]), data[split:])

	if chained != whole {
		t.Fatalf("chained CRC32 = 0x%08X, want 0x%08X (computed in one call)", chained, whole)
	}
}

func TestCRC32EmptyInput(t *testing.T) {
	if got := CRC32(CRC32Seed, nil); got != 0 {
		t.Fatalf("CRC32(seed, nil) = 0x%08X, want 0", got)
	}
}

func TestCRC8Deterministic(t *testing.T) {
	a := CRC8([]byte{0x01, 0x02, 0x03})
	b := CRC8([]byte{0x01, 0x02, 0x03})
	if a != b {
		t.Fatalf("CRC8 not deterministic: %x != %x", a, b)
	}
	if c := CRC8([]byte{0x01, 0x02, 0x04}); c == a {
		t.Fatalf("CRC8 collided on a single flipped bit: got %x for both inputs", a)
	}
}
