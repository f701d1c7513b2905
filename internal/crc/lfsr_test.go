package crc

import "testing"

func TestLFSR16FollowTracksMatchingStream(t *testing.T) {
	gen := NewLFSR16()
	ref := NewLFSR16()

	for i := 0; i < 64; i++ {
		b := gen.NextU8()
		if ref.Follow(b) < 0 {
			t.Fatalf("byte %d: Follow flagged a mismatch against an identical generator", i)
		}
	}
	if got := ref.ErrorCount(); got != 0 {
		t.Fatalf("ErrorCount = %d, want 0 for a perfectly matching stream", got)
	}
}

func TestLFSR16FollowDetectsCorruption(t *testing.T) {
	gen := NewLFSR16()
	ref := NewLFSR16()

	stream := make([]byte, 32)
	for i := range stream {
		stream[i] = gen.NextU8()
	}
	stream[20] ^= 0x01 // flip one bit well past the resync window

	mismatches := 0
	for _, b := range stream {
		if ref.Follow(b) < 0 {
			mismatches++
		}
	}
	if mismatches == 0 {
		t.Fatalf("corrupted byte went undetected")
	}
	if ref.ErrorCount() != mismatches {
		t.Fatalf("ErrorCount = %d, want %d", ref.ErrorCount(), mismatches)
	}
}

func TestLFSR16FollowResyncsToForeignSeed(t *testing.T) {
	gen := NewLFSR16Seeded(0xBEEF)
	ref := NewLFSR16() // deliberately different seed

	for i := 0; i < 10; i++ {
		gen.NextU8() // start following mid-stream
	}
	for i := 0; i < 32; i++ {
		b := gen.NextU8()
		got := ref.Follow(b)
		if i >= 2 && got < 0 {
			t.Fatalf("byte %d: Follow lost sync after the 16-bit resync window", i)
		}
	}
	if ref.ErrorCount() != 0 {
		t.Fatalf("ErrorCount = %d, want 0 after resynchronizing to a foreign stream", ref.ErrorCount())
	}
}

func TestLFSR16SeededZeroSubstitutesOne(t *testing.T) {
	a := NewLFSR16Seeded(0)
	b := NewLFSR16Seeded(1)
	if a.NextU16() != b.NextU16() {
		t.Fatalf("seed 0 should substitute seed 1 (an all-zero LFSR state never advances)")
	}
}
