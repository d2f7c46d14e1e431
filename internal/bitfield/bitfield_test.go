package bitfield

import "testing"

func TestBinary(t *testing.T) {
	if got := Binary(5, 8); got != "00000101" {
		t.Fatalf("Binary(5,8) = %q", got)
	}
	if got := Binary(0, 16); got != "0000000000000000" {
		t.Fatalf("Binary(0,16) = %q", got)
	}
}

func TestPatchBitsRoundTrip(t *testing.T) {
	word := "1" + "0" + "1" +
		"0000000000000000000000000000000000000000000000000" + // pad to keep total 128
		"0000000000000000000000000000000000000000000000000000000000000000000000000000"
	word = word[:128]
	patched := PatchBits(word, 50, 63, Binary(0x2AAA, 14))
	if ExtractBits(patched, 50, 63) != Binary(0x2AAA, 14) {
		t.Fatalf("bits not patched: %q", ExtractBits(patched, 50, 63))
	}
	if len(patched) != 128 {
		t.Fatalf("patched word length = %d, want 128", len(patched))
	}
}

func TestAddr27(t *testing.T) {
	high, low := Addr27(0)
	if high != "00000000000000" || low != "0000000000000" {
		t.Fatalf("Addr27(0) = %q, %q", high, low)
	}
	// addr such that addr has bits set in both halves.
	high, low = Addr27(1<<20 | 3)
	full := high + low
	if len(full) != 27 {
		t.Fatalf("split length = %d, want 27", len(full))
	}
	if ParseUint(full) != uint64(1<<20|3)*16 {
		t.Fatalf("round-trip mismatch: got %d", ParseUint(full))
	}
}

func TestParseUint(t *testing.T) {
	if ParseUint("101") != 5 {
		t.Fatalf("ParseUint(101) != 5")
	}
}
