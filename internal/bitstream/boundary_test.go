package bitstream

import (
	"strings"
	"testing"
)

func word(tag byte, n int) string {
	return strings.Repeat(string(tag), n) + strings.Repeat("0", WordLen-n)
}

func TestRecoverFixedSeparator(t *testing.T) {
	var lines []string
	lines = append(lines, word('0', 3), word('0', 5), word('0', 7)) // body 1 (3 lines)
	lines = append(lines, Sentinel, Sentinel, Sentinel, Sentinel, Sentinel)
	lines = append(lines, word('0', 1), word('0', 2)) // body 2 (2 lines)
	lines = append(lines, Sentinel, Sentinel, Sentinel, Sentinel, Sentinel)

	got := RecoverFixedSeparator(lines, 5)
	want := []TaskBoundary{{StartLine: 0, BodyLines: 3}, {StartLine: 8, BodyLines: 2}}
	if len(got) != len(want) {
		t.Fatalf("got %d boundaries, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("boundary %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRecoverFixedSeparatorTrailingShortRun(t *testing.T) {
	lines := []string{word('0', 1), word('0', 2), Sentinel, Sentinel}
	got := RecoverFixedSeparator(lines, 5)
	want := []TaskBoundary{{StartLine: 0, BodyLines: 2}}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

// TestRecoverVariableSeparatorRoundTrip exercises Scenario F: padding runs
// of varying length between consecutive tasks must not change the
// recovered (start, count) list.
func TestRecoverVariableSeparatorRoundTrip(t *testing.T) {
	bodies := [][]string{
		{word('0', 1)},
		{word('0', 2), word('0', 3)},
		{word('0', 4)},
		{word('0', 5), word('0', 6), word('0', 7)},
	}
	gaps := []int{0, 1, 123, 256}

	var lines []string
	var want []TaskBoundary
	for i, body := range bodies {
		if i > 0 {
			for g := 0; g < gaps[i]; g++ {
				lines = append(lines, Sentinel)
			}
		}
		want = append(want, TaskBoundary{StartLine: len(lines), BodyLines: len(body)})
		lines = append(lines, body...)
	}

	got := RecoverVariableSeparator(lines)
	if len(got) != len(want) {
		t.Fatalf("got %d boundaries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("boundary %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestIsWordAndSentinel(t *testing.T) {
	if !IsWord(Sentinel) {
		t.Fatal("sentinel must be a valid word")
	}
	if !IsSentinel(Sentinel) {
		t.Fatal("sentinel must report IsSentinel")
	}
	if IsWord("01") {
		t.Fatal("short string must not be a valid word")
	}
	if IsWord(strings.Repeat("2", WordLen)) {
		t.Fatal("non-binary string must not be a valid word")
	}
}
