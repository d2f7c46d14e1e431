// Package bitstream implements the 128-bit word stream shared by every
// lowering stage: the sentinel constant, word validation, an arena-style
// growable line buffer, and the sub-task boundary recovery algorithms used
// by both the original-to-aligned pass and the control-indexing pass.
package bitstream

import "strings"

// WordLen is the fixed width, in characters, of every emitted line.
const WordLen = 128

// Sentinel is the 128-bit all-ones separator word.
var Sentinel = strings.Repeat("1", WordLen)

// IsWord reports whether s is a well-formed 128-bit binary word: exactly
// WordLen characters, each '0' or '1'.
func IsWord(s string) bool {
	if len(s) != WordLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}

// IsSentinel reports whether s is the all-ones separator word.
func IsSentinel(s string) bool {
	return s == Sentinel
}

// Buffer is a growable, ordered sequence of fixed-width words paired with a
// 0-based line counter. Emitters append bodies and sentinel runs through the
// counter; address-producing callers capture Len() at the point of interest
// instead of tracking their own running offset.
type Buffer struct {
	lines []string
}

// NewBuffer returns an empty Buffer, optionally preallocated for capacity
// lines.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{lines: make([]string, 0, capacity)}
}

// Len returns the current 0-based line count, which doubles as the address
// of the next line that will be appended.
func (b *Buffer) Len() int { return len(b.lines) }

// Append adds words to the buffer in order.
func (b *Buffer) Append(words ...string) {
	b.lines = append(b.lines, words...)
}

// AppendSentinels appends n sentinel words.
func (b *Buffer) AppendSentinels(n int) {
	for i := 0; i < n; i++ {
		b.lines = append(b.lines, Sentinel)
	}
}

// Lines returns the buffer's contents. The returned slice aliases the
// Buffer's backing array and must not be mutated by the caller.
func (b *Buffer) Lines() []string { return b.lines }
