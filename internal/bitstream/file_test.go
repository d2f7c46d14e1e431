package bitstream

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteReadFileRoundTrip(t *testing.T) {
	lines := []string{
		strings.Repeat("0", WordLen),
		Sentinel,
		strings.Repeat("1", 64) + strings.Repeat("0", 64),
	}
	path := filepath.Join(t.TempDir(), "stream.txt")

	if err := WriteFile(path, lines); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != len(lines) {
		t.Fatalf("got %d lines, want %d", len(got), len(lines))
	}
	for i := range lines {
		if got[i] != lines[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], lines[i])
		}
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
