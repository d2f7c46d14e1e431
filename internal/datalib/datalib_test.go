package datalib

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeWords(t *testing.T, path string, n int) {
	t.Helper()
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString(strings.Repeat("0", 128))
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConvEntry(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "conv_1x10")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	info := `{"operator_type":"Conv","input_channels":1,"output_channels":10,"weight_data":12,"output_data":2}`
	if err := os.WriteFile(filepath.Join(dir, "info.json"), []byte(info), 0o644); err != nil {
		t.Fatal(err)
	}
	writeWords(t, filepath.Join(dir, "weight_data.txt"), 12)
	writeWords(t, filepath.Join(dir, "output_data.txt"), 2)

	entries, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 1 || entries[0].WeightPath == "" {
		t.Fatalf("expected one entry with a weight path, got %+v", entries)
	}
	weights, err := entries[0].ReadWeights()
	if err != nil || len(weights) != 12 {
		t.Fatalf("ReadWeights() = %d words, err=%v", len(weights), err)
	}
	outputs, err := entries[0].ReadOutputs()
	if err != nil || len(outputs) != 2 {
		t.Fatalf("ReadOutputs() = %d words, err=%v", len(outputs), err)
	}
}

func TestLoadPoolEntryHasNoWeightPath(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "pool_1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	info := `{"operator_type":"Pool","input_channels":10,"output_channels":10,"output_data":3}`
	if err := os.WriteFile(filepath.Join(dir, "info.json"), []byte(info), 0o644); err != nil {
		t.Fatal(err)
	}
	writeWords(t, filepath.Join(dir, "output_data.txt"), 3)

	entries, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 1 || entries[0].WeightPath != "" {
		t.Fatalf("expected pool entry without weight path, got %+v", entries)
	}
}
