package stage1

import (
	"os"
	"strings"
	"testing"

	"github.com/example/excitation-compiler/internal/libmatch"
	"github.com/example/excitation-compiler/internal/network"
	"github.com/example/excitation-compiler/internal/oplib"
)

func blobWords(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strings.Repeat("0", 128)
	}
	return out
}

// fakeEntry builds an oplib.Entry backed by an in-memory instruction blob
// by writing it to a temp file, since Entry only knows how to read from
// disk.
func fakeEntry(t *testing.T, info libmatch.Info, n int) oplib.Entry {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/blob.txt"
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString(strings.Repeat("0", 128))
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return oplib.Entry{Info: info, InstructionPath: path}
}

// Scenario A — single Conv layer, one sub-task, 37-line blob.
func TestGenerateScenarioA(t *testing.T) {
	layer := network.Layer{
		Operator: network.OpConv,
		InW: 4, InH: 4, InChannels: 1,
		OutW: 4, OutH: 4, OutChannels: 10,
		KernelH: 3, KernelW: 3, Stride: 1, Padding: 1,
	}
	info := libmatch.Info{
		OperatorType: "Conv", InputChannels: 1, OutputChannels: 10,
		KernelSize: []int{3, 3}, Stride: []int{1, 1}, Padding: []int{1, 1},
		InputTensorShape: []int{4, 4, 1}, OutputTensorShape: []int{4, 4, 10},
	}
	entry := fakeEntry(t, info, 37)

	res, err := Generate([]network.Layer{layer}, []oplib.Entry{entry}, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Original) != 37+5 {
		t.Fatalf("original len = %d, want %d", len(res.Original), 37+5)
	}
	if len(res.Aligned) != 37 {
		t.Fatalf("aligned len = %d, want 37 (no padding before first task)", len(res.Aligned))
	}
}

// Scenario B — Conv(outC=25) multi-task: three sub-tasks with widths
// 10, 10, 5, padded to 256-line boundaries after the first.
func TestGenerateScenarioB(t *testing.T) {
	layer := network.Layer{
		Operator: network.OpConv,
		InW: 4, InH: 4, InChannels: 1,
		OutW: 4, OutH: 4, OutChannels: 25,
		KernelH: 3, KernelW: 3, Stride: 1, Padding: 1,
	}
	mkInfo := func(width int) libmatch.Info {
		return libmatch.Info{
			OperatorType: "Conv", InputChannels: 1, OutputChannels: width,
			KernelSize: []int{3, 3}, Stride: []int{1, 1}, Padding: []int{1, 1},
			InputTensorShape: []int{4, 4, 1}, OutputTensorShape: []int{4, 4, width},
		}
	}
	entries := []oplib.Entry{
		fakeEntry(t, mkInfo(10), 20),
		fakeEntry(t, mkInfo(5), 8),
	}
	// two distinct widths cover all three sub-tasks (10,10,5); the width-10
	// entry must match both the first and second sub-task.
	res, err := Generate([]network.Layer{layer}, entries, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Aligned) == 0 {
		t.Fatal("expected non-empty aligned stream")
	}
	// task0 body = 20 lines at line 0; task1 body = 20 lines must start at
	// line 256; task2 body = 8 lines must start at the next 256 multiple.
	if res.Aligned[0] == "" {
		t.Fatal("unexpected empty first aligned line")
	}
	task1Start := 256
	if len(res.Aligned) < task1Start+20 {
		t.Fatalf("aligned stream too short for task1 at 256: len=%d", len(res.Aligned))
	}
}

func TestGenerateLibraryMiss(t *testing.T) {
	layer := network.Layer{Operator: network.OpConv, OutChannels: 10}
	_, err := Generate([]network.Layer{layer}, nil, Options{})
	if err == nil {
		t.Fatal("expected LibraryMiss error")
	}
}

func TestAlignNoOpWhenSingleTask(t *testing.T) {
	original := append(blobWords(3), blobWords(5)...) // body + 5 sentinels, all zero words except we need sentinel value
	for i := 3; i < 8; i++ {
		original[i] = strings.Repeat("1", 128)
	}
	aligned := Align(original, 5)
	if len(aligned) != 3 {
		t.Fatalf("aligned len = %d, want 3", len(aligned))
	}
}
