// Package stage1 implements task generation and address alignment: for
// every layer's sub-tasks, match an operator-library entry, concatenate its
// instruction blob with a 5-sentinel separator into the "original" stream,
// then recover sub-task boundaries and re-emit them padded to 256-line
// page boundaries as the "aligned" stream.
package stage1

import (
	"github.com/example/excitation-compiler/internal/bitstream"
	"github.com/example/excitation-compiler/internal/libmatch"
	"github.com/example/excitation-compiler/internal/network"
	"github.com/example/excitation-compiler/internal/oplib"
	"github.com/example/excitation-compiler/internal/xerrors"
)

// SeparatorLines is the fixed number of sentinel lines written between
// sub-task bodies in the original stream.
const SeparatorLines = 5

// PageSize is the hardware page alignment unit sub-task bodies (after the
// first) must start on.
const PageSize = 256

// Options configures Generate. Zero value uses the spec-fixed separator
// width.
type Options struct {
	SeparatorLines int
}

// Result holds both S1 artifacts.
type Result struct {
	Original []string
	Aligned  []string
}

// Generate produces the original and aligned task streams for layers,
// matching each sub-task against ops.
func Generate(layers []network.Layer, ops []oplib.Entry, opts Options) (Result, error) {
	sep := opts.SeparatorLines
	if sep <= 0 {
		sep = SeparatorLines
	}

	buf := bitstream.NewBuffer(0)
	for li, layer := range layers {
		count := layer.SubTaskCount()
		for k := 0; k < count; k++ {
			width := layer.SubTaskOutputWidth(k)
			entry, ok := findOp(layer, width, ops)
			if !ok {
				return Result{}, &xerrors.LibraryMissError{
					Library: "op",
					Layer:   li + 1,
					Task:    k + 1,
					Reason:  "no operator entry matches sub-task signature",
				}
			}
			words, err := entry.ReadInstructions()
			if err != nil {
				return Result{}, err
			}
			buf.Append(words...)
			buf.AppendSentinels(sep)
		}
	}

	original := buf.Lines()
	aligned := Align(original, sep)
	return Result{Original: original, Aligned: aligned}, nil
}

// Align recovers sub-task boundaries from original (built with a fixed
// sep-line separator) and rewrites them padded so every sub-task after the
// first starts at a PageSize-aligned line.
func Align(original []string, sep int) []string {
	boundaries := bitstream.RecoverFixedSeparator(original, sep)
	out := bitstream.NewBuffer(len(original))
	for idx, tb := range boundaries {
		if idx > 0 {
			target := ceilToPage(out.Len())
			out.AppendSentinels(target - out.Len())
		}
		out.Append(original[tb.StartLine : tb.StartLine+tb.BodyLines]...)
	}
	return out.Lines()
}

func ceilToPage(n int) int {
	return (n + PageSize - 1) / PageSize * PageSize
}

func findOp(layer network.Layer, width int, ops []oplib.Entry) (oplib.Entry, bool) {
	for _, e := range ops {
		if libmatch.Match(layer, width, e.Info) {
			return e, true
		}
	}
	return oplib.Entry{}, false
}
