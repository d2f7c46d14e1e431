// Package doctor implements exctool's structural lint: verifying a network
// description parses, both library directories load, and every declared
// sub-task resolves against a library entry — all without running the
// lowering pipeline (no blob files are read, no output is written).
package doctor

import (
	"fmt"
	"io"

	"github.com/example/excitation-compiler/internal/datalib"
	"github.com/example/excitation-compiler/internal/libmatch"
	"github.com/example/excitation-compiler/internal/network"
	"github.com/example/excitation-compiler/internal/oplib"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// Config names the inputs to validate.
type Config struct {
	NetworkPath string
	OpLibrary   string
	DataLibrary string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes every structural check and writes human-readable output to
// w, each line prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	layers, err := network.Load(cfg.NetworkPath)
	if err != nil {
		res.fail(fmt.Sprintf("network description: %v", err))
		fmt.Fprintf(w, "%s network description %s: %v\n", FailMark, cfg.NetworkPath, err)
		return res // nothing downstream can be checked without a parsed network
	}
	fmt.Fprintf(w, "%s network description: %s (%d layers)\n", PassMark, cfg.NetworkPath, len(layers))

	ops, err := oplib.Load(cfg.OpLibrary)
	if err != nil {
		res.fail(fmt.Sprintf("op library: %v", err))
		fmt.Fprintf(w, "%s op library %s: %v\n", FailMark, cfg.OpLibrary, err)
	} else {
		fmt.Fprintf(w, "%s op library: %s (%d entries)\n", PassMark, cfg.OpLibrary, len(ops))
	}

	data, err := datalib.Load(cfg.DataLibrary)
	if err != nil {
		res.fail(fmt.Sprintf("data library: %v", err))
		fmt.Fprintf(w, "%s data library %s: %v\n", FailMark, cfg.DataLibrary, err)
	} else {
		fmt.Fprintf(w, "%s data library: %s (%d entries)\n", PassMark, cfg.DataLibrary, len(data))
	}

	opInfos := make([]libmatch.Info, len(ops))
	for i, e := range ops {
		opInfos[i] = e.Info
	}
	dataInfos := make([]libmatch.Info, len(data))
	for i, e := range data {
		dataInfos[i] = e.Info
	}

	for li, layer := range layers {
		count := layer.SubTaskCount()
		for k := 0; k < count; k++ {
			width := layer.SubTaskOutputWidth(k)
			if _, ok := libmatch.Find(layer, width, opInfos); !ok {
				msg := fmt.Sprintf("layer %d sub-task %d: no op-library match (width=%d)", li+1, k+1, width)
				res.fail(msg)
				fmt.Fprintf(w, "%s %s\n", FailMark, msg)
				continue
			}
			if _, ok := libmatch.Find(layer, width, dataInfos); !ok {
				msg := fmt.Sprintf("layer %d sub-task %d: no data-library match (width=%d)", li+1, k+1, width)
				res.fail(msg)
				fmt.Fprintf(w, "%s %s\n", FailMark, msg)
				continue
			}
			fmt.Fprintf(w, "%s layer %d sub-task %d: resolves (width=%d)\n", PassMark, li+1, k+1, width)
		}
	}

	return res
}
