// Package stage3 implements data linking: it appends the data region (a
// freshly generated random input block, then per-layer weight/output
// groups) after the S2 stream, wires each layer's input address to the
// previous layer's output address, and emits the data-address sidecar.
package stage3

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/example/excitation-compiler/internal/bitstream"
	"github.com/example/excitation-compiler/internal/datalib"
	"github.com/example/excitation-compiler/internal/libmatch"
	"github.com/example/excitation-compiler/internal/network"
	"github.com/example/excitation-compiler/internal/xerrors"
)

// SeparatorLines is the fixed sentinel run length between data groups.
const SeparatorLines = 5

// DataAddress is one sidecar record, as produced per sub-task.
type DataAddress struct {
	InputDataAddr  int `json:"inputData_addr"`
	WeightDataAddr int `json:"weightData_addr"`
	OutputDataAddr int `json:"outputData_addr"`
	WeightLines    int `json:"weight_lines"`
	OutputLines    int `json:"output_lines"`
}

// DataAddresses is the nested sidecar mapping "<i>_layer" -> "<j>_task" ->
// DataAddress, with j global across the whole network (matching stage2's
// numbering).
type DataAddresses map[string]map[string]DataAddress

// Options configures Generate.
type Options struct {
	SeparatorLines int
	// Rand supplies layer-1 input bits. Tests should inject a seeded
	// *rand.Rand for reproducibility; production callers may leave this nil
	// to get a process-local, non-reproducible source.
	Rand *rand.Rand
}

// Result holds the appended stream and its sidecar.
type Result struct {
	Stream    []string
	Addresses DataAddresses
}

// Generate appends the data region after controlStream.
func Generate(controlStream []string, layers []network.Layer, entries []datalib.Entry, opts Options) (Result, []string, error) {
	if len(layers) == 0 {
		return Result{Stream: append([]string(nil), controlStream...), Addresses: DataAddresses{}}, nil, nil
	}
	sep := opts.SeparatorLines
	if sep <= 0 {
		sep = SeparatorLines
	}
	r := opts.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var warnings []string
	buf := bitstream.NewBuffer(0)
	base := len(controlStream)

	buf.AppendSentinels(sep)
	inputLines := InputLines(layers[0])
	inputAddr := base + buf.Len()
	buf.Append(generateRandomWords(r, inputLines)...)
	buf.AppendSentinels(sep)

	addresses := DataAddresses{}
	prevOutputAddr := inputAddr
	globalTask := 0

	for li, layer := range layers {
		count := layer.SubTaskCount()
		type sub struct {
			weights []string
			outputs []string
		}
		subs := make([]sub, count)
		isConvOrFC := layer.Operator != network.OpPool

		for k := 0; k < count; k++ {
			width := layer.SubTaskOutputWidth(k)
			entry, ok := findData(layer, width, entries)
			if !ok {
				return Result{}, warnings, &xerrors.LibraryMissError{
					Library: "data", Layer: li + 1, Task: k + 1,
					Reason: "no data entry matches sub-task signature",
				}
			}
			var weights []string
			if isConvOrFC {
				w, err := entry.ReadWeights()
				if err != nil {
					return Result{}, warnings, err
				}
				if len(w) != entry.Info.WeightDataLines {
					warnings = append(warnings, fmt.Sprintf(
						"layer %d sub-task %d: weight blob has %d lines, info.json declares %d; using actual",
						li+1, k+1, len(w), entry.Info.WeightDataLines))
				}
				weights = w
			}
			outputs, err := entry.ReadOutputs()
			if err != nil {
				return Result{}, warnings, err
			}
			if len(outputs) != entry.Info.OutputDataLines {
				warnings = append(warnings, fmt.Sprintf(
					"layer %d sub-task %d: output blob has %d lines, info.json declares %d; using actual",
					li+1, k+1, len(outputs), entry.Info.OutputDataLines))
			}
			subs[k] = sub{weights: weights, outputs: outputs}
		}

		var weightStart int
		if isConvOrFC {
			weightStart = base + buf.Len()
			for _, s := range subs {
				buf.Append(s.weights...)
			}
			buf.AppendSentinels(sep)
		}

		outputStart := base + buf.Len()
		for _, s := range subs {
			buf.Append(s.outputs...)
		}
		buf.AppendSentinels(sep)

		layerKey := fmt.Sprintf("%d_layer", li+1)
		addresses[layerKey] = map[string]DataAddress{}
		wOffset, oOffset := weightStart, outputStart
		firstOutputAddr := oOffset
		for k, s := range subs {
			globalTask++
			var wAddr, wLines int
			if isConvOrFC {
				wAddr = wOffset
				wLines = len(s.weights)
				wOffset += wLines
			}
			oAddr := oOffset
			oLines := len(s.outputs)
			oOffset += oLines
			if k == 0 {
				firstOutputAddr = oAddr
			}
			taskKey := fmt.Sprintf("%d_task", globalTask)
			addresses[layerKey][taskKey] = DataAddress{
				InputDataAddr:  prevOutputAddr,
				WeightDataAddr: wAddr,
				OutputDataAddr: oAddr,
				WeightLines:    wLines,
				OutputLines:    oLines,
			}
		}
		prevOutputAddr = firstOutputAddr
	}

	stream := make([]string, 0, len(controlStream)+buf.Len())
	stream = append(stream, controlStream...)
	stream = append(stream, buf.Lines()...)

	return Result{Stream: stream, Addresses: addresses}, warnings, nil
}

// InputLines returns the freshly-generated input block length for a first
// layer: ceil(inH/8)*inW*inC for Conv/Pool, ceil(inFeatures/16) for FC. The
// FC formula is an extrapolation flagged as an open question in the design
// notes — the source only exercises it for Conv/Pool first layers.
func InputLines(layer network.Layer) int {
	switch layer.Operator {
	case network.OpFC:
		return ceilDiv(layer.InFeatures, 16)
	default:
		return ceilDiv(layer.InH, 8) * layer.InW * layer.InChannels
	}
}

func ceilDiv(n, d int) int {
	if n <= 0 || d <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

func generateRandomWords(r *rand.Rand, n int) []string {
	words := make([]string, n)
	buf := make([]byte, bitstream.WordLen)
	for i := 0; i < n; i++ {
		for b := 0; b < bitstream.WordLen; b++ {
			if r.Intn(2) == 1 {
				buf[b] = '1'
			} else {
				buf[b] = '0'
			}
		}
		words[i] = string(buf)
	}
	return words
}

func findData(layer network.Layer, width int, entries []datalib.Entry) (datalib.Entry, bool) {
	for _, e := range entries {
		if libmatch.Match(layer, width, e.Info) {
			return e, true
		}
	}
	return datalib.Entry{}, false
}
