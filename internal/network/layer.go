// Package network loads the layered network description and implements the
// sub-task partitioning arithmetic shared by every stage: the tagged
// Conv/Pool/FC variant, per-layer sub-task counts, and per-sub-task output
// slice widths.
package network

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/excitation-compiler/internal/xerrors"
)

// Operator identifies which of the three layer kinds a Layer carries.
type Operator string

const (
	OpConv Operator = "Conv"
	OpPool Operator = "Pool"
	OpFC   Operator = "FC"
)

// Layer is a tagged variant covering Conv, Pool and FC. Only the fields
// relevant to the operator kind are populated; JSON decoding is driven
// entirely by the "operator" discriminator.
type Layer struct {
	Operator Operator

	// Conv / Pool spatial fields.
	InW, InH, InChannels    int
	OutW, OutH, OutChannels int
	KernelH, KernelW        int
	Stride                  int
	Padding                 int // Conv only

	// FC fields.
	InFeatures, OutFeatures int
	IsPrevFC                bool

	// Repeat is carried through from the network description ("repeate",
	// 0 when absent); no stage reads it and it has no effect on sub-task
	// partitioning.
	Repeat int
}

// rawLayer mirrors the on-disk JSON shape before it is lowered into Layer.
type rawLayer struct {
	Operator     string `json:"operator"`
	InW          int    `json:"in_W"`
	InH          int    `json:"in_H"`
	InChannels   int    `json:"in_channels"`
	OutW         int    `json:"out_W"`
	OutH         int    `json:"out_H"`
	OutChannels  int    `json:"out_channels"`
	Kernel       []int  `json:"kernel"`
	Stride       int    `json:"stride"`
	Padding      int    `json:"padding"`
	InFeatures   int    `json:"in_features"`
	OutFeatures  int    `json:"out_features"`
	IsPrevFC     bool   `json:"isPrevFC"`
	Repeat       int    `json:"repeate"`
}

// Load reads and decodes the network description at path.
func Load(path string) ([]Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &xerrors.IOFailureError{Op: "read network description", Path: path, Err: err}
	}
	var raw []rawLayer
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse network description %q: %w", path, err)
	}
	layers := make([]Layer, 0, len(raw))
	for i, r := range raw {
		l := Layer{
			Operator:    Operator(r.Operator),
			InW:         r.InW,
			InH:         r.InH,
			InChannels:  r.InChannels,
			OutW:        r.OutW,
			OutH:        r.OutH,
			OutChannels: r.OutChannels,
			Stride:      r.Stride,
			Padding:     r.Padding,
			InFeatures:  r.InFeatures,
			OutFeatures: r.OutFeatures,
			IsPrevFC:    r.IsPrevFC,
			Repeat:      r.Repeat,
		}
		if len(r.Kernel) == 2 {
			l.KernelH, l.KernelW = r.Kernel[0], r.Kernel[1]
		}
		switch l.Operator {
		case OpConv, OpPool, OpFC:
		default:
			return nil, fmt.Errorf("network description %q: layer %d: unknown operator %q", path, i+1, r.Operator)
		}
		layers = append(layers, l)
	}
	return layers, nil
}

// maxChunk is the largest output channel/feature slice width a single
// Conv or FC sub-task handles.
const maxChunk = 10

// SubTaskCount returns the number of sub-tasks the layer is split into:
// ceil(outC/10) for Conv, ceil(outFeatures/10) for FC, always 1 for Pool.
func (l Layer) SubTaskCount() int {
	switch l.Operator {
	case OpConv:
		return ceilDiv(l.OutChannels, maxChunk)
	case OpFC:
		return ceilDiv(l.OutFeatures, maxChunk)
	default: // OpPool
		return 1
	}
}

// SubTaskOutputWidth returns the output channel/feature slice width handled
// by the k-th (0-based) sub-task of the layer.
func (l Layer) SubTaskOutputWidth(k int) int {
	switch l.Operator {
	case OpConv:
		return min(maxChunk, l.OutChannels-maxChunk*k)
	case OpFC:
		return min(maxChunk, l.OutFeatures-maxChunk*k)
	default: // OpPool
		return l.OutChannels
	}
}

// TaskCounts returns SubTaskCount() for every layer in order.
func TaskCounts(layers []Layer) []int {
	counts := make([]int, len(layers))
	for i, l := range layers {
		counts[i] = l.SubTaskCount()
	}
	return counts
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
