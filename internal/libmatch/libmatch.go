// Package libmatch implements the field-by-field signature match used to
// pair a network layer's sub-task against an operator-library or
// data-library entry. Both libraries share the same info schema and the
// same matching rule (spec ties this down explicitly: "Same field-by-field
// match used in S1, but against the data-library's info records"), so this
// package is the single home for both call sites instead of duplicating the
// predicate per stage.
package libmatch

import "github.com/example/excitation-compiler/internal/network"

// Info is the decoded info.json shape common to op-library and
// data-library entries. FC-specific and Conv/Pool-specific fields coexist;
// only the ones relevant to OperatorType are populated by a given entry.
type Info struct {
	OperatorType string `json:"operator_type"`

	InputChannels  int   `json:"input_channels"`
	OutputChannels int   `json:"output_channels"`
	KernelSize     []int `json:"kernel_size"`
	Stride         []int `json:"stride"`
	Padding        []int `json:"padding"`

	InputTensorShape  []int `json:"input_tensor_shape"`
	OutputTensorShape []int `json:"output_tensor_shape"`

	InFeatures  []int `json:"in_features"`
	OutFeatures []int `json:"out_features"`
	IsPrevFC    bool  `json:"isPrevFC"`

	// Data-library-only fields; zero/absent for op-library entries.
	WeightDataLines int `json:"weight_data"`
	OutputDataLines int `json:"output_data"`
}

// Match reports whether info is a valid match for layer's sub-task whose
// output slice width is targetWidth (ignored for Pool, which always
// matches the layer's full output channel count).
func Match(layer network.Layer, targetWidth int, info Info) bool {
	switch layer.Operator {
	case network.OpConv:
		return matchConv(layer, targetWidth, info)
	case network.OpFC:
		return matchFC(layer, targetWidth, info)
	case network.OpPool:
		return matchPool(layer, info)
	default:
		return false
	}
}

// Find returns the first entry in infos that matches, if any.
func Find(layer network.Layer, targetWidth int, infos []Info) (Info, bool) {
	for _, info := range infos {
		if Match(layer, targetWidth, info) {
			return info, true
		}
	}
	return Info{}, false
}

// matchConv ports match_conv_operator field for field: type, input
// channels, kernel, stride, padding, exact output-channel slice width, then
// input/output tensor H×W.
func matchConv(layer network.Layer, targetWidth int, info Info) bool {
	if info.OperatorType != string(network.OpConv) {
		return false
	}
	if info.InputChannels != layer.InChannels {
		return false
	}
	if !equalPair(info.KernelSize, layer.KernelH, layer.KernelW) {
		return false
	}
	if !equalPair(info.Stride, layer.Stride, layer.Stride) {
		return false
	}
	if !equalPair(info.Padding, layer.Padding, layer.Padding) {
		return false
	}
	if info.OutputChannels != targetWidth {
		return false
	}
	if !tensorShapeMatches(info.InputTensorShape, layer.InW, layer.InH) {
		return false
	}
	if !tensorShapeMatches(info.OutputTensorShape, layer.OutW, layer.OutH) {
		return false
	}
	return true
}

// matchPool ports match_pool_operator: same shape/kernel/stride predicates
// as Conv but no padding field, and the output-channel match is against the
// layer's full channel count (Pool never splits channels across tasks).
func matchPool(layer network.Layer, info Info) bool {
	if info.OperatorType != string(network.OpPool) {
		return false
	}
	if info.InputChannels != layer.InChannels {
		return false
	}
	if !equalPair(info.KernelSize, layer.KernelH, layer.KernelW) {
		return false
	}
	if !equalPair(info.Stride, layer.Stride, layer.Stride) {
		return false
	}
	if !tensorShapeMatches(info.InputTensorShape, layer.InW, layer.InH) {
		return false
	}
	if !tensorShapeMatches(info.OutputTensorShape, layer.OutW, layer.OutH) {
		return false
	}
	if info.OutputChannels != layer.OutChannels {
		return false
	}
	return true
}

// matchFC has no canonical source counterpart (the retrieved original
// source never implements a fully-connected matcher); it is authored
// directly from the spec's description — "FC also requires isPrevFC to
// match" — using in/out feature counts in place of Conv's spatial fields
// and the exact output-feature slice width in place of Conv's exact
// output-channel slice width.
func matchFC(layer network.Layer, targetWidth int, info Info) bool {
	if info.OperatorType != string(network.OpFC) {
		return false
	}
	if len(info.InFeatures) == 0 || info.InFeatures[0] != layer.InFeatures {
		return false
	}
	if len(info.OutFeatures) == 0 || info.OutFeatures[0] != targetWidth {
		return false
	}
	if info.IsPrevFC != layer.IsPrevFC {
		return false
	}
	return true
}

func equalPair(field []int, a, b int) bool {
	if len(field) != 2 {
		return false
	}
	return field[0] == a && field[1] == b
}

func tensorShapeMatches(shape []int, w, h int) bool {
	if len(shape) < 2 {
		return false
	}
	return shape[0] == w && shape[1] == h
}
