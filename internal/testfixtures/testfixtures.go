// Package testfixtures materializes golden operator- and data-library
// directories (plus network descriptions) from a compact YAML description,
// so pipeline and stage tests can build Scenario A/B/C-style fixtures
// without hand-writing dozens of info.json/blob files per test.
package testfixtures

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry describes one operator- or data-library directory entry. The same
// shape serves both libraries: InstructionLines is consumed when writing an
// operator library, WeightLines/OutputLines when writing a data library.
type Entry struct {
	Name              string `yaml:"name"`
	OperatorType      string `yaml:"operator_type"`
	InputChannels     int    `yaml:"input_channels"`
	OutputChannels    int    `yaml:"output_channels"`
	KernelSize        []int  `yaml:"kernel_size,omitempty"`
	Stride            []int  `yaml:"stride,omitempty"`
	Padding           []int  `yaml:"padding,omitempty"`
	InputTensorShape  []int  `yaml:"input_tensor_shape,omitempty"`
	OutputTensorShape []int  `yaml:"output_tensor_shape,omitempty"`
	InFeatures        []int  `yaml:"in_features,omitempty"`
	OutFeatures       []int  `yaml:"out_features,omitempty"`
	IsPrevFC          bool   `yaml:"isPrevFC,omitempty"`

	InstructionLines int `yaml:"instruction_lines,omitempty"`
	WeightLines      int `yaml:"weight_lines,omitempty"` // 0 = no weight blob (Pool)
	OutputLines      int `yaml:"output_lines,omitempty"`
}

// Library is a named collection of library entries, decoded from YAML and
// materialized onto disk as an operator- or data-library directory.
type Library struct {
	Entries []Entry `yaml:"entries"`
}

// ParseLibrary decodes a YAML library description.
func ParseLibrary(src []byte) (Library, error) {
	var lib Library
	if err := yaml.Unmarshal(src, &lib); err != nil {
		return Library{}, fmt.Errorf("parse library fixture: %w", err)
	}
	return lib, nil
}

// NetworkLayer describes one network.json layer entry in the YAML fixture
// format, mirroring spec.md §6's on-disk field names.
type NetworkLayer struct {
	Operator    string `yaml:"operator" json:"operator"`
	InW         int    `yaml:"in_W,omitempty" json:"in_W,omitempty"`
	InH         int    `yaml:"in_H,omitempty" json:"in_H,omitempty"`
	InChannels  int    `yaml:"in_channels,omitempty" json:"in_channels,omitempty"`
	OutW        int    `yaml:"out_W,omitempty" json:"out_W,omitempty"`
	OutH        int    `yaml:"out_H,omitempty" json:"out_H,omitempty"`
	OutChannels int    `yaml:"out_channels,omitempty" json:"out_channels,omitempty"`
	Kernel      []int  `yaml:"kernel,omitempty" json:"kernel,omitempty"`
	Stride      int    `yaml:"stride,omitempty" json:"stride,omitempty"`
	Padding     int    `yaml:"padding,omitempty" json:"padding,omitempty"`
	InFeatures  int    `yaml:"in_features,omitempty" json:"in_features,omitempty"`
	OutFeatures int    `yaml:"out_features,omitempty" json:"out_features,omitempty"`
	IsPrevFC    bool   `yaml:"isPrevFC,omitempty" json:"isPrevFC,omitempty"`
}

// ParseNetwork decodes a YAML network-description fixture into its JSON
// on-disk layer shape.
func ParseNetwork(src []byte) ([]NetworkLayer, error) {
	var layers []NetworkLayer
	if err := yaml.Unmarshal(src, &layers); err != nil {
		return nil, fmt.Errorf("parse network fixture: %w", err)
	}
	return layers, nil
}

// WriteNetwork writes layers to path as the JSON array network.Load expects.
func WriteNetwork(path string, layers []NetworkLayer) error {
	return writeJSONFile(path, layers)
}

// infoJSON mirrors the on-disk info.json schema (spec.md §6): operator_type,
// channel counts, kernel/stride/padding, tensor shapes, FC feature counts,
// and the data-library-only declared line counts.
type infoJSON struct {
	OperatorType      string `json:"operator_type"`
	InputChannels     int    `json:"input_channels"`
	OutputChannels    int    `json:"output_channels"`
	KernelSize        []int  `json:"kernel_size,omitempty"`
	Stride            []int  `json:"stride,omitempty"`
	Padding           []int  `json:"padding,omitempty"`
	InputTensorShape  []int  `json:"input_tensor_shape,omitempty"`
	OutputTensorShape []int  `json:"output_tensor_shape,omitempty"`
	InFeatures        []int  `json:"in_features,omitempty"`
	OutFeatures       []int  `json:"out_features,omitempty"`
	IsPrevFC          bool   `json:"isPrevFC,omitempty"`
	WeightData        int    `json:"weight_data,omitempty"`
	OutputData        int    `json:"output_data,omitempty"`
}

// WriteOpLibrary materializes lib under root as an operator-library
// directory: one subdirectory per entry holding info.json and op_jili.txt.
func WriteOpLibrary(root string, lib Library) error {
	for _, e := range lib.Entries {
		dir := filepath.Join(root, e.Name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %q: %w", dir, err)
		}
		info := infoJSON{
			OperatorType:      e.OperatorType,
			InputChannels:     e.InputChannels,
			OutputChannels:    e.OutputChannels,
			KernelSize:        e.KernelSize,
			Stride:            e.Stride,
			Padding:           e.Padding,
			InputTensorShape:  e.InputTensorShape,
			OutputTensorShape: e.OutputTensorShape,
			InFeatures:        e.InFeatures,
			OutFeatures:       e.OutFeatures,
			IsPrevFC:          e.IsPrevFC,
		}
		if err := writeJSONFile(filepath.Join(dir, "info.json"), info); err != nil {
			return err
		}
		if err := writeBlobFile(filepath.Join(dir, "op_jili.txt"), e.InstructionLines, e.Name, "instr"); err != nil {
			return err
		}
	}
	return nil
}

// WriteDataLibrary materializes lib under root as a data-library directory:
// one subdirectory per entry holding info.json, output_data.txt, and
// weight_data.txt when WeightLines > 0.
func WriteDataLibrary(root string, lib Library) error {
	for _, e := range lib.Entries {
		dir := filepath.Join(root, e.Name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %q: %w", dir, err)
		}
		info := infoJSON{
			OperatorType:      e.OperatorType,
			InputChannels:     e.InputChannels,
			OutputChannels:    e.OutputChannels,
			KernelSize:        e.KernelSize,
			Stride:            e.Stride,
			Padding:           e.Padding,
			InputTensorShape:  e.InputTensorShape,
			OutputTensorShape: e.OutputTensorShape,
			InFeatures:        e.InFeatures,
			OutFeatures:       e.OutFeatures,
			IsPrevFC:          e.IsPrevFC,
			WeightData:        e.WeightLines,
			OutputData:        e.OutputLines,
		}
		if err := writeJSONFile(filepath.Join(dir, "info.json"), info); err != nil {
			return err
		}
		if e.WeightLines > 0 {
			if err := writeBlobFile(filepath.Join(dir, "weight_data.txt"), e.WeightLines, e.Name, "weight"); err != nil {
				return err
			}
		}
		if err := writeBlobFile(filepath.Join(dir, "output_data.txt"), e.OutputLines, e.Name, "output"); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %q: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// writeBlobFile writes n synthetic 128-bit words, each derived from a
// distinct counter seeded by name/kind so two fixtures never emit
// byte-identical blobs by accident.
func writeBlobFile(path string, n int, name, kind string) error {
	var sb strings.Builder
	seed := fnv32(name + ":" + kind)
	for i := 0; i < n; i++ {
		sb.WriteString(wordFromSeed(seed + uint32(i)))
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

func fnv32(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// wordFromSeed expands a 32-bit seed into a deterministic 128-character
// '0'/'1' word via a simple xorshift, so golden fixtures are reproducible
// across test runs without needing math/rand.
func wordFromSeed(seed uint32) string {
	x := seed | 1
	var sb strings.Builder
	sb.Grow(128)
	for sb.Len() < 128 {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		bits := strconv.FormatUint(uint64(x), 2)
		bits = strings.Repeat("0", 32-len(bits)) + bits
		sb.WriteString(bits)
	}
	return sb.String()[:128]
}
