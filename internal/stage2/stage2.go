// Package stage2 implements control and FIFO synthesis: it prefixes the
// aligned task stream with the 1536-line controller region (five literal
// constants plus a patched FIFO count, a FIFO directory, and sentinel
// padding) and emits the task-address sidecar.
package stage2

import (
	"fmt"

	"github.com/example/excitation-compiler/internal/bitfield"
	"github.com/example/excitation-compiler/internal/bitstream"
	"github.com/example/excitation-compiler/internal/network"
	"github.com/example/excitation-compiler/internal/xerrors"
)

// ControlBlockLines is the fixed length of the controller region.
const ControlBlockLines = 1536

// fifoStart is the 0-based line index within the control block where FIFO
// entries begin (line 513, 1-based).
const fifoStart = 512

// ControllerPrologue holds the five literal 128-bit controller words. They
// are hardware constants, not computed.
var ControllerPrologue = [5]string{
	"10001010111000000000000000000100111010110001011100000000000000001000100011100000000000000000101111100110011101001010110110000000",
	"10000110000100110000000000000000100001100011010000000000000000001000101001000000000000000000001011100010000100011001000000000000",
	"10110000111001110000000000000001110000001110000000000000000100101000101011100000000000000000010011101000000110001011100000000000",
	"11000011000000000000000000001100110100000000000000000000000001001011010000000000000000000000000010110100000000000000000000000000",
	"10110100000000000000000000000000101101000000000000000000000000001011010000000000000000000000000011111100000000000000000000000000",
}

// TaskAddress is one sidecar record, as produced per sub-task.
type TaskAddress struct {
	ActualLine      int `json:"actual_line"`
	OriginAddr      int `json:"origin_addr"`
	InstructionNums int `json:"instruction_nums"`
}

// TaskAddresses is the nested sidecar mapping "<i>_layer" -> "<j>_task" ->
// TaskAddress, with j global across the whole network.
type TaskAddresses map[string]map[string]TaskAddress

// Result holds the prefixed stream and its sidecar.
type Result struct {
	Stream       []string
	Addresses    TaskAddresses
	SubtaskCount int
}

// Generate prefixes aligned with the controller region and builds the
// task-address sidecar. strict turns the soft "detected sub-task count
// differs from the declared count" warning into a fatal error.
func Generate(aligned []string, layers []network.Layer, strict bool) (Result, []string, error) {
	boundaries := bitstream.RecoverVariableSeparator(aligned)
	taskCounts := network.TaskCounts(layers)
	declared := 0
	for _, c := range taskCounts {
		declared += c
	}

	var warnings []string
	if len(boundaries) != declared {
		msg := fmt.Sprintf("detected %d sub-tasks in aligned stream but network declares %d", len(boundaries), declared)
		warnings = append(warnings, msg)
		if strict {
			return Result{}, warnings, fmt.Errorf("strict mode: %s", msg)
		}
	}

	addresses := TaskAddresses{}
	fifo := make([]string, 0, len(boundaries))
	layerIdx := 1
	tasksInLayer := 0

	for i, tb := range boundaries {
		actualLine := tb.StartLine + ControlBlockLines + 1
		origin := actualLine - 1

		for layerIdx <= len(taskCounts) && tasksInLayer >= taskCounts[layerIdx-1] {
			layerIdx++
			tasksInLayer = 0
		}
		if i > 0 && origin%256 != 0 {
			return Result{}, warnings, &xerrors.AlignmentViolationError{Layer: layerIdx, Task: i + 1, OriginAddr: origin}
		}
		layerKey := fmt.Sprintf("%d_layer", layerIdx)
		if layerIdx > len(taskCounts) {
			warnings = append(warnings, fmt.Sprintf(
				"sub-task %d exceeds declared layer count %d; recorded under overflow layer %s", i+1, len(taskCounts), layerKey))
		}
		if addresses[layerKey] == nil {
			addresses[layerKey] = map[string]TaskAddress{}
		}
		taskKey := fmt.Sprintf("%d_task", i+1)
		addresses[layerKey][taskKey] = TaskAddress{
			ActualLine:      actualLine,
			OriginAddr:      origin,
			InstructionNums: tb.BodyLines,
		}
		tasksInLayer++

		fifo = append(fifo, fifoEntry(origin, tb.BodyLines))
	}

	control := make([]string, ControlBlockLines)
	for i := range control {
		control[i] = bitstream.Sentinel
	}
	copy(control[:5], ControllerPrologue[:])
	control[0] = bitfield.PatchBits(control[0], 80, 95, bitfield.Binary(uint64(len(boundaries)), 16))
	for i, entry := range fifo {
		control[fifoStart+i] = entry
	}

	stream := make([]string, 0, len(control)+len(aligned))
	stream = append(stream, control...)
	stream = append(stream, aligned...)

	return Result{Stream: stream, Addresses: addresses, SubtaskCount: len(boundaries)}, warnings, nil
}

// fifoEntry encodes one FIFO directory word: 64 zero bits, the 32-bit
// big-endian start address scaled by 16, and the 32-bit big-endian
// instruction count.
func fifoEntry(originAddr, instructionCount int) string {
	return bitfield.Binary(0, 64) +
		bitfield.Binary(uint64(originAddr*16), 32) +
		bitfield.Binary(uint64(instructionCount), 32)
}
