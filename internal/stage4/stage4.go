// Package stage4 implements address patching: it locates storage-controller
// configuration triples inside each sub-task's instruction body and
// rewrites their address fields in place with the final absolute data
// addresses computed by stage3.
package stage4

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/excitation-compiler/internal/bitfield"
	"github.com/example/excitation-compiler/internal/bitstream"
	"github.com/example/excitation-compiler/internal/stage2"
	"github.com/example/excitation-compiler/internal/stage3"
)

// scanWindow bounds how many lines past a sub-task's actualLine the
// patcher searches for storage-controller triples.
const scanWindow = 180

// Patch returns a copy of final with the address fields of every matching
// storage-controller triple rewritten (the input is not mutated), along
// with any warnings.
func Patch(final []string, taskAddrs stage2.TaskAddresses, dataAddrs stage3.DataAddresses) ([]string, []string, error) {
	lines := append([]string(nil), final...)
	var warnings []string

	for _, layerKey := range sortedKeys(taskAddrs) {
		layerTasks := taskAddrs[layerKey]
		dataLayer, hasData := dataAddrs[layerKey]
		for _, taskKey := range sortedKeys(layerTasks) {
			ta := layerTasks[taskKey]
			if !hasData {
				warnings = append(warnings, fmt.Sprintf("no data addresses recorded for %s; skipping patch for %s", layerKey, taskKey))
				continue
			}
			da, ok := dataLayer[taskKey]
			if !ok {
				warnings = append(warnings, fmt.Sprintf("no data address for %s/%s; skipping patch", layerKey, taskKey))
				continue
			}
			patchSubTask(lines, ta.ActualLine, da)
		}
	}

	return lines, warnings, nil
}

// patchSubTask scans the window starting at actualLine (1-based) for
// storage-controller triples and patches each one matching the
// classification table.
func patchSubTask(lines []string, actualLine int, da stage3.DataAddress) {
	i := actualLine - 1
	end := i + scanWindow
	if end > len(lines) {
		end = len(lines)
	}
	for i <= end-3 {
		line1 := lines[i]
		if len(line1) == bitstream.WordLen && strings.HasPrefix(line1, "011") {
			line3 := lines[i+2]
			dw := bitfield.ParseUint(bitfield.ExtractBits(line1, 24, 25))
			workMode := bitfield.ParseUint(bitfield.ExtractBits(line3, 114, 115))

			addr, match := classify(dw, workMode, da)
			if match {
				high, low := bitfield.Addr27(addr)
				patched := bitfield.PatchBits(line3, 50, 63, high)
				patched = bitfield.PatchBits(patched, 115, 127, low)
				lines[i+2] = patched
			}
			i += 3
			continue
		}
		i++
	}
}

// classify maps (workMode, dw) to the address role that must be patched,
// per the spec's classification table.
func classify(dw, workMode uint64, da stage3.DataAddress) (addr int, ok bool) {
	switch {
	case workMode == 0 && dw == 2:
		return da.InputDataAddr, true
	case workMode == 0 && dw == 1:
		return da.WeightDataAddr, true
	case workMode == 2 && dw == 2:
		return da.OutputDataAddr, true
	default:
		return 0, false
	}
}

// sortedKeys returns the keys of a "<n>_layer"/"<n>_task" map sorted by
// their numeric prefix, so traversal is layer-major/task-major as required.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return numericPrefix(keys[i]) < numericPrefix(keys[j])
	})
	return keys
}

func numericPrefix(key string) int {
	idx := strings.IndexByte(key, '_')
	if idx < 0 {
		return 0
	}
	n, _ := strconv.Atoi(key[:idx])
	return n
}
