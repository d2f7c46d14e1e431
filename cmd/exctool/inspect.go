package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/example/excitation-compiler/internal/bitstream"
	"github.com/example/excitation-compiler/internal/stage2"
	"github.com/example/excitation-compiler/internal/stage3"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var streamPath, taskAddrPath, dataAddrPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a human-readable summary of a stream and its address sidecars",
		RunE: func(_ *cobra.Command, _ []string) error {
			if streamPath == "" {
				return fmt.Errorf("--stream is required")
			}
			lines, err := bitstream.ReadFile(streamPath)
			if err != nil {
				return err
			}
			sentinels := 0
			for _, l := range lines {
				if l == bitstream.Sentinel {
					sentinels++
				}
			}
			fmt.Fprintf(os.Stdout, "%s: %d lines (%d sentinel, %d body)\n", streamPath, len(lines), sentinels, len(lines)-sentinels)

			if taskAddrPath != "" {
				var addrs stage2.TaskAddresses
				if err := readJSON(taskAddrPath, &addrs); err != nil {
					return err
				}
				printTaskAddresses(addrs)
			}
			if dataAddrPath != "" {
				var addrs stage3.DataAddresses
				if err := readJSON(dataAddrPath, &addrs); err != nil {
					return err
				}
				printDataAddresses(addrs)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&streamPath, "stream", "", "Stream file to inspect (required)")
	cmd.Flags().StringVar(&taskAddrPath, "task-addresses", "", "Optional task_addresses.json sidecar to summarize")
	cmd.Flags().StringVar(&dataAddrPath, "data-addresses", "", "Optional data_addresses.json sidecar to summarize")
	return cmd
}

func printTaskAddresses(addrs stage2.TaskAddresses) {
	fmt.Fprintln(os.Stdout, "\ntask addresses:")
	for _, layerKey := range sortedLayerKeys(addrs) {
		tasks := addrs[layerKey]
		for _, taskKey := range sortedTaskKeys(tasks) {
			ta := tasks[taskKey]
			fmt.Fprintf(os.Stdout, "  %s/%s: line=%d origin=%d instructions=%d\n",
				layerKey, taskKey, ta.ActualLine, ta.OriginAddr, ta.InstructionNums)
		}
	}
}

func printDataAddresses(addrs stage3.DataAddresses) {
	fmt.Fprintln(os.Stdout, "\ndata addresses:")
	for _, layerKey := range sortedDataLayerKeys(addrs) {
		tasks := addrs[layerKey]
		for _, taskKey := range sortedDataTaskKeys(tasks) {
			da := tasks[taskKey]
			fmt.Fprintf(os.Stdout, "  %s/%s: input=%d weight=%d(%d lines) output=%d(%d lines)\n",
				layerKey, taskKey, da.InputDataAddr, da.WeightDataAddr, da.WeightLines, da.OutputDataAddr, da.OutputLines)
		}
	}
}

func sortedLayerKeys(m stage2.TaskAddresses) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortByNumericPrefix(keys)
	return keys
}

func sortedTaskKeys(m map[string]stage2.TaskAddress) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortByNumericPrefix(keys)
	return keys
}

func sortedDataLayerKeys(m stage3.DataAddresses) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortByNumericPrefix(keys)
	return keys
}

func sortedDataTaskKeys(m map[string]stage3.DataAddress) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortByNumericPrefix(keys)
	return keys
}

// sortByNumericPrefix sorts "<n>_layer"/"<n>_task" keys by their leading
// integer rather than lexically, so layer/task 10 doesn't sort before 2.
func sortByNumericPrefix(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		return numericPrefix(keys[i]) < numericPrefix(keys[j])
	})
}

func numericPrefix(key string) int {
	idx := strings.IndexByte(key, '_')
	if idx < 0 {
		return 0
	}
	n, _ := strconv.Atoi(key[:idx])
	return n
}
