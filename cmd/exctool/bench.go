package main

import (
	"fmt"
	"os"
	"time"

	"github.com/example/excitation-compiler/internal/bench"
	"github.com/example/excitation-compiler/internal/bitstream"
	"github.com/example/excitation-compiler/internal/pipeline"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var runs int
	var threshold time.Duration
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the pipeline repeatedly and report timing statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if runs < 1 {
				runs = 1
			}

			results := make([]bench.RunResult, runs)
			durations := make([]time.Duration, runs)
			for i := 0; i < runs; i++ {
				start := time.Now()
				result, err := pipeline.Run(cmd.Context(), cfg)
				dur := time.Since(start)
				if err != nil {
					return fmt.Errorf("run %d: %w", i+1, err)
				}
				lines := 0
				if data, rerr := readFileLineCount(result.Paths.Final); rerr == nil {
					lines = data
				}
				durations[i] = dur
				results[i] = bench.RunResult{
					Index:       i,
					Cold:        i == 0,
					Duration:    dur,
					Lines:       lines,
					LinesPerSec: bench.CalcLinesPerSec(dur, lines),
				}
			}

			stats := bench.ComputeStats(durations)
			if jsonOut {
				bench.FormatJSON(results, stats, os.Stdout)
			} else {
				bench.FormatTable(results, stats, os.Stdout)
			}
			return bench.CheckDurationThreshold(stats.Mean, threshold)
		},
	}
	cmd.Flags().IntVar(&runs, "runs", 1, "Number of pipeline runs to time")
	cmd.Flags().DurationVar(&threshold, "threshold", 0, "Fail if mean run duration exceeds this (0 disables)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit a JSON report instead of a table")
	return cmd
}

func readFileLineCount(path string) (int, error) {
	lines, err := bitstream.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return len(lines), nil
}
