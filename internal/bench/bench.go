// Package bench provides timing primitives for the exctool bench command:
// repeated pipeline runs over the same inputs, aggregate min/max/mean
// statistics, a lines-per-second throughput figure, and table/JSON report
// formatters.
package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// RunResult holds the timing and output-size metadata for a single pipeline
// run.
type RunResult struct {
	Index       int
	Cold        bool // true for the first run (cold-start: cache/FS warmup)
	Duration    time.Duration
	Lines       int // total lines in the final executable stream
	LinesPerSec float64
}

// Stats holds aggregate timing statistics across all runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations. An
// empty slice yields a zero Stats.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// CalcLinesPerSec returns lines emitted per second of wall-clock duration.
// Returns 0 if dur is zero to avoid division by zero.
func CalcLinesPerSec(dur time.Duration, lines int) float64 {
	if dur <= 0 {
		return 0
	}
	return float64(lines) / dur.Seconds()
}

// CheckDurationThreshold returns an error if meanDur exceeds threshold. A
// threshold of 0 disables the gate.
func CheckDurationThreshold(meanDur, threshold time.Duration) error {
	if threshold <= 0 {
		return nil
	}
	if meanDur > threshold {
		return fmt.Errorf("mean run duration %s exceeds threshold %s", meanDur, threshold)
	}
	return nil
}

// FormatTable writes a human-readable ASCII table of bench results to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-5s  %-5s  %10s  %10s  %12s\n", "Run", "Cold", "MS", "Lines", "Lines/s")
	fmt.Fprintln(sb, strings.Repeat("-", 48))

	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		fmt.Fprintf(sb, "%-5d  %-5s  %10.1f  %10d  %12.1f\n",
			r.Index+1,
			cold,
			float64(r.Duration.Milliseconds()),
			r.Lines,
			r.LinesPerSec,
		)
	}

	fmt.Fprintln(sb, strings.Repeat("-", 48))
	fmt.Fprintf(sb, "%-5s  %-5s  %10.1f  %10s  %12s  (min)\n", "", "", float64(stats.Min.Milliseconds()), "", "")
	fmt.Fprintf(sb, "%-5s  %-5s  %10.1f  %10s  %12s  (mean)\n", "", "", float64(stats.Mean.Milliseconds()), "", "")
	fmt.Fprintf(sb, "%-5s  %-5s  %10.1f  %10s  %12s  (max)\n", "", "", float64(stats.Max.Milliseconds()), "", "")

	fmt.Fprint(w, sb.String())
}

// jsonReport is the top-level JSON structure emitted by FormatJSON.
type jsonReport struct {
	Runs  []jsonRun `json:"runs"`
	Stats jsonStats `json:"stats"`
}

type jsonRun struct {
	Index       int     `json:"index"`
	Cold        bool    `json:"cold"`
	DurationMS  float64 `json:"duration_ms"`
	Lines       int     `json:"lines"`
	LinesPerSec float64 `json:"lines_per_sec"`
}

type jsonStats struct {
	MinMS  float64 `json:"min_ms"`
	MeanMS float64 `json:"mean_ms"`
	MaxMS  float64 `json:"max_ms"`
}

// FormatJSON writes a JSON report of bench results to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) {
	jr := jsonReport{
		Runs: make([]jsonRun, len(runs)),
		Stats: jsonStats{
			MinMS:  float64(stats.Min.Milliseconds()),
			MeanMS: float64(stats.Mean.Milliseconds()),
			MaxMS:  float64(stats.Max.Milliseconds()),
		},
	}
	for i, r := range runs {
		jr.Runs[i] = jsonRun{
			Index:       r.Index,
			Cold:        r.Cold,
			DurationMS:  float64(r.Duration.Milliseconds()),
			Lines:       r.Lines,
			LinesPerSec: r.LinesPerSec,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(jr)
}
