// Package pipeline orchestrates the four lowering stages end to end:
// load the network description and both libraries, run stage1 through
// stage4 in strict sequence, and write every stream and sidecar the spec
// names. A context is threaded between stages purely as a cancellation
// point — no stage itself does concurrent or blocking I/O that needs one.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/example/excitation-compiler/internal/config"
	"github.com/example/excitation-compiler/internal/bitstream"
	"github.com/example/excitation-compiler/internal/datalib"
	"github.com/example/excitation-compiler/internal/network"
	"github.com/example/excitation-compiler/internal/oplib"
	"github.com/example/excitation-compiler/internal/stage1"
	"github.com/example/excitation-compiler/internal/stage2"
	"github.com/example/excitation-compiler/internal/stage3"
	"github.com/example/excitation-compiler/internal/stage4"
	"github.com/example/excitation-compiler/internal/xerrors"
)

// Output file names, fixed by spec.md §6.
const (
	OriginalTasksFile    = "1_original_tasks.txt"
	AlignedTasksFile     = "1_aligned_tasks.txt"
	ControlAndTasksFile  = "2_control_and_tasks.txt"
	FullConfigWithData   = "3_full_config_with_data.txt"
	FinalExecutableFile  = "final_executable_config.txt"
	TaskAddressesFile    = "task_addresses.json"
	DataAddressesFile    = "data_addresses.json"
)

// Result collects every artifact path and the in-memory sidecars produced
// by a full pipeline run, plus any soft warnings accumulated along the way.
type Result struct {
	SubtaskCount  int
	TaskAddresses stage2.TaskAddresses
	DataAddresses stage3.DataAddresses
	Warnings      []string
	Paths         OutputPaths
}

// OutputPaths names the files Run wrote under the configured output
// directory.
type OutputPaths struct {
	Original, Aligned, ControlAndTasks, FullConfig, Final string
	TaskAddresses, DataAddresses                          string
}

// Run executes stage1 through stage4 against cfg and writes every artifact
// under cfg.Paths.OutputDir.
func Run(ctx context.Context, cfg config.Config) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		return Result{}, &xerrors.IOFailureError{Op: "create output dir", Path: cfg.Paths.OutputDir, Err: err}
	}

	layers, err := network.Load(cfg.Paths.NetworkPath)
	if err != nil {
		return Result{}, err
	}
	ops, err := oplib.Load(cfg.Paths.OpLibrary)
	if err != nil {
		return Result{}, err
	}

	slog.Info("stage1: generating task stream", "layers", len(layers))
	s1, err := stage1.Generate(layers, ops, stage1.Options{SeparatorLines: cfg.Pipeline.SeparatorLines})
	if err != nil {
		return Result{}, fmt.Errorf("stage1: %w", err)
	}
	paths := OutputPaths{
		Original:        filepath.Join(cfg.Paths.OutputDir, OriginalTasksFile),
		Aligned:         filepath.Join(cfg.Paths.OutputDir, AlignedTasksFile),
		ControlAndTasks: filepath.Join(cfg.Paths.OutputDir, ControlAndTasksFile),
		FullConfig:      filepath.Join(cfg.Paths.OutputDir, FullConfigWithData),
		Final:           filepath.Join(cfg.Paths.OutputDir, FinalExecutableFile),
		TaskAddresses:   filepath.Join(cfg.Paths.OutputDir, TaskAddressesFile),
		DataAddresses:   filepath.Join(cfg.Paths.OutputDir, DataAddressesFile),
	}
	if err := bitstream.WriteFile(paths.Original, s1.Original); err != nil {
		return Result{}, err
	}
	if err := bitstream.WriteFile(paths.Aligned, s1.Aligned); err != nil {
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	slog.Info("stage2: synthesizing control block and FIFO")
	s2, warnings, err := stage2.Generate(s1.Aligned, layers, cfg.Pipeline.StrictTaskCount)
	for _, w := range warnings {
		slog.Warn(w)
	}
	if err != nil {
		return Result{}, fmt.Errorf("stage2: %w", err)
	}
	if err := bitstream.WriteFile(paths.ControlAndTasks, s2.Stream); err != nil {
		return Result{}, err
	}
	if err := writeJSON(paths.TaskAddresses, s2.Addresses); err != nil {
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	data, err := datalib.Load(cfg.Paths.DataLibrary)
	if err != nil {
		return Result{}, err
	}

	slog.Info("stage3: linking data region", "layers", len(layers))
	var rnd *rand.Rand
	if cfg.Pipeline.InputSeed != 0 {
		rnd = rand.New(rand.NewSource(cfg.Pipeline.InputSeed))
	}
	s3, warnings3, err := stage3.Generate(s2.Stream, layers, data, stage3.Options{
		SeparatorLines: cfg.Pipeline.SeparatorLines,
		Rand:           rnd,
	})
	for _, w := range warnings3 {
		slog.Warn(w)
	}
	warnings = append(warnings, warnings3...)
	if err != nil {
		return Result{}, fmt.Errorf("stage3: %w", err)
	}
	if err := bitstream.WriteFile(paths.FullConfig, s3.Stream); err != nil {
		return Result{}, err
	}
	if err := writeJSON(paths.DataAddresses, s3.Addresses); err != nil {
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	slog.Info("stage4: patching addresses")
	final, warnings4, err := stage4.Patch(s3.Stream, s2.Addresses, s3.Addresses)
	for _, w := range warnings4 {
		slog.Warn(w)
	}
	warnings = append(warnings, warnings4...)
	if err != nil {
		return Result{}, fmt.Errorf("stage4: %w", err)
	}
	if err := bitstream.WriteFile(paths.Final, final); err != nil {
		return Result{}, err
	}

	return Result{
		SubtaskCount:  s2.SubtaskCount,
		TaskAddresses: s2.Addresses,
		DataAddresses: s3.Addresses,
		Warnings:      warnings,
		Paths:         paths,
	}, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %q: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &xerrors.IOFailureError{Op: "write sidecar", Path: path, Err: err}
	}
	return nil
}
