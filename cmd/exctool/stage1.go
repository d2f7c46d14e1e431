package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/excitation-compiler/internal/bitstream"
	"github.com/example/excitation-compiler/internal/network"
	"github.com/example/excitation-compiler/internal/oplib"
	"github.com/example/excitation-compiler/internal/pipeline"
	"github.com/example/excitation-compiler/internal/stage1"
	"github.com/spf13/cobra"
)

func newStage1Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stage1",
		Short: "Run task generation and address alignment in isolation",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			layers, err := network.Load(cfg.Paths.NetworkPath)
			if err != nil {
				return err
			}
			ops, err := oplib.Load(cfg.Paths.OpLibrary)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			result, err := stage1.Generate(layers, ops, stage1.Options{SeparatorLines: cfg.Pipeline.SeparatorLines})
			if err != nil {
				return fmt.Errorf("stage1: %w", err)
			}

			originalPath := filepath.Join(cfg.Paths.OutputDir, pipeline.OriginalTasksFile)
			alignedPath := filepath.Join(cfg.Paths.OutputDir, pipeline.AlignedTasksFile)
			if err := bitstream.WriteFile(originalPath, result.Original); err != nil {
				return err
			}
			if err := bitstream.WriteFile(alignedPath, result.Aligned); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "wrote %s (%d lines)\n", originalPath, len(result.Original))
			fmt.Fprintf(os.Stdout, "wrote %s (%d lines)\n", alignedPath, len(result.Aligned))
			return nil
		},
	}
	return cmd
}
