package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/excitation-compiler/internal/bitstream"
	"github.com/example/excitation-compiler/internal/network"
	"github.com/example/excitation-compiler/internal/pipeline"
	"github.com/example/excitation-compiler/internal/stage2"
	"github.com/spf13/cobra"
)

func newStage2Cmd() *cobra.Command {
	var inPath string

	cmd := &cobra.Command{
		Use:   "stage2",
		Short: "Run control-block and FIFO synthesis against an already-aligned stream",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if inPath == "" {
				inPath = filepath.Join(cfg.Paths.OutputDir, pipeline.AlignedTasksFile)
			}
			aligned, err := bitstream.ReadFile(inPath)
			if err != nil {
				return err
			}
			layers, err := network.Load(cfg.Paths.NetworkPath)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			result, warnings, err := stage2.Generate(aligned, layers, cfg.Pipeline.StrictTaskCount)
			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
			if err != nil {
				return fmt.Errorf("stage2: %w", err)
			}

			streamPath := filepath.Join(cfg.Paths.OutputDir, pipeline.ControlAndTasksFile)
			addrPath := filepath.Join(cfg.Paths.OutputDir, pipeline.TaskAddressesFile)
			if err := bitstream.WriteFile(streamPath, result.Stream); err != nil {
				return err
			}
			if err := writeJSON(addrPath, result.Addresses); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "wrote %s (%d lines, %d sub-tasks)\n", streamPath, len(result.Stream), result.SubtaskCount)
			fmt.Fprintf(os.Stdout, "wrote %s\n", addrPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "Aligned task stream to prefix (default: <output-dir>/1_aligned_tasks.txt)")
	return cmd
}
