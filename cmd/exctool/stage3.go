package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/example/excitation-compiler/internal/bitstream"
	"github.com/example/excitation-compiler/internal/datalib"
	"github.com/example/excitation-compiler/internal/network"
	"github.com/example/excitation-compiler/internal/pipeline"
	"github.com/example/excitation-compiler/internal/stage3"
	"github.com/spf13/cobra"
)

func newStage3Cmd() *cobra.Command {
	var inPath string

	cmd := &cobra.Command{
		Use:   "stage3",
		Short: "Run data linking against an already-synthesized control stream",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if inPath == "" {
				inPath = filepath.Join(cfg.Paths.OutputDir, pipeline.ControlAndTasksFile)
			}
			control, err := bitstream.ReadFile(inPath)
			if err != nil {
				return err
			}
			layers, err := network.Load(cfg.Paths.NetworkPath)
			if err != nil {
				return err
			}
			data, err := datalib.Load(cfg.Paths.DataLibrary)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			var rnd *rand.Rand
			if cfg.Pipeline.InputSeed != 0 {
				rnd = rand.New(rand.NewSource(cfg.Pipeline.InputSeed))
			}
			result, warnings, err := stage3.Generate(control, layers, data, stage3.Options{
				SeparatorLines: cfg.Pipeline.SeparatorLines,
				Rand:           rnd,
			})
			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
			if err != nil {
				return fmt.Errorf("stage3: %w", err)
			}

			streamPath := filepath.Join(cfg.Paths.OutputDir, pipeline.FullConfigWithData)
			addrPath := filepath.Join(cfg.Paths.OutputDir, pipeline.DataAddressesFile)
			if err := bitstream.WriteFile(streamPath, result.Stream); err != nil {
				return err
			}
			if err := writeJSON(addrPath, result.Addresses); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "wrote %s (%d lines)\n", streamPath, len(result.Stream))
			fmt.Fprintf(os.Stdout, "wrote %s\n", addrPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "Control-and-tasks stream to append data to (default: <output-dir>/2_control_and_tasks.txt)")
	return cmd
}
