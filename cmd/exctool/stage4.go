package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/excitation-compiler/internal/bitstream"
	"github.com/example/excitation-compiler/internal/pipeline"
	"github.com/example/excitation-compiler/internal/stage2"
	"github.com/example/excitation-compiler/internal/stage3"
	"github.com/example/excitation-compiler/internal/stage4"
	"github.com/spf13/cobra"
)

func newStage4Cmd() *cobra.Command {
	var inPath, taskAddrPath, dataAddrPath string

	cmd := &cobra.Command{
		Use:   "stage4",
		Short: "Run address patching against an already-linked data stream",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if inPath == "" {
				inPath = filepath.Join(cfg.Paths.OutputDir, pipeline.FullConfigWithData)
			}
			if taskAddrPath == "" {
				taskAddrPath = filepath.Join(cfg.Paths.OutputDir, pipeline.TaskAddressesFile)
			}
			if dataAddrPath == "" {
				dataAddrPath = filepath.Join(cfg.Paths.OutputDir, pipeline.DataAddressesFile)
			}

			full, err := bitstream.ReadFile(inPath)
			if err != nil {
				return err
			}
			var taskAddrs stage2.TaskAddresses
			if err := readJSON(taskAddrPath, &taskAddrs); err != nil {
				return err
			}
			var dataAddrs stage3.DataAddresses
			if err := readJSON(dataAddrPath, &dataAddrs); err != nil {
				return err
			}

			final, warnings, err := stage4.Patch(full, taskAddrs, dataAddrs)
			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
			if err != nil {
				return fmt.Errorf("stage4: %w", err)
			}

			if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			finalPath := filepath.Join(cfg.Paths.OutputDir, pipeline.FinalExecutableFile)
			if err := bitstream.WriteFile(finalPath, final); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "wrote %s (%d lines)\n", finalPath, len(final))
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "Full config+data stream to patch (default: <output-dir>/3_full_config_with_data.txt)")
	cmd.Flags().StringVar(&taskAddrPath, "task-addresses", "", "task_addresses.json sidecar (default: <output-dir>/task_addresses.json)")
	cmd.Flags().StringVar(&dataAddrPath, "data-addresses", "", "data_addresses.json sidecar (default: <output-dir>/data_addresses.json)")
	return cmd
}
