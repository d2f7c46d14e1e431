package main

import (
	"fmt"
	"os"

	"github.com/example/excitation-compiler/internal/doctor"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Structurally lint a network description and library directories without running the pipeline",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			res := doctor.Run(doctor.Config{
				NetworkPath: cfg.Paths.NetworkPath,
				OpLibrary:   cfg.Paths.OpLibrary,
				DataLibrary: cfg.Paths.DataLibrary,
			}, os.Stdout)
			if res.Failed() {
				return fmt.Errorf("validation failed: %d check(s) did not pass", len(res.Failures()))
			}
			return nil
		},
	}
	return cmd
}
