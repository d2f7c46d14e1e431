package main

import (
	"fmt"
	"os"

	"github.com/example/excitation-compiler/internal/pipeline"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full four-stage lowering pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			result, err := pipeline.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "sub-tasks: %d\n", result.SubtaskCount)
			fmt.Fprintf(os.Stdout, "wrote %s\n", result.Paths.Original)
			fmt.Fprintf(os.Stdout, "wrote %s\n", result.Paths.Aligned)
			fmt.Fprintf(os.Stdout, "wrote %s\n", result.Paths.ControlAndTasks)
			fmt.Fprintf(os.Stdout, "wrote %s\n", result.Paths.TaskAddresses)
			fmt.Fprintf(os.Stdout, "wrote %s\n", result.Paths.FullConfig)
			fmt.Fprintf(os.Stdout, "wrote %s\n", result.Paths.DataAddresses)
			fmt.Fprintf(os.Stdout, "wrote %s\n", result.Paths.Final)
			if len(result.Warnings) > 0 {
				fmt.Fprintf(os.Stdout, "%d warning(s):\n", len(result.Warnings))
				for _, w := range result.Warnings {
					fmt.Fprintf(os.Stdout, "  - %s\n", w)
				}
			}
			return nil
		},
	}
	return cmd
}
