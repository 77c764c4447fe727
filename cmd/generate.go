package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/qsched/config"
	"github.com/kilianp07/qsched/core/generator"
	"github.com/kilianp07/qsched/core/resource"
	"github.com/kilianp07/qsched/infra/logger"
)

var workloadOut string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a periodic job set and write it as a workload file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		specs, err := cfg.ResourceSpecs()
		if err != nil {
			return err
		}
		capacity := 0.0
		for _, spec := range specs {
			r, err := resource.New(spec)
			if err != nil {
				return err
			}
			capacity += r.DefaultInstructionRate()
		}
		jobs, err := generator.New(cfg.Simulation.Generator(), logger.New("generator")).Generate(capacity)
		if err != nil {
			return err
		}
		if err := generator.SaveWorkload(workloadOut, cfg.Simulation.TicksPerSecond, jobs); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d periodic jobs to %s\n", len(jobs), workloadOut)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&workloadOut, "out", "o", "workload.yaml", "workload output file")
}
