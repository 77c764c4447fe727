package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/qsched/config"
	"github.com/kilianp07/qsched/core/runlog"
	"github.com/kilianp07/qsched/pkg/export"
)

var (
	runsID     string
	runsSince  time.Duration
	runsAsJSON bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past runs recorded in the run log",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		store, err := runlog.Open(runlog.Options{Backend: cfg.Logging.Backend, Path: cfg.Logging.Path})
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		q := runlog.Query{RunID: runsID}
		if runsSince > 0 {
			q.Start = time.Now().Add(-runsSince)
		}
		recs, err := store.Query(context.Background(), q)
		if err != nil {
			return err
		}
		if runsID != "" {
			return printRecords(cmd, recs)
		}
		runs := runlog.Runs(recs)
		if runsAsJSON {
			return export.WriteJSON(cmd.OutOrStdout(), runs)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSTARTED\tRESOURCES\tINFEASIBLE\tCOMMITTED\tMISSED\tDELAYED\tENERGY_MJ\tBUDGET_MJ")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%.0f\n", r.RunID, r.Started.Format(time.RFC3339),
				r.Resources, r.Infeasible, r.Committed, r.Missed, r.Delayed, r.Energy, r.Budget)
		}
		return w.Flush()
	},
}

func printRecords(cmd *cobra.Command, recs []runlog.Record) error {
	if runsAsJSON {
		return export.WriteJSON(cmd.OutOrStdout(), recs)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RESOURCE\tSTATUS\tJOBS\tCOMMITTED\tMISSED\tDELAYED\tENERGY_MJ\tATTEMPTS\tERROR")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n", r.Resource, r.Status, r.Jobs,
			r.Committed, r.Missed, r.Delayed, r.Energy, r.Attempts, r.Error)
	}
	return w.Flush()
}

func init() {
	runsCmd.Flags().StringVar(&runsID, "run-id", "", "show the per-resource records of one run")
	runsCmd.Flags().DurationVar(&runsSince, "since", 0, "only runs newer than this duration")
	runsCmd.Flags().BoolVar(&runsAsJSON, "json", false, "print JSON instead of a table")
}
