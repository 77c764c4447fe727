package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/qsched/app"
	"github.com/kilianp07/qsched/config"
	coremon "github.com/kilianp07/qsched/core/monitoring"
	"github.com/kilianp07/qsched/infra/logger"
	"github.com/kilianp07/qsched/infra/monitoring"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate or load a job set, then map and schedule it",
	RunE:  run,
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return err
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	defer coremon.Flush(2 * time.Second)

	log := logger.New("main")
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()
	rep, err := svc.Run(ctx)
	if rep != nil {
		for _, f := range rep.Files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
	}
	return err
}
