package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dubsmart/internal/daemon"
	"dubsmart/internal/logging"
	"dubsmart/internal/queue"
	"dubsmart/internal/staging"
	"dubsmart/internal/workflow"
)

const staleStagingAge = 24 * time.Hour

func newRunCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the dubbing worker",
		Long:  "Run the dubbing worker, processing queued jobs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewForDir(cfg.Paths.LogDir, cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open job store: %w", err)
			}
			defer store.Close()

			cleanup := staging.CleanStale(cfg.Paths.StagingDir, staleStagingAge, logger)
			if len(cleanup.Removed) > 0 {
				logger.Info("removed stale staging directories", logging.Int("count", len(cleanup.Removed)))
			}

			mgr := workflow.NewManager(cfg, store, logger)

			if once {
				return mgr.RunUntilIdle(cmd.Context())
			}

			d, err := daemon.New(cfg, store, logger, mgr)
			if err != nil {
				return err
			}

			signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(signalCtx); err != nil {
				return err
			}
			logger.Info("worker started", logging.String("lock", d.LockPath()))

			<-signalCtx.Done()
			logger.Info("shutting down")
			return d.Close()
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Drain the queue and exit instead of running continuously")
	return cmd
}
