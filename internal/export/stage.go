// Package export publishes the finished master track into the output
// library and retires the job's staging directory.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"log/slog"

	"dubsmart/internal/config"
	"dubsmart/internal/fileutil"
	"dubsmart/internal/logging"
	"dubsmart/internal/queue"
	"dubsmart/internal/services"
	"dubsmart/internal/stage"
	"dubsmart/internal/staging"
)

// Stage moves the mixed track out of staging. Only after the move succeeds
// does the job expose an output path; a failed export never leaves a
// half-published file behind.
type Stage struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// NewStage constructs the export stage handler.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	return &Stage{cfg: cfg, store: store, logger: logging.NewComponentLogger(logger, "export")}
}

func (s *Stage) Prepare(ctx context.Context, job *queue.Job) error {
	job.InitProgress("Exporting", "Publishing dubbed track")
	return nil
}

func (s *Stage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	dirs := staging.ForJob(s.cfg.Paths.StagingDir, job.UUID)

	source := dirs.OutputWAV()
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrValidation, "exporting", "locate master", "Mixed track is missing from staging", err)
	}

	outputDir := s.cfg.Paths.OutputDir
	if outputDir == "" {
		return services.Wrap(services.ErrConfiguration, "exporting", "resolve output dir",
			"Output directory not configured; set output_dir in your dubsmart config.toml", nil)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "exporting", "ensure output dir", "Failed to create output directory", err)
	}

	target := filepath.Join(outputDir, fmt.Sprintf("%s.wav", job.UUID))
	if err := moveFile(source, target); err != nil {
		return services.Wrap(services.ErrTransient, "exporting", "publish track", "Failed to move dubbed track into the output directory", err)
	}
	job.OutputPath = target

	if err := dirs.Remove(); err != nil {
		logger.Warn("failed to remove staging directory", logging.Error(err))
	}

	job.SetProgressComplete("Exporting", "Dubbed track published")
	logger.Info("export completed", logging.String("output", target))
	return nil
}

// moveFile renames, falling back to a verified copy across filesystems.
func moveFile(source, target string) error {
	renameErr := os.Rename(source, target)
	if renameErr == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := fileutil.CopyFileVerified(source, target); err != nil {
			return err
		}
		return os.Remove(source)
	}
	return renameErr
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if s.cfg.Paths.OutputDir == "" {
		return stage.Unhealthy("export", "output directory not configured")
	}
	return stage.Healthy("export")
}
