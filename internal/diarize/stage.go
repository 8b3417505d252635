package diarize

import (
	"context"
	"fmt"

	"log/slog"

	"dubsmart/internal/config"
	"dubsmart/internal/logging"
	"dubsmart/internal/queue"
	"dubsmart/internal/services"
	"dubsmart/internal/stage"
	"dubsmart/internal/staging"
)

// Stage runs diarization backends in priority order and records which one
// produced the turns. Backend failure never fails the job: the next backend
// is substituted and the substitution noted in job metadata.
type Stage struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	backends []Backend
}

// NewStage constructs the diarization stage handler with the configured
// backend chain.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	return NewStageWithBackends(cfg, store, logger, Resolve(cfg))
}

// NewStageWithBackends allows injecting backends (used in tests).
func NewStageWithBackends(cfg *config.Config, store *queue.Store, logger *slog.Logger, backends []Backend) *Stage {
	return &Stage{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "diarize"),
		backends: backends,
	}
}

func (s *Stage) Prepare(ctx context.Context, job *queue.Job) error {
	job.InitProgress("Diarizing", "Detecting speakers")
	return nil
}

func (s *Stage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	dirs := staging.ForJob(s.cfg.Paths.StagingDir, job.UUID)

	meta, err := job.LoadMetadata()
	if err != nil {
		return services.Wrap(services.ErrValidation, "diarizing", "load metadata", "Job metadata is corrupt", err)
	}

	var detected bool
	var lastErr error
	for i, backend := range s.backends {
		result, err := backend.DetectSpeakers(ctx, dirs.SourceWAV())
		if err != nil {
			lastErr = err
			logger.Warn("diarization backend failed",
				logging.String("backend", backend.Name()),
				logging.Error(err),
			)
			if i < len(s.backends)-1 {
				meta.AddWarning("diarizer %s failed, substituting %s", backend.Name(), s.backends[i+1].Name())
			}
			continue
		}
		meta.DiarizerUsed = backend.Name()
		if err := WriteTurns(dirs.TurnsJSON(), result); err != nil {
			return services.Wrap(services.ErrTransient, "diarizing", "persist turns", "Could not persist diarization turns", err)
		}
		logger.Info("diarization completed",
			logging.String("backend", backend.Name()),
			logging.Int("turns", len(result)),
		)
		job.SetProgressComplete("Diarizing", fmt.Sprintf("Found %d speaker turns via %s", len(result), backend.Name()))
		detected = true
		break
	}

	if !detected {
		// All backends failed; the merger falls back to one synthetic
		// speaker covering the whole track.
		meta.DiarizerUsed = "none"
		meta.AddWarning("all diarization backends failed, using single-speaker fallback")
		if err := WriteTurns(dirs.TurnsJSON(), nil); err != nil {
			return services.Wrap(services.ErrTransient, "diarizing", "persist turns", "Could not persist diarization turns", err)
		}
		logger.Warn("all diarization backends failed", logging.Error(lastErr))
		job.SetProgressComplete("Diarizing", "Diarization unavailable, using single-speaker fallback")
	}

	if err := job.SaveMetadata(meta); err != nil {
		return services.Wrap(services.ErrTransient, "diarizing", "save metadata", "Could not persist job metadata", err)
	}
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if len(s.backends) == 0 {
		return stage.Unhealthy("diarize", "no diarization backends configured")
	}
	return stage.Healthy("diarize")
}
