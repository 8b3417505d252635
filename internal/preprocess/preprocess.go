// Package preprocess validates submitted audio and produces the mono working
// copy every later stage reads from.
package preprocess

import (
	"context"
	"fmt"
	"os"

	"log/slog"

	"dubsmart/internal/config"
	"dubsmart/internal/logging"
	"dubsmart/internal/media/audio"
	"dubsmart/internal/queue"
	"dubsmart/internal/services"
	"dubsmart/internal/stage"
	"dubsmart/internal/staging"
)

// ErrBadInput signals input audio that cannot be decoded or holds no samples.
// Fatal: nothing downstream can run without a usable track.
var ErrBadInput = services.NewCoded("corrupted_input", "input audio unreadable or empty")

// Preprocessor loads the input WAV, downmixes to mono at the working sample
// rate, and stages the result for the rest of the pipeline.
type Preprocessor struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// NewPreprocessor constructs the preprocessing stage handler.
func NewPreprocessor(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Preprocessor {
	return &Preprocessor{cfg: cfg, store: store, logger: logging.NewComponentLogger(logger, "preprocess")}
}

func (p *Preprocessor) Prepare(ctx context.Context, job *queue.Job) error {
	job.InitProgress("Preprocessing", "Validating input audio")
	return nil
}

func (p *Preprocessor) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("preprocessing input", logging.String("input", job.InputPath))

	if _, err := os.Stat(job.InputPath); err != nil {
		return services.Wrap(services.ErrValidation, "preprocessing", "stat input",
			fmt.Sprintf("Input file %s is not readable", job.InputPath), err)
	}

	clip, err := audio.ReadWAV(job.InputPath)
	if err != nil {
		return services.Wrap(ErrBadInput, "preprocessing", "decode input",
			"Input audio could not be decoded", err)
	}
	if clip.Empty() {
		return services.Wrap(ErrBadInput, "preprocessing", "decode input",
			"Input audio holds no samples", nil)
	}

	if rate := p.cfg.Audio.SampleRate; clip.SampleRate != rate {
		logger.Info("resampling input",
			logging.Int("from", clip.SampleRate),
			logging.Int("to", rate),
		)
		factor := float64(clip.SampleRate) / float64(rate)
		clip = clip.Resample(factor)
		clip.SampleRate = rate
	}

	dirs := staging.ForJob(p.cfg.Paths.StagingDir, job.UUID)
	if err := dirs.Ensure(); err != nil {
		return services.Wrap(services.ErrConfiguration, "preprocessing", "create staging", "Could not create staging directories", err)
	}
	if err := audio.WriteWAV(dirs.SourceWAV(), clip); err != nil {
		return services.Wrap(services.ErrTransient, "preprocessing", "stage working copy", "Could not write working copy", err)
	}

	meta, err := job.LoadMetadata()
	if err != nil {
		return services.Wrap(services.ErrValidation, "preprocessing", "load metadata", "Job metadata is corrupt", err)
	}
	meta.TrackSeconds = clip.Seconds()
	if err := job.SaveMetadata(meta); err != nil {
		return services.Wrap(services.ErrTransient, "preprocessing", "save metadata", "Could not persist job metadata", err)
	}

	job.SetProgressComplete("Preprocessing", fmt.Sprintf("Staged %.1fs of audio", clip.Seconds()))
	logger.Info("preprocessing completed",
		logging.Float64("track_seconds", clip.Seconds()),
		logging.Int("sample_rate", clip.SampleRate),
	)
	return nil
}

func (p *Preprocessor) HealthCheck(ctx context.Context) stage.Health {
	if err := p.cfg.EnsureDirectories(); err != nil {
		return stage.Unhealthy("preprocess", err.Error())
	}
	return stage.Healthy("preprocess")
}
