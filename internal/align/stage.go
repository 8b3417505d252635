package align

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"dubsmart/internal/config"
	"dubsmart/internal/logging"
	"dubsmart/internal/media/audio"
	"dubsmart/internal/queue"
	"dubsmart/internal/services"
	"dubsmart/internal/stage"
	"dubsmart/internal/staging"
)

// Stage aligns every synthesized segment to its timing envelope. A segment
// whose audio cannot be aligned degrades to silence; the aligner itself
// never makes that call.
type Stage struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// NewStage constructs the alignment stage handler.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	return &Stage{cfg: cfg, store: store, logger: logging.NewComponentLogger(logger, "align")}
}

func (s *Stage) Prepare(ctx context.Context, job *queue.Job) error {
	job.InitProgress("Aligning", "Fitting speech to original timing")
	return nil
}

func (s *Stage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	dirs := staging.ForJob(s.cfg.Paths.StagingDir, job.UUID)

	segments, err := stage.LoadSegments(job)
	if err != nil {
		return err
	}

	params := Params{
		ToleranceSeconds: float64(s.cfg.Timing.ToleranceMillis) / 1000,
		MinRate:          s.cfg.Timing.MinRate,
		MaxRate:          s.cfg.Timing.MaxRate,
	}

	badAudio := 0
	for i := range segments {
		if err := ctx.Err(); err != nil {
			return err
		}
		seg := &segments[i]
		target := seg.TargetSeconds()

		var aligned *audio.Clip
		clip, alignErr := audio.ReadWAV(seg.SynthesizedPath)
		if alignErr == nil {
			var outcome Outcome
			aligned, outcome, alignErr = Align(clip, target, params)
			if alignErr == nil {
				logger.Debug("segment aligned",
					logging.Int("segment", i),
					logging.String("outcome", string(outcome)),
					logging.Float64("target_seconds", target),
				)
			}
		}
		// Unreadable audio and ErrBadAudio both degrade; alignment never
		// fails a whole job over one segment.
		if alignErr != nil {
			badAudio++
			logger.Warn("segment audio unusable, substituting silence",
				logging.Int("segment", i),
				logging.Error(alignErr),
			)
			aligned = audio.NewSilence(time.Duration(target*float64(time.Second)), s.cfg.Audio.SampleRate)
			seg.SynthesisMissed = true
		}

		outPath := dirs.AlignedWAV(i)
		if err := audio.WriteWAV(outPath, aligned); err != nil {
			return services.Wrap(services.ErrTransient, "aligning", "write aligned audio", "Could not write aligned segment", err)
		}
		seg.AlignedPath = outPath

		job.SetProgress("Aligning", fmt.Sprintf("Aligned %d/%d segments", i+1, len(segments)), float64(i+1)/float64(len(segments))*100)
		if err := s.store.Update(ctx, job); err != nil {
			logger.Warn("failed to persist alignment progress", logging.Error(err))
		}
	}

	if err := stage.StoreSegments(job, segments); err != nil {
		return err
	}

	if badAudio > 0 {
		meta, err := job.LoadMetadata()
		if err != nil {
			return services.Wrap(services.ErrValidation, "aligning", "load metadata", "Job metadata is corrupt", err)
		}
		meta.AddWarning("%d segment(s) replaced with silence during alignment", badAudio)
		if err := job.SaveMetadata(meta); err != nil {
			return services.Wrap(services.ErrTransient, "aligning", "save metadata", "Could not persist job metadata", err)
		}
	}

	job.SetProgressComplete("Aligning", fmt.Sprintf("Aligned %d segments", len(segments)))
	logger.Info("alignment completed",
		logging.Int("segments", len(segments)),
		logging.Int("silenced", badAudio),
	)
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("align")
}
