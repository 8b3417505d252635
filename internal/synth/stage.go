package synth

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"log/slog"

	"golang.org/x/sync/errgroup"

	"dubsmart/internal/config"
	"dubsmart/internal/logging"
	"dubsmart/internal/media/audio"
	"dubsmart/internal/queue"
	"dubsmart/internal/services"
	"dubsmart/internal/stage"
	"dubsmart/internal/staging"
)

// Stage fans synthesis out across segments. Segments are data-independent
// once translated and voiced, so they render in parallel up to the
// configured worker count; the stage gathers every result before the
// pipeline moves on. Per-segment failure degrades to silence.
type Stage struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	backends []Backend
}

// NewStage constructs the synthesis stage handler with the configured
// backend chain.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	return NewStageWithBackends(cfg, store, logger, Resolve(cfg))
}

// NewStageWithBackends allows injecting backends (used in tests).
func NewStageWithBackends(cfg *config.Config, store *queue.Store, logger *slog.Logger, backends []Backend) *Stage {
	return &Stage{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "synth"),
		backends: backends,
	}
}

func (s *Stage) Prepare(ctx context.Context, job *queue.Job) error {
	if len(s.backends) == 0 {
		return services.Wrap(services.ErrConfiguration, "synthesizing", "resolve backends",
			"No synthesis backend configured; set synthesizer.clone_command or synthesizer.command", nil)
	}
	job.InitProgress("Synthesizing", "Rendering speech")
	return nil
}

func (s *Stage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	dirs := staging.ForJob(s.cfg.Paths.StagingDir, job.UUID)

	segments, err := stage.LoadSegments(job)
	if err != nil {
		return err
	}
	if len(s.backends) == 0 {
		return services.Wrap(services.ErrConfiguration, "synthesizing", "resolve backends",
			"No synthesis backend configured; set synthesizer.clone_command or synthesizer.command", nil)
	}

	workers := s.cfg.Workflow.SynthesisWorkers
	if workers <= 0 {
		workers = 1
	}

	var (
		completed   atomic.Int64
		substituted atomic.Int64
		missed      atomic.Int64
		progressMu  sync.Mutex
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i := range segments {
		i := i
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			seg := &segments[i]
			outPath := dirs.SegmentWAV(i)
			req := Request{
				Text:          seg.SpeechText(),
				VoiceID:       seg.VoiceID,
				Language:      job.TargetLanguage,
				OutPath:       outPath,
				ReferencePath: dirs.SourceWAV(),
			}

			rendered := false
			for backendIdx, backend := range s.backends {
				if err := backend.Synthesize(groupCtx, req); err != nil {
					logger.Warn("synthesis backend failed",
						logging.Int("segment", i),
						logging.String("backend", backend.Name()),
						logging.Error(err),
					)
					continue
				}
				if backendIdx > 0 {
					substituted.Add(1)
				}
				seg.SynthesizedPath = outPath
				rendered = true
				break
			}
			if !rendered {
				seg.SynthesisMissed = true
				missed.Add(1)
			}

			done := completed.Add(1)
			progressMu.Lock()
			job.SetProgress("Synthesizing", fmt.Sprintf("Rendered %d/%d segments", done, len(segments)), float64(done)/float64(len(segments))*100)
			if err := s.store.Update(groupCtx, job); err != nil {
				logger.Warn("failed to persist synthesis progress", logging.Error(err))
			}
			progressMu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	meta, err := job.LoadMetadata()
	if err != nil {
		return services.Wrap(services.ErrValidation, "synthesizing", "load metadata", "Job metadata is corrupt", err)
	}
	if n := missed.Load(); n > 0 {
		meta.SynthesisMiss = int(n)
		meta.AddWarning("%d segment(s) rendered as silence after synthesis failure", n)
	}
	if n := substituted.Load(); n > 0 {
		meta.AddWarning("voice cloning unavailable for %d segment(s), generic TTS substituted", n)
	}

	// Missed segments get a silent placeholder so alignment and mixing see a
	// uniform artifact set.
	for i := range segments {
		if !segments[i].SynthesisMissed {
			continue
		}
		silence := audio.NewSilence(secondsToDuration(segments[i].TargetSeconds()), s.cfg.Audio.SampleRate)
		outPath := dirs.SegmentWAV(i)
		if err := audio.WriteWAV(outPath, silence); err != nil {
			return services.Wrap(services.ErrTransient, "synthesizing", "write silence", "Could not write silent placeholder", err)
		}
		segments[i].SynthesizedPath = outPath
	}

	if err := stage.StoreSegments(job, segments); err != nil {
		return err
	}
	if err := job.SaveMetadata(meta); err != nil {
		return services.Wrap(services.ErrTransient, "synthesizing", "save metadata", "Could not persist job metadata", err)
	}

	job.SetProgressComplete("Synthesizing", fmt.Sprintf("Rendered %d segments (%d silent)", len(segments), missed.Load()))
	logger.Info("synthesis completed",
		logging.Int("segments", len(segments)),
		logging.Int64("missed", missed.Load()),
		logging.Int64("substituted", substituted.Load()),
	)
	return nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if len(s.backends) == 0 {
		return stage.Unhealthy("synth", "no synthesis backends configured")
	}
	return stage.Healthy("synth")
}
