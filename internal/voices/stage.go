package voices

import (
	"context"
	"fmt"

	"log/slog"

	"dubsmart/internal/config"
	"dubsmart/internal/logging"
	"dubsmart/internal/media/audio"
	"dubsmart/internal/queue"
	"dubsmart/internal/services"
	"dubsmart/internal/stage"
	"dubsmart/internal/staging"
)

// Stage assigns voices to speakers based on gender estimated from each
// speaker's original audio.
type Stage struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// NewStage constructs the voice assignment stage handler.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	return &Stage{cfg: cfg, store: store, logger: logging.NewComponentLogger(logger, "voices")}
}

func (s *Stage) Prepare(ctx context.Context, job *queue.Job) error {
	job.InitProgress("Assigning voices", "Casting speakers")
	return nil
}

func (s *Stage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	dirs := staging.ForJob(s.cfg.Paths.StagingDir, job.UUID)

	segments, err := stage.LoadSegments(job)
	if err != nil {
		return err
	}

	pool := s.cfg.VoicePool(job.TargetLanguage)
	if len(pool) == 0 {
		return services.Wrap(ErrNoVoices, "voicing", "load pool",
			fmt.Sprintf("No voices configured for target language %q", job.TargetLanguage), nil)
	}

	// Gender comes from each speaker's first utterance in the original
	// recording. A missing working copy degrades to unknown gender rather
	// than failing the cast.
	track, trackErr := audio.ReadWAV(dirs.SourceWAV())
	order := SpeakerOrder(segments)
	genders := make(map[string]string, len(order))
	for _, seg := range segments {
		if _, done := genders[seg.SpeakerID]; done {
			continue
		}
		if trackErr != nil {
			genders[seg.SpeakerID] = GenderUnknown
			continue
		}
		genders[seg.SpeakerID] = EstimateGender(track.Slice(seg.Start, seg.End))
	}
	if trackErr != nil {
		logger.Warn("working copy unreadable, gender estimation skipped", logging.Error(trackErr))
	}

	choices, err := Assign(order, genders, pool)
	if err != nil {
		return services.Wrap(err, "voicing", "assign voices", "Voice assignment failed", nil)
	}

	meta, err := job.LoadMetadata()
	if err != nil {
		return services.Wrap(services.ErrValidation, "voicing", "load metadata", "Job metadata is corrupt", err)
	}
	fallbacks := 0
	for speaker, choice := range choices {
		meta.SetVoice(speaker, choice)
		if choice.Fallback {
			fallbacks++
		}
	}
	if fallbacks > 0 {
		meta.AddWarning("%d speaker(s) cast with fallback voices", fallbacks)
	}

	for i := range segments {
		segments[i].VoiceID = choices[segments[i].SpeakerID].VoiceID
	}
	if err := stage.StoreSegments(job, segments); err != nil {
		return err
	}
	if err := job.SaveMetadata(meta); err != nil {
		return services.Wrap(services.ErrTransient, "voicing", "save metadata", "Could not persist job metadata", err)
	}

	job.SetProgressComplete("Assigning voices", fmt.Sprintf("Cast %d speakers", len(order)))
	logger.Info("voice assignment completed",
		logging.Int("speakers", len(order)),
		logging.Int("fallbacks", fallbacks),
	)
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if len(s.cfg.Voices.Pools) == 0 {
		return stage.Unhealthy("voices", "no voice pools configured")
	}
	return stage.Healthy("voices")
}
