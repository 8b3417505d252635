package mix

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

// Stage renders the master track from aligned segments and writes it to the
// job staging directory.
type Stage struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// NewStage constructs the mixing stage handler.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	return &Stage{cfg: cfg, store: store, logger: logging.NewComponentLogger(logger, "mix")}
}

func (s *Stage) Prepare(ctx context.Context, job *queue.Job) error {
	job.InitProgress("Mixing", "Assembling master track")
	return nil
}

func (s *Stage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	dirs := staging.ForJob(s.cfg.Paths.StagingDir, job.UUID)

	segments, err := stage.LoadSegments(job)
	if err != nil {
		return err
	}

	layers := make([]Layer, 0, len(segments))
	for i, seg := range segments {
		if seg.AlignedPath == "" {
			return services.Wrap(services.ErrValidation, "mixing", "collect segments",
				fmt.Sprintf("Segment %d has no aligned audio", i), nil)
		}
		clip, err := audio.ReadWAV(seg.AlignedPath)
		if err != nil {
			return services.Wrap(services.ErrTransient, "mixing", "read aligned audio",
				fmt.Sprintf("Segment %d audio unreadable", i), err)
		}
		layers = append(layers, Layer{Start: seg.Start, Speaker: seg.SpeakerID, Clip: clip})
	}

	var background *audio.Clip
	if job.PreserveBackground {
		background, err = audio.ReadWAV(dirs.SourceWAV())
		if err != nil {
			return services.Wrap(services.ErrTransient, "mixing", "read background", "Original track unreadable", err)
		}
	}

	params := Params{
		SampleRate:         s.cfg.Audio.SampleRate,
		OverlapAttenuation: s.cfg.Mixer.OverlapAttenuation,
		LimiterThreshold:   s.cfg.Mixer.LimiterThreshold,
		MaxSeconds:         s.cfg.Mixer.MaxOutputSeconds,
		BackgroundGainDB:   s.cfg.Mixer.BackgroundGainDB,
	}
	master, err := Mix(layers, background, params)
	if err != nil {
		return services.Wrap(services.ErrValidation, "mixing", "render master", "Could not assemble output track", err)
	}

	if err := audio.WriteWAV(dirs.OutputWAV(), master); err != nil {
		return services.Wrap(services.ErrTransient, "mixing", "write master", "Could not write output track", err)
	}

	job.SetProgressComplete("Mixing", fmt.Sprintf("Mixed %d segments into %.1fs track", len(layers), master.Seconds()))
	logger.Info("mix completed",
		logging.Int("segments", len(layers)),
		logging.Float64("seconds", master.Seconds()),
		logging.Bool("background", background != nil),
	)
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("mix")
}
