package segment

import (
	"context"
	"fmt"

	"log/slog"

	"dubsmart/internal/config"
	"dubsmart/internal/logging"
	"dubsmart/internal/queue"
	"dubsmart/internal/services"
	"dubsmart/internal/stage/health"
	"dubsmart/internal/staging"
)

// turnsReader and spansReader decouple the merge stage from the adapter
// packages that produced the staged artifacts.
type turnsReader func(path string) ([]SpeakerTurn, error)
type spansReader func(path string) (string, []TextSpan, error)

// MergeStage reconciles diarization turns with ASR spans into the job's
// segment list. Merge failures are fatal: without segments there is nothing
// to dub.
type MergeStage struct {
	cfg       *config.Config
	store     *queue.Store
	logger    *slog.Logger
	readTurns turnsReader
	readSpans spansReader
}

// NewMergeStage constructs the merge stage handler.
func NewMergeStage(cfg *config.Config, store *queue.Store, logger *slog.Logger, readTurns func(string) ([]SpeakerTurn, error), readSpans func(string) (string, []TextSpan, error)) *MergeStage {
	return &MergeStage{
		cfg:       cfg,
		store:     store,
		logger:    logging.NewComponentLogger(logger, "merge"),
		readTurns: readTurns,
		readSpans: readSpans,
	}
}

func (s *MergeStage) Prepare(ctx context.Context, job *queue.Job) error {
	job.InitProgress("Merging", "Reconciling speakers with transcription")
	return nil
}

func (s *MergeStage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	dirs := staging.ForJob(s.cfg.Paths.StagingDir, job.UUID)

	turns, err := s.readTurns(dirs.TurnsJSON())
	if err != nil {
		return services.Wrap(services.ErrValidation, "merging", "load turns", "Diarization turns missing or invalid", err)
	}
	_, spans, err := s.readSpans(dirs.SpansJSON())
	if err != nil {
		return services.Wrap(services.ErrValidation, "merging", "load spans", "Transcription spans missing or invalid", err)
	}

	meta, err := job.LoadMetadata()
	if err != nil {
		return services.Wrap(services.ErrValidation, "merging", "load metadata", "Job metadata is corrupt", err)
	}

	segments, err := Merge(turns, spans, MergeParams{
		TrackSeconds: meta.TrackSeconds,
		MergeGap:     s.cfg.Merger.MergeGapSeconds,
	})
	if err != nil {
		return services.Wrap(services.ErrValidation, "merging", "merge segments", "Segment merge failed", err)
	}

	speakers := make(map[string]struct{})
	for _, seg := range segments {
		speakers[seg.SpeakerID] = struct{}{}
	}
	meta.SpeakerCount = len(speakers)
	meta.SegmentCount = len(segments)

	payload, err := EncodeList(segments)
	if err != nil {
		return services.Wrap(services.ErrTransient, "merging", "encode segments", "Could not serialize segment list", err)
	}
	job.SegmentsJSON = payload
	if err := job.SaveMetadata(meta); err != nil {
		return services.Wrap(services.ErrTransient, "merging", "save metadata", "Could not persist job metadata", err)
	}

	job.SetProgressComplete("Merging", fmt.Sprintf("Merged %d segments across %d speakers", len(segments), len(speakers)))
	logger.Info("merge completed",
		logging.Int("segments", len(segments)),
		logging.Int("speakers", len(speakers)),
	)
	return nil
}

func (s *MergeStage) HealthCheck(ctx context.Context) health.Health {
	return health.Healthy("merge")
}
