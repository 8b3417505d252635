package transcribe

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"dubsmart/internal/config"
	"dubsmart/internal/logging"
	"dubsmart/internal/queue"
	"dubsmart/internal/services"
	"dubsmart/internal/stage"
	"dubsmart/internal/staging"
)

// Stage transcribes the working track. Unlike diarization there is no
// heuristic substitute for ASR, so recognizer failure fails the job.
type Stage struct {
	cfg        *config.Config
	store      *queue.Store
	logger     *slog.Logger
	recognizer Recognizer
}

// NewStage constructs the transcription stage handler.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	return NewStageWithRecognizer(cfg, store, logger, NewTool(cfg.Transcriber))
}

// NewStageWithRecognizer allows injecting the recognizer (used in tests).
func NewStageWithRecognizer(cfg *config.Config, store *queue.Store, logger *slog.Logger, recognizer Recognizer) *Stage {
	return &Stage{
		cfg:        cfg,
		store:      store,
		logger:     logging.NewComponentLogger(logger, "transcribe"),
		recognizer: recognizer,
	}
}

func (s *Stage) Prepare(ctx context.Context, job *queue.Job) error {
	job.InitProgress("Transcribing", "Recognizing speech")
	return nil
}

func (s *Stage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)
	dirs := staging.ForJob(s.cfg.Paths.StagingDir, job.UUID)

	hint := job.SourceLanguage
	if strings.EqualFold(hint, "auto") {
		hint = ""
	}

	result, err := s.recognizer.Transcribe(ctx, dirs.SourceWAV(), hint)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribing", "recognize speech",
			"Speech recognition failed", err)
	}

	meta, metaErr := job.LoadMetadata()
	if metaErr != nil {
		return services.Wrap(services.ErrValidation, "transcribing", "load metadata", "Job metadata is corrupt", metaErr)
	}
	if hint == "" && result.Language != "" {
		meta.DetectedLanguage = result.Language
		job.SourceLanguage = result.Language
		logger.Info("detected source language", logging.String("language", result.Language))
	}

	if err := WriteSpans(dirs.SpansJSON(), result.Language, result.Spans); err != nil {
		return services.Wrap(services.ErrTransient, "transcribing", "persist spans", "Could not persist transcription", err)
	}
	if err := job.SaveMetadata(meta); err != nil {
		return services.Wrap(services.ErrTransient, "transcribing", "save metadata", "Could not persist job metadata", err)
	}

	job.SetProgressComplete("Transcribing", fmt.Sprintf("Recognized %d spans", len(result.Spans)))
	logger.Info("transcription completed",
		logging.Int("spans", len(result.Spans)),
		logging.String("language", result.Language),
	)
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if s.cfg.Transcriber.Command == "" {
		return stage.Unhealthy("transcribe", "no transcriber command configured")
	}
	return stage.Healthy("transcribe")
}
