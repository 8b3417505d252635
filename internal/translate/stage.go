package translate

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
)

var (
	// ErrSameLanguage is the policy rejection for source == target requests.
	ErrSameLanguage = services.NewCoded("same_language", "source and target language are the same")
	// ErrAllSegmentsFailed signals total translation failure. Individual
	// misses degrade; losing every segment does not.
	ErrAllSegmentsFailed = services.NewCoded("translation_failed", "no segment could be translated")
)

// Stage translates each segment's source text. A failed segment keeps its
// source text and is flagged; the job only fails when every segment misses.
type Stage struct {
	cfg        *config.Config
	store      *queue.Store
	logger     *slog.Logger
	translator Translator
}

// NewStage constructs the translation stage handler.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	return NewStageWithTranslator(cfg, store, logger, NewHTTPClient(cfg.Translator))
}

// NewStageWithTranslator allows injecting the translator (used in tests).
func NewStageWithTranslator(cfg *config.Config, store *queue.Store, logger *slog.Logger, translator Translator) *Stage {
	return &Stage{
		cfg:        cfg,
		store:      store,
		logger:     logging.NewComponentLogger(logger, "translate"),
		translator: translator,
	}
}

func (s *Stage) Prepare(ctx context.Context, job *queue.Job) error {
	if strings.EqualFold(job.SourceLanguage, job.TargetLanguage) && job.SourceLanguage != "" {
		return services.Wrap(ErrSameLanguage, "translating", "check languages",
			fmt.Sprintf("Source and target language are both %q; dubbing requires a different target", job.TargetLanguage), nil)
	}
	job.InitProgress("Translating", "Translating segments")
	return nil
}

func (s *Stage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)

	segments, err := stage.LoadSegments(job)
	if err != nil {
		return err
	}

	meta, err := job.LoadMetadata()
	if err != nil {
		return services.Wrap(services.ErrValidation, "translating", "load metadata", "Job metadata is corrupt", err)
	}

	missed := 0
	for i := range segments {
		if err := ctx.Err(); err != nil {
			return err
		}
		translated, err := s.translator.Translate(ctx, segments[i].SourceText, job.SourceLanguage, job.TargetLanguage)
		if err != nil || strings.TrimSpace(translated) == "" {
			missed++
			segments[i].TranslationMissed = true
			logger.Warn("segment translation failed, keeping source text",
				logging.Int("segment", i),
				logging.Error(err),
			)
			continue
		}
		segments[i].TranslatedText = strings.TrimSpace(translated)

		percent := float64(i+1) / float64(len(segments)) * 100
		job.SetProgress("Translating", fmt.Sprintf("Translated %d/%d segments", i+1, len(segments)), percent)
		if err := s.store.Update(ctx, job); err != nil {
			logger.Warn("failed to persist translation progress", logging.Error(err))
		}
	}

	if len(segments) > 0 && missed == len(segments) {
		return services.Wrap(ErrAllSegmentsFailed, "translating", "translate segments",
			"Every segment failed to translate; check the translation endpoint", nil)
	}
	if missed > 0 {
		meta.TranslationMiss = missed
		meta.AddWarning("%d segment(s) kept source text after translation failure", missed)
	}

	if err := stage.StoreSegments(job, segments); err != nil {
		return err
	}
	if err := job.SaveMetadata(meta); err != nil {
		return services.Wrap(services.ErrTransient, "translating", "save metadata", "Could not persist job metadata", err)
	}

	job.SetProgressComplete("Translating", fmt.Sprintf("Translated %d/%d segments", len(segments)-missed, len(segments)))
	logger.Info("translation completed",
		logging.Int("segments", len(segments)),
		logging.Int("missed", missed),
	)
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if s.cfg.Translator.Endpoint == "" {
		return stage.Unhealthy("translate", "no translation endpoint configured")
	}
	return stage.Healthy("translate")
}
