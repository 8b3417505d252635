package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"dubsmart/internal/config"
	"dubsmart/internal/language"
	"dubsmart/internal/queue"
	"dubsmart/internal/services"
)

// Validation failures surfaced to front ends. Each carries a stable reason
// code so callers can branch without string matching.
var (
	ErrInputMissing      = services.NewCoded("input_missing", "input audio file does not exist")
	ErrTargetUnsupported = services.NewCoded("target_unsupported", "target language is not in the supported set")
	ErrSameLanguage      = services.NewCoded("same_language", "source and target language are identical")
	ErrJobNotFound       = services.NewCoded("job_not_found", "no job with that id")
	ErrTargetMissing     = services.NewCoded("target_missing", "target language is required")
)

const errStoreUnavailableMsg = "job store unavailable"

// Service is the in-process submit/poll surface consumed by front ends.
type Service struct {
	cfg   *config.Config
	store *queue.Store
}

// NewService wraps a queue store with submission validation.
func NewService(cfg *config.Config, store *queue.Store) *Service {
	return &Service{cfg: cfg, store: store}
}

// SubmitRequest carries the parameters of a dubbing submission.
type SubmitRequest struct {
	InputPath          string
	SourceLanguage     string
	TargetLanguage     string
	PreserveBackground bool
}

// Submit validates the request and enqueues a pending job, returning its
// public uuid. The source language may be empty ("auto"); when declared it
// must differ from the target.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if s == nil || s.store == nil {
		return "", errors.New(errStoreUnavailableMsg)
	}

	input := strings.TrimSpace(req.InputPath)
	if input == "" {
		return "", fmt.Errorf("%w: no input path given", ErrInputMissing)
	}
	info, err := os.Stat(input)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrInputMissing, input)
	}

	target := normalizeLanguage(req.TargetLanguage)
	if target == "" {
		target = s.cfg.Languages.DefaultTarget
	}
	if target == "" {
		return "", ErrTargetMissing
	}
	if !s.cfg.SupportsTarget(target) {
		return "", fmt.Errorf("%w: %q", ErrTargetUnsupported, target)
	}

	source := normalizeLanguage(req.SourceLanguage)
	if source == "auto" {
		source = ""
	}
	if source != "" && source == target {
		return "", fmt.Errorf("%w: %q", ErrSameLanguage, target)
	}

	job, err := s.store.NewJob(ctx, queue.NewJobRequest{
		InputPath:          input,
		SourceLanguage:     source,
		TargetLanguage:     target,
		PreserveBackground: req.PreserveBackground,
	})
	if err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	return job.UUID, nil
}

// Poll returns the current view of a job by uuid.
func (s *Service) Poll(ctx context.Context, jobUUID string) (JobView, error) {
	if s == nil || s.store == nil {
		return JobView{}, errors.New(errStoreUnavailableMsg)
	}
	job, err := s.store.GetByUUID(ctx, strings.TrimSpace(jobUUID))
	if err != nil {
		return JobView{}, err
	}
	if job == nil {
		return JobView{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobUUID)
	}
	return FromJob(job), nil
}

// List returns jobs filtered by status, newest last.
func (s *Service) List(ctx context.Context, statuses ...queue.Status) ([]JobView, error) {
	if s == nil || s.store == nil {
		return nil, errors.New(errStoreUnavailableMsg)
	}
	jobs, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromJobs(jobs), nil
}

// Stats returns queue counts keyed by status string.
func (s *Service) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, errors.New(errStoreUnavailableMsg)
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeStats(stats), nil
}

// normalizeLanguage folds codes and names ("eng", "English") to ISO 639-1.
func normalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == "auto" {
		return lang
	}
	if mapped := language.ToISO2(lang); mapped != "" {
		return mapped
	}
	return lang
}
