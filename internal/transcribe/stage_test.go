package transcribe_test

import (
	"context"
	"errors"
	"testing"

	"dubsmart/internal/logging"
	"dubsmart/internal/segment"
	"dubsmart/internal/services"
	"dubsmart/internal/staging"
	"dubsmart/internal/testsupport"
	"dubsmart/internal/transcribe"
)

type fakeRecognizer struct {
	result transcribe.Result
	err    error
}

func (f *fakeRecognizer) Transcribe(ctx context.Context, wavPath, hint string) (transcribe.Result, error) {
	return f.result, f.err
}

func TestStagePersistsSpansAndDetectedLanguage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "/tmp/in.wav", "es")

	dirs := staging.ForJob(cfg.Paths.StagingDir, job.UUID)
	if err := dirs.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	recognizer := &fakeRecognizer{result: transcribe.Result{
		Language: "en",
		Spans:    []segment.TextSpan{{Text: "hello", Start: 0, End: 2}},
	}}
	handler := transcribe.NewStageWithRecognizer(cfg, store, logging.NewNop(), recognizer)

	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if job.SourceLanguage != "en" {
		t.Fatalf("source language = %q", job.SourceLanguage)
	}
	meta, err := job.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if meta.DetectedLanguage != "en" {
		t.Fatalf("detected language = %q", meta.DetectedLanguage)
	}

	language, spans, err := transcribe.ReadSpans(dirs.SpansJSON())
	if err != nil {
		t.Fatalf("ReadSpans: %v", err)
	}
	if language != "en" || len(spans) != 1 || spans[0].Text != "hello" {
		t.Fatalf("spans artifact = %q %+v", language, spans)
	}
}

func TestStageKeepsDeclaredLanguage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "/tmp/in.wav", "es")
	job.SourceLanguage = "de"

	dirs := staging.ForJob(cfg.Paths.StagingDir, job.UUID)
	if err := dirs.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	recognizer := &fakeRecognizer{result: transcribe.Result{Language: "de"}}
	handler := transcribe.NewStageWithRecognizer(cfg, store, logging.NewNop(), recognizer)
	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if job.SourceLanguage != "de" {
		t.Fatalf("declared language overwritten: %q", job.SourceLanguage)
	}
	meta, err := job.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if meta.DetectedLanguage != "" {
		t.Fatalf("detected language recorded for declared job: %q", meta.DetectedLanguage)
	}
}

func TestStageFailsOnRecognizerError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "/tmp/in.wav", "es")

	dirs := staging.ForJob(cfg.Paths.StagingDir, job.UUID)
	if err := dirs.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	recognizer := &fakeRecognizer{err: errors.New("asr exploded")}
	handler := transcribe.NewStageWithRecognizer(cfg, store, logging.NewNop(), recognizer)
	err := handler.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
