package translate_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"dubsmart/internal/logging"
	"dubsmart/internal/queue"
	"dubsmart/internal/segment"
	"dubsmart/internal/services"
	"dubsmart/internal/stage"
	"dubsmart/internal/testsupport"
	"dubsmart/internal/translate"
)

type fakeTranslator struct {
	fail map[string]bool
}

func (f *fakeTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if f.fail[text] {
		return "", errors.New("mt unavailable")
	}
	return fmt.Sprintf("%s[%s]", text, target), nil
}

func translateFixture(t *testing.T, segments []segment.Segment, translator translate.Translator) (*translate.Stage, *queue.Job) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "/tmp/in.wav", "es")
	job.SourceLanguage = "en"
	if err := stage.StoreSegments(job, segments); err != nil {
		t.Fatalf("StoreSegments: %v", err)
	}
	return translate.NewStageWithTranslator(cfg, store, logging.NewNop(), translator), job
}

func TestStageTranslatesSegments(t *testing.T) {
	segments := []segment.Segment{
		{SpeakerID: "S1", Start: 0, End: 2, SourceText: "hello"},
		{SpeakerID: "S2", Start: 2, End: 4, SourceText: "world"},
	}
	handler, job := translateFixture(t, segments, &fakeTranslator{})

	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got, err := stage.LoadSegments(job)
	if err != nil {
		t.Fatalf("LoadSegments: %v", err)
	}
	if got[0].TranslatedText != "hello[es]" || got[1].TranslatedText != "world[es]" {
		t.Fatalf("segments = %+v", got)
	}
}

func TestStageDegradesPerSegmentFailure(t *testing.T) {
	segments := []segment.Segment{
		{SpeakerID: "S1", Start: 0, End: 2, SourceText: "hello"},
		{SpeakerID: "S2", Start: 2, End: 4, SourceText: "world"},
	}
	handler, job := translateFixture(t, segments, &fakeTranslator{fail: map[string]bool{"world": true}})

	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute should degrade: %v", err)
	}

	got, err := stage.LoadSegments(job)
	if err != nil {
		t.Fatalf("LoadSegments: %v", err)
	}
	if got[1].TranslatedText != "" || !got[1].TranslationMissed {
		t.Fatalf("missed segment = %+v", got[1])
	}
	if got[1].SpeechText() != "world" {
		t.Fatalf("SpeechText fallback = %q", got[1].SpeechText())
	}

	meta, err := job.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if meta.TranslationMiss != 1 || len(meta.Warnings) == 0 {
		t.Fatalf("metadata = %+v", meta)
	}
}

func TestStageFailsWhenAllSegmentsMiss(t *testing.T) {
	segments := []segment.Segment{
		{SpeakerID: "S1", Start: 0, End: 2, SourceText: "hello"},
	}
	handler, job := translateFixture(t, segments, &fakeTranslator{fail: map[string]bool{"hello": true}})

	err := handler.Execute(context.Background(), job)
	if !errors.Is(err, translate.ErrAllSegmentsFailed) {
		t.Fatalf("expected total failure error, got %v", err)
	}
	if services.Code(err) != "translation_failed" {
		t.Fatalf("reason code = %q", services.Code(err))
	}
}

func TestPrepareRejectsSameLanguage(t *testing.T) {
	handler, job := translateFixture(t, nil, &fakeTranslator{})
	job.SourceLanguage = "es"

	err := handler.Prepare(context.Background(), job)
	if !errors.Is(err, translate.ErrSameLanguage) {
		t.Fatalf("expected same-language rejection, got %v", err)
	}
	if services.Code(err) != "same_language" {
		t.Fatalf("reason code = %q", services.Code(err))
	}
}
