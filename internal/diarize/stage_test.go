package diarize_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dubsmart/internal/diarize"
	"dubsmart/internal/logging"
	"dubsmart/internal/segment"
	"dubsmart/internal/staging"
	"dubsmart/internal/testsupport"
)

type fakeBackend struct {
	name  string
	turns []segment.SpeakerTurn
	err   error
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) DetectSpeakers(ctx context.Context, wavPath string) ([]segment.SpeakerTurn, error) {
	return f.turns, f.err
}

func TestStageFallsBackToNextBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "/tmp/in.wav", "es")

	dirs := staging.ForJob(cfg.Paths.StagingDir, job.UUID)
	if err := dirs.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	wantTurns := []segment.SpeakerTurn{{Speaker: "SPEAKER_00", Start: 0, End: 2}}
	handler := diarize.NewStageWithBackends(cfg, store, logging.NewNop(), []diarize.Backend{
		&fakeBackend{name: "tool", err: errors.New("boom")},
		&fakeBackend{name: "energy", turns: wantTurns},
	})

	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	meta, err := job.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if meta.DiarizerUsed != "energy" {
		t.Fatalf("DiarizerUsed = %q", meta.DiarizerUsed)
	}
	if len(meta.Warnings) == 0 || !strings.Contains(meta.Warnings[0], "substituting") {
		t.Fatalf("expected substitution warning, got %+v", meta.Warnings)
	}

	turns, err := diarize.ReadTurns(dirs.TurnsJSON())
	if err != nil {
		t.Fatalf("ReadTurns: %v", err)
	}
	if len(turns) != 1 || turns[0].Speaker != "SPEAKER_00" {
		t.Fatalf("turns = %+v", turns)
	}
}

func TestStageAllBackendsFailStillSucceeds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "/tmp/in.wav", "es")

	dirs := staging.ForJob(cfg.Paths.StagingDir, job.UUID)
	if err := dirs.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	handler := diarize.NewStageWithBackends(cfg, store, logging.NewNop(), []diarize.Backend{
		&fakeBackend{name: "tool", err: errors.New("boom")},
		&fakeBackend{name: "energy", err: errors.New("also boom")},
	})

	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute should degrade, got: %v", err)
	}

	meta, err := job.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if meta.DiarizerUsed != "none" {
		t.Fatalf("DiarizerUsed = %q", meta.DiarizerUsed)
	}

	turns, err := diarize.ReadTurns(dirs.TurnsJSON())
	if err != nil {
		t.Fatalf("ReadTurns: %v", err)
	}
	if turns != nil {
		t.Fatalf("expected empty turns, got %+v", turns)
	}
}
