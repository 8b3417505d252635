package voices_test

import (
	"context"
	"errors"
	"testing"

	"dubsmart/internal/logging"
	"dubsmart/internal/segment"
	"dubsmart/internal/stage"
	"dubsmart/internal/staging"
	"dubsmart/internal/testsupport"
	"dubsmart/internal/voices"
)

func TestStageAssignsVoicesToSegments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "/tmp/in.wav", "es")

	dirs := staging.ForJob(cfg.Paths.StagingDir, job.UUID)
	if err := dirs.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	// Low-pitch first half, high-pitch second half: S1 male, S2 female.
	track := testsupport.ToneClip(120, 2.0, cfg.Audio.SampleRate)
	high := testsupport.ToneClip(230, 2.0, cfg.Audio.SampleRate)
	track.Samples = append(track.Samples, high.Samples...)
	testsupport.WriteWAV(t, dirs.SourceWAV(), track)

	segments := []segment.Segment{
		{SpeakerID: "S1", Start: 0, End: 2, SourceText: "hola"},
		{SpeakerID: "S2", Start: 2, End: 4, SourceText: "mundo"},
	}
	if err := stage.StoreSegments(job, segments); err != nil {
		t.Fatalf("StoreSegments: %v", err)
	}

	handler := voices.NewStage(cfg, store, logging.NewNop())
	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got, err := stage.LoadSegments(job)
	if err != nil {
		t.Fatalf("LoadSegments: %v", err)
	}
	for _, seg := range got {
		if seg.VoiceID == "" {
			t.Fatalf("segment without voice: %+v", seg)
		}
	}
	if got[0].VoiceID == got[1].VoiceID {
		t.Fatalf("speakers share a voice: %+v", got)
	}

	meta, err := job.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if len(meta.Voices) != 2 {
		t.Fatalf("metadata voices = %+v", meta.Voices)
	}
	if meta.Voices["S1"].Gender != voices.GenderMale {
		t.Fatalf("S1 gender = %+v", meta.Voices["S1"])
	}
	if meta.Voices["S2"].Gender != voices.GenderFemale {
		t.Fatalf("S2 gender = %+v", meta.Voices["S2"])
	}
}

func TestStageFailsWithoutPool(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Voices.Pools = nil
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "/tmp/in.wav", "es")

	if err := stage.StoreSegments(job, []segment.Segment{{SpeakerID: "S1", Start: 0, End: 1, SourceText: "x"}}); err != nil {
		t.Fatalf("StoreSegments: %v", err)
	}

	handler := voices.NewStage(cfg, store, logging.NewNop())
	err := handler.Execute(context.Background(), job)
	if !errors.Is(err, voices.ErrNoVoices) {
		t.Fatalf("expected ErrNoVoices, got %v", err)
	}
}
