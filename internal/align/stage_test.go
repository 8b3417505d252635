package align_test

import (
	"context"
	"math"
	"testing"

	"dubsmart/internal/align"
	"dubsmart/internal/logging"
	"dubsmart/internal/media/audio"
	"dubsmart/internal/queue"
	"dubsmart/internal/segment"
	"dubsmart/internal/stage"
	"dubsmart/internal/staging"
	"dubsmart/internal/testsupport"
)

func alignFixture(t *testing.T, segments []segment.Segment) (*align.Stage, *queue.Job, staging.Dirs) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "/tmp/in.wav", "es")

	dirs := staging.ForJob(cfg.Paths.StagingDir, job.UUID)
	if err := dirs.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if err := stage.StoreSegments(job, segments); err != nil {
		t.Fatalf("StoreSegments: %v", err)
	}
	return align.NewStage(cfg, store, logging.NewNop()), job, dirs
}

func TestStageAlignsAllSegments(t *testing.T) {
	segments := []segment.Segment{
		{SpeakerID: "S1", Start: 0, End: 2, TranslatedText: "hola"},
		{SpeakerID: "S2", Start: 2, End: 5, TranslatedText: "mundo"},
	}
	handler, job, dirs := alignFixture(t, segments)

	// First clip is short of its 2s slot, second overruns its 3s slot.
	testsupport.WriteWAV(t, dirs.SegmentWAV(0), testsupport.ToneClip(220, 1.5, 16000))
	testsupport.WriteWAV(t, dirs.SegmentWAV(1), testsupport.ToneClip(220, 3.6, 16000))
	segments[0].SynthesizedPath = dirs.SegmentWAV(0)
	segments[1].SynthesizedPath = dirs.SegmentWAV(1)
	if err := stage.StoreSegments(job, segments); err != nil {
		t.Fatalf("StoreSegments: %v", err)
	}

	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got, err := stage.LoadSegments(job)
	if err != nil {
		t.Fatalf("LoadSegments: %v", err)
	}
	for i, seg := range got {
		if seg.AlignedPath == "" {
			t.Fatalf("segment %d has no aligned artifact", i)
		}
		clip, err := audio.ReadWAV(seg.AlignedPath)
		if err != nil {
			t.Fatalf("segment %d unreadable: %v", i, err)
		}
		if math.Abs(clip.Seconds()-seg.TargetSeconds()) > 0.05 {
			t.Fatalf("segment %d duration = %.3f, want %.1f", i, clip.Seconds(), seg.TargetSeconds())
		}
		if clip.SampleRate != 16000 {
			t.Fatalf("segment %d sample rate = %d", i, clip.SampleRate)
		}
	}
}

func TestStageSilencesUnreadableSegment(t *testing.T) {
	segments := []segment.Segment{
		{SpeakerID: "S1", Start: 0, End: 2, TranslatedText: "hola", SynthesizedPath: "/nonexistent/000.wav"},
	}
	handler, job, _ := alignFixture(t, segments)

	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute should degrade: %v", err)
	}

	got, err := stage.LoadSegments(job)
	if err != nil {
		t.Fatalf("LoadSegments: %v", err)
	}
	if !got[0].SynthesisMissed || got[0].AlignedPath == "" {
		t.Fatalf("segment = %+v", got[0])
	}
	clip, err := audio.ReadWAV(got[0].AlignedPath)
	if err != nil {
		t.Fatalf("silent substitute unreadable: %v", err)
	}
	if clip.Peak() != 0 {
		t.Fatalf("substitute not silent, peak = %f", clip.Peak())
	}
	if math.Abs(clip.Seconds()-2.0) > 0.05 {
		t.Fatalf("substitute duration = %.3f", clip.Seconds())
	}

	meta, err := job.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if len(meta.Warnings) == 0 {
		t.Fatal("expected silence warning")
	}
}
