package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubsmart/internal/align"
	"dubsmart/internal/config"
	"dubsmart/internal/diarize"
	"dubsmart/internal/export"
	"dubsmart/internal/logging"
	"dubsmart/internal/media/audio"
	"dubsmart/internal/mix"
	"dubsmart/internal/preprocess"
	"dubsmart/internal/queue"
	"dubsmart/internal/segment"
	"dubsmart/internal/synth"
	"dubsmart/internal/testsupport"
	"dubsmart/internal/transcribe"
	"dubsmart/internal/translate"
	"dubsmart/internal/voices"
	"dubsmart/internal/workflow"
)

type fakeDiarizer struct {
	turns []segment.SpeakerTurn
	err   error
}

func (f *fakeDiarizer) Name() string { return "fake-diarizer" }

func (f *fakeDiarizer) DetectSpeakers(ctx context.Context, wavPath string) ([]segment.SpeakerTurn, error) {
	return f.turns, f.err
}

type fakeRecognizer struct {
	language string
	spans    []segment.TextSpan
}

func (f *fakeRecognizer) Transcribe(ctx context.Context, wavPath, hint string) (transcribe.Result, error) {
	return transcribe.Result{Language: f.language, Spans: f.spans}, nil
}

type fakeTranslator struct{}

func (fakeTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	return fmt.Sprintf("%s [%s]", text, target), nil
}

type fakeSynth struct {
	failTexts map[string]bool
}

func (f *fakeSynth) Name() string { return "fake-tts" }

func (f *fakeSynth) Synthesize(ctx context.Context, req synth.Request) error {
	for text := range f.failTexts {
		if text != "" && strings.Contains(req.Text, text) {
			return errors.New("synthesis refused")
		}
	}
	return audio.WriteWAV(req.OutPath, testsupport.ToneClip(210, 1.8, 16000))
}

func writeGarbage(path string) error {
	return os.WriteFile(path, []byte("definitely not a wav file"), 0o644)
}

type pipelineFixture struct {
	cfg   *config.Config
	store *queue.Store
	mgr   *workflow.Manager
}

func newPipeline(t *testing.T, diarizers []diarize.Backend, recognizer transcribe.Recognizer, synths []synth.Backend) pipelineFixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	set := workflow.StageSet{
		Preprocessor: preprocess.NewPreprocessor(cfg, store, logger),
		Diarizer:     diarize.NewStageWithBackends(cfg, store, logger, diarizers),
		Transcriber:  transcribe.NewStageWithRecognizer(cfg, store, logger, recognizer),
		Merger:       segment.NewMergeStage(cfg, store, logger, diarize.ReadTurns, transcribe.ReadSpans),
		Translator:   translate.NewStageWithTranslator(cfg, store, logger, fakeTranslator{}),
		VoiceAssign:  voices.NewStage(cfg, store, logger),
		Synthesizer:  synth.NewStageWithBackends(cfg, store, logger, synths),
		Aligner:      align.NewStage(cfg, store, logger),
		Mixer:        mix.NewStage(cfg, store, logger),
		Exporter:     export.NewStage(cfg, store, logger),
	}
	return pipelineFixture{cfg: cfg, store: store, mgr: workflow.NewManagerWithStages(cfg, store, logger, set)}
}

// twoSpeakerTrack writes a 4s source: a low-pitched voice in the first half
// and a higher one in the second.
func twoSpeakerTrack(t *testing.T, dir string) string {
	t.Helper()
	low := testsupport.ToneClip(120, 2.0, 16000)
	high := testsupport.ToneClip(230, 2.0, 16000)
	low.Samples = append(low.Samples, high.Samples...)
	path := filepath.Join(dir, "source.wav")
	testsupport.WriteWAV(t, path, low)
	return path
}

func TestPipelineTwoSpeakersEndToEnd(t *testing.T) {
	diarizer := &fakeDiarizer{turns: []segment.SpeakerTurn{
		{Speaker: "SPEAKER_00", Start: 0, End: 2},
		{Speaker: "SPEAKER_01", Start: 2, End: 4},
	}}
	recognizer := &fakeRecognizer{language: "en", spans: []segment.TextSpan{
		{Text: "hello", Start: 0, End: 2},
		{Text: "world", Start: 2, End: 4},
	}}
	fx := newPipeline(t, []diarize.Backend{diarizer}, recognizer, []synth.Backend{&fakeSynth{}})

	input := twoSpeakerTrack(t, t.TempDir())
	job, err := fx.store.NewJob(context.Background(), queue.NewJobRequest{
		InputPath:      input,
		SourceLanguage: "en",
		TargetLanguage: "es",
	})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	if err := fx.mgr.RunUntilIdle(context.Background()); err != nil {
		t.Fatalf("RunUntilIdle: %v", err)
	}

	job, err = fx.store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job.Status != queue.StatusCompleted {
		t.Fatalf("status = %s (error=%q reason=%q)", job.Status, job.ErrorMessage, job.ReasonCode)
	}
	if job.OutputPath == "" {
		t.Fatal("no output path on completed job")
	}

	master, err := audio.ReadWAV(job.OutputPath)
	if err != nil {
		t.Fatalf("output unreadable: %v", err)
	}
	if math.Abs(master.Seconds()-4.0) > 0.05 {
		t.Fatalf("output duration = %.3f, want 4.0", master.Seconds())
	}
	rate := fx.cfg.Audio.SampleRate
	first := &audio.Clip{Samples: master.Samples[:2*rate], SampleRate: rate}
	second := &audio.Clip{Samples: master.Samples[2*rate:], SampleRate: rate}
	if first.Peak() == 0 || second.Peak() == 0 {
		t.Fatal("output has a silent half")
	}

	meta, err := job.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if meta.SpeakerCount != 2 {
		t.Fatalf("speaker count = %d", meta.SpeakerCount)
	}
	if len(meta.Voices) != 2 {
		t.Fatalf("voices = %+v", meta.Voices)
	}
}

func TestPipelineDiarizerFailureFallsBackToSingleSpeaker(t *testing.T) {
	diarizer := &fakeDiarizer{err: errors.New("model not available")}
	recognizer := &fakeRecognizer{language: "en", spans: []segment.TextSpan{
		{Text: "hello world", Start: 0, End: 4},
	}}
	fx := newPipeline(t, []diarize.Backend{diarizer}, recognizer, []synth.Backend{&fakeSynth{}})

	input := twoSpeakerTrack(t, t.TempDir())
	job, err := fx.store.NewJob(context.Background(), queue.NewJobRequest{
		InputPath:      input,
		SourceLanguage: "en",
		TargetLanguage: "es",
	})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	if err := fx.mgr.RunUntilIdle(context.Background()); err != nil {
		t.Fatalf("RunUntilIdle: %v", err)
	}

	job, err = fx.store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job.Status != queue.StatusCompleted {
		t.Fatalf("status = %s (error=%q reason=%q)", job.Status, job.ErrorMessage, job.ReasonCode)
	}

	segments, err := segment.DecodeList(job.SegmentsJSON)
	if err != nil {
		t.Fatalf("DecodeList: %v", err)
	}
	if len(segments) != 1 || segments[0].SpeakerID != segment.FallbackSpeaker {
		t.Fatalf("segments = %+v", segments)
	}
	meta, err := job.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if meta.SpeakerCount != 1 {
		t.Fatalf("speaker count = %d", meta.SpeakerCount)
	}
	if len(meta.Warnings) == 0 {
		t.Fatal("expected a diarizer fallback warning")
	}
}

func TestPipelinePartialSynthesisFailureCompletes(t *testing.T) {
	diarizer := &fakeDiarizer{turns: []segment.SpeakerTurn{
		{Speaker: "SPEAKER_00", Start: 0, End: 4},
	}}
	recognizer := &fakeRecognizer{language: "en", spans: []segment.TextSpan{
		{Text: "one", Start: 0, End: 1},
		{Text: "two", Start: 1.8, End: 2.8},
		{Text: "three", Start: 3.4, End: 4},
	}}
	synthBackend := &fakeSynth{failTexts: map[string]bool{"two": true}}
	fx := newPipeline(t, []diarize.Backend{diarizer}, recognizer, []synth.Backend{synthBackend})

	input := twoSpeakerTrack(t, t.TempDir())
	job, err := fx.store.NewJob(context.Background(), queue.NewJobRequest{
		InputPath:      input,
		SourceLanguage: "en",
		TargetLanguage: "es",
	})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	if err := fx.mgr.RunUntilIdle(context.Background()); err != nil {
		t.Fatalf("RunUntilIdle: %v", err)
	}

	job, err = fx.store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job.Status != queue.StatusCompleted {
		t.Fatalf("status = %s (error=%q reason=%q)", job.Status, job.ErrorMessage, job.ReasonCode)
	}
	meta, err := job.LoadMetadata()
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if meta.SynthesisMiss != 1 {
		t.Fatalf("synthesis miss = %d", meta.SynthesisMiss)
	}
	if len(meta.Warnings) == 0 {
		t.Fatal("expected a synthesis warning")
	}
}

func TestPipelineSameLanguageFailsFast(t *testing.T) {
	diarizer := &fakeDiarizer{turns: []segment.SpeakerTurn{
		{Speaker: "SPEAKER_00", Start: 0, End: 4},
	}}
	recognizer := &fakeRecognizer{language: "es", spans: []segment.TextSpan{
		{Text: "hola", Start: 0, End: 4},
	}}
	fx := newPipeline(t, []diarize.Backend{diarizer}, recognizer, []synth.Backend{&fakeSynth{}})

	input := twoSpeakerTrack(t, t.TempDir())
	job, err := fx.store.NewJob(context.Background(), queue.NewJobRequest{
		InputPath:      input,
		SourceLanguage: "es",
		TargetLanguage: "es",
	})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	if err := fx.mgr.RunUntilIdle(context.Background()); err != nil {
		t.Fatalf("RunUntilIdle: %v", err)
	}

	job, err = fx.store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job.Status != queue.StatusFailed {
		t.Fatalf("status = %s", job.Status)
	}
	if job.ReasonCode != "same_language" {
		t.Fatalf("reason = %q (error=%q)", job.ReasonCode, job.ErrorMessage)
	}
	if job.OutputPath != "" {
		t.Fatalf("failed job has output path %q", job.OutputPath)
	}
}

func TestPipelineCorruptedInputFails(t *testing.T) {
	fx := newPipeline(t,
		[]diarize.Backend{&fakeDiarizer{}},
		&fakeRecognizer{language: "en"},
		[]synth.Backend{&fakeSynth{}},
	)

	bad := filepath.Join(t.TempDir(), "bad.wav")
	if err := writeGarbage(bad); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	job, err := fx.store.NewJob(context.Background(), queue.NewJobRequest{
		InputPath:      bad,
		SourceLanguage: "en",
		TargetLanguage: "es",
	})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}

	if err := fx.mgr.RunUntilIdle(context.Background()); err != nil {
		t.Fatalf("RunUntilIdle: %v", err)
	}

	job, err = fx.store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job.Status != queue.StatusFailed {
		t.Fatalf("status = %s", job.Status)
	}
	if job.ReasonCode != "corrupted_input" {
		t.Fatalf("reason = %q", job.ReasonCode)
	}
}
