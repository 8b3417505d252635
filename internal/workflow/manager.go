package workflow

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"dubsmart/internal/align"
	"dubsmart/internal/config"
	"dubsmart/internal/diarize"
	"dubsmart/internal/export"
	"dubsmart/internal/logging"
	"dubsmart/internal/mix"
	"dubsmart/internal/preprocess"
	"dubsmart/internal/queue"
	"dubsmart/internal/segment"
	"dubsmart/internal/stage"
	"dubsmart/internal/synth"
	"dubsmart/internal/transcribe"
	"dubsmart/internal/translate"
	"dubsmart/internal/voices"
)

// StageSet bundles the concrete stage handlers the manager orchestrates.
type StageSet struct {
	Preprocessor stage.Handler
	Diarizer     stage.Handler
	Transcriber  stage.Handler
	Merger       stage.Handler
	Translator   stage.Handler
	VoiceAssign  stage.Handler
	Synthesizer  stage.Handler
	Aligner      stage.Handler
	Mixer        stage.Handler
	Exporter     stage.Handler
}

// DefaultStageSet wires the production pipeline.
func DefaultStageSet(cfg *config.Config, store *queue.Store, logger *slog.Logger) StageSet {
	return StageSet{
		Preprocessor: preprocess.NewPreprocessor(cfg, store, logger),
		Diarizer:     diarize.NewStage(cfg, store, logger),
		Transcriber:  transcribe.NewStage(cfg, store, logger),
		Merger:       segment.NewMergeStage(cfg, store, logger, diarize.ReadTurns, transcribe.ReadSpans),
		Translator:   translate.NewStage(cfg, store, logger),
		VoiceAssign:  voices.NewStage(cfg, store, logger),
		Synthesizer:  synth.NewStage(cfg, store, logger),
		Aligner:      align.NewStage(cfg, store, logger),
		Mixer:        mix.NewStage(cfg, store, logger),
		Exporter:     export.NewStage(cfg, store, logger),
	}
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration
	heartbeat    *heartbeatMonitor

	stages       []pipelineStage
	stageByStart map[queue.Status]pipelineStage
	startOrder   []queue.Status

	mu      sync.Mutex
	running bool
	cancel  func()
	wg      sync.WaitGroup
}

// NewManager constructs a workflow manager with the production stage set.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithStages(cfg, store, logger, DefaultStageSet(cfg, store, logger))
}

// NewManagerWithStages constructs a workflow manager from an explicit stage
// set (used in tests to inject fakes).
func NewManagerWithStages(cfg *config.Config, store *queue.Store, logger *slog.Logger, set StageSet) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: newHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
	if m.pollInterval <= 0 {
		m.pollInterval = time.Second
	}
	m.stages = []pipelineStage{
		{"preprocess", set.Preprocessor, queue.StatusPending, queue.StatusPreprocessing, queue.StatusPreprocessed},
		{"diarize", set.Diarizer, queue.StatusPreprocessed, queue.StatusDiarizing, queue.StatusDiarized},
		{"transcribe", set.Transcriber, queue.StatusDiarized, queue.StatusTranscribing, queue.StatusTranscribed},
		{"merge", set.Merger, queue.StatusTranscribed, queue.StatusMerging, queue.StatusMerged},
		{"translate", set.Translator, queue.StatusMerged, queue.StatusTranslating, queue.StatusTranslated},
		{"voice", set.VoiceAssign, queue.StatusTranslated, queue.StatusVoicing, queue.StatusVoiced},
		{"synthesize", set.Synthesizer, queue.StatusVoiced, queue.StatusSynthesizing, queue.StatusSynthesized},
		{"align", set.Aligner, queue.StatusSynthesized, queue.StatusAligning, queue.StatusAligned},
		{"mix", set.Mixer, queue.StatusAligned, queue.StatusMixing, queue.StatusMixed},
		{"export", set.Exporter, queue.StatusMixed, queue.StatusExporting, queue.StatusCompleted},
	}
	m.stageByStart = make(map[queue.Status]pipelineStage, len(m.stages))
	m.startOrder = make([]queue.Status, 0, len(m.stages))
	for _, stg := range m.stages {
		m.stageByStart[stg.startStatus] = stg
		m.startOrder = append(m.startOrder, stg.startStatus)
	}
	return m
}

// Health reports readiness of every configured stage handler.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	out := make([]stage.Health, 0, len(m.stages))
	for _, stg := range m.stages {
		if stg.handler == nil {
			out = append(out, stage.Unhealthy(stg.name, "handler missing"))
			continue
		}
		out = append(out, stg.handler.HealthCheck(ctx))
	}
	return out
}

func (m *Manager) workerCount() int {
	if n := m.cfg.Workflow.MaxConcurrentJobWorkers; n > 0 {
		return n
	}
	return 1
}
