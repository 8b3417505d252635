package config

const (
	defaultStagingDir = "~/.local/share/dubsmart/staging"
	defaultOutputDir  = "~/.local/share/dubsmart/output"
	defaultLogDir     = "~/.local/share/dubsmart/logs"

	defaultSampleRate = 16000

	defaultDiarizerTimeout    = 300
	defaultDiarizerWindow     = 500
	defaultDiarizerHop        = 250
	defaultEnergyFactor       = 0.3
	defaultTurnGapSeconds     = 1.0
	defaultTranscriberTimeout = 600
	defaultTranslatorTimeout  = 60
	defaultSynthesizerTimeout = 300

	defaultMergeGapSeconds = 0.5

	defaultToleranceMillis = 50
	defaultMinRate         = 0.7
	defaultMaxRate         = 1.4

	defaultOverlapAttenuation = 0.7
	defaultLimiterThreshold   = 0.9
	defaultMaxOutputSeconds   = 14400
	defaultBackgroundGainDB   = -20

	defaultQueuePollInterval  = 2
	defaultHeartbeatTimeout   = 600
	defaultSynthesisWorkers   = 4
	defaultErrorRetryInterval = 5
	defaultJobWorkers         = 1

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Audio: Audio{
			SampleRate: defaultSampleRate,
		},
		Languages: Languages{
			Supported:     []string{"en", "hi", "te", "es", "fr", "de"},
			DefaultTarget: "hi",
		},
		Voices: Voices{
			Pools: map[string][]Voice{
				"en": {
					{ID: "en-us-1", Gender: "male"},
					{ID: "en-au-1", Gender: "female"},
					{ID: "en-uk-1", Gender: "male"},
					{ID: "en-in-1", Gender: "female"},
				},
				"hi": {
					{ID: "hi-in-1", Gender: "male"},
					{ID: "hi-in-2", Gender: "female"},
				},
				"te": {
					{ID: "te-in-1", Gender: "male"},
					{ID: "te-in-2", Gender: "female"},
				},
				"es": {
					{ID: "es-es-1", Gender: "male"},
					{ID: "es-mx-1", Gender: "female"},
				},
				"fr": {
					{ID: "fr-fr-1", Gender: "male"},
					{ID: "fr-fr-2", Gender: "female"},
				},
				"de": {
					{ID: "de-de-1", Gender: "male"},
					{ID: "de-de-2", Gender: "female"},
				},
			},
		},
		Diarizer: Diarizer{
			TimeoutSeconds: defaultDiarizerTimeout,
			WindowMillis:   defaultDiarizerWindow,
			HopMillis:      defaultDiarizerHop,
			EnergyFactor:   defaultEnergyFactor,
			TurnGapSeconds: defaultTurnGapSeconds,
		},
		Transcriber: Transcriber{
			TimeoutSeconds: defaultTranscriberTimeout,
		},
		Translator: Translator{
			TimeoutSeconds: defaultTranslatorTimeout,
		},
		Synthesizer: Synthesizer{
			TimeoutSeconds: defaultSynthesizerTimeout,
		},
		Merger: Merger{
			MergeGapSeconds: defaultMergeGapSeconds,
		},
		Timing: Timing{
			ToleranceMillis: defaultToleranceMillis,
			MinRate:         defaultMinRate,
			MaxRate:         defaultMaxRate,
		},
		Mixer: Mixer{
			OverlapAttenuation: defaultOverlapAttenuation,
			LimiterThreshold:   defaultLimiterThreshold,
			MaxOutputSeconds:   defaultMaxOutputSeconds,
			BackgroundGainDB:   defaultBackgroundGainDB,
		},
		Workflow: Workflow{
			QueuePollInterval:       defaultQueuePollInterval,
			HeartbeatTimeout:        defaultHeartbeatTimeout,
			SynthesisWorkers:        defaultSynthesisWorkers,
			ErrorRetryInterval:      defaultErrorRetryInterval,
			MaxConcurrentJobWorkers: defaultJobWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
