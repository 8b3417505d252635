package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
}

// Audio contains the pipeline sample format. All intermediate audio is mono
// PCM at this rate; input is downmixed/validated during preprocessing.
type Audio struct {
	SampleRate int `toml:"sample_rate"`
}

// Languages contains language policy for dubbing jobs.
type Languages struct {
	// Supported lists the target languages jobs may request.
	Supported []string `toml:"supported"`
	// DefaultTarget is used when a submission omits the target language.
	DefaultTarget string `toml:"default_target"`
}

// Voice describes one synthesis voice in a per-language pool.
type Voice struct {
	ID     string `toml:"id"`
	Gender string `toml:"gender"`
}

// Voices contains per-language synthesis voice pools.
type Voices struct {
	Pools map[string][]Voice `toml:"pools"`
}

// Diarizer contains configuration for the diarization backend and the
// energy-based fallback.
type Diarizer struct {
	// Command is the external diarization tool. Empty means the energy
	// fallback is the only backend.
	Command        string  `toml:"command"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	WindowMillis   int     `toml:"window_millis"`
	HopMillis      int     `toml:"hop_millis"`
	EnergyFactor   float64 `toml:"energy_factor"`
	TurnGapSeconds float64 `toml:"turn_gap_seconds"`
}

// Transcriber contains configuration for the ASR tool.
type Transcriber struct {
	Command        string `toml:"command"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Translator contains configuration for the machine translation endpoint.
type Translator struct {
	Endpoint       string `toml:"endpoint"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Synthesizer contains configuration for TTS backends. CloneCommand is the
// preferred voice-cloning tool; Command is the generic fallback.
type Synthesizer struct {
	CloneCommand   string `toml:"clone_command"`
	Command        string `toml:"command"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Merger contains segment merge thresholds.
type Merger struct {
	// MergeGapSeconds is the maximum silence between same-speaker ASR spans
	// that still merges them into one segment.
	MergeGapSeconds float64 `toml:"merge_gap_seconds"`
}

// Timing contains the duration alignment policy bounds.
type Timing struct {
	ToleranceMillis int     `toml:"tolerance_millis"`
	MinRate         float64 `toml:"min_rate"`
	MaxRate         float64 `toml:"max_rate"`
}

// Mixer contains overlay and limiter settings for the final mix.
type Mixer struct {
	OverlapAttenuation float64 `toml:"overlap_attenuation"`
	LimiterThreshold   float64 `toml:"limiter_threshold"`
	MaxOutputSeconds   float64 `toml:"max_output_seconds"`
	BackgroundGainDB   float64 `toml:"background_gain_db"`
}

// Workflow contains worker timing and parallelism.
type Workflow struct {
	QueuePollInterval       int `toml:"queue_poll_interval"`
	HeartbeatTimeout        int `toml:"heartbeat_timeout"`
	SynthesisWorkers        int `toml:"synthesis_workers"`
	ErrorRetryInterval      int `toml:"error_retry_interval"`
	MaxConcurrentJobWorkers int `toml:"max_concurrent_job_workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dubsmart.
//
// Configuration sections by subsystem:
//   - Paths: staging, output, and log directories
//   - Audio: pipeline sample format
//   - Languages: supported targets and defaults
//   - Voices: per-language synthesis voice pools
//   - Diarizer/Transcriber/Translator/Synthesizer: adapter settings
//   - Merger/Timing/Mixer: segment policy knobs
//   - Workflow: worker polling and parallelism
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Audio       Audio       `toml:"audio"`
	Languages   Languages   `toml:"languages"`
	Voices      Voices      `toml:"voices"`
	Diarizer    Diarizer    `toml:"diarizer"`
	Transcriber Transcriber `toml:"transcriber"`
	Translator  Translator  `toml:"translator"`
	Synthesizer Synthesizer `toml:"synthesizer"`
	Merger      Merger      `toml:"merger"`
	Timing      Timing      `toml:"timing"`
	Mixer       Mixer       `toml:"mixer"`
	Workflow    Workflow    `toml:"workflow"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dubsmart/config.toml")
}

// Load locates, parses, normalizes, and validates a configuration file. It
// returns the config, the resolved path, and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err == nil {
			return expanded, true, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	_, err = os.Stat(defaultPath)
	if err == nil {
		return defaultPath, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return defaultPath, false, nil
	}
	return "", false, fmt.Errorf("stat config: %w", err)
}

// WriteSample writes the embedded sample configuration to the given path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the directories the pipeline writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// VoicePool returns the configured voice pool for a language code.
func (c *Config) VoicePool(language string) []Voice {
	if c == nil || c.Voices.Pools == nil {
		return nil
	}
	return c.Voices.Pools[strings.ToLower(strings.TrimSpace(language))]
}

// SupportsTarget reports whether a target language is in the supported set.
func (c *Config) SupportsTarget(language string) bool {
	language = strings.ToLower(strings.TrimSpace(language))
	for _, supported := range c.Languages.Supported {
		if strings.EqualFold(supported, language) {
			return true
		}
	}
	return false
}

// ExpandPath resolves ~ prefixes and returns an absolute, cleaned path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
