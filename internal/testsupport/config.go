package testsupport

import (
	"path/filepath"
	"testing"

	"dubsmart/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithSampleRate overrides the working sample rate on the test config.
func WithSampleRate(rate int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Audio.SampleRate = rate
	}
}

// WithTargetLanguages overrides the supported target languages.
func WithTargetLanguages(langs ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Languages.Supported = langs
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
