// Package synth renders translated segment text to speech. The voice-cloning
// tool is preferred; a generic TTS tool is substituted when cloning is
// unavailable, mirroring the diarization fallback policy.
package synth

import (
	"context"

	"dubsmart/internal/config"
)

// Request describes one synthesis call. ReferencePath optionally points at a
// clip of the original speaker for voice cloning.
type Request struct {
	Text          string
	VoiceID       string
	Language      string
	OutPath       string
	ReferencePath string
}

// Backend renders speech for one request, writing a WAV file at OutPath.
type Backend interface {
	Name() string
	Synthesize(ctx context.Context, req Request) error
}

// Resolve returns the configured backends in priority order: voice cloning
// first, generic TTS second.
func Resolve(cfg *config.Config) []Backend {
	backends := make([]Backend, 0, 2)
	if cfg.Synthesizer.CloneCommand != "" {
		backends = append(backends, NewCloneTool(cfg.Synthesizer))
	}
	if cfg.Synthesizer.Command != "" {
		backends = append(backends, NewTool(cfg.Synthesizer))
	}
	return backends
}
