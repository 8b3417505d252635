// Package diarize detects speaker turns in the working track. Two backends
// are provided: an external diarization tool and an energy-based heuristic
// that needs no external dependency. The resolution policy tries them in
// priority order so the pipeline keeps going when the tool is missing.
package diarize

import (
	"context"

	"dubsmart/internal/config"
	"dubsmart/internal/segment"
)

// Backend produces speaker-labeled time spans for a staged mono WAV file.
type Backend interface {
	Name() string
	DetectSpeakers(ctx context.Context, wavPath string) ([]segment.SpeakerTurn, error)
}

// Resolve returns the configured backends in priority order. The external
// tool, when configured, is preferred; the energy heuristic always closes the
// chain so diarization never leaves the job without a fallback.
func Resolve(cfg *config.Config) []Backend {
	backends := make([]Backend, 0, 2)
	if cfg.Diarizer.Command != "" {
		backends = append(backends, NewTool(cfg.Diarizer))
	}
	backends = append(backends, NewEnergy(cfg.Diarizer))
	return backends
}
