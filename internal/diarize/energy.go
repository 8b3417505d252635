package diarize

import (
	"context"
	"fmt"

	"dubsmart/internal/config"
	"dubsmart/internal/media/audio"
	"dubsmart/internal/segment"
)

// Energy detects speech activity from windowed RMS energy. Windows above a
// fraction of the mean energy count as voiced; voiced windows are merged into
// spans and the synthetic speaker label alternates across silence gaps at
// least the configured turn gap long.
type Energy struct {
	cfg config.Diarizer
}

// NewEnergy creates the heuristic fallback backend.
func NewEnergy(cfg config.Diarizer) *Energy {
	return &Energy{cfg: cfg}
}

func (e *Energy) Name() string { return "energy" }

func (e *Energy) DetectSpeakers(ctx context.Context, wavPath string) ([]segment.SpeakerTurn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clip, err := audio.ReadWAV(wavPath)
	if err != nil {
		return nil, fmt.Errorf("energy diarizer: %w", err)
	}

	windowMillis := e.cfg.WindowMillis
	if windowMillis <= 0 {
		windowMillis = 500
	}
	hopMillis := e.cfg.HopMillis
	if hopMillis <= 0 {
		hopMillis = 250
	}
	factor := e.cfg.EnergyFactor
	if factor <= 0 {
		factor = 0.3
	}
	turnGap := e.cfg.TurnGapSeconds
	if turnGap <= 0 {
		turnGap = 1.0
	}

	window := windowMillis * clip.SampleRate / 1000
	hop := hopMillis * clip.SampleRate / 1000
	windows := audio.EnergyWindows(clip, window, hop)
	if len(windows) == 0 {
		return nil, nil
	}

	var mean float64
	for _, w := range windows {
		mean += w.Energy
	}
	mean /= float64(len(windows))
	if mean < 1e-6 {
		// Digital silence: no voiced regions to report.
		return nil, nil
	}
	threshold := factor * mean

	windowSec := float64(windowMillis) / 1000

	// Merge consecutive voiced windows into regions. Hops are shorter than
	// the window, so neighbouring voiced windows overlap and collapse.
	var regions []segment.SpeakerTurn
	for _, w := range windows {
		if w.Energy < threshold {
			continue
		}
		end := w.Start + windowSec
		if n := len(regions); n > 0 && w.Start <= regions[n-1].End {
			if end > regions[n-1].End {
				regions[n-1].End = end
			}
			continue
		}
		regions = append(regions, segment.SpeakerTurn{Start: w.Start, End: end})
	}

	speaker := 0
	for i := range regions {
		if i > 0 && regions[i].Start-regions[i-1].End >= turnGap {
			speaker = 1 - speaker
		}
		regions[i].Speaker = fmt.Sprintf("SPEAKER_%02d", speaker)
	}
	return regions, nil
}
