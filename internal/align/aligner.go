// Package align fits synthesized audio into the timing envelope of its
// original segment. Short clips are padded with silence; long clips are sped
// up within configured rate bounds and any remaining excess is truncated,
// trimming trailing silence before speech.
package align

import (
	"math"

	"dubsmart/internal/media/audio"
	"dubsmart/internal/services"
)

// ErrBadAudio signals synthesized audio that cannot be aligned (unreadable
// or empty). The orchestrator substitutes silence for the segment.
var ErrBadAudio = services.NewCoded("align_bad_audio", "synthesized audio unreadable or empty")

// silenceFloor is the amplitude below which tail samples count as silence
// when truncating.
const silenceFloor = 1e-3

// Outcome names the adjustment the aligner applied.
type Outcome string

const (
	OutcomePass      Outcome = "pass"
	OutcomePadded    Outcome = "padded"
	OutcomeResampled Outcome = "resampled"
	OutcomeTruncated Outcome = "truncated"
)

// Params bounds the alignment policy.
type Params struct {
	// ToleranceSeconds is the acceptable absolute duration error.
	ToleranceSeconds float64
	// MinRate and MaxRate clamp the playback-rate factor used to shorten
	// long clips. The exact bounds are a policy choice; the tiered
	// resample-then-truncate contract is not.
	MinRate float64
	MaxRate float64
}

// Align returns a clip whose duration matches targetSeconds within
// tolerance. The input clip is not modified and the sample rate never
// changes.
func Align(clip *audio.Clip, targetSeconds float64, params Params) (*audio.Clip, Outcome, error) {
	if clip == nil || clip.Empty() || clip.SampleRate <= 0 {
		return nil, "", ErrBadAudio
	}
	if targetSeconds <= 0 {
		return nil, "", ErrBadAudio
	}

	current := clip.Seconds()
	diff := current - targetSeconds
	if math.Abs(diff) <= params.ToleranceSeconds {
		return clip.Clone(), OutcomePass, nil
	}

	targetFrames := int(math.Round(targetSeconds * float64(clip.SampleRate)))

	if diff < 0 {
		out := clip.Clone()
		out.Samples = append(out.Samples, make([]float64, targetFrames-len(out.Samples))...)
		return out, OutcomePadded, nil
	}

	rate := current / targetSeconds
	clamped := rate
	if params.MaxRate > 0 && clamped > params.MaxRate {
		clamped = params.MaxRate
	}
	if params.MinRate > 0 && clamped < params.MinRate {
		clamped = params.MinRate
	}
	out := clip.Resample(clamped)
	outcome := OutcomeResampled

	if len(out.Samples) > targetFrames {
		// Drop trailing silence before cutting into speech.
		end := len(out.Samples)
		for end > targetFrames && math.Abs(out.Samples[end-1]) < silenceFloor {
			end--
		}
		if end > targetFrames {
			end = targetFrames
		}
		out.Samples = out.Samples[:end]
		if sec := out.Seconds(); targetSeconds-sec > params.ToleranceSeconds {
			out.Samples = append(out.Samples, make([]float64, targetFrames-len(out.Samples))...)
		}
		outcome = OutcomeTruncated
	}
	return out, outcome, nil
}
