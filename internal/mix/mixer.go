// Package mix assembles aligned segment audio into the master output track.
// Overlay order is fixed (start, then speaker) so the limiter stage is
// reproducible; the linear sum itself is order-independent.
package mix

import (
	"math"
	"sort"

	"dubsmart/internal/media/audio"
	"dubsmart/internal/services"
)

// ErrDurationLimit is returned when the master buffer would exceed the
// configured maximum output duration. Checked before allocation so a
// runaway segment list never produces a partial file.
var ErrDurationLimit = services.NewCoded("mix_duration_limit", "output would exceed the maximum allowed duration")

// duckFactor scales the background track under speech so dubbed dialogue
// stays intelligible.
const duckFactor = 0.25

// Layer is one aligned segment placed on the master timeline.
type Layer struct {
	Start   float64
	Speaker string
	Clip    *audio.Clip
}

// Params bounds and shapes the mix.
type Params struct {
	SampleRate         int
	OverlapAttenuation float64
	LimiterThreshold   float64
	MaxSeconds         float64
	// BackgroundGainDB applies to the background track before ducking.
	BackgroundGainDB float64
}

// Mix overlays every layer onto a master buffer spanning [0, max(end)).
// When background is non-nil the buffer starts as the background track at
// the configured gain, ducked wherever speech lands. The final pass is a
// soft limiter so summed overlaps never clip.
func Mix(layers []Layer, background *audio.Clip, params Params) (*audio.Clip, error) {
	if params.SampleRate <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "mixing", "validate params", "Sample rate must be positive", nil)
	}

	totalSeconds := 0.0
	for _, layer := range layers {
		if layer.Clip == nil {
			continue
		}
		if end := layer.Start + layer.Clip.Seconds(); end > totalSeconds {
			totalSeconds = end
		}
	}
	if params.MaxSeconds > 0 && totalSeconds > params.MaxSeconds {
		return nil, ErrDurationLimit
	}

	frames := int(math.Round(totalSeconds * float64(params.SampleRate)))
	master := &audio.Clip{Samples: make([]float64, frames), SampleRate: params.SampleRate}
	if frames == 0 {
		return master, nil
	}

	if background != nil {
		gain := audio.GainDB(params.BackgroundGainDB)
		for i := 0; i < frames && i < len(background.Samples); i++ {
			master.Samples[i] = background.Samples[i] * gain
		}
	}

	ordered := make([]Layer, len(layers))
	copy(ordered, layers)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].Speaker < ordered[j].Speaker
	})

	// depth[i] counts speech layers already summed at frame i. Each extra
	// layer is attenuated once more than the last.
	depth := make([]uint8, frames)
	for _, layer := range ordered {
		if layer.Clip == nil {
			continue
		}
		offset := int(math.Round(layer.Start * float64(params.SampleRate)))
		for j, s := range layer.Clip.Samples {
			idx := offset + j
			if idx < 0 {
				continue
			}
			if idx >= frames {
				break
			}
			if depth[idx] == 0 && background != nil {
				master.Samples[idx] *= duckFactor
			}
			master.Samples[idx] += s * math.Pow(params.OverlapAttenuation, float64(depth[idx]))
			if depth[idx] < math.MaxUint8 {
				depth[idx]++
			}
		}
	}

	if params.LimiterThreshold > 0 && params.LimiterThreshold < 1 {
		for i, s := range master.Samples {
			master.Samples[i] = softLimit(s, params.LimiterThreshold)
		}
	}
	return master, nil
}

// softLimit passes samples under the threshold untouched and squashes the
// excess through tanh, keeping output magnitude below 1.
func softLimit(x, threshold float64) float64 {
	abs := math.Abs(x)
	if abs <= threshold {
		return x
	}
	knee := 1 - threshold
	limited := threshold + knee*math.Tanh((abs-threshold)/knee)
	return math.Copysign(limited, x)
}
