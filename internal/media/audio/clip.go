package audio

import (
	"math"
	"time"
)

// Clip is a mono PCM buffer with float64 samples in [-1, 1].
type Clip struct {
	Samples    []float64
	SampleRate int
}

// NewSilence returns a silent clip of the given duration.
func NewSilence(d time.Duration, sampleRate int) *Clip {
	frames := int(math.Round(d.Seconds() * float64(sampleRate)))
	if frames < 0 {
		frames = 0
	}
	return &Clip{Samples: make([]float64, frames), SampleRate: sampleRate}
}

// Duration returns the clip length.
func (c *Clip) Duration() time.Duration {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	seconds := float64(len(c.Samples)) / float64(c.SampleRate)
	return time.Duration(seconds * float64(time.Second))
}

// Seconds returns the clip length in seconds.
func (c *Clip) Seconds() float64 {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Empty reports whether the clip holds no samples.
func (c *Clip) Empty() bool {
	return c == nil || len(c.Samples) == 0
}

// FrameAt converts a time offset to a sample index, clamped to the clip.
func (c *Clip) FrameAt(seconds float64) int {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	frame := int(math.Round(seconds * float64(c.SampleRate)))
	if frame < 0 {
		frame = 0
	}
	if frame > len(c.Samples) {
		frame = len(c.Samples)
	}
	return frame
}

// Slice returns a copy of the clip between two time offsets. Offsets outside
// the clip are clamped.
func (c *Clip) Slice(startSec, endSec float64) *Clip {
	if c == nil {
		return nil
	}
	start := c.FrameAt(startSec)
	end := c.FrameAt(endSec)
	if end < start {
		end = start
	}
	samples := make([]float64, end-start)
	copy(samples, c.Samples[start:end])
	return &Clip{Samples: samples, SampleRate: c.SampleRate}
}

// Clone returns a deep copy.
func (c *Clip) Clone() *Clip {
	if c == nil {
		return nil
	}
	samples := make([]float64, len(c.Samples))
	copy(samples, c.Samples)
	return &Clip{Samples: samples, SampleRate: c.SampleRate}
}

// Peak returns the maximum absolute sample value.
func (c *Clip) Peak() float64 {
	var peak float64
	if c == nil {
		return 0
	}
	for _, s := range c.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// Normalize scales samples so the peak equals the given level. A silent clip
// is left untouched.
func (c *Clip) Normalize(level float64) {
	if c == nil {
		return
	}
	peak := c.Peak()
	if peak == 0 {
		return
	}
	scale := level / peak
	for i := range c.Samples {
		c.Samples[i] *= scale
	}
}

// Resample returns a copy stretched by the given playback-rate factor using
// linear interpolation. A factor above 1 shortens the clip (faster playback);
// below 1 lengthens it. The sample rate is unchanged.
func (c *Clip) Resample(factor float64) *Clip {
	if c == nil {
		return nil
	}
	if factor <= 0 || len(c.Samples) == 0 {
		return c.Clone()
	}
	outLen := int(math.Round(float64(len(c.Samples)) / factor))
	if outLen <= 0 {
		return &Clip{Samples: nil, SampleRate: c.SampleRate}
	}
	out := make([]float64, outLen)
	for i := range out {
		pos := float64(i) * factor
		left := int(pos)
		if left >= len(c.Samples)-1 {
			out[i] = c.Samples[len(c.Samples)-1]
			continue
		}
		frac := pos - float64(left)
		out[i] = c.Samples[left]*(1-frac) + c.Samples[left+1]*frac
	}
	return &Clip{Samples: out, SampleRate: c.SampleRate}
}

// GainDB returns the linear gain for a decibel value.
func GainDB(db float64) float64 {
	return math.Pow(10, db/20)
}
