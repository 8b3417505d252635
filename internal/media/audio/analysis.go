package audio

import "math"

// RMS returns the root-mean-square energy of the samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// EnergyWindow is one analysis frame of windowed energy.
type EnergyWindow struct {
	Start  float64
	Energy float64
}

// EnergyWindows computes RMS energy over sliding windows. Window and hop are
// given in samples.
func EnergyWindows(clip *Clip, window, hop int) []EnergyWindow {
	if clip == nil || window <= 0 || hop <= 0 || len(clip.Samples) < window {
		return nil
	}
	var out []EnergyWindow
	for i := 0; i+window <= len(clip.Samples); i += hop {
		out = append(out, EnergyWindow{
			Start:  float64(i) / float64(clip.SampleRate),
			Energy: RMS(clip.Samples[i : i+window]),
		})
	}
	return out
}

// TrailingSilence returns the duration in seconds of silence at the clip's
// tail, measured against the given amplitude threshold.
func TrailingSilence(clip *Clip, threshold float64) float64 {
	if clip == nil || clip.SampleRate <= 0 {
		return 0
	}
	n := len(clip.Samples)
	i := n
	for i > 0 && math.Abs(clip.Samples[i-1]) < threshold {
		i--
	}
	return float64(n-i) / float64(clip.SampleRate)
}

// EstimatePitch returns the fundamental frequency in Hz estimated by
// autocorrelation over the plausible speech range (60-400 Hz), or 0 when no
// periodicity is found (silence, noise).
func EstimatePitch(clip *Clip) float64 {
	if clip == nil || clip.SampleRate <= 0 || len(clip.Samples) == 0 {
		return 0
	}
	rate := float64(clip.SampleRate)
	minLag := int(rate / 400)
	maxLag := int(rate / 60)
	if maxLag >= len(clip.Samples) {
		maxLag = len(clip.Samples) - 1
	}
	if minLag < 1 || minLag >= maxLag {
		return 0
	}

	// Use a centered analysis window to avoid onset/decay transients.
	samples := clip.Samples
	const analysisWindow = 8192
	if len(samples) > analysisWindow*2 {
		mid := len(samples) / 2
		samples = samples[mid-analysisWindow : mid+analysisWindow]
	}
	if RMS(samples) < 1e-4 {
		return 0
	}

	var energy float64
	for _, s := range samples {
		energy += s * s
	}
	if energy == 0 {
		return 0
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag && lag < len(samples); lag++ {
		var corr float64
		for i := 0; i+lag < len(samples); i++ {
			corr += samples[i] * samples[i+lag]
		}
		corr /= energy
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestLag == 0 || bestCorr < 0.3 {
		return 0
	}
	return rate / float64(bestLag)
}
