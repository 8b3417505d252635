package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dubsmart/internal/media/audio"
)

// WriteWAV renders a clip to a WAV file at path, creating parent directories.
func WriteWAV(t testing.TB, path string, clip *audio.Clip) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := audio.WriteWAV(path, clip); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
}

// ToneClip builds a sine tone clip for fixtures.
func ToneClip(freq float64, seconds float64, sampleRate int) *audio.Clip {
	n := int(seconds * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return &audio.Clip{Samples: samples, SampleRate: sampleRate}
}

// SpeechLikeClip alternates tone bursts and silence so energy-based detection
// finds distinct active regions.
func SpeechLikeClip(bursts int, burstSeconds, gapSeconds float64, sampleRate int) *audio.Clip {
	burst := ToneClip(220, burstSeconds, sampleRate)
	gap := audio.NewSilence(time.Duration(gapSeconds*float64(time.Second)), sampleRate)

	var samples []float64
	for i := 0; i < bursts; i++ {
		samples = append(samples, burst.Samples...)
		if i != bursts-1 {
			samples = append(samples, gap.Samples...)
		}
	}
	return &audio.Clip{Samples: samples, SampleRate: sampleRate}
}
