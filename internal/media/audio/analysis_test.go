package audio

import (
	"math"
	"testing"
)

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Fatalf("RMS(nil) = %v", got)
	}
	samples := []float64{0.5, -0.5, 0.5, -0.5}
	if got := RMS(samples); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("RMS = %v, want 0.5", got)
	}
}

func TestEnergyWindowsSeparatesSpeechFromSilence(t *testing.T) {
	rate := 16000
	clip := NewSilence(0, rate)
	clip.Samples = append(clip.Samples, NewSilence(0, rate).Samples...)
	loud := sineClip(220, 0.5, rate)
	quiet := NewSilence(0, rate)
	quiet.Samples = make([]float64, rate/2)
	clip.Samples = append(clip.Samples, loud.Samples...)
	clip.Samples = append(clip.Samples, quiet.Samples...)

	windows := EnergyWindows(clip, rate/10, rate/20)
	if len(windows) == 0 {
		t.Fatal("expected windows")
	}
	if windows[0].Energy < 0.1 {
		t.Fatalf("speech window energy = %v", windows[0].Energy)
	}
	last := windows[len(windows)-1]
	if last.Energy > 0.01 {
		t.Fatalf("silence window energy = %v", last.Energy)
	}
}

func TestTrailingSilence(t *testing.T) {
	rate := 16000
	clip := sineClip(220, 0.5, rate)
	clip.Samples = append(clip.Samples, make([]float64, rate/4)...)
	got := TrailingSilence(clip, 1e-3)
	if math.Abs(got-0.25) > 0.01 {
		t.Fatalf("trailing silence = %v, want 0.25", got)
	}
}

func TestEstimatePitch(t *testing.T) {
	tests := []struct {
		name string
		freq float64
	}{
		{"male range", 120},
		{"female range", 220},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip := sineClip(tt.freq, 1.0, 16000)
			got := EstimatePitch(clip)
			if math.Abs(got-tt.freq) > tt.freq*0.1 {
				t.Fatalf("pitch = %v, want ~%v", got, tt.freq)
			}
		})
	}
}

func TestEstimatePitchSilence(t *testing.T) {
	clip := NewSilence(1e9, 16000)
	if got := EstimatePitch(clip); got != 0 {
		t.Fatalf("pitch of silence = %v, want 0", got)
	}
}
