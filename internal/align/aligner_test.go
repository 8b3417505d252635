package align_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"dubsmart/internal/align"
	"dubsmart/internal/media/audio"
	"dubsmart/internal/services"
	"dubsmart/internal/testsupport"
)

var testParams = align.Params{
	ToleranceSeconds: 0.05,
	MinRate:          0.8,
	MaxRate:          1.5,
}

func TestAlignWithinTolerance(t *testing.T) {
	clip := testsupport.ToneClip(220, 2.03, 16000)
	out, outcome, err := align.Align(clip, 2.0, testParams)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if outcome != align.OutcomePass {
		t.Fatalf("outcome = %q", outcome)
	}
	if out.Seconds() != clip.Seconds() {
		t.Fatalf("duration changed: %.3f -> %.3f", clip.Seconds(), out.Seconds())
	}
}

func TestAlignPadsShortClip(t *testing.T) {
	clip := testsupport.ToneClip(220, 1.5, 16000)
	out, outcome, err := align.Align(clip, 2.0, testParams)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if outcome != align.OutcomePadded {
		t.Fatalf("outcome = %q", outcome)
	}
	if math.Abs(out.Seconds()-2.0) > testParams.ToleranceSeconds {
		t.Fatalf("padded duration = %.3f", out.Seconds())
	}
	if out.SampleRate != clip.SampleRate {
		t.Fatalf("sample rate changed: %d", out.SampleRate)
	}
	// Padding is silence; the original speech is untouched.
	for _, s := range out.Samples[len(clip.Samples):] {
		if s != 0 {
			t.Fatal("pad region not silent")
		}
	}
}

func TestAlignResamplesLongClip(t *testing.T) {
	clip := testsupport.ToneClip(220, 2.4, 16000)
	out, outcome, err := align.Align(clip, 2.0, testParams)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if outcome != align.OutcomeResampled && outcome != align.OutcomeTruncated {
		t.Fatalf("outcome = %q", outcome)
	}
	if math.Abs(out.Seconds()-2.0) > testParams.ToleranceSeconds {
		t.Fatalf("aligned duration = %.3f", out.Seconds())
	}
	if out.SampleRate != clip.SampleRate {
		t.Fatalf("sample rate changed: %d", out.SampleRate)
	}
}

func TestAlignTruncatesBeyondMaxRate(t *testing.T) {
	// 4s into 2s needs rate 2.0, above MaxRate 1.5; the remainder must be
	// cut rather than sped up further.
	clip := testsupport.ToneClip(220, 4.0, 16000)
	out, outcome, err := align.Align(clip, 2.0, testParams)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if outcome != align.OutcomeTruncated {
		t.Fatalf("outcome = %q", outcome)
	}
	if math.Abs(out.Seconds()-2.0) > testParams.ToleranceSeconds {
		t.Fatalf("truncated duration = %.3f", out.Seconds())
	}
}

func TestAlignTrimsTrailingSilenceFirst(t *testing.T) {
	// 1.3s of speech followed by 1.5s of silence, target 2s at the rate
	// ceiling. The silent tail absorbs the cut and speech survives.
	speech := testsupport.ToneClip(220, 1.3, 16000)
	tail := audio.NewSilence(1500*time.Millisecond, 16000)
	speech.Samples = append(speech.Samples, tail.Samples...)

	out, outcome, err := align.Align(speech, 2.0, align.Params{ToleranceSeconds: 0.05, MinRate: 1.0, MaxRate: 1.0})
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if outcome != align.OutcomeTruncated {
		t.Fatalf("outcome = %q", outcome)
	}
	if math.Abs(out.Seconds()-2.0) > 0.05 {
		t.Fatalf("duration = %.3f", out.Seconds())
	}
	// All original speech frames survive at rate 1.0.
	speechFrames := int(1.3 * 16000)
	for i := 0; i < speechFrames && i < len(out.Samples); i++ {
		if out.Samples[i] == 0 && speech.Samples[i] != 0 {
			t.Fatalf("speech frame %d lost", i)
		}
	}
}

func TestAlignRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		clip   *audio.Clip
		target float64
	}{
		{"nil clip", nil, 2.0},
		{"empty clip", &audio.Clip{SampleRate: 16000}, 2.0},
		{"zero target", testsupport.ToneClip(220, 1, 16000), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := align.Align(tc.clip, tc.target, testParams)
			if !errors.Is(err, align.ErrBadAudio) {
				t.Fatalf("err = %v", err)
			}
			if services.Code(err) != "align_bad_audio" {
				t.Fatalf("code = %q", services.Code(err))
			}
		})
	}
}

func TestAlignDoesNotModifyInput(t *testing.T) {
	clip := testsupport.ToneClip(220, 1.0, 16000)
	before := len(clip.Samples)
	if _, _, err := align.Align(clip, 3.0, testParams); err != nil {
		t.Fatalf("Align: %v", err)
	}
	if len(clip.Samples) != before {
		t.Fatalf("input mutated: %d -> %d", before, len(clip.Samples))
	}
}
