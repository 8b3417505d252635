package voices_test

import (
	"errors"
	"reflect"
	"testing"

	"dubsmart/internal/config"
	"dubsmart/internal/segment"
	"dubsmart/internal/testsupport"
	"dubsmart/internal/voices"
)

func pool(entries ...config.Voice) []config.Voice { return entries }

func TestAssignPrefersGenderMatch(t *testing.T) {
	p := pool(
		config.Voice{ID: "v-female", Gender: "female"},
		config.Voice{ID: "v-male", Gender: "male"},
	)
	choices, err := voices.Assign(
		[]string{"S1", "S2"},
		map[string]string{"S1": "male", "S2": "female"},
		p,
	)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if choices["S1"].VoiceID != "v-male" || choices["S1"].Fallback {
		t.Fatalf("S1 = %+v", choices["S1"])
	}
	if choices["S2"].VoiceID != "v-female" || choices["S2"].Fallback {
		t.Fatalf("S2 = %+v", choices["S2"])
	}
}

func TestAssignFallsBackOnGenderMismatch(t *testing.T) {
	p := pool(config.Voice{ID: "v1", Gender: "female"})
	choices, err := voices.Assign([]string{"S1"}, map[string]string{"S1": "male"}, p)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if choices["S1"].VoiceID != "v1" || !choices["S1"].Fallback {
		t.Fatalf("S1 = %+v", choices["S1"])
	}
}

func TestAssignReusesPoolWhenExhausted(t *testing.T) {
	p := pool(
		config.Voice{ID: "v1", Gender: "female"},
		config.Voice{ID: "v2", Gender: "male"},
	)
	choices, err := voices.Assign(
		[]string{"S1", "S2", "S3", "S4"},
		map[string]string{},
		p,
	)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if choices["S3"].VoiceID != "v1" || !choices["S3"].Fallback {
		t.Fatalf("S3 = %+v", choices["S3"])
	}
	if choices["S4"].VoiceID != "v2" || !choices["S4"].Fallback {
		t.Fatalf("S4 = %+v", choices["S4"])
	}
}

func TestAssignDeterministic(t *testing.T) {
	p := pool(
		config.Voice{ID: "v1", Gender: "female"},
		config.Voice{ID: "v2", Gender: "male"},
		config.Voice{ID: "v3", Gender: "female"},
	)
	order := []string{"S1", "S2", "S3"}
	genders := map[string]string{"S1": "female", "S2": "male", "S3": "unknown"}

	a, err := voices.Assign(order, genders, p)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	b, err := voices.Assign(order, genders, p)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("assignment not deterministic")
	}
}

func TestAssignEmptyPool(t *testing.T) {
	_, err := voices.Assign([]string{"S1"}, nil, nil)
	if !errors.Is(err, voices.ErrNoVoices) {
		t.Fatalf("expected ErrNoVoices, got %v", err)
	}
}

func TestSpeakerOrder(t *testing.T) {
	segments := []segment.Segment{
		{SpeakerID: "S2"},
		{SpeakerID: "S1"},
		{SpeakerID: "S2"},
	}
	order := voices.SpeakerOrder(segments)
	if !reflect.DeepEqual(order, []string{"S2", "S1"}) {
		t.Fatalf("order = %v", order)
	}
}

func TestEstimateGender(t *testing.T) {
	const rate = 16000
	male := testsupport.ToneClip(120, 1.0, rate)
	if gender := voices.EstimateGender(male); gender != voices.GenderMale {
		t.Fatalf("120Hz gender = %q", gender)
	}
	female := testsupport.ToneClip(220, 1.0, rate)
	if gender := voices.EstimateGender(female); gender != voices.GenderFemale {
		t.Fatalf("220Hz gender = %q", gender)
	}
	silent := testsupport.ToneClip(220, 1.0, rate)
	for i := range silent.Samples {
		silent.Samples[i] = 0
	}
	if gender := voices.EstimateGender(silent); gender != voices.GenderUnknown {
		t.Fatalf("silence gender = %q", gender)
	}
}
