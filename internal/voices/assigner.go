// Package voices binds synthesis voices to detected speakers. Assignment is
// deterministic: speakers are processed in order of first appearance and the
// pool is consumed front to back, so identical inputs always produce the
// same casting.
package voices

import (
	"dubsmart/internal/config"
	"dubsmart/internal/media/audio"
	"dubsmart/internal/queue"
	"dubsmart/internal/segment"
	"dubsmart/internal/services"

	"github.com/samber/lo"
)

// ErrNoVoices signals an empty voice pool for the target language.
var ErrNoVoices = services.NewCoded("no_voices", "no voices configured for target language")

// GenderUnknown is recorded when pitch analysis finds no usable signal.
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderUnknown = "unknown"
)

// pitchGenderSplit is the fundamental-frequency boundary between typical
// male and female speech.
const pitchGenderSplit = 165.0

// EstimateGender classifies a speaker's voice from a clip of their speech.
func EstimateGender(clip *audio.Clip) string {
	pitch := audio.EstimatePitch(clip)
	switch {
	case pitch == 0:
		return GenderUnknown
	case pitch < pitchGenderSplit:
		return GenderMale
	default:
		return GenderFemale
	}
}

// SpeakerOrder returns speaker ids in order of first appearance.
func SpeakerOrder(segments []segment.Segment) []string {
	return lo.Uniq(lo.Map(segments, func(seg segment.Segment, _ int) string {
		return seg.SpeakerID
	}))
}

// Assign picks one voice per speaker. Preference order per speaker: first
// unused pool voice matching the estimated gender, then first unused voice of
// any gender, then round-robin reuse from the pool's start. Reuse and gender
// mismatches are flagged as fallback choices.
func Assign(order []string, genders map[string]string, pool []config.Voice) (map[string]queue.VoiceChoice, error) {
	if len(pool) == 0 {
		return nil, ErrNoVoices
	}

	used := make(map[int]bool, len(pool))
	choices := make(map[string]queue.VoiceChoice, len(order))
	reused := 0

	for _, speaker := range order {
		gender := genders[speaker]

		idx := -1
		if gender == GenderMale || gender == GenderFemale {
			for i, voice := range pool {
				if !used[i] && voice.Gender == gender {
					idx = i
					break
				}
			}
		}
		fallback := false
		if idx < 0 {
			for i := range pool {
				if !used[i] {
					idx = i
					fallback = gender == GenderMale || gender == GenderFemale
					break
				}
			}
		}
		if idx < 0 {
			idx = reused % len(pool)
			reused++
			fallback = true
		}

		used[idx] = true
		choices[speaker] = queue.VoiceChoice{
			VoiceID:  pool[idx].ID,
			Gender:   gender,
			Fallback: fallback,
		}
	}
	return choices, nil
}
