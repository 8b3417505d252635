package segment

import (
	"encoding/json"
	"fmt"
)

// Segment is one speaker-attributed time interval with text and audio
// artifacts. Start and End are offsets in seconds on the original track's
// timeline. Audio artifacts are stored as file paths under the job's staging
// directory so the queue row stays small and human-readable.
type Segment struct {
	SpeakerID      string  `json:"speaker_id"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	SourceText     string  `json:"source_text"`
	TranslatedText string  `json:"translated_text,omitempty"`
	VoiceID        string  `json:"voice_id,omitempty"`

	SynthesizedPath string `json:"synthesized_path,omitempty"`
	AlignedPath     string `json:"aligned_path,omitempty"`

	// TranslationMissed marks a segment that kept its source text after a
	// translation failure. SynthesisMissed marks a segment rendered as
	// silence after a synthesis failure. Both are degradable conditions.
	TranslationMissed bool `json:"translation_missed,omitempty"`
	SynthesisMissed   bool `json:"synthesis_missed,omitempty"`
}

// TargetSeconds returns the duration envelope synthesized audio must fit.
func (s Segment) TargetSeconds() float64 {
	return s.End - s.Start
}

// SpeechText returns the text to synthesize: the translation when available,
// else the source text.
func (s Segment) SpeechText() string {
	if s.TranslatedText != "" {
		return s.TranslatedText
	}
	return s.SourceText
}

// EncodeList serializes segments for queue persistence.
func EncodeList(segments []Segment) (string, error) {
	data, err := json.MarshalIndent(segments, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode segments: %w", err)
	}
	return string(data), nil
}

// DecodeList parses a persisted segment list. An empty payload decodes to nil.
func DecodeList(payload string) ([]Segment, error) {
	if payload == "" {
		return nil, nil
	}
	var segments []Segment
	if err := json.Unmarshal([]byte(payload), &segments); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	return segments, nil
}

// SpeakerTurn is a raw diarization span: who spoke between two offsets.
type SpeakerTurn struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// TextSpan is a raw ASR span: what was said between two offsets.
type TextSpan struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}
