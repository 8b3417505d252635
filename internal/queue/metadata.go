package queue

import (
	"encoding/json"
	"fmt"
)

// VoiceChoice records the voice bound to one speaker, including whether the
// binding came from the configured pool or a fallback substitution.
type VoiceChoice struct {
	VoiceID  string `json:"voice_id"`
	Gender   string `json:"gender,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Metadata accumulates per-job facts discovered while the pipeline runs.
// It is persisted as JSON on the job row so the status API can surface it
// without joining extra tables.
type Metadata struct {
	DetectedLanguage string                 `json:"detected_language,omitempty"`
	SpeakerCount     int                    `json:"speaker_count,omitempty"`
	SegmentCount     int                    `json:"segment_count,omitempty"`
	Voices           map[string]VoiceChoice `json:"voices,omitempty"`
	TranslationMiss  int                    `json:"translation_miss,omitempty"`
	SynthesisMiss    int                    `json:"synthesis_miss,omitempty"`
	Warnings         []string               `json:"warnings,omitempty"`
	DiarizerUsed     string                 `json:"diarizer_used,omitempty"`
	TrackSeconds     float64                `json:"track_seconds,omitempty"`
}

// AddWarning appends a human-readable degradation note.
func (m *Metadata) AddWarning(format string, args ...any) {
	m.Warnings = append(m.Warnings, fmt.Sprintf(format, args...))
}

// SetVoice records the voice chosen for a speaker.
func (m *Metadata) SetVoice(speakerID string, choice VoiceChoice) {
	if m.Voices == nil {
		m.Voices = make(map[string]VoiceChoice)
	}
	m.Voices[speakerID] = choice
}

// LoadMetadata decodes the job's metadata payload. A missing payload yields an
// empty Metadata value, never an error.
func (j *Job) LoadMetadata() (*Metadata, error) {
	meta := &Metadata{}
	if j.MetadataJSON == "" {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(j.MetadataJSON), meta); err != nil {
		return nil, fmt.Errorf("decode job metadata: %w", err)
	}
	return meta, nil
}

// SaveMetadata encodes metadata back onto the job row.
func (j *Job) SaveMetadata(meta *Metadata) error {
	if meta == nil {
		j.MetadataJSON = ""
		return nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode job metadata: %w", err)
	}
	j.MetadataJSON = string(data)
	return nil
}
