package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// JobView describes a dubbing job in a transport-friendly format.
type JobView struct {
	ID                 int64       `json:"id"`
	UUID               string      `json:"uuid"`
	InputPath          string      `json:"inputPath"`
	SourceLanguage     string      `json:"sourceLanguage,omitempty"`
	TargetLanguage     string      `json:"targetLanguage"`
	Status             string      `json:"status"`
	Progress           JobProgress `json:"progress"`
	ErrorMessage       string      `json:"errorMessage,omitempty"`
	ReasonCode         string      `json:"reasonCode,omitempty"`
	Metadata           *JobMeta    `json:"metadata,omitempty"`
	OutputPath         string      `json:"outputPath,omitempty"`
	PreserveBackground bool        `json:"preserveBackground,omitempty"`
	CreatedAt          string      `json:"createdAt,omitempty"`
	UpdatedAt          string      `json:"updatedAt,omitempty"`
}

// JobProgress captures stage progress information for a job.
type JobProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// JobMeta mirrors the pipeline metadata recorded on the job row.
type JobMeta struct {
	DetectedLanguage string               `json:"detectedLanguage,omitempty"`
	SpeakerCount     int                  `json:"speakerCount,omitempty"`
	SegmentCount     int                  `json:"segmentCount,omitempty"`
	Voices           map[string]VoiceView `json:"voices,omitempty"`
	TranslationMiss  int                  `json:"translationMiss,omitempty"`
	SynthesisMiss    int                  `json:"synthesisMiss,omitempty"`
	Warnings         []string             `json:"warnings,omitempty"`
	DiarizerUsed     string               `json:"diarizerUsed,omitempty"`
	TrackSeconds     float64              `json:"trackSeconds,omitempty"`
}

// VoiceView is the per-speaker voice assignment.
type VoiceView struct {
	VoiceID  string `json:"voiceId"`
	Gender   string `json:"gender,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}

// ListResponse wraps a collection of jobs.
type ListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// StatsResponse provides queue counts keyed by status.
type StatsResponse struct {
	Counts map[string]int `json:"counts"`
}
