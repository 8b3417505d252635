package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a dubbing job.
type Status string

const (
	StatusPending       Status = "pending"
	StatusPreprocessing Status = "preprocessing"
	StatusPreprocessed  Status = "preprocessed"
	StatusDiarizing     Status = "diarizing"
	StatusDiarized      Status = "diarized"
	StatusTranscribing  Status = "transcribing"
	StatusTranscribed   Status = "transcribed"
	StatusMerging       Status = "merging"
	StatusMerged        Status = "merged"
	StatusTranslating   Status = "translating"
	StatusTranslated    Status = "translated"
	StatusVoicing       Status = "voicing"
	StatusVoiced        Status = "voiced"
	StatusSynthesizing  Status = "synthesizing"
	StatusSynthesized   Status = "synthesized"
	StatusAligning      Status = "aligning"
	StatusAligned       Status = "aligned"
	StatusMixing        Status = "mixing"
	StatusMixed         Status = "mixed"
	StatusExporting     Status = "exporting"
	StatusCompleted     Status = "completed"
	StatusFailed        Status = "failed"
)

// WorkerStopReason is the error message set on jobs failed by worker shutdown.
const WorkerStopReason = "Worker stopped"

var allStatuses = []Status{
	StatusPending,
	StatusPreprocessing,
	StatusPreprocessed,
	StatusDiarizing,
	StatusDiarized,
	StatusTranscribing,
	StatusTranscribed,
	StatusMerging,
	StatusMerged,
	StatusTranslating,
	StatusTranslated,
	StatusVoicing,
	StatusVoiced,
	StatusSynthesizing,
	StatusSynthesized,
	StatusAligning,
	StatusAligned,
	StatusMixing,
	StatusMixed,
	StatusExporting,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusPreprocessing: {},
	StatusDiarizing:     {},
	StatusTranscribing:  {},
	StatusMerging:       {},
	StatusTranslating:   {},
	StatusVoicing:       {},
	StatusSynthesizing:  {},
	StatusAligning:      {},
	StatusMixing:        {},
	StatusExporting:     {},
}

// resumeStatus maps an in-flight status back to the last completed status so
// interrupted jobs resume at the stage that was running, not from scratch.
var resumeStatus = map[Status]Status{
	StatusPreprocessing: StatusPending,
	StatusDiarizing:     StatusPreprocessed,
	StatusTranscribing:  StatusDiarized,
	StatusMerging:       StatusTranscribed,
	StatusTranslating:   StatusMerged,
	StatusVoicing:       StatusTranslated,
	StatusSynthesizing:  StatusVoiced,
	StatusAligning:      StatusSynthesized,
	StatusMixing:        StatusAligned,
	StatusExporting:     StatusMixed,
}

// ResumeStatus returns the status an interrupted job should be reset to.
func ResumeStatus(status Status) (Status, bool) {
	prev, ok := resumeStatus[status]
	return prev, ok
}

// Job represents a dubbing job persisted in SQLite.
type Job struct {
	ID              int64
	UUID            string
	InputPath       string
	SourceLanguage  string
	TargetLanguage  string
	Status          Status
	ErrorMessage    string
	ReasonCode      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	MetadataJSON    string
	SegmentsJSON    string
	OutputPath      string
	LastHeartbeat   *time.Time

	// PreserveBackground layers the dubbed speech over the original track.
	PreserveBackground bool
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (j Job) IsProcessing() bool {
	return IsProcessingStatus(j.Status)
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether a status ends the job.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// InitProgress resets progress fields for a new stage. ProgressMessage is set
// to message, ProgressPercent is reset to 0, and ErrorMessage is cleared.
func (j *Job) InitProgress(stage, message string) {
	if j.ProgressStage == "" {
		j.ProgressStage = stage
	}
	j.ProgressMessage = message
	j.ProgressPercent = 0
	j.ErrorMessage = ""
}

// SetProgress updates all three progress fields atomically.
func (j *Job) SetProgress(stage, message string, percent float64) {
	j.ProgressStage = stage
	j.ProgressMessage = message
	j.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (j *Job) SetProgressComplete(stage, message string) {
	j.SetProgress(stage, message, 100)
}

// SetFailed marks the job as failed with the given message and reason code.
func (j *Job) SetFailed(message, reason string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ReasonCode = reason
	j.ProgressPercent = 0
	j.ProgressMessage = message
	j.LastHeartbeat = nil
	j.ProgressStage = "Failed"
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}
