package api

import (
	"dubsmart/internal/queue"
)

// FromJob converts a queue row into its API view.
func FromJob(job *queue.Job) JobView {
	if job == nil {
		return JobView{}
	}
	view := JobView{
		ID:             job.ID,
		UUID:           job.UUID,
		InputPath:      job.InputPath,
		SourceLanguage: job.SourceLanguage,
		TargetLanguage: job.TargetLanguage,
		Status:         string(job.Status),
		Progress: JobProgress{
			Stage:   job.ProgressStage,
			Percent: job.ProgressPercent,
			Message: job.ProgressMessage,
		},
		ErrorMessage:       job.ErrorMessage,
		ReasonCode:         job.ReasonCode,
		PreserveBackground: job.PreserveBackground,
	}
	if !job.CreatedAt.IsZero() {
		view.CreatedAt = job.CreatedAt.Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		view.UpdatedAt = job.UpdatedAt.Format(dateTimeFormat)
	}
	// The output path is only advertised once the job finished; intermediate
	// artifacts are never exposed as results.
	if job.Status == queue.StatusCompleted {
		view.OutputPath = job.OutputPath
	}
	if meta, err := job.LoadMetadata(); err == nil {
		view.Metadata = fromMetadata(meta)
	}
	return view
}

// FromJobs converts a queue listing.
func FromJobs(jobs []*queue.Job) []JobView {
	if len(jobs) == 0 {
		return nil
	}
	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, FromJob(job))
	}
	return views
}

func fromMetadata(meta *queue.Metadata) *JobMeta {
	if meta == nil {
		return nil
	}
	empty := meta.DetectedLanguage == "" && meta.SpeakerCount == 0 && meta.SegmentCount == 0 &&
		len(meta.Voices) == 0 && meta.TranslationMiss == 0 && meta.SynthesisMiss == 0 &&
		len(meta.Warnings) == 0 && meta.DiarizerUsed == "" && meta.TrackSeconds == 0
	if empty {
		return nil
	}
	view := &JobMeta{
		DetectedLanguage: meta.DetectedLanguage,
		SpeakerCount:     meta.SpeakerCount,
		SegmentCount:     meta.SegmentCount,
		TranslationMiss:  meta.TranslationMiss,
		SynthesisMiss:    meta.SynthesisMiss,
		Warnings:         meta.Warnings,
		DiarizerUsed:     meta.DiarizerUsed,
		TrackSeconds:     meta.TrackSeconds,
	}
	if len(meta.Voices) > 0 {
		view.Voices = make(map[string]VoiceView, len(meta.Voices))
		for speaker, choice := range meta.Voices {
			view.Voices[speaker] = VoiceView{
				VoiceID:  choice.VoiceID,
				Gender:   choice.Gender,
				Fallback: choice.Fallback,
			}
		}
	}
	return view
}

// MergeStats normalizes queue stats into string keys including zero rows for
// pending/failed/completed so dashboards always see the core states.
func MergeStats(stats map[queue.Status]int) map[string]int {
	merged := map[string]int{
		string(queue.StatusPending):   0,
		string(queue.StatusCompleted): 0,
		string(queue.StatusFailed):    0,
	}
	for status, count := range stats {
		merged[string(status)] = count
	}
	return merged
}
