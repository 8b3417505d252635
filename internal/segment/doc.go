// Package segment defines the speaker-attributed utterance entity at the
// center of the dubbing pipeline and the merger that reconciles diarization
// turns with ASR spans into an ordered, per-speaker non-overlapping sequence.
package segment
