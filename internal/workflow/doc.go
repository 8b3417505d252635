// Package workflow drives queued dubbing jobs through the pipeline.
//
// The manager polls the queue for jobs in a ready status, claims the next
// one, and runs the stage registered for that status: preprocess, diarize,
// transcribe, merge, translate, voice, synthesize, align, mix, export. Each
// stage transition is persisted before and after execution, a heartbeat
// loop marks the job as live while a stage runs, and stale jobs left behind
// by a crashed worker are reclaimed to their last completed status.
//
// The manager is the sole decision point for degrade-versus-fail: stage
// handlers surface typed errors and the manager records the terminal
// failure with its reason code.
package workflow
