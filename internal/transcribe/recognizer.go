// Package transcribe wraps the speech recognizer that produces timed text
// spans and, when the job did not declare a source language, the detected
// language for the whole track.
package transcribe

import (
	"context"

	"dubsmart/internal/segment"
)

// Result is the recognizer output for one track.
type Result struct {
	// Language is the ISO code the recognizer detected (or echoed back from
	// the hint). Detected once per job, never per segment.
	Language string
	Spans    []segment.TextSpan
}

// Recognizer transcribes a staged mono WAV file. languageHint may be empty,
// in which case the recognizer detects the language itself.
type Recognizer interface {
	Transcribe(ctx context.Context, wavPath, languageHint string) (Result, error)
}
