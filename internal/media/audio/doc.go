// Package audio provides the mono PCM clip type shared across the pipeline,
// WAV decode/encode backed by go-audio, and the signal helpers (windowed
// energy, trailing-silence measurement, pitch estimation) used by the energy
// diarizer, the timing aligner, and voice assignment.
package audio
