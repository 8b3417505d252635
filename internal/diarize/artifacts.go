package diarize

import (
	"encoding/json"
	"fmt"
	"os"

	"dubsmart/internal/segment"
)

// WriteTurns persists raw diarization turns for the merge stage.
func WriteTurns(path string, turns []segment.SpeakerTurn) error {
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("encode turns: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write turns: %w", err)
	}
	return nil
}

// ReadTurns loads persisted diarization turns. A missing file yields nil
// turns so the merger can apply its synthetic-speaker fallback.
func ReadTurns(path string) ([]segment.SpeakerTurn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read turns: %w", err)
	}
	var turns []segment.SpeakerTurn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("decode turns: %w", err)
	}
	return turns, nil
}
