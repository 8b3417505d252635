package transcribe

import (
	"encoding/json"
	"fmt"
	"os"

	"dubsmart/internal/segment"
)

type spansArtifact struct {
	Language string             `json:"language"`
	Spans    []segment.TextSpan `json:"spans"`
}

// WriteSpans persists ASR output for the merge stage.
func WriteSpans(path, language string, spans []segment.TextSpan) error {
	data, err := json.MarshalIndent(spansArtifact{Language: language, Spans: spans}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode spans: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write spans: %w", err)
	}
	return nil
}

// ReadSpans loads persisted ASR output.
func ReadSpans(path string) (string, []segment.TextSpan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read spans: %w", err)
	}
	var artifact spansArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return "", nil, fmt.Errorf("decode spans: %w", err)
	}
	return artifact.Language, artifact.Spans, nil
}
