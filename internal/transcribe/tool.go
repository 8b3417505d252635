package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"dubsmart/internal/config"
	"dubsmart/internal/segment"
)

// Tool shells out to a whisper-style ASR command. The command writes a JSON
// object {"language": "...", "segments": [{"text","start","end"}]} to stdout.
type Tool struct {
	cfg           config.Transcriber
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewTool creates the external ASR backend.
func NewTool(cfg config.Transcriber) *Tool {
	return &Tool{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Tool) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	t.commandRunner = runner
}

func (t *Tool) Transcribe(ctx context.Context, wavPath, languageHint string) (Result, error) {
	if t.cfg.Command == "" {
		return Result{}, fmt.Errorf("transcriber: no command configured")
	}
	if timeout := t.cfg.TimeoutSeconds; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	args := t.buildArgs(wavPath, languageHint)
	output, err := t.run(ctx, t.cfg.Command, args...)
	if err != nil {
		return Result{}, fmt.Errorf("transcriber: %w", err)
	}
	return parseResult(output)
}

func (t *Tool) buildArgs(wavPath, languageHint string) []string {
	args := make([]string, 0, 6)
	if t.cfg.Model != "" {
		args = append(args, "--model", t.cfg.Model)
	}
	if lang := strings.TrimSpace(languageHint); lang != "" {
		args = append(args, "--language", lang)
	}
	args = append(args, "--output-format", "json", wavPath)
	return args
}

func (t *Tool) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if t.commandRunner != nil {
		return t.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return output, nil
}

type toolPayload struct {
	Language string `json:"language"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}

func parseResult(payload []byte) (Result, error) {
	var parsed toolPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return Result{}, fmt.Errorf("parse transcriber output: %w", err)
	}
	result := Result{Language: strings.ToLower(strings.TrimSpace(parsed.Language))}
	for _, seg := range parsed.Segments {
		if seg.End <= seg.Start {
			continue
		}
		result.Spans = append(result.Spans, segment.TextSpan{
			Text:  strings.TrimSpace(seg.Text),
			Start: seg.Start,
			End:   seg.End,
		})
	}
	sort.SliceStable(result.Spans, func(i, j int) bool { return result.Spans[i].Start < result.Spans[j].Start })
	return result, nil
}
