package diarize

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

// Tool shells out to an external diarization command. The command receives
// the WAV path as its only argument and writes a JSON array of
// {"speaker","start","end"} objects to stdout.
type Tool struct {
	cfg           config.Diarizer
	commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewTool creates the external diarization backend.
func NewTool(cfg config.Diarizer) *Tool {
	return &Tool{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Tool) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	t.commandRunner = runner
}

func (t *Tool) Name() string { return "tool" }

func (t *Tool) DetectSpeakers(ctx context.Context, wavPath string) ([]segment.SpeakerTurn, error) {
	if t.cfg.Command == "" {
		return nil, fmt.Errorf("diarize tool: no command configured")
	}
	if timeout := t.cfg.TimeoutSeconds; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	output, err := t.run(ctx, t.cfg.Command, wavPath)
	if err != nil {
		return nil, fmt.Errorf("diarize tool: %w", err)
	}
	return parseTurns(output)
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

func parseTurns(payload []byte) ([]segment.SpeakerTurn, error) {
	var turns []segment.SpeakerTurn
	if err := json.Unmarshal(payload, &turns); err != nil {
		return nil, fmt.Errorf("parse diarization output: %w", err)
	}
	out := turns[:0]
	for _, turn := range turns {
		if turn.End <= turn.Start || strings.TrimSpace(turn.Speaker) == "" {
			continue
		}
		out = append(out, turn)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}
