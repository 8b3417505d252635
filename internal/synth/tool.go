package synth

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"dubsmart/internal/config"
)

// Tool shells out to a generic TTS command:
//
//	<command> --voice <id> --language <lang> --output <wav> <text>
type Tool struct {
	cfg           config.Synthesizer
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewTool creates the generic TTS backend.
func NewTool(cfg config.Synthesizer) *Tool {
	return &Tool{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Tool) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	t.commandRunner = runner
}

func (t *Tool) Name() string { return "tts" }

func (t *Tool) Synthesize(ctx context.Context, req Request) error {
	if t.cfg.Command == "" {
		return fmt.Errorf("synth tool: no command configured")
	}
	args := []string{
		"--voice", req.VoiceID,
		"--language", req.Language,
		"--output", req.OutPath,
		req.Text,
	}
	return runSynthCommand(ctx, t.commandRunner, t.cfg.TimeoutSeconds, t.cfg.Command, args...)
}

// CloneTool shells out to a voice-cloning TTS command. When a reference clip
// is available it is passed so the tool can match the original speaker.
type CloneTool struct {
	cfg           config.Synthesizer
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewCloneTool creates the voice-cloning backend.
func NewCloneTool(cfg config.Synthesizer) *CloneTool {
	return &CloneTool{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *CloneTool) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	t.commandRunner = runner
}

func (t *CloneTool) Name() string { return "clone" }

func (t *CloneTool) Synthesize(ctx context.Context, req Request) error {
	if t.cfg.CloneCommand == "" {
		return fmt.Errorf("clone tool: no command configured")
	}
	args := []string{
		"--voice", req.VoiceID,
		"--language", req.Language,
		"--output", req.OutPath,
	}
	if req.ReferencePath != "" {
		args = append(args, "--reference", req.ReferencePath)
	}
	args = append(args, req.Text)
	return runSynthCommand(ctx, t.commandRunner, t.cfg.TimeoutSeconds, t.cfg.CloneCommand, args...)
}

func runSynthCommand(ctx context.Context, runner func(ctx context.Context, name string, args ...string) error, timeoutSeconds int, name string, args ...string) error {
	if timeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
		defer cancel()
	}
	if runner != nil {
		if err := runner(ctx, name, args...); err != nil {
			return err
		}
	} else {
		cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
		if output, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
		}
	}

	// The tool reported success; an absent or empty output file still counts
	// as a miss.
	outPath := ""
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "--output" {
			outPath = args[i+1]
			break
		}
	}
	if outPath != "" {
		info, err := os.Stat(outPath)
		if err != nil {
			return fmt.Errorf("%s: output not written: %w", name, err)
		}
		if info.Size() == 0 {
			return fmt.Errorf("%s: output file empty", name)
		}
	}
	return nil
}
