package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dubsmart/internal/api"
	"dubsmart/internal/queue"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var sourceLang string
	var targetLang string
	var preserveBackground bool

	cmd := &cobra.Command{
		Use:   "submit <audio.wav>",
		Short: "Queue an audio file for dubbing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			input, err := filepath.Abs(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve input path: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open job store: %w", err)
			}
			defer store.Close()

			svc := api.NewService(cfg, store)
			jobUUID, err := svc.Submit(cmd.Context(), api.SubmitRequest{
				InputPath:          input,
				SourceLanguage:     sourceLang,
				TargetLanguage:     targetLang,
				PreserveBackground: preserveBackground,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Queued job %s\n", jobUUID)
			fmt.Fprintf(out, "Track progress with: dubsmart status %s\n", jobUUID)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceLang, "source", "", "Source language code (omit or \"auto\" to detect)")
	cmd.Flags().StringVar(&targetLang, "target", "", "Target language code (defaults to languages.default_target)")
	cmd.Flags().BoolVar(&preserveBackground, "preserve-background", false, "Layer dubbed speech over the original track")
	return cmd
}
