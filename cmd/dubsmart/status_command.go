package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dubsmart/internal/api"
	"dubsmart/internal/language"
	"dubsmart/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status [job-uuid]",
		Short: "Show job status (all jobs when no uuid is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open job store: %w", err)
			}
			defer store.Close()
			svc := api.NewService(cfg, store)

			if len(args) == 1 {
				view, err := svc.Poll(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, view)
				}
				renderJobDetail(cmd, view)
				return nil
			}

			views, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, api.ListResponse{Jobs: views})
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}
			renderJobTable(cmd, views)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func renderJobTable(cmd *cobra.Command, views []api.JobView) {
	rows := make([][]string, 0, len(views))
	for _, view := range views {
		progress := fmt.Sprintf("%3.0f%%", view.Progress.Percent)
		detail := view.Progress.Message
		if view.Status == string(queue.StatusFailed) && view.ErrorMessage != "" {
			detail = view.ErrorMessage
			if view.ReasonCode != "" {
				detail = fmt.Sprintf("%s (%s)", detail, view.ReasonCode)
			}
		}
		rows = append(rows, []string{
			view.UUID,
			view.TargetLanguage,
			view.Status,
			progress,
			detail,
		})
	}
	out := renderTable(
		[]string{"UUID", "Target", "Status", "Progress", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
	fmt.Fprintln(cmd.OutOrStdout(), out)
}

func renderJobDetail(cmd *cobra.Command, view api.JobView) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintf(out, "Job %s\n", view.UUID)
	fmt.Fprintf(out, "  Input:    %s\n", view.InputPath)
	target := language.DisplayName(view.TargetLanguage)
	languages := target
	if view.SourceLanguage != "" {
		languages = fmt.Sprintf("%s -> %s", language.DisplayName(view.SourceLanguage), target)
	} else if meta := view.Metadata; meta != nil && meta.DetectedLanguage != "" {
		languages = fmt.Sprintf("%s (detected) -> %s", language.DisplayName(meta.DetectedLanguage), target)
	}
	fmt.Fprintf(out, "  Language: %s\n", languages)
	fmt.Fprintln(out, renderStatusLine("Status", statusKindForJob(view), statusDetail(view), colorize))
	fmt.Fprintf(out, "  Progress: %.0f%% %s\n", view.Progress.Percent, view.Progress.Message)

	if meta := view.Metadata; meta != nil {
		if meta.SpeakerCount > 0 {
			fmt.Fprintf(out, "  Speakers: %d across %d segments\n", meta.SpeakerCount, meta.SegmentCount)
		}
		for speaker, voice := range meta.Voices {
			note := ""
			if voice.Fallback {
				note = " (fallback)"
			}
			fmt.Fprintf(out, "    %s: %s %s%s\n", speaker, voice.VoiceID, voice.Gender, note)
		}
		for _, warning := range meta.Warnings {
			fmt.Fprintln(out, renderStatusLine("Warning", statusWarn, warning, colorize))
		}
	}
	if view.OutputPath != "" {
		fmt.Fprintf(out, "  Output:   %s\n", view.OutputPath)
	}
}

func statusKindForJob(view api.JobView) statusKind {
	switch view.Status {
	case string(queue.StatusCompleted):
		return statusOK
	case string(queue.StatusFailed):
		return statusError
	default:
		return statusInfo
	}
}

func statusDetail(view api.JobView) string {
	if view.Status == string(queue.StatusFailed) {
		detail := view.ErrorMessage
		if view.ReasonCode != "" {
			detail = strings.TrimSpace(fmt.Sprintf("%s [%s]", detail, view.ReasonCode))
		}
		return detail
	}
	return view.Status
}
