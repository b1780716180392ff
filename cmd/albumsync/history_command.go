package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"albumsync/internal/runlog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage recorded sync runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

type historyEntry struct {
	RunID      string  `json:"run_id"`
	StartedAt  string  `json:"started_at"`
	FinishedAt string  `json:"finished_at"`
	Status     string  `json:"status"`
	Mode       string  `json:"mode"`
	DryRun     bool    `json:"dry_run"`
	Bins       int     `json:"bins"`
	Created    int     `json:"created"`
	Updated    int     `json:"updated"`
	Skipped    int     `json:"skipped"`
	Failed     int     `json:"failed"`
	Added      int     `json:"assets_added"`
	Removed    int     `json:"assets_removed"`
	Seconds    float64 `json:"duration_seconds"`
	Error      string  `json:"error,omitempty"`
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent sync runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				entries := make([]historyEntry, 0, len(runs))
				for _, run := range runs {
					entries = append(entries, historyEntry{
						RunID:      run.RunID,
						StartedAt:  run.StartedAt.UTC().Format(time.RFC3339),
						FinishedAt: run.FinishedAt.UTC().Format(time.RFC3339),
						Status:     string(run.Status),
						Mode:       run.Mode,
						DryRun:     run.DryRun,
						Bins:       run.BinsTotal,
						Created:    run.Created,
						Updated:    run.Updated,
						Skipped:    run.Skipped,
						Failed:     run.Failed,
						Added:      run.AssetsAdded,
						Removed:    run.AssetsRemoved,
						Seconds:    run.Duration().Seconds(),
						Error:      run.ErrorMessage,
					})
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No sync runs recorded")
				return nil
			}

			const stampLayout = "2006-01-02 15:04"
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.StartedAt.Local().Format(stampLayout),
					string(run.Status),
					run.Mode,
					yesNo(run.DryRun),
					strconv.Itoa(run.BinsTotal),
					strconv.Itoa(run.Created),
					strconv.Itoa(run.Updated),
					strconv.Itoa(run.Failed),
					run.Duration().Round(time.Second).String(),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Status", "Mode", "Dry", "Bins", "Created", "Updated", "Failed", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all recorded sync runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"removed": removed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run records\n", removed)
			return nil
		},
	}
}

func openHistory(ctx *commandContext) (*runlog.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := runlog.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	if !store.Enabled() {
		store.Close()
		return nil, errors.New("run history is disabled (set history.enabled = true)")
	}
	return store, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
