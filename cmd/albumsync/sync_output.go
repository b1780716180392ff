package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"albumsync/internal/reconcile"
	"albumsync/internal/workflow"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func printSyncResult(cmd *cobra.Command, result *workflow.Result) {
	out := cmd.OutOrStdout()
	summary := result.Summary
	colorize := shouldColorize(out)

	if len(summary.Outcomes) == 0 {
		fmt.Fprintln(out, "No albums to sync")
		return
	}

	rows := make([][]string, 0, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		rows = append(rows, []string{
			outcome.Label,
			actionCell(outcome.Action, colorize),
			strconv.Itoa(outcome.Added),
			strconv.Itoa(outcome.Removed),
			outcome.Detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Album", "Action", "Added", "Removed", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))

	line := fmt.Sprintf("%d created, %d updated, %d skipped, %d failed in %s",
		summary.Created, summary.Updated, summary.Skipped, summary.Failed,
		result.Duration.Round(time.Millisecond))
	if result.DryRun {
		line = "Dry-run: " + line + " (nothing was changed)"
	}
	fmt.Fprintln(out, line)
}

func actionCell(action reconcile.Action, colorize bool) string {
	if !colorize {
		return string(action)
	}
	color := ""
	switch action {
	case reconcile.ActionCreated:
		color = ansiGreen
	case reconcile.ActionUpdated:
		color = ansiBlue
	case reconcile.ActionSkipped:
		color = ansiYellow
	case reconcile.ActionFailed:
		color = ansiRed
	}
	if color == "" {
		return string(action)
	}
	return color + string(action) + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type syncReport struct {
	RunID   string            `json:"run_id"`
	Mode    string            `json:"mode"`
	DryRun  bool              `json:"dry_run"`
	Albums  []syncReportAlbum `json:"albums"`
	Created int               `json:"created"`
	Updated int               `json:"updated"`
	Skipped int               `json:"skipped"`
	Failed  int               `json:"failed"`
	Added   int               `json:"assets_added"`
	Removed int               `json:"assets_removed"`
	Seconds float64           `json:"duration_seconds"`
}

type syncReportAlbum struct {
	Bin     string `json:"bin"`
	Album   string `json:"album"`
	AlbumID string `json:"album_id,omitempty"`
	Action  string `json:"action"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
	Detail  string `json:"detail,omitempty"`
}

func newSyncReport(result *workflow.Result) syncReport {
	summary := result.Summary
	report := syncReport{
		RunID:   result.RunID,
		Mode:    string(result.Mode),
		DryRun:  result.DryRun,
		Albums:  make([]syncReportAlbum, 0, len(summary.Outcomes)),
		Created: summary.Created,
		Updated: summary.Updated,
		Skipped: summary.Skipped,
		Failed:  summary.Failed,
		Added:   summary.AssetsAdded,
		Removed: summary.AssetsRemoved,
		Seconds: result.Duration.Seconds(),
	}
	for _, outcome := range summary.Outcomes {
		report.Albums = append(report.Albums, syncReportAlbum{
			Bin:     outcome.Bin,
			Album:   outcome.Label,
			AlbumID: outcome.AlbumID,
			Action:  string(outcome.Action),
			Added:   outcome.Added,
			Removed: outcome.Removed,
			Detail:  outcome.Detail,
		})
	}
	return report
}
