package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"albumsync/internal/classify"
	"albumsync/internal/logging"
	"albumsync/internal/mapstore"
	"albumsync/internal/reconcile"
	"albumsync/internal/runlog"
	"albumsync/internal/services"
	"albumsync/internal/services/immich"
)

// Result summarizes a completed sync pass.
type Result struct {
	RunID    string
	Mode     classify.Mode
	Summary  *reconcile.Summary
	Mapping  map[string]string
	Duration time.Duration
	DryRun   bool
}

// Run executes one sync pass. The mapping file is loaded before any server
// traffic so a corrupt or unreadable mapping aborts the pass early, and it is
// saved again only after reconciliation finishes. Failures on individual
// albums are collected in the summary rather than aborting the pass.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	mode := classify.ParseMode(opts.FolderLayout)
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithLayoutMode(ctx, string(mode))
	logger := logging.WithContext(ctx, r.logger)

	started := time.Now()
	record := &runlog.Run{
		RunID:     runID,
		StartedAt: started.UTC(),
		Mode:      tableForMode(mode),
		DryRun:    opts.DryRun,
	}

	logger.Info("starting album sync",
		logging.Bool("dry_run", opts.DryRun),
		logging.Bool("clean_update", opts.CleanUpdate),
		logging.Bool("skip_existing", opts.SkipExisting),
		logging.String("mapping", r.store.Path()))

	var prior map[string]string
	if r.store.Active() {
		if err := r.store.Load(); err != nil {
			return nil, r.abort(ctx, logger, record, "load mapping", err)
		}
		prior = r.store.Table(tableForMode(mode))
	}

	libraries, err := r.svc.Libraries(ctx)
	if err != nil {
		return nil, r.abort(ctx, logger, record, "fetch libraries", err)
	}
	filter, libraryNames, err := resolveLibraries(libraries, opts.Libraries)
	if err != nil {
		return nil, r.abort(ctx, logger, record, "resolve libraries", err)
	}
	albums, err := r.svc.Albums(ctx)
	if err != nil {
		return nil, r.abort(ctx, logger, record, "fetch albums", err)
	}
	assets, err := r.svc.Assets(ctx)
	if err != nil {
		return nil, r.abort(ctx, logger, record, "fetch assets", err)
	}

	bins := classify.Partition(assets, filter, classify.NewSkipSet(opts.SkipPaths), mode, libraryNames)
	logger.Info("classified assets",
		logging.Int("assets", len(assets)),
		logging.Int("libraries", len(filter)),
		logging.Int("bins", len(bins)))

	rec := reconcile.New(r.svc, r.logger, reconcile.Options{
		CleanUpdate:  opts.CleanUpdate,
		SkipExisting: opts.SkipExisting,
		DryRun:       opts.DryRun,
		Persisted:    r.store.Active(),
	})
	summary, table := rec.Run(ctx, bins, prior, albums)

	record.BinsTotal = len(bins)
	record.Created = summary.Created
	record.Updated = summary.Updated
	record.Skipped = summary.Skipped
	record.Failed = summary.Failed
	record.AssetsAdded = summary.AssetsAdded
	record.AssetsRemoved = summary.AssetsRemoved

	if r.store.Active() && !opts.DryRun {
		if err := r.store.SaveTable(tableForMode(mode), table); err != nil {
			return nil, r.abort(ctx, logger, record, "save mapping", err)
		}
	}

	finished := time.Now()
	record.FinishedAt = finished.UTC()
	record.Status = runlog.StatusCompleted
	if summary.HasFailures() {
		record.Status = runlog.StatusPartial
	}
	r.recordRun(ctx, logger, record)

	if r.notifier != nil && !opts.DryRun {
		if err := r.notifier.NotifySyncCompleted(ctx, summary.Created, summary.Updated, summary.Skipped, summary.Failed, finished.Sub(started)); err != nil {
			r.logNotifyFailure(ctx, logger, err)
		}
	}

	logger.Info("album sync finished",
		logging.String("status", string(record.Status)),
		logging.Int("created", summary.Created),
		logging.Int("updated", summary.Updated),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", finished.Sub(started)))

	result := &Result{
		RunID:    runID,
		Mode:     mode,
		Summary:  summary,
		Duration: finished.Sub(started),
		DryRun:   opts.DryRun,
	}
	if r.store.Active() {
		result.Mapping = table
	}
	return result, nil
}

// abort finishes the run record for a failure that stopped the pass, then
// notifies and returns the wrapped error.
func (r *Runner) abort(ctx context.Context, logger *slog.Logger, record *runlog.Run, stage string, err error) error {
	record.FinishedAt = time.Now().UTC()
	record.Status = runlog.StatusFailed
	record.ErrorMessage = fmt.Sprintf("%s: %v", stage, err)
	r.recordRun(ctx, logger, record)

	if r.notifier != nil && !record.DryRun {
		if nerr := r.notifier.NotifySyncFailed(ctx, err, stage); nerr != nil {
			r.logNotifyFailure(ctx, logger, nerr)
		}
	}

	logger.Error("album sync failed",
		logging.String("stage", stage),
		logging.Error(err))
	return fmt.Errorf("%s: %w", stage, err)
}

func (r *Runner) recordRun(ctx context.Context, logger *slog.Logger, record *runlog.Run) {
	if r.history == nil {
		return
	}
	if err := r.history.Record(ctx, record); err != nil {
		logger.Warn("recording run history failed", logging.Error(err))
	}
}

func (r *Runner) logNotifyFailure(ctx context.Context, logger *slog.Logger, err error) {
	if ctx.Err() != nil {
		logger.Debug("notification skipped, run context canceled", logging.Error(err))
		return
	}
	logger.Debug("notification failed", logging.Error(err))
}

// resolveLibraries turns the requested library names into the identifier set
// Partition filters on. With no request every external library is included.
// Requesting a name the server does not know is a validation error.
func resolveLibraries(libraries []immich.Library, requested []string) (map[string]struct{}, map[string]string, error) {
	names := make(map[string]string, len(libraries))
	byName := make(map[string]string, len(libraries))
	for _, lib := range libraries {
		names[lib.ID] = lib.Name
		byName[lib.Name] = lib.ID
	}

	filter := make(map[string]struct{}, len(libraries))
	if len(requested) == 0 {
		for _, lib := range libraries {
			filter[lib.ID] = struct{}{}
		}
		return filter, names, nil
	}
	for _, name := range requested {
		id, ok := byName[name]
		if !ok {
			return nil, nil, services.Wrap(services.ErrValidation, "sync", "resolve libraries",
				fmt.Sprintf("unknown library %q", name), nil)
		}
		filter[id] = struct{}{}
	}
	return filter, names, nil
}

func tableForMode(mode classify.Mode) string {
	if mode == classify.ModeFolder {
		return mapstore.FolderLayout
	}
	return mapstore.NameLayout
}
