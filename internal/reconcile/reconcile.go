package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"albumsync/internal/classify"
	"albumsync/internal/logging"
	"albumsync/internal/services/immich"
)

// Options control how bins are reconciled against the remote album list.
type Options struct {
	// CleanUpdate removes album members that are not in the freshly computed
	// member set before adding.
	CleanUpdate bool
	// SkipExisting leaves albums that already exist untouched.
	SkipExisting bool
	// DryRun suppresses every remote write; reads still happen so the
	// would-be actions can be reported.
	DryRun bool
	// Persisted reports whether a mapping file is active. Without one, the
	// skip-existing guard falls back to comparing album names, since no id
	// mapping can be trusted.
	Persisted bool
}

// Reconciler executes the per-bin create/update/skip decision against the
// remote album service.
type Reconciler struct {
	svc    immich.Service
	logger *slog.Logger
	opts   Options
}

// New constructs a reconciler.
func New(svc immich.Service, logger *slog.Logger, opts Options) *Reconciler {
	return &Reconciler{
		svc:    svc,
		logger: logging.NewComponentLogger(logger, "reconciler"),
		opts:   opts,
	}
}

// Run processes every bin in order and returns the pass summary together with
// the updated mapping table. The returned table starts as a copy of prior;
// entries for bins that were not seen this run are carried over unchanged.
// Failures are contained per bin and never abort the pass.
func (r *Reconciler) Run(ctx context.Context, bins []classify.Bin, prior map[string]string, albums []immich.Album) (*Summary, map[string]string) {
	albumIDs := make(map[string]struct{}, len(albums))
	albumNames := make(map[string]struct{}, len(albums))
	for _, album := range albums {
		albumIDs[album.ID] = struct{}{}
		albumNames[album.Name] = struct{}{}
	}

	output := make(map[string]string, len(prior))
	for key, id := range prior {
		output[key] = id
	}

	summary := &Summary{}
	for _, bin := range bins {
		summary.add(r.reconcileBin(ctx, bin, prior, output, albumIDs, albumNames))
	}
	return summary, output
}

func (r *Reconciler) reconcileBin(ctx context.Context, bin classify.Bin, prior, output map[string]string, albumIDs, albumNames map[string]struct{}) Outcome {
	logger := logging.WithContext(ctx, r.logger)

	albumID, bound := "", false
	if priorID, ok := prior[bin.Key]; ok {
		if _, exists := albumIDs[priorID]; exists {
			albumID, bound = priorID, true
		} else {
			// The persisted album no longer exists remotely; the entry is
			// stale and the bin falls through to create.
			logger.Debug("dropping stale mapping entry",
				logging.String(logging.FieldBin, bin.Key),
				logging.String(logging.FieldAlbumID, priorID))
		}
	}

	if !bound {
		return r.createAlbum(ctx, logger, bin, output, albumNames)
	}
	return r.updateAlbum(ctx, logger, bin, albumID, output)
}

func (r *Reconciler) createAlbum(ctx context.Context, logger *slog.Logger, bin classify.Bin, output map[string]string, albumNames map[string]struct{}) Outcome {
	// Without a mapping file there is no id to trust, so the only duplicate
	// guard available compares album names.
	if r.opts.SkipExisting && !r.opts.Persisted {
		if _, exists := albumNames[bin.Label]; exists {
			logger.Info("album already exists, skipping",
				logging.String(logging.FieldBin, bin.Key),
				logging.String(logging.FieldAlbum, bin.Label))
			return Outcome{
				Bin:    bin.Key,
				Label:  bin.Label,
				Action: ActionSkipped,
				Detail: "an album with the same name already exists",
			}
		}
	}

	if r.opts.DryRun {
		logger.Info("would create album",
			logging.String(logging.FieldBin, bin.Key),
			logging.String(logging.FieldAlbum, bin.Label),
			logging.Int("assets", len(bin.AssetIDs)))
		return Outcome{
			Bin:    bin.Key,
			Label:  bin.Label,
			Action: ActionCreated,
			Added:  len(bin.AssetIDs),
			Detail: "dry-run",
		}
	}

	id, err := r.svc.CreateAlbum(ctx, bin.Label, bin.AssetIDs)
	if err != nil {
		delete(output, bin.Key)
		logger.Error("album creation failed",
			logging.String(logging.FieldBin, bin.Key),
			logging.String(logging.FieldAlbum, bin.Label),
			logging.Error(err))
		return Outcome{
			Bin:    bin.Key,
			Label:  bin.Label,
			Action: ActionFailed,
			Detail: remoteDetail(err),
		}
	}

	output[bin.Key] = id
	logger.Info("created album",
		logging.String(logging.FieldBin, bin.Key),
		logging.String(logging.FieldAlbum, bin.Label),
		logging.String(logging.FieldAlbumID, id),
		logging.Int("assets", len(bin.AssetIDs)))
	return Outcome{
		Bin:     bin.Key,
		Label:   bin.Label,
		AlbumID: id,
		Action:  ActionCreated,
		Added:   len(bin.AssetIDs),
	}
}

func (r *Reconciler) updateAlbum(ctx context.Context, logger *slog.Logger, bin classify.Bin, albumID string, output map[string]string) Outcome {
	removed := 0
	cleanNote := ""
	if r.opts.CleanUpdate {
		removed, cleanNote = r.cleanAlbum(ctx, logger, bin, albumID)
	}

	// The binding is reaffirmed before the update so a failed add still leaves
	// a trusted entry for the next run.
	output[bin.Key] = albumID

	if r.opts.SkipExisting {
		logger.Info("album already exists, skipping",
			logging.String(logging.FieldBin, bin.Key),
			logging.String(logging.FieldAlbum, bin.Label),
			logging.String(logging.FieldAlbumID, albumID))
		return Outcome{
			Bin:     bin.Key,
			Label:   bin.Label,
			AlbumID: albumID,
			Action:  ActionSkipped,
			Detail:  "album already exists",
		}
	}

	if r.opts.DryRun {
		logger.Info("would update album",
			logging.String(logging.FieldBin, bin.Key),
			logging.String(logging.FieldAlbum, bin.Label),
			logging.String(logging.FieldAlbumID, albumID),
			logging.Int("assets", len(bin.AssetIDs)),
			logging.Int("removals", removed))
		return Outcome{
			Bin:     bin.Key,
			Label:   bin.Label,
			AlbumID: albumID,
			Action:  ActionUpdated,
			Added:   len(bin.AssetIDs),
			Removed: removed,
			Detail:  "dry-run",
		}
	}

	added, err := r.svc.AddAssets(ctx, albumID, bin.AssetIDs)
	if err != nil {
		logger.Error("album update failed",
			logging.String(logging.FieldBin, bin.Key),
			logging.String(logging.FieldAlbum, bin.Label),
			logging.String(logging.FieldAlbumID, albumID),
			logging.Error(err))
		return Outcome{
			Bin:     bin.Key,
			Label:   bin.Label,
			AlbumID: albumID,
			Action:  ActionFailed,
			Removed: removed,
			Detail:  remoteDetail(err),
		}
	}

	detail := cleanNote
	if added == 0 {
		detail = joinDetail("already up to date", cleanNote)
		logger.Info("album already up to date",
			logging.String(logging.FieldBin, bin.Key),
			logging.String(logging.FieldAlbum, bin.Label),
			logging.String(logging.FieldAlbumID, albumID))
	} else {
		logger.Info("updated album",
			logging.String(logging.FieldBin, bin.Key),
			logging.String(logging.FieldAlbum, bin.Label),
			logging.String(logging.FieldAlbumID, albumID),
			logging.Int("added", added),
			logging.Int("removed", removed))
	}
	return Outcome{
		Bin:     bin.Key,
		Label:   bin.Label,
		AlbumID: albumID,
		Action:  ActionUpdated,
		Added:   added,
		Removed: removed,
		Detail:  detail,
	}
}

// cleanAlbum removes members that are absent from the bin's computed set. A
// fetch failure abandons the clean step but not the bin; the update still
// proceeds.
func (r *Reconciler) cleanAlbum(ctx context.Context, logger *slog.Logger, bin classify.Bin, albumID string) (int, string) {
	current, err := r.svc.AlbumAssets(ctx, albumID)
	if err != nil {
		logger.Warn("fetching album members failed, skipping clean",
			logging.String(logging.FieldBin, bin.Key),
			logging.String(logging.FieldAlbumID, albumID),
			logging.Error(err))
		return 0, "clean skipped: " + remoteDetail(err)
	}

	members := make(map[string]struct{}, len(bin.AssetIDs))
	for _, id := range bin.AssetIDs {
		members[id] = struct{}{}
	}
	removal := make([]string, 0)
	for _, id := range current {
		if _, keep := members[id]; !keep {
			removal = append(removal, id)
		}
	}
	if len(removal) == 0 {
		return 0, ""
	}
	sort.Strings(removal)

	if r.opts.DryRun {
		return len(removal), ""
	}

	removed, err := r.svc.RemoveAssets(ctx, albumID, removal)
	if err != nil {
		logger.Warn("removing stray album members failed",
			logging.String(logging.FieldBin, bin.Key),
			logging.String(logging.FieldAlbumID, albumID),
			logging.Error(err))
		return 0, "clean failed: " + remoteDetail(err)
	}
	if removed > 0 {
		logger.Info("cleared stray album members",
			logging.String(logging.FieldBin, bin.Key),
			logging.String(logging.FieldAlbumID, albumID),
			logging.Int("removed", removed))
	}
	return removed, ""
}

// remoteDetail renders a remote failure for per-bin reporting, preferring the
// server's status and message over Go error chains.
func remoteDetail(err error) string {
	var apiErr *immich.APIError
	if errors.As(err, &apiErr) {
		reason := http.StatusText(apiErr.StatusCode)
		if msg := apiErr.Message(); msg != "" {
			return fmt.Sprintf("%d %s: %s", apiErr.StatusCode, reason, msg)
		}
		return fmt.Sprintf("%d %s", apiErr.StatusCode, reason)
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func joinDetail(parts ...string) string {
	out := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if out != "" {
			out += "; "
		}
		out += part
	}
	return out
}
