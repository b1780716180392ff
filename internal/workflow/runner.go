package workflow

import (
	"fmt"
	"log/slog"

	"albumsync/internal/config"
	"albumsync/internal/logging"
	"albumsync/internal/mapstore"
	"albumsync/internal/notifications"
	"albumsync/internal/runlog"
	"albumsync/internal/services"
	"albumsync/internal/services/immich"
)

// Options control a single sync pass. The command layer seeds them from the
// configuration file and overlays command line flags before calling Run.
type Options struct {
	// Libraries restricts the pass to external libraries with these names.
	// Empty means every external library on the server.
	Libraries []string

	// FolderLayout groups assets by parent folder instead of library name.
	FolderLayout bool

	// SkipPaths excludes folders from folder layout grouping. A trailing
	// "*" also excludes everything beneath the folder.
	SkipPaths []string

	// CleanUpdate removes album members that no longer map to any synced
	// asset before adding new ones.
	CleanUpdate bool

	// SkipExisting leaves albums that already exist untouched.
	SkipExisting bool

	// DryRun reports what the pass would change without writing anything
	// to the server, the mapping file, or notification channels.
	DryRun bool
}

// Validate rejects option combinations that cannot run together.
func (o Options) Validate() error {
	if o.CleanUpdate && o.SkipExisting {
		return services.Wrap(services.ErrValidation, "sync", "options",
			"clean-update and skip-existing are mutually exclusive", nil)
	}
	return nil
}

// OptionsFromConfig seeds run options from the sync section of the
// configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		Libraries:    append([]string(nil), cfg.Sync.Libraries...),
		FolderLayout: cfg.Sync.FolderLayout,
		SkipPaths:    append([]string(nil), cfg.Sync.SkipPaths...),
		CleanUpdate:  cfg.Sync.CleanUpdate,
		SkipExisting: cfg.Sync.SkipExisting,
	}
}

// Runner drives one sync pass end to end: fetch the server inventory,
// partition assets into albums, reconcile each album, then persist the
// mapping and the run record.
type Runner struct {
	cfg      *config.Config
	svc      immich.Service
	store    *mapstore.Store
	history  *runlog.Store
	notifier notifications.Service
	logger   *slog.Logger
}

// New wires a Runner from the configuration: the HTTP client for the photo
// server, the album mapping store, the run history database, and the ntfy
// notifier.
func New(cfg *config.Config, logger *slog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "new", "configuration is required", nil)
	}
	svc := immich.NewConfiguredService(cfg)
	history, err := runlog.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening run history: %w", err)
	}
	store := mapstore.New(cfg.Sync.MappingFile, logger)
	return NewWithDependencies(cfg, svc, store, history, notifications.NewService(cfg), logger), nil
}

// NewWithDependencies assembles a Runner from pre-built collaborators. Tests
// use it to substitute fakes for the photo server and the notifier.
func NewWithDependencies(cfg *config.Config, svc immich.Service, store *mapstore.Store, history *runlog.Store, notifier notifications.Service, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	if store == nil {
		store = mapstore.New("", logger)
	}
	return &Runner{
		cfg:      cfg,
		svc:      svc,
		store:    store,
		history:  history,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "workflow"),
	}
}

// History exposes the run history store for the command layer.
func (r *Runner) History() *runlog.Store {
	return r.history
}

// Mapping exposes the album mapping store for the command layer.
func (r *Runner) Mapping() *mapstore.Store {
	return r.store
}

// Close releases the run history database.
func (r *Runner) Close() error {
	if r.history == nil {
		return nil
	}
	return r.history.Close()
}
