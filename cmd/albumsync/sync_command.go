package main

import (
	"fmt"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"albumsync/internal/config"
	"albumsync/internal/workflow"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var libraries []string
	var folderLayout bool
	var skipPaths []string
	var cleanUpdate bool
	var skipExisting bool
	var mappingFile string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile server albums with library content",
		Long: `Reconcile server albums with library content.

Assets from external libraries are grouped into albums, one per library by
default or one per folder with --folder-layout. Albums already bound through
the mapping file are updated in place; everything else is created. The pass
exits non-zero when any album fails to sync so cron jobs notice.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if strings.TrimSpace(mappingFile) != "" {
				expanded, err := config.ExpandPath(mappingFile)
				if err != nil {
					return fmt.Errorf("resolve mapping file: %w", err)
				}
				cfg.Sync.MappingFile = expanded
			}

			opts := workflow.OptionsFromConfig(cfg)
			flags := cmd.Flags()
			if flags.Changed("library") {
				opts.Libraries = libraries
			}
			if flags.Changed("folder-layout") {
				opts.FolderLayout = folderLayout
			}
			if flags.Changed("skip") {
				opts.SkipPaths = skipPaths
			}
			if flags.Changed("clean-update") {
				opts.CleanUpdate = cleanUpdate
			}
			if flags.Changed("skip-existing") {
				opts.SkipExisting = skipExisting
			}
			opts.DryRun = dryRun
			if err := opts.Validate(); err != nil {
				return err
			}

			logger, err := ctx.newRunLogger(cfg)
			if err != nil {
				return err
			}

			lock := flock.New(cfg.Sync.LockFile)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire sync lock %s: %w", cfg.Sync.LockFile, err)
			}
			if !locked {
				return fmt.Errorf("another sync is already running (lock %s is held)", cfg.Sync.LockFile)
			}
			defer lock.Unlock()

			runner, err := workflow.New(cfg, logger)
			if err != nil {
				return err
			}
			defer runner.Close()

			result, err := runner.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				if err := writeJSON(cmd, newSyncReport(result)); err != nil {
					return err
				}
			} else {
				printSyncResult(cmd, result)
			}

			if result.Summary.HasFailures() {
				return fmt.Errorf("%d albums failed to sync", result.Summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&libraries, "library", "l", nil, "Sync only the named external library (repeatable)")
	cmd.Flags().BoolVarP(&folderLayout, "folder-layout", "f", false, "Group albums by folder instead of library name")
	cmd.Flags().StringSliceVarP(&skipPaths, "skip", "s", nil, "Skip a folder; append /* to skip its subfolders too (repeatable)")
	cmd.Flags().BoolVar(&cleanUpdate, "clean-update", false, "Remove stray album members before adding new ones")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Leave albums that already exist untouched")
	cmd.Flags().StringVarP(&mappingFile, "mapping", "m", "", "Mapping file path override")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report changes without applying them")
	return cmd
}
