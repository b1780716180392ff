package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"albumsync/internal/config"
	"albumsync/internal/mapstore"
)

func newMappingCommand(ctx *commandContext) *cobra.Command {
	var mappingFlag string

	mappingCmd := &cobra.Command{
		Use:   "mapping",
		Short: "Inspect and manage the album mapping file",
		Long: `Inspect and manage the album mapping file.

The mapping file binds bin keys (library ids or folder paths) to album ids so
renamed albums keep receiving new assets. Folder layout and name layout keep
separate tables in the same file.

Commands:
  list     - List the persisted bindings of both layouts
  remove   - Remove one binding by key
  clear    - Remove every binding of one layout`,
	}

	mappingCmd.PersistentFlags().StringVarP(&mappingFlag, "mapping", "m", "", "Mapping file path override")

	mappingCmd.AddCommand(newMappingListCommand(ctx, &mappingFlag))
	mappingCmd.AddCommand(newMappingRemoveCommand(ctx, &mappingFlag))
	mappingCmd.AddCommand(newMappingClearCommand(ctx, &mappingFlag))

	return mappingCmd
}

type mappingEntry struct {
	Key     string `json:"key"`
	AlbumID string `json:"album_id"`
}

func newMappingListCommand(ctx *commandContext, mappingFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the persisted album bindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openMappingStore(ctx, *mappingFlag)
			if err != nil {
				return err
			}

			folder := store.Entries(mapstore.FolderLayout)
			name := store.Entries(mapstore.NameLayout)

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"path":          store.Path(),
					"folder_layout": toMappingEntries(folder),
					"name_layout":   toMappingEntries(name),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mapping file: %s\n", store.Path())
			if len(folder)+len(name) == 0 {
				fmt.Fprintln(out, "No bindings recorded")
				return nil
			}

			rows := make([][]string, 0, len(folder)+len(name))
			for _, entry := range folder {
				rows = append(rows, []string{mapstore.FolderLayout, entry.Key, entry.AlbumID})
			}
			for _, entry := range name {
				rows = append(rows, []string{mapstore.NameLayout, entry.Key, entry.AlbumID})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Layout", "Key", "Album ID"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newMappingRemoveCommand(ctx *commandContext, mappingFlag *string) *cobra.Command {
	var folderLayout bool

	cmd := &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove one binding by key",
		Long: `Remove one binding by key. The key is the library id in name layout or the
folder path in folder layout; see 'albumsync mapping list' for the keys.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openMappingStore(ctx, *mappingFlag)
			if err != nil {
				return err
			}

			layout := layoutName(folderLayout)
			if err := store.Remove(layout, args[0]); err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"removed": true,
					"layout":  layout,
					"key":     args[0],
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from %s\n", args[0], layout)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&folderLayout, "folder-layout", "f", false, "Remove from the folder layout table")
	return cmd
}

func newMappingClearCommand(ctx *commandContext, mappingFlag *string) *cobra.Command {
	var folderLayout bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every binding of one layout",
		Long:  "Remove every binding of one layout. The other layout's table is untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openMappingStore(ctx, *mappingFlag)
			if err != nil {
				return err
			}

			layout := layoutName(folderLayout)
			count := len(store.Entries(layout))
			if count == 0 {
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"removed": 0, "layout": layout})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "No %s bindings to remove\n", layout)
				return nil
			}

			if err := store.Clear(layout); err != nil {
				return fmt.Errorf("clear mapping table: %w", err)
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"removed": count, "layout": layout})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d bindings from %s\n", count, layout)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&folderLayout, "folder-layout", "f", false, "Clear the folder layout table")
	return cmd
}

func openMappingStore(ctx *commandContext, override string) (*mapstore.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}

	path := cfg.Sync.MappingFile
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		expanded, err := config.ExpandPath(trimmed)
		if err != nil {
			return nil, fmt.Errorf("resolve mapping file: %w", err)
		}
		path = expanded
	}
	if path == "" {
		return nil, errors.New("no mapping file configured (set sync.mapping_file or pass --mapping)")
	}

	logger, err := ctx.newRunLogger(cfg)
	if err != nil {
		return nil, err
	}

	store := mapstore.New(path, logger)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

func layoutName(folderLayout bool) string {
	if folderLayout {
		return mapstore.FolderLayout
	}
	return mapstore.NameLayout
}

func toMappingEntries(entries []mapstore.Entry) []mappingEntry {
	out := make([]mappingEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, mappingEntry{Key: entry.Key, AlbumID: entry.AlbumID})
	}
	return out
}
