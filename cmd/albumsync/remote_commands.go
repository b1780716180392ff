package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

type albumListEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Assets int    `json:"assets"`
}

func newAlbumsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "albums",
		Short: "List albums on the photo server",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.remoteService()
			if err != nil {
				return err
			}
			albums, err := svc.Albums(cmd.Context())
			if err != nil {
				return err
			}
			sort.Slice(albums, func(i, j int) bool {
				return strings.ToLower(albums[i].Name) < strings.ToLower(albums[j].Name)
			})

			if ctx.JSONMode() {
				entries := make([]albumListEntry, 0, len(albums))
				for _, album := range albums {
					entries = append(entries, albumListEntry{ID: album.ID, Name: album.Name, Assets: album.AssetCount})
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(albums) == 0 {
				fmt.Fprintln(out, "No albums on the server")
				return nil
			}
			rows := make([][]string, 0, len(albums))
			for _, album := range albums {
				rows = append(rows, []string{album.Name, strconv.Itoa(album.AssetCount), album.ID})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Album", "Assets", "ID"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

type libraryListEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func newLibrariesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "libraries",
		Short: "List external libraries on the photo server",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.remoteService()
			if err != nil {
				return err
			}
			libraries, err := svc.Libraries(cmd.Context())
			if err != nil {
				return err
			}
			sort.Slice(libraries, func(i, j int) bool {
				return strings.ToLower(libraries[i].Name) < strings.ToLower(libraries[j].Name)
			})

			if ctx.JSONMode() {
				entries := make([]libraryListEntry, 0, len(libraries))
				for _, library := range libraries {
					entries = append(entries, libraryListEntry{ID: library.ID, Name: library.Name, Type: library.Type})
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(libraries) == 0 {
				fmt.Fprintln(out, "No external libraries on the server")
				return nil
			}
			rows := make([][]string, 0, len(libraries))
			for _, library := range libraries {
				rows = append(rows, []string{library.Name, library.Type, library.ID})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Library", "Type", "ID"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
