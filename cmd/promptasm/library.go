package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/csheth/promptasm/internal/library"
)

func newLibraryCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect and edit the saved file library",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List library files",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runLibraryList(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "rm ID|NAME...",
			Short: "Remove files by id or file name",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runLibraryRemove(cmd, opts, args)
			},
		},
	)
	return cmd
}

func runLibraryList(cmd *cobra.Command, opts *globalOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger, err := opts.logger(false)
	if err != nil {
		return err
	}
	store, err := openLibrary(cfg, logger)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if store.Len() == 0 {
		fmt.Fprintln(out, "library is empty")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSOURCE\tCHARS\tADDED")
	for _, record := range store.Records() {
		added := "-"
		if !record.AddedAt.IsZero() {
			added = record.AddedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", shortID(record.ID), record.FileName, record.Source, len([]rune(record.Content)), added)
	}
	return tw.Flush()
}

func runLibraryRemove(cmd *cobra.Command, opts *globalOptions, targets []string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger, err := opts.logger(false)
	if err != nil {
		return err
	}
	store, err := openLibrary(cfg, logger)
	if err != nil {
		return err
	}
	for _, target := range targets {
		record, ok := findRecord(store, target)
		if !ok {
			return fmt.Errorf("%s: %w", target, library.ErrNotFound)
		}
		store.Remove(record.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", record.FileName)
	}
	return library.Save(cfg.Library.Path, store.Records())
}

// findRecord matches a full id, an id prefix of at least 8 characters as
// printed by list, or a file name.
func findRecord(store *library.Store, target string) (library.FileRecord, bool) {
	if record, ok := store.Get(target); ok {
		return record, true
	}
	if len(target) >= 8 {
		for _, record := range store.Records() {
			if len(record.ID) >= len(target) && record.ID[:len(target)] == target {
				return record, true
			}
		}
	}
	return store.Lookup(target)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
