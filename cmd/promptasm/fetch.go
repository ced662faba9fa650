package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/csheth/promptasm/internal/library"
	"github.com/csheth/promptasm/internal/session"
)

const defaultFetchConcurrency = 4

func newFetchCmd(opts *globalOptions) *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "fetch URL...",
		Short: "Fetch pages as markdown and add them to the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, opts, args, concurrency)
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", defaultFetchConcurrency, "pages fetched in parallel")
	return cmd
}

type fetchOutcome struct {
	markdown string
	err      error
}

func runFetch(cmd *cobra.Command, opts *globalOptions, urls []string, concurrency int) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger, err := opts.logger(true)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := openLibrary(cfg, logger)
	if err != nil {
		return err
	}
	client, err := newScrapeClient(cfg, logger)
	if err != nil {
		return err
	}
	sess := session.New(store, sessionOptions(cfg))
	out := cmd.OutOrStdout()

	var (
		failed  int
		fetches []session.Fetch
	)
	for _, raw := range urls {
		f, err := sess.BeginFetch(raw)
		if err != nil {
			failed++
			fmt.Fprintf(out, "skip %s: %v\n", raw, err)
			continue
		}
		fetches = append(fetches, f)
	}

	outcomes := make([]fetchOutcome, len(fetches))
	if concurrency < 1 {
		concurrency = 1
	}
	var g errgroup.Group
	g.SetLimit(concurrency)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for i, f := range fetches {
		i, f := i, f
		g.Go(func() error {
			markdown, err := client.Fetch(ctx, f.URL)
			outcomes[i] = fetchOutcome{markdown: markdown, err: err}
			return nil
		})
	}
	_ = g.Wait()

	changed := false
	for i, f := range fetches {
		if err := outcomes[i].err; err != nil {
			failed++
			logger.Warn("fetch failed", zap.String("url", f.URL), zap.Error(err))
			if record, stored := sess.AbortFetch(f, err); stored {
				changed = true
				fmt.Fprintf(out, "placeholder %s (%s): %v\n", record.FileName, f.URL, err)
				continue
			}
			fmt.Fprintf(out, "error %s: %v\n", f.URL, err)
			continue
		}
		record := sess.CompleteFetch(f, outcomes[i].markdown)
		changed = true
		fmt.Fprintf(out, "added %s (%d chars) from %s\n", record.FileName, len([]rune(record.Content)), f.URL)
	}

	if changed {
		if cfg.Library.Path == "" {
			return errors.New("no library path configured; fetched pages were not saved")
		}
		if err := library.Save(cfg.Library.Path, store.Records()); err != nil {
			return fmt.Errorf("save library: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d page(s) failed", failed, len(urls))
	}
	return nil
}
