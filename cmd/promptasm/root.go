package main

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/promptasm/internal/config"
	"github.com/csheth/promptasm/internal/ingest"
	"github.com/csheth/promptasm/internal/library"
	"github.com/csheth/promptasm/internal/logging"
	"github.com/csheth/promptasm/internal/scrape"
	"github.com/csheth/promptasm/internal/session"
	"github.com/csheth/promptasm/internal/tui"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath  string
	libraryPath string
	endpoint    string
	logFile     string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	var noAltScreen bool

	root := &cobra.Command{
		Use:   "promptasm",
		Short: "Assemble LLM prompts from local files and web pages",
		Long: "promptasm opens an editor where @mentions pull uploaded files and fetched\n" +
			"pages into the prompt. The assembled text can be copied or saved.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEditor(opts, noAltScreen)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config.toml (default: user config dir)")
	flags.StringVar(&opts.libraryPath, "library", "", "path to the library snapshot JSON")
	flags.StringVar(&opts.endpoint, "scrape-endpoint", "", "content service endpoint (eg. http://localhost:5173/api/scrape)")
	flags.StringVar(&opts.logFile, "log-file", "", "append JSON logs to this file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.Flags().BoolVar(&noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")

	root.AddCommand(newFetchCmd(opts), newLibraryCmd(opts), newConfigCmd(opts))
	return root
}

// loadConfig resolves defaults, the TOML file, environment and flags, in that
// order of precedence.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.libraryPath != "" {
		abs, err := filepath.Abs(o.libraryPath)
		if err != nil {
			return nil, fmt.Errorf("resolve library path: %w", err)
		}
		cfg.Library.Path = abs
	}
	if o.endpoint != "" {
		cfg.Scrape.Endpoint = strings.TrimSpace(o.endpoint)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// logger builds the process logger. Subcommands also log to stderr; the
// editor only logs to a file because it owns the terminal.
func (o *globalOptions) logger(stderr bool) (*zap.Logger, error) {
	return logging.New(logging.Options{Verbose: o.verbose, Path: o.logFile, Stderr: stderr})
}

func newScrapeClient(cfg *config.Config, logger *zap.Logger) (*scrape.Client, error) {
	return scrape.New(scrape.Options{
		Endpoint:      cfg.Scrape.Endpoint,
		Timeout:       cfg.Scrape.Timeout.Duration,
		CacheDir:      cfg.Scrape.CacheDir,
		CacheTTL:      cfg.Scrape.CacheTTL.Duration,
		DisableCache:  cfg.Scrape.DisableCache,
		RatePerMinute: cfg.Scrape.RatePerMinute,
		Logger:        logger,
	})
}

func sessionOptions(cfg *config.Config) session.Options {
	return session.Options{
		BlockSeparator:     cfg.Session.BlockSeparator,
		Duplicates:         session.DuplicatePolicy(cfg.Session.Duplicates),
		AutoMention:        cfg.Fetch.AutoMention,
		PlaceholderOnError: cfg.Fetch.PlaceholderOnError,
	}
}

func openLibrary(cfg *config.Config, logger *zap.Logger) (*library.Store, error) {
	store := library.NewStore()
	restored, err := library.LoadInto(cfg.Library.Path, store)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}
	logger.Debug("library loaded", zap.String("path", cfg.Library.Path), zap.Int("records", restored))
	return store, nil
}

func runEditor(opts *globalOptions, noAltScreen bool) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger, err := opts.logger(false)
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

	libraryPath := cfg.Library.Path
	if !cfg.Library.Autosave {
		libraryPath = ""
	}
	model := tui.New(tui.Config{
		Session:      session.New(store, sessionOptions(cfg)),
		Fetcher:      client,
		FetchTimeout: cfg.Scrape.Timeout.Duration,
		Upload: ingest.ReadOptions{
			MarkdownToHTML: cfg.Upload.MarkdownToHTML,
			MaxBytes:       cfg.Upload.MaxBytes,
		},
		ExportDir:   cfg.Export.Dir,
		ExportName:  cfg.Export.FileName,
		LibraryPath: libraryPath,
		Logger:      logger,
	})

	programOpts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if !noAltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	logger.Info("editor started", zap.String("endpoint", client.Endpoint()), zap.Int("files", store.Len()))
	if _, err := tea.NewProgram(model, programOpts...).Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
