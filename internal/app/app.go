package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/x/term"

	"github.com/five82/rolodex/internal/browser"
	"github.com/five82/rolodex/internal/config"
	"github.com/five82/rolodex/internal/contacts"
	"github.com/five82/rolodex/internal/imagecache"
	"github.com/five82/rolodex/internal/logging"
	"github.com/five82/rolodex/internal/photo"
	"github.com/five82/rolodex/internal/prefs"
	"github.com/five82/rolodex/internal/state"
	"github.com/five82/rolodex/internal/ui"
)

// Options configure the rolodex application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/rolodex/prefs.toml
	PollEvery  int    // seconds; zero uses the configured interval
	// Search opens a fixed search-result view for this term.
	Search string
}

// Run boots the rolodex TUI until the context is cancelled or the user
// quits. An unavailable contacts database is the only fatal runtime error.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()
	slog.SetDefault(logger)

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	store, err := contacts.Open(ctx, contacts.Config{
		Path:   cfg.Database,
		Logger: logger.With("component", "contacts"),
	})
	if err != nil {
		logger.Error("contacts store unavailable", "path", cfg.Database, "error", err)
		return fmt.Errorf("open contacts: %w", err)
	}
	defer func() { _ = store.Close() }()

	images, err := imagecache.New(imagecache.Options{
		MemoryBudget: cfg.Images.MemoryBudgetBytes,
		DiskDir:      cfg.Images.DiskCacheDir,
		Logger:       logger.With("component", "imagecache"),
	})
	if err != nil {
		return fmt.Errorf("open image cache: %w", err)
	}
	defer func() { _ = images.Close() }()

	adapter := contacts.NewAdapter(store, logger.With("component", "contacts"))
	bridge := ui.NewBridge()
	b, err := browser.New(browser.Config{
		Source:           adapter,
		Store:            &state.Store{},
		Decoder:          photo.NewDecoder(photo.NewFetcher(), cfg.Images.ThumbnailSize),
		Cache:            images,
		Workers:          cfg.Images.Workers,
		MissTTL:          cfg.Images.MissTTL,
		Placeholder:      ui.Placeholder(),
		Alphabet:         cfg.Alphabet,
		TwoPane:          startsTwoPane(cfg.TwoPaneMinWidth),
		Presenter:        bridge,
		Navigator:        bridge,
		SearchResultView: opts.Search != "",
		SearchTerm:       opts.Search,
		Callbacks:        bridge.Callbacks(),
		Logger:           logger.With("component", "browser"),
	})
	if err != nil {
		bridge.Close()
		return fmt.Errorf("init browser: %w", err)
	}
	// Workers may be blocked handing deliveries to the bridge, so it is
	// closed before the loader pool is stopped.
	defer func() {
		bridge.Close()
		_ = b.Teardown()
	}()

	if opts.Search == "" {
		b.RestoreState(userPrefs.Session)
	}
	if err := b.Initialize(ctx); err != nil {
		return fmt.Errorf("init browser: %w", err)
	}

	interval := cfg.PollEvery
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	pollCtx, cancelPoll := context.WithCancel(ctx)
	defer cancelPoll()

	var changes <-chan struct{}
	if watcher, err := WatchDatabase(cfg.Database, logger.With("component", "watcher")); err != nil {
		logger.Warn("contacts watcher disabled", "error", err)
	} else {
		defer func() { _ = watcher.Close() }()
		changes = watcher.Changes()
	}
	StartPoller(pollCtx, b, interval, changes, bridge.PublishSnapshot)

	return ui.Run(ui.Options{
		Context:   ctx,
		Browser:   b,
		Bridge:    bridge,
		Details:   adapter,
		Config:    &cfg,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
	})
}

// startsTwoPane reports whether the terminal is wide enough for the
// two-pane layout before the first resize event arrives, so a restored
// selection is applied in the layout it was saved from.
func startsTwoPane(minWidth int) bool {
	width, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil {
		return false
	}
	return width >= minWidth
}

// Import loads a YAML contacts document into the configured database,
// creating the database when it does not exist. It returns the number of
// contacts written.
func Import(ctx context.Context, configPath, file string) (int, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return 0, fmt.Errorf("load config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
		return 0, fmt.Errorf("create database dir: %w", err)
	}
	store, err := contacts.Create(ctx, contacts.Config{Path: cfg.Database})
	if err != nil {
		return 0, err
	}
	defer func() { _ = store.Close() }()

	in, err := os.Open(file)
	if err != nil {
		return 0, fmt.Errorf("open import file: %w", err)
	}
	defer func() { _ = in.Close() }()

	n, err := contacts.Import(ctx, store, in)
	if err != nil {
		return n, fmt.Errorf("import %s: %w", file, err)
	}
	return n, nil
}
