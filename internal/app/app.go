package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/five82/flatmatch/internal/catalog"
	"github.com/five82/flatmatch/internal/config"
	"github.com/five82/flatmatch/internal/notes"
	"github.com/five82/flatmatch/internal/persist"
	"github.com/five82/flatmatch/internal/prefs"
	"github.com/five82/flatmatch/internal/reviews"
	"github.com/five82/flatmatch/internal/seed"
	"github.com/five82/flatmatch/internal/ui"
)

// Options configure the flatmatch application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/flatmatch/prefs.toml
	EnvFile    string // empty uses ./.env
	Storage    string // overrides the configured backend when set
}

// overrideStorage applies the -storage flag. Empty leaves cfg alone.
func overrideStorage(cfg *config.Config, flag string) error {
	if strings.TrimSpace(flag) == "" {
		return nil
	}
	s, err := config.ParseStorage(flag)
	if err != nil {
		return fmt.Errorf("storage flag: %w", err)
	}
	cfg.Storage = s
	return nil
}

// Run boots the flatmatch TUI until the user quits or the context is
// cancelled. Pending catalog changes are written before it returns.
func Run(ctx context.Context, opts Options) error {
	var envFiles []string
	if opts.EnvFile != "" {
		envFiles = append(envFiles, opts.EnvFile)
	}
	cfg, err := config.Load(opts.ConfigPath, envFiles...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := overrideStorage(&cfg, opts.Storage); err != nil {
		return err
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	deps, err := build(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close()

	origin := deps.catalog.Initialize(ctx)
	deps.notes.Load(ctx)
	logger.Info("flatmatch starting",
		"storage", string(cfg.Storage),
		"origin", string(origin),
		"listings", deps.catalog.Len())

	hydrateCtx, stopHydration := context.WithCancel(ctx)
	defer stopHydration()
	hydrated := StartHydration(hydrateCtx, deps.catalog, deps.images, logger)

	runErr := ui.Run(ui.Options{
		Context:   ctx,
		Catalog:   deps.catalog,
		Notes:     deps.notes,
		Reviews:   deps.reviews,
		Logger:    logger,
		LogPath:   cfg.LogPath(),
		Filters:   userPrefs.Search.Filters(),
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
	})

	// Stop any hydration still in flight and wait for it before the final
	// flush so merged images are included.
	stopHydration()
	<-hydrated
	return runErr
}

type deps struct {
	slot    persist.Slot
	catalog *catalog.Store
	notes   *notes.Store
	reviews reviews.Service
	images  seed.ImageSource
	logger  *slog.Logger
}

func (d *deps) close() {
	d.catalog.Close(context.Background())
	if err := d.slot.Close(); err != nil {
		d.logger.Warn("close storage failed", "error", err)
	}
}

// build wires storage, sources and stores from cfg.
func build(cfg config.Config, logger *slog.Logger) (*deps, error) {
	slot, err := openSlot(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	source, err := newSource(cfg)
	if err != nil {
		_ = slot.Close()
		return nil, fmt.Errorf("init seed source: %w", err)
	}
	images, err := newImageSource(cfg, logger)
	if err != nil {
		_ = slot.Close()
		return nil, fmt.Errorf("init image source: %w", err)
	}
	reviewSvc, err := newReviews(cfg)
	if err != nil {
		_ = slot.Close()
		return nil, fmt.Errorf("init reviews: %w", err)
	}

	store := catalog.New(catalog.Options{
		Adapter:    persist.NewAdapter(slot, persist.DefaultKey),
		Source:     source,
		Flatmates:  seed.DefaultFlatmates,
		Logger:     logger.With("component", "catalog"),
		FlushDelay: cfg.FlushDelay,
	})
	noteStore := notes.New(notes.Options{
		Slot:   slot,
		Logger: logger.With("component", "notes"),
	})
	return &deps{
		slot:    slot,
		catalog: store,
		notes:   noteStore,
		reviews: reviewSvc,
		images:  images,
		logger:  logger,
	}, nil
}

func openSlot(cfg config.Config) (persist.Slot, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return &persist.MemorySlots{}, nil
	case config.StorageSQLite:
		return persist.OpenSQLite(cfg.DatabasePath())
	case config.StorageFile, "":
		return persist.NewFileSlots(cfg.SlotDir())
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

func newSource(cfg config.Config) (seed.Source, error) {
	if cfg.SeedURL == "" {
		return seed.Fixtures{}, nil
	}
	return seed.NewHTTPSource(cfg.SeedURL)
}

// newImageSource prefers a manifest URL over a local directory. Neither
// configured means galleries stay as the catalog has them.
func newImageSource(cfg config.Config, logger *slog.Logger) (seed.ImageSource, error) {
	switch {
	case cfg.ManifestURL != "":
		return seed.NewHTTPManifests(cfg.ManifestURL, cfg.ManifestRate, logger.With("component", "images"))
	case cfg.ManifestDir != "":
		return seed.NewDirManifests(cfg.ManifestDir, logger.With("component", "images")), nil
	default:
		return nil, nil
	}
}

func newReviews(cfg config.Config) (reviews.Service, error) {
	if cfg.ReviewsURL == "" {
		return reviews.Fixtures{}, nil
	}
	return reviews.NewHTTPService(cfg.ReviewsURL)
}

// openLogger writes text logs to the data directory because the TUI owns
// the terminal.
func openLogger(cfg config.Config) (*slog.Logger, func(), error) {
	path := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return newLogger(f, cfg.LogLevel), func() { _ = f.Close() }, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
