package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/flatmatch/internal/catalog"
	"github.com/five82/flatmatch/internal/config"
	"github.com/five82/flatmatch/internal/persist"
	"github.com/five82/flatmatch/internal/reviews"
	"github.com/five82/flatmatch/internal/seed"
)

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestOpenSlot_Backends(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		storage config.Storage
		check   func(persist.Slot) bool
	}{
		{config.StorageMemory, func(s persist.Slot) bool { _, ok := s.(*persist.MemorySlots); return ok }},
		{config.StorageFile, func(s persist.Slot) bool { _, ok := s.(*persist.FileSlots); return ok }},
		{config.StorageSQLite, func(s persist.Slot) bool { _, ok := s.(*persist.SQLiteSlots); return ok }},
	}
	for _, tt := range tests {
		t.Run(string(tt.storage), func(t *testing.T) {
			slot, err := openSlot(config.Config{DataDir: dir, Storage: tt.storage})
			if err != nil {
				t.Fatalf("openSlot: %v", err)
			}
			t.Cleanup(func() { _ = slot.Close() })
			if !tt.check(slot) {
				t.Fatalf("openSlot(%s) = %T", tt.storage, slot)
			}
		})
	}
	if _, err := openSlot(config.Config{DataDir: dir, Storage: "tape"}); err == nil {
		t.Fatal("openSlot(tape) returned nil error")
	}
}

func TestOverrideStorage_Normalizes(t *testing.T) {
	cfg := config.Default()
	if err := overrideStorage(&cfg, " SQLite "); err != nil {
		t.Fatalf("overrideStorage(SQLite): %v", err)
	}
	if cfg.Storage != config.StorageSQLite {
		t.Fatalf("Storage = %q, want sqlite", cfg.Storage)
	}
	if err := overrideStorage(&cfg, ""); err != nil || cfg.Storage != config.StorageSQLite {
		t.Fatalf("empty flag changed storage to %q (err %v)", cfg.Storage, err)
	}
	if err := overrideStorage(&cfg, "tape"); err == nil {
		t.Fatal("overrideStorage(tape) returned nil error")
	}
	if cfg.Storage != config.StorageSQLite {
		t.Fatalf("rejected flag changed storage to %q", cfg.Storage)
	}
}

func TestNewSources_DefaultToFixtures(t *testing.T) {
	src, err := newSource(config.Config{})
	if err != nil {
		t.Fatalf("newSource: %v", err)
	}
	if _, ok := src.(seed.Fixtures); !ok {
		t.Fatalf("newSource = %T, want seed.Fixtures", src)
	}
	svc, err := newReviews(config.Config{})
	if err != nil {
		t.Fatalf("newReviews: %v", err)
	}
	if _, ok := svc.(reviews.Fixtures); !ok {
		t.Fatalf("newReviews = %T, want reviews.Fixtures", svc)
	}
	images, err := newImageSource(config.Config{}, discard())
	if err != nil || images != nil {
		t.Fatalf("newImageSource = %v, %v; want nil, nil", images, err)
	}

	remote, err := newSource(config.Config{SeedURL: "localhost:9999/api"})
	if err != nil {
		t.Fatalf("newSource(url): %v", err)
	}
	if _, ok := remote.(*seed.HTTPSource); !ok {
		t.Fatalf("newSource(url) = %T", remote)
	}
}

func TestNewImageSource_PrefersURL(t *testing.T) {
	cfg := config.Config{ManifestDir: t.TempDir(), ManifestURL: "http://127.0.0.1:1/images"}
	src, err := newImageSource(cfg, discard())
	if err != nil {
		t.Fatalf("newImageSource: %v", err)
	}
	if _, ok := src.(*seed.HTTPManifests); !ok {
		t.Fatalf("newImageSource = %T, want HTTP manifests", src)
	}
	cfg.ManifestURL = ""
	src, _ = newImageSource(cfg, discard())
	if _, ok := src.(*seed.DirManifests); !ok {
		t.Fatalf("newImageSource = %T, want dir manifests", src)
	}
}

func TestBuild_WiresCatalogAndNotes(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Storage = config.StorageSQLite

	d, err := build(cfg, discard())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ctx := context.Background()
	if origin := d.catalog.Initialize(ctx); origin != catalog.OriginFixtures && origin != catalog.OriginSeed {
		t.Fatalf("origin = %q", origin)
	}
	p1, _, ok := d.catalog.Lookup("p1")
	if !ok || len(p1.Flatmates) == 0 {
		t.Fatalf("p1 = %#v, %v; want flatmates attached", p1, ok)
	}
	d.catalog.ToggleSaved("p1")
	if _, err := d.notes.Add(ctx, "p1", "check the heating"); err != nil {
		t.Fatalf("notes.Add: %v", err)
	}
	d.close()

	again, err := build(cfg, discard())
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	defer again.close()
	if origin := again.catalog.Initialize(ctx); origin != catalog.OriginSnapshot {
		t.Fatalf("origin after restart = %q, want snapshot", origin)
	}
	p1, _, _ = again.catalog.Lookup("p1")
	if !p1.Saved {
		t.Fatal("saved flag lost across restart")
	}
	if again.notes.Load(ctx) != 1 {
		t.Fatal("note lost across restart")
	}
}

func TestStartHydration(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "p1"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	manifest := `{"version":1,"images":[{"file":"living.jpg"}]}`
	if err := os.WriteFile(filepath.Join(root, "p1", "manifest.json"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	store := catalog.New(catalog.Options{})
	store.Initialize(context.Background())
	done := StartHydration(context.Background(), store, seed.NewDirManifests(root, nil), discard())
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("hydration did not finish")
	}
	p1, _, _ := store.Lookup("p1")
	if len(p1.Images) != 1 || filepath.Base(p1.Images[0]) != "living.jpg" {
		t.Fatalf("p1 images = %v", p1.Images)
	}

	nilDone := StartHydration(context.Background(), store, nil, discard())
	select {
	case <-nilDone:
	default:
		t.Fatal("nil source should close immediately")
	}
}

func TestNewLogger_WritesTextAtLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", "key", "v")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "level=WARN") || !strings.Contains(out, "key=v") {
		t.Fatalf("log output = %q", out)
	}
}
