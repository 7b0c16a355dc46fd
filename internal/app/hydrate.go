package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/five82/flatmatch/internal/catalog"
	"github.com/five82/flatmatch/internal/seed"
)

// hydrateTimeout bounds the whole background gallery pass.
const hydrateTimeout = 30 * time.Second

// StartHydration fills in missing listing galleries in the background so
// the first render never waits on manifests. The returned channel closes
// when the pass is over. A nil source closes it immediately.
func StartHydration(ctx context.Context, store *catalog.Store, src seed.ImageSource, logger *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	if src == nil {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(ctx, hydrateTimeout)
		defer cancel()

		started := time.Now()
		err := store.HydrateImages(ctx, src, catalog.DefaultHydrateLimit)
		switch {
		case err == nil:
			logger.Debug("image hydration finished", "elapsed", time.Since(started))
		case errors.Is(err, context.Canceled):
			logger.Debug("image hydration cancelled")
		default:
			logger.Warn("image hydration incomplete", "error", err)
		}
	}()
	return done
}
