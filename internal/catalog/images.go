package catalog

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/five82/flatmatch/internal/listing"
	"github.com/five82/flatmatch/internal/seed"
)

// DefaultHydrateLimit bounds concurrent manifest lookups.
const DefaultHydrateLimit = 4

// HydrateImages fills in galleries for listings that have none. Lookups
// run concurrently, at most limit at a time, and the results are merged
// in one pass. Listings that gained images in the meantime are left
// alone. Only context errors are returned; per-listing failures resolve
// to whatever fallback the source provides.
func (s *Store) HydrateImages(ctx context.Context, src seed.ImageSource, limit int) error {
	if src == nil {
		return nil
	}
	s.ensureInit()
	if limit <= 0 {
		limit = DefaultHydrateLimit
	}

	var missing []string
	s.mu.RLock()
	for _, p := range listing.Partitions() {
		for _, l := range s.partition(p) {
			if len(l.Images) == 0 {
				missing = append(missing, l.ID)
			}
		}
	}
	s.mu.RUnlock()
	if len(missing) == 0 {
		return nil
	}

	var (
		resMu   sync.Mutex
		results = make(map[string][]string, len(missing))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, id := range missing {
		g.Go(func() error {
			urls, err := src.Images(gctx, id)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				s.logger.Debug("image lookup failed", "listing", id, "error", err)
			}
			if len(urls) == 0 {
				return nil
			}
			resMu.Lock()
			results[id] = urls
			resMu.Unlock()
			return nil
		})
	}
	waitErr := g.Wait()

	merged := s.mergeImages(results)
	if merged > 0 {
		s.logger.Info("listing images hydrated", "listings", merged)
		s.publish(Event{Kind: EventHydrated})
	}
	return waitErr
}

func (s *Store) mergeImages(results map[string][]string) int {
	if len(results) == 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := 0
	for id, urls := range results {
		loc, ok := s.locate(id)
		if !ok || len(s.partition(loc.Partition)[loc.Index].Images) > 0 {
			continue
		}
		s.replaceAt(loc, func(l listing.Listing) listing.Listing {
			l = l.Clone()
			l.Images = append([]string{}, urls...)
			if l.Thumbnail == "" {
				l.Thumbnail = urls[0]
			}
			return l
		})
		merged++
	}
	if merged > 0 {
		s.scheduleFlushLocked()
	}
	return merged
}
