package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// ImageSource resolves the gallery images for a listing.
type ImageSource interface {
	Images(ctx context.Context, listingID string) ([]string, error)
}

// Manifest lists the images shipped for one listing.
type Manifest struct {
	Version int             `json:"version"`
	Images  []ManifestImage `json:"images"`
}

// ManifestImage is one gallery entry.
type ManifestImage struct {
	File string `json:"file"`
	Alt  string `json:"alt,omitempty"`
}

const (
	manifestName     = "manifest.json"
	placeholderImage = "placeholder.jpg"
)

// ErrInvalidListingID is returned for ids that cannot name a single
// manifest folder.
var ErrInvalidListingID = errors.New("invalid listing id")

// plainName reports whether s is a single path element that stays inside
// its parent folder.
func plainName(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

func checkListingID(id string) error {
	if !plainName(id) {
		return fmt.Errorf("%w: %q", ErrInvalidListingID, id)
	}
	return nil
}

// imageCache remembers resolved galleries, including placeholder
// fallbacks, so each listing is looked up at most once.
type imageCache struct {
	mu   sync.Mutex
	urls map[string][]string
}

func (c *imageCache) get(id string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	urls, ok := c.urls[id]
	if !ok {
		return nil, false
	}
	return append([]string(nil), urls...), true
}

func (c *imageCache) put(id string, urls []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.urls == nil {
		c.urls = make(map[string][]string)
	}
	c.urls[id] = append([]string(nil), urls...)
}

// DirManifests reads <root>/<listing id>/manifest.json from disk.
type DirManifests struct {
	root   string
	logger *slog.Logger
	cache  imageCache
}

var _ ImageSource = (*DirManifests)(nil)

// NewDirManifests returns a manifest reader rooted at dir.
func NewDirManifests(dir string, logger *slog.Logger) *DirManifests {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DirManifests{root: dir, logger: logger}
}

// Images returns file paths for the listing's gallery. A missing or
// unreadable manifest resolves to the shared placeholder image and a
// non-nil error describing why.
func (d *DirManifests) Images(ctx context.Context, listingID string) ([]string, error) {
	if urls, ok := d.cache.get(listingID); ok {
		return urls, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkListingID(listingID); err != nil {
		return nil, err
	}
	folder := filepath.Join(d.root, listingID)
	data, err := os.ReadFile(filepath.Join(folder, manifestName))
	if err == nil {
		var m Manifest
		if err = json.Unmarshal(data, &m); err == nil {
			urls := make([]string, 0, len(m.Images))
			for _, img := range m.Images {
				if !plainName(img.File) {
					continue
				}
				urls = append(urls, filepath.Join(folder, img.File))
			}
			d.cache.put(listingID, urls)
			return urls, nil
		}
		err = fmt.Errorf("decode manifest: %w", err)
	}
	d.logger.Debug("image manifest unavailable", "listing", listingID, "error", err)
	fallback := []string{filepath.Join(d.root, placeholderImage)}
	d.cache.put(listingID, fallback)
	return fallback, err
}

// HTTPManifests fetches <base>/<listing id>/manifest.json, pacing requests
// so hydrating a large catalog does not burst the image host.
type HTTPManifests struct {
	client  *Client
	limiter *rate.Limiter
	logger  *slog.Logger
	cache   imageCache
}

var _ ImageSource = (*HTTPManifests)(nil)

// NewHTTPManifests returns a manifest fetcher allowing perSecond requests
// per second (burst of the same size). perSecond <= 0 disables pacing.
func NewHTTPManifests(base string, perSecond float64, logger *slog.Logger) (*HTTPManifests, error) {
	c, err := NewClient(base)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = max(1, int(perSecond))
	}
	return &HTTPManifests{
		client:  c,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}, nil
}

// Images fetches the listing's manifest and returns absolute image URLs.
// Failures resolve to the placeholder image alongside the error.
func (h *HTTPManifests) Images(ctx context.Context, listingID string) ([]string, error) {
	if urls, ok := h.cache.get(listingID); ok {
		return urls, nil
	}
	if err := checkListingID(listingID); err != nil {
		return nil, err
	}
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	folder := h.client.Resolve(listingID)
	var m Manifest
	err := h.client.getURL(ctx, folder.JoinPath(manifestName), &m)
	if err == nil {
		urls := make([]string, 0, len(m.Images))
		for _, img := range m.Images {
			if !plainName(img.File) {
				continue
			}
			urls = append(urls, folder.JoinPath(img.File).String())
		}
		h.cache.put(listingID, urls)
		return urls, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	h.logger.Debug("image manifest unavailable", "listing", listingID, "error", err)
	fallback := []string{h.client.Resolve(placeholderImage).String()}
	h.cache.put(listingID, fallback)
	return fallback, err
}
