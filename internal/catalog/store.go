package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/five82/flatmatch/internal/listing"
	"github.com/five82/flatmatch/internal/persist"
	"github.com/five82/flatmatch/internal/seed"
	"github.com/five82/flatmatch/internal/view"
)

// DefaultFlushDelay is the idle window before a mutation is written out.
const DefaultFlushDelay = 200 * time.Millisecond

// ErrDuplicateID is returned by AddListing when the requested identifier
// is already in the catalog.
var ErrDuplicateID = errors.New("listing id already exists")

// Origin records where the initial catalog came from.
type Origin string

const (
	OriginSnapshot Origin = "snapshot"
	OriginSeed     Origin = "seed"
	OriginFixtures Origin = "fixtures"
)

// Location says where a listing lives in the catalog.
type Location struct {
	Partition listing.Partition
	Index     int
}

// Options configure a Store. Every field is optional.
type Options struct {
	// Adapter persists snapshots. Nil keeps the catalog in memory only.
	Adapter *persist.Adapter
	// Source seeds the catalog when no snapshot exists. Nil uses the
	// built-in fixtures.
	Source seed.Source
	// Flatmates fills in listings that arrive without flatmates.
	Flatmates seed.FlatmateLookup
	Logger    *slog.Logger
	// FlushDelay is the debounce window; zero uses DefaultFlushDelay.
	FlushDelay time.Duration
	// Now is the clock used for identifiers and timestamps.
	Now func() time.Time
}

// Store is the single source of truth for the listing catalog during a
// session. Mutations are applied in call order; writes to the adapter are
// debounced except for AddListing and Refresh, which flush immediately.
type Store struct {
	mu      sync.RWMutex
	popular []listing.Listing
	nearby  []listing.Listing
	dirty   bool
	closed  bool
	timer   *time.Timer
	lastID  int64
	origin  Origin

	// writeMu orders snapshot writes so an older state never lands after
	// a newer one.
	writeMu sync.Mutex

	initOnce sync.Once

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int

	adapter   *persist.Adapter
	source    seed.Source
	flatmates seed.FlatmateLookup
	logger    *slog.Logger
	delay     time.Duration
	now       func() time.Time
}

// New builds a Store. Call Initialize before first use; methods called
// earlier initialize the store with a background context.
func New(opts Options) *Store {
	s := &Store{
		adapter:   opts.Adapter,
		source:    opts.Source,
		flatmates: opts.Flatmates,
		logger:    opts.Logger,
		delay:     opts.FlushDelay,
		now:       opts.Now,
		subs:      make(map[int]chan Event),
	}
	if s.source == nil {
		s.source = seed.Fixtures{}
	}
	if s.flatmates == nil {
		s.flatmates = seed.FlatmateTable{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.delay <= 0 {
		s.delay = DefaultFlushDelay
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Initialize loads the cached snapshot, or the seed catalog when there is
// none, and attaches flatmates. Only the first call does any work; it
// reports where the catalog came from.
func (s *Store) Initialize(ctx context.Context) Origin {
	s.initOnce.Do(func() {
		popular, nearby, origin := s.hydrate(ctx)
		s.mu.Lock()
		s.popular, s.nearby, s.origin = popular, nearby, origin
		s.mu.Unlock()
		s.logger.Info("catalog initialized",
			"origin", string(origin),
			"popular", len(popular),
			"nearby", len(nearby))
	})
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.origin
}

func (s *Store) ensureInit() {
	s.Initialize(context.Background())
}

func (s *Store) hydrate(ctx context.Context) (popular, nearby []listing.Listing, origin Origin) {
	if s.adapter != nil {
		snap, err := s.adapter.Load(ctx)
		if err == nil {
			return s.attachFlatmates(snap.Popular), s.attachFlatmates(snap.Nearby), OriginSnapshot
		}
		if errors.Is(err, persist.ErrNoSnapshot) {
			s.logger.Debug("no cached catalog", "error", err)
		} else {
			s.logger.Warn("cached catalog unusable, reseeding", "error", err)
		}
	}
	payload, origin := s.fetchSeed(ctx)
	return s.attachFlatmates(payload.Popular), s.attachFlatmates(payload.Nearby), origin
}

func (s *Store) fetchSeed(ctx context.Context) (seed.Payload, Origin) {
	payload, err := s.source.FetchAll(ctx)
	if err == nil {
		return payload, OriginSeed
	}
	s.logger.Warn("seed source failed, using fixtures", "error", err)
	return seed.FixturePayload(), OriginFixtures
}

func (s *Store) attachFlatmates(items []listing.Listing) []listing.Listing {
	out := listing.CloneAll(items)
	for i := range out {
		if len(out[i].Flatmates) == 0 {
			out[i].Flatmates = s.flatmates.FlatmatesFor(out[i].ID)
		}
	}
	return out
}

// Lookup finds a listing by id in either partition. The returned listing
// is a copy. A miss returns ok=false and Index -1.
func (s *Store) Lookup(id string) (listing.Listing, Location, bool) {
	s.ensureInit()
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.locate(id)
	if !ok {
		return listing.Listing{}, loc, false
	}
	return s.partition(loc.Partition)[loc.Index].Clone(), loc, true
}

// locate must be called with mu held.
func (s *Store) locate(id string) (Location, bool) {
	for _, p := range listing.Partitions() {
		for i, l := range s.partition(p) {
			if l.ID == id {
				return Location{Partition: p, Index: i}, true
			}
		}
	}
	return Location{Index: -1}, false
}

func (s *Store) partition(p listing.Partition) []listing.Listing {
	if p == listing.Nearby {
		return s.nearby
	}
	return s.popular
}

func (s *Store) setPartition(p listing.Partition, items []listing.Listing) {
	if p == listing.Nearby {
		s.nearby = items
		return
	}
	s.popular = items
}

// replaceAt swaps in a new partition slice with one element updated. Must
// be called with mu held for writing.
func (s *Store) replaceAt(loc Location, update func(listing.Listing) listing.Listing) {
	old := s.partition(loc.Partition)
	next := make([]listing.Listing, len(old))
	copy(next, old)
	next[loc.Index] = update(old[loc.Index])
	s.setPartition(loc.Partition, next)
	s.dirty = true
}

// ToggleSaved flips the saved flag. It reports whether the id was found;
// unknown ids leave the catalog untouched.
func (s *Store) ToggleSaved(id string) bool {
	s.ensureInit()
	s.mu.Lock()
	loc, ok := s.locate(id)
	if ok {
		s.replaceAt(loc, func(l listing.Listing) listing.Listing {
			l = l.Clone()
			l.Saved = !l.Saved
			return l
		})
		s.scheduleFlushLocked()
	}
	s.mu.Unlock()
	if ok {
		s.publish(Event{Kind: EventToggled, ID: id})
	}
	return ok
}

// PatchListing merges the patch into the listing. Only named fields
// change. It reports whether the id was found.
func (s *Store) PatchListing(id string, patch listing.Patch) bool {
	s.ensureInit()
	s.mu.Lock()
	loc, ok := s.locate(id)
	if ok {
		s.replaceAt(loc, patch.Apply)
		s.scheduleFlushLocked()
	}
	s.mu.Unlock()
	if ok {
		s.publish(Event{Kind: EventPatched, ID: id})
	}
	return ok
}

// AddListing builds a listing from req, inserts it at the head of the
// popular partition and writes the catalog out immediately. It returns
// the new listing's id. req.ID is used when set; otherwise an id of the
// form u<unix millis> is generated.
func (s *Store) AddListing(ctx context.Context, req listing.NewRequest) (string, error) {
	s.ensureInit()
	if err := req.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	id := req.ID
	if id != "" {
		if _, exists := s.locate(id); exists {
			s.mu.Unlock()
			return "", fmt.Errorf("add listing %q: %w", id, ErrDuplicateID)
		}
	} else {
		id = s.nextIDLocked()
	}
	created := req.Build(id)
	next := make([]listing.Listing, 0, len(s.popular)+1)
	next = append(next, created)
	next = append(next, s.popular...)
	s.popular = next
	s.dirty = true
	s.stopTimerLocked()
	s.mu.Unlock()

	s.flush(ctx)
	s.publish(Event{Kind: EventAdded, ID: id})
	return id, nil
}

// nextIDLocked returns a time-based id that is strictly greater than any
// previously generated one and not already in use.
func (s *Store) nextIDLocked() string {
	ms := s.now().UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	for {
		id := "u" + strconv.FormatInt(ms, 10)
		if _, exists := s.locate(id); !exists {
			s.lastID = ms
			return id
		}
		ms++
	}
}

// Refresh throws away local edits and the cached snapshot, reseeds the
// catalog and writes it out immediately.
func (s *Store) Refresh(ctx context.Context) {
	s.ensureInit()
	if s.adapter != nil {
		if err := s.adapter.Clear(ctx); err != nil {
			s.logger.Warn("clear cached catalog failed", "error", err)
		}
	}
	payload, origin := s.fetchSeed(ctx)
	popular := s.attachFlatmates(payload.Popular)
	nearby := s.attachFlatmates(payload.Nearby)

	s.mu.Lock()
	s.popular, s.nearby = popular, nearby
	s.dirty = true
	s.stopTimerLocked()
	s.mu.Unlock()

	s.flush(ctx)
	s.logger.Info("catalog refreshed", "origin", string(origin))
	s.publish(Event{Kind: EventRefreshed})
}

// Popular returns a copy of the popular partition.
func (s *Store) Popular() []listing.Listing {
	s.ensureInit()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listing.CloneAll(s.popular)
}

// Nearby returns a copy of the nearby partition.
func (s *Store) Nearby() []listing.Listing {
	s.ensureInit()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listing.CloneAll(s.nearby)
}

// Partition returns a copy of the named partition.
func (s *Store) Partition(p listing.Partition) []listing.Listing {
	if p == listing.Nearby {
		return s.Nearby()
	}
	return s.Popular()
}

// All returns popular then nearby, de-duplicated by id.
func (s *Store) All() []listing.Listing {
	s.ensureInit()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view.Merge(s.popular, s.nearby)
}

// Saved returns the bookmarked listings across both partitions.
func (s *Store) Saved() []listing.Listing {
	return view.Saved(s.All())
}

// Len returns the number of listings in both partitions.
func (s *Store) Len() int {
	s.ensureInit()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.popular) + len(s.nearby)
}

// Snapshot returns the current catalog as a persistable envelope.
func (s *Store) Snapshot() persist.Snapshot {
	s.ensureInit()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() persist.Snapshot {
	return persist.Snapshot{
		Popular: listing.CloneAll(s.popular),
		Nearby:  listing.CloneAll(s.nearby),
		SavedAt: s.now().UnixMilli(),
	}
}
