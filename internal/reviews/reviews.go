// Package reviews loads and orders guest reviews for a listing.
package reviews

import (
	"cmp"
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/five82/flatmatch/internal/seed"
)

// Review is one guest review. Rating runs 0..5 in half steps.
type Review struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listingId"`
	Author    string    `json:"author"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
	Body      string    `json:"body"`
	Avatar    string    `json:"avatar,omitempty"`
}

// Service fetches the reviews recorded for a listing.
type Service interface {
	ByListing(ctx context.Context, listingID string) ([]Review, error)
}

// HTTPService reads GET <base>/listings/<id>/reviews.
type HTTPService struct {
	client *seed.Client
}

var _ Service = (*HTTPService)(nil)

// NewHTTPService builds a service for the API rooted at base.
func NewHTTPService(base string) (*HTTPService, error) {
	c, err := seed.NewClient(base)
	if err != nil {
		return nil, err
	}
	return &HTTPService{client: c}, nil
}

// ByListing fetches the listing's reviews.
func (h *HTTPService) ByListing(ctx context.Context, listingID string) ([]Review, error) {
	var payload struct {
		ListingID string   `json:"listingId"`
		Reviews   []Review `json:"reviews"`
	}
	if err := h.client.GetJSON(ctx, &payload, "listings", listingID, "reviews"); err != nil {
		return nil, fmt.Errorf("fetch reviews for %s: %w", listingID, err)
	}
	return payload.Reviews, nil
}

// Meta is what the listing itself claims about its reviews.
type Meta struct {
	Average float64
	Count   int
}

// Load returns the listing's reviews. When the service has none but the
// listing claims some exist, a deterministic sample is synthesized from
// meta so the screen is never inconsistent with the listing card.
func Load(ctx context.Context, svc Service, listingID string, meta Meta, now time.Time) ([]Review, error) {
	got, err := svc.ByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if len(got) > 0 {
		return slices.Clone(got), nil
	}
	if meta.Count > 0 {
		return Synthesize(listingID, meta, now), nil
	}
	return []Review{}, nil
}

var (
	sampleNames = []string{"Kay Cee", "Qiuxiao", "Kane", "Maria", "Liam", "Jordan", "Riley", "Ari", "Taylor", "Sam", "Alex", "Morgan"}
	sampleTexts = []string{
		"Great location and responsive host.",
		"Spotless and quiet, would stay again.",
		"Good value but a bit small.",
		"Could be cleaner.",
		"Comfortable with useful amenities.",
		"Fast wifi and lots of light.",
		"Check-in was easy and quick.",
	}
)

const (
	minSample = 3
	maxSample = 9
)

// Synthesize builds a sample of min(count, 3..9) reviews around the
// listing's average. The same listing id always yields the same sample.
func Synthesize(listingID string, meta Meta, now time.Time) []Review {
	avg := meta.Average
	if avg <= 0 {
		avg = 4.4
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(listingID))
	rng := rand.New(rand.NewPCG(h.Sum64(), uint64(len(listingID))))

	visible := min(maxSample, max(minSample, int(math.Round(5+(rng.Float64()-0.5)*2))))
	n := min(visible, meta.Count)
	out := make([]Review, n)
	for i := range out {
		days := math.Floor(math.Pow(rng.Float64(), 2) * 90)
		out[i] = Review{
			ID:        fmt.Sprintf("%s-syn-%d", listingID, i+1),
			ListingID: listingID,
			Author:    sampleNames[i%len(sampleNames)],
			Rating:    clampHalf(avg + (rng.Float64()-0.5)*1.2),
			CreatedAt: now.Add(-time.Duration(days) * 24 * time.Hour),
			Body:      sampleTexts[i%len(sampleTexts)],
		}
	}
	return out
}

// clampHalf rounds to the nearest half star within 2..5.
func clampHalf(v float64) float64 {
	return math.Max(2, math.Min(5, math.Round(v*2)/2))
}

// Order is a review sort order.
type Order int

const (
	Relevant Order = iota
	Newest
	Highest
	Lowest
)

// Orders returns every order in cycle order.
func Orders() []Order { return []Order{Relevant, Newest, Highest, Lowest} }

func (o Order) String() string {
	switch o {
	case Newest:
		return "Newest"
	case Highest:
		return "Highest rated"
	case Lowest:
		return "Lowest rated"
	default:
		return "Most relevant"
	}
}

// Next returns the following order, wrapping around.
func (o Order) Next() Order {
	all := Orders()
	return all[(slices.Index(all, o)+1)%len(all)]
}

// Relevance blends rating (70%) with recency (30%, halving every 30 days).
func Relevance(r Review, now time.Time) float64 {
	days := math.Max(0, now.Sub(r.CreatedAt).Hours()/24)
	return 0.7*(r.Rating/5) + 0.3*math.Pow(0.5, days/30)
}

// Sort returns a sorted copy of reviews. Ties go to the more recent review.
func Sort(reviews []Review, order Order, now time.Time) []Review {
	out := slices.Clone(reviews)
	newer := func(a, b Review) int { return b.CreatedAt.Compare(a.CreatedAt) }
	slices.SortStableFunc(out, func(a, b Review) int {
		switch order {
		case Newest:
			return newer(a, b)
		case Highest:
			return cmp.Or(cmp.Compare(b.Rating, a.Rating), newer(a, b))
		case Lowest:
			return cmp.Or(cmp.Compare(a.Rating, b.Rating), newer(a, b))
		default:
			return cmp.Or(
				cmp.Compare(Relevance(b, now), Relevance(a, now)),
				newer(a, b),
				cmp.Compare(b.Rating, a.Rating),
			)
		}
	})
	return out
}

// Average returns the mean rating, or zero for no reviews.
func Average(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return sum / float64(len(reviews))
}
