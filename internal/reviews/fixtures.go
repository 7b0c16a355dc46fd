package reviews

import (
	"context"
	"time"
)

type fixtureReview struct {
	id, author string
	rating     float64
	daysAgo    int
	body       string
}

var fixtureReviews = map[string][]fixtureReview{
	"p1": {
		{"p1-r1", "Kay Cee", 4.5, 3, "Great location and responsive host."},
		{"p1-r2", "Qiuxiao", 5.0, 12, "Spotless and quiet, would stay again."},
		{"p1-r3", "Kane", 3.5, 45, "Good value but a bit small."},
		{"p1-r4", "Maria", 2.0, 5, "Could be cleaner."},
		{"p1-r5", "Liam", 4.0, 60, "Comfortable with useful amenities."},
	},
	"p3": {
		{"p3-r1", "Jordan", 4.5, 2, "Bright and spacious."},
		{"p3-r2", "Riley", 4.5, 9, "Parking was a big plus."},
		{"p3-r3", "Ari", 5.0, 30, "Loved it!"},
	},
	"n1": {
		{"n1-r1", "Taylor", 4.0, 1, "Walkable to CBD."},
		{"n1-r2", "Sam", 3.5, 7, "A bit noisy on weekends."},
	},
}

// Fixtures serves the built-in demo reviews, dated relative to Now.
type Fixtures struct {
	Now func() time.Time
}

var _ Service = Fixtures{}

// ByListing returns a fresh copy of the listing's demo reviews.
func (f Fixtures) ByListing(ctx context.Context, listingID string) ([]Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := time.Now()
	if f.Now != nil {
		now = f.Now()
	}
	src := fixtureReviews[listingID]
	out := make([]Review, 0, len(src))
	for _, r := range src {
		out = append(out, Review{
			ID:        r.id,
			ListingID: listingID,
			Author:    r.author,
			Rating:    r.rating,
			CreatedAt: now.AddDate(0, 0, -r.daysAgo),
			Body:      r.body,
		})
	}
	return out, nil
}
