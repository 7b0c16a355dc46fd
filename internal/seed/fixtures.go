package seed

import (
	"context"

	"github.com/five82/flatmatch/internal/listing"
)

// Payload is the full catalog as delivered by a Source.
type Payload struct {
	Popular []listing.Listing `json:"popular"`
	Nearby  []listing.Listing `json:"nearby"`
}

// Source supplies the initial catalog when nothing has been cached locally.
type Source interface {
	FetchAll(ctx context.Context) (Payload, error)
}

// Fixtures serves the built-in demo catalog.
type Fixtures struct{}

var _ Source = Fixtures{}

// FetchAll returns fresh copies of the fixture listings.
func (Fixtures) FetchAll(ctx context.Context) (Payload, error) {
	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}
	return FixturePayload(), nil
}

// FixturePayload returns the demo catalog without going through a Source.
func FixturePayload() Payload {
	return Payload{
		Popular: listing.CloneAll(popularFixtures),
		Nearby:  listing.CloneAll(nearbyFixtures),
	}
}

func fixture(id, title, subtitle, price, badge string, typ listing.Type, loc string, km, rating float64, reviews int) listing.Listing {
	return listing.Listing{
		ID:          id,
		Title:       title,
		Subtitle:    subtitle,
		Price:       price,
		Badge:       badge,
		Type:        typ,
		Location:    loc,
		Distance:    listing.Float(km),
		Rating:      listing.Float(rating),
		ReviewCount: listing.Int(reviews),
	}
}

var popularFixtures = []listing.Listing{
	fixture("p1", "Sunny 1BR near CBD", "Hamilton Central", "$420/wk", "Popular", listing.OneBedroom, "Hamilton", 1.0, 4.6, 152),
	fixture("p2", "Modern studio", "Hillcrest", "$350/wk", "", listing.Studio, "Hillcrest", 2.2, 4.2, 88),
	fixture("p3", "2BR with parking", "Rototuna", "$520/wk", "", listing.TwoBedroom, "Rototuna", 4.5, 4.8, 231),
	fixture("p4", "Flatmate wanted", "Frankton", "$210/wk", "", listing.FlatmateWanted, "Frankton", 3.6, 3.9, 47),
}

var nearbyFixtures = []listing.Listing{
	fixture("n1", "City studio", "0.5 km • CBD", "$380/wk", "Nearby", listing.Studio, "CBD", 0.5, 4.3, 61),
	fixture("n2", "Cozy 1BR", "1.2 km • River Rd", "$410/wk", "", listing.OneBedroom, "River Rd", 1.2, 4.5, 104),
	fixture("n3", "Shared room", "1.9 km • Five Cross", "$180/wk", "", listing.FlatmateWanted, "Five Cross", 1.9, 3.7, 23),
	fixture("n4", "Large 2BR", "2.4 km • Claudelands", "$540/wk", "", listing.TwoBedroom, "Claudelands", 2.4, 4.9, 312),
}
