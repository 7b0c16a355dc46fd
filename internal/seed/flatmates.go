package seed

import "github.com/five82/flatmatch/internal/listing"

// FlatmateLookup resolves the flatmates living at a listing.
type FlatmateLookup interface {
	FlatmatesFor(listingID string) []listing.Flatmate
}

// FlatmateTable is a static listing id → flatmates side table.
type FlatmateTable map[string][]listing.Flatmate

// FlatmatesFor returns a copy of the flatmates for listingID. A miss yields
// an empty slice.
func (t FlatmateTable) FlatmatesFor(listingID string) []listing.Flatmate {
	found := t[listingID]
	out := make([]listing.Flatmate, len(found))
	copy(out, found)
	return out
}

func fm(id, name, bio string) listing.Flatmate {
	return listing.Flatmate{ID: id, Name: name, Bio: bio, Verified: true}
}

// DefaultFlatmates is the demo side table for the fixture catalog.
var DefaultFlatmates = FlatmateTable{
	"p1": {
		fm("f1", "Alex", "Software engineer. Early riser. Loves cycling."),
		fm("f2", "Sam", "Nurse working nights. Bakes on weekends."),
		fm("f3", "Riley", "PhD student. Into indoor plants & pottery."),
	},
	"p3": {
		fm("f1", "Jordan", "Designer. Climbs on weekends."),
		fm("f2", "Ari", "Barista. Cat person."),
	},
	"n1": {
		fm("f1", "Taylor", "Retail. Morning shifts."),
		fm("f2", "Morgan", "Musician. Quiet after 9pm."),
	},
	"n3": {
		fm("f1", "Casey", "Hospitality. Works late."),
	},
}
