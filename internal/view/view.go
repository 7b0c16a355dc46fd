// Package view derives display lists from catalog partitions. Every
// function is pure: inputs are never modified and results are fresh copies.
package view

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/five82/flatmatch/internal/listing"
)

// ParsePrice extracts the first run of digits from a price label such as
// "$420/wk". ok is false when the label has no digits.
func ParsePrice(label string) (price int, ok bool) {
	start := strings.IndexFunc(label, isDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(label) && isDigit(rune(label[end])) {
		end++
	}
	n, err := strconv.Atoi(label[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// Category chips shown on the home screen. The first four map onto a
// listing type; the rest are keyword searches.
const (
	CategoryStudios     = "Studios"
	CategoryOneBed      = "1-Bed"
	CategoryTwoBed      = "2-Bed"
	CategoryFlatmates   = "Flatmates"
	CategoryPetFriendly = "Pet Friendly"
	CategoryNearUni     = "Near Uni"
)

// Categories returns the chips in display order.
func Categories() []string {
	return []string{
		CategoryStudios, CategoryOneBed, CategoryTwoBed,
		CategoryFlatmates, CategoryPetFriendly, CategoryNearUni,
	}
}

var categoryTypes = map[string]listing.Type{
	CategoryStudios:   listing.Studio,
	CategoryOneBed:    listing.OneBedroom,
	CategoryTwoBed:    listing.TwoBedroom,
	CategoryFlatmates: listing.FlatmateWanted,
}

// Filters are applied conjunctively. Zero values mean "no constraint".
type Filters struct {
	Query    string
	Location string
	Type     listing.Type
	Category string
	MinPrice *int
	MaxPrice *int
	Sort     Sort
}

// Active reports whether any predicate is set. Sort alone does not count.
func (f Filters) Active() bool {
	return strings.TrimSpace(f.Query) != "" || strings.TrimSpace(f.Location) != "" ||
		f.Type != "" || f.Category != "" || f.MinPrice != nil || f.MaxPrice != nil
}

// Apply filters then sorts a copy of items.
//
// Listings whose price has no digits pass both price bounds so range
// filters never hide unpriced rooms.
func Apply(items []listing.Listing, f Filters) []listing.Listing {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	loc := strings.ToLower(strings.TrimSpace(f.Location))

	out := make([]listing.Listing, 0, len(items))
	for _, l := range items {
		if !matchCategory(l, f.Category) {
			continue
		}
		if query != "" && !containsAny(query, l.Title, l.Subtitle, l.Location) {
			continue
		}
		if loc != "" && !containsAny(loc, l.Location, l.Subtitle, l.Title) {
			continue
		}
		if f.Type != "" && l.Type != f.Type {
			continue
		}
		if !inPriceRange(l.Price, f.MinPrice, f.MaxPrice) {
			continue
		}
		out = append(out, l.Clone())
	}
	sortInPlace(out, f.Sort)
	return out
}

func matchCategory(l listing.Listing, category string) bool {
	if category == "" {
		return true
	}
	if typ, ok := categoryTypes[category]; ok {
		return l.Type == typ
	}
	hay := strings.ToLower(l.Title + " " + l.Subtitle + " " + l.Location)
	switch category {
	case CategoryPetFriendly:
		return strings.Contains(hay, "pet")
	case CategoryNearUni:
		return strings.Contains(hay, "uni")
	default:
		return strings.Contains(hay, strings.ToLower(category))
	}
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func inPriceRange(label string, minPrice, maxPrice *int) bool {
	price, ok := ParsePrice(label)
	if !ok {
		return true
	}
	if minPrice != nil && price < *minPrice {
		return false
	}
	if maxPrice != nil && price > *maxPrice {
		return false
	}
	return true
}

// Sort is a display order.
type Sort int

const (
	// Relevance keeps input order.
	Relevance Sort = iota
	PriceAsc
	PriceDesc
	Nearest
)

// Sorts returns every order in cycle order.
func Sorts() []Sort { return []Sort{Relevance, PriceAsc, PriceDesc, Nearest} }

func (s Sort) String() string {
	switch s {
	case PriceAsc:
		return "Price: Low → High"
	case PriceDesc:
		return "Price: High → Low"
	case Nearest:
		return "Nearest"
	default:
		return "Relevance"
	}
}

// Key is the stable identifier used in preference files.
func (s Sort) Key() string {
	switch s {
	case PriceAsc:
		return "price_asc"
	case PriceDesc:
		return "price_desc"
	case Nearest:
		return "nearest"
	default:
		return "relevance"
	}
}

// Next returns the following order, wrapping around.
func (s Sort) Next() Sort {
	all := Sorts()
	i := slices.Index(all, s)
	return all[(i+1)%len(all)]
}

// ParseSort accepts either a Key or a display label. Unknown input
// yields Relevance and ok=false.
func ParseSort(v string) (Sort, bool) {
	v = strings.TrimSpace(v)
	for _, s := range Sorts() {
		if strings.EqualFold(v, s.Key()) || strings.EqualFold(v, s.String()) {
			return s, true
		}
	}
	return Relevance, false
}

// SortListings returns a sorted copy of items.
func SortListings(items []listing.Listing, order Sort) []listing.Listing {
	out := listing.CloneAll(items)
	sortInPlace(out, order)
	return out
}

func sortInPlace(items []listing.Listing, order Sort) {
	switch order {
	case PriceAsc:
		slices.SortStableFunc(items, func(a, b listing.Listing) int {
			return compareKnownFirst(priceKey(a), priceKey(b), cmp.Compare[int])
		})
	case PriceDesc:
		slices.SortStableFunc(items, func(a, b listing.Listing) int {
			return compareKnownFirst(priceKey(a), priceKey(b), func(x, y int) int { return cmp.Compare(y, x) })
		})
	case Nearest:
		slices.SortStableFunc(items, func(a, b listing.Listing) int {
			return compareKnownFirst(distanceKey(a), distanceKey(b), cmp.Compare[float64])
		})
	}
}

type optional[T any] struct {
	v  T
	ok bool
}

func priceKey(l listing.Listing) optional[int] {
	p, ok := ParsePrice(l.Price)
	return optional[int]{p, ok}
}

func distanceKey(l listing.Listing) optional[float64] {
	if l.Distance == nil {
		return optional[float64]{}
	}
	return optional[float64]{*l.Distance, true}
}

// compareKnownFirst orders present values with cmpFn and puts missing
// values after all present ones.
func compareKnownFirst[T any](a, b optional[T], cmpFn func(T, T) int) int {
	switch {
	case a.ok && b.ok:
		return cmpFn(a.v, b.v)
	case a.ok:
		return -1
	case b.ok:
		return 1
	default:
		return 0
	}
}

// Merge concatenates partitions and drops repeated ids; the first
// occurrence wins.
func Merge(partitions ...[]listing.Listing) []listing.Listing {
	seen := make(map[string]struct{})
	out := make([]listing.Listing, 0)
	for _, part := range partitions {
		for _, l := range part {
			if _, dup := seen[l.ID]; dup {
				continue
			}
			seen[l.ID] = struct{}{}
			out = append(out, l.Clone())
		}
	}
	return out
}

// Saved keeps the bookmarked listings.
func Saved(items []listing.Listing) []listing.Listing {
	out := make([]listing.Listing, 0)
	for _, l := range items {
		if l.Saved {
			out = append(out, l.Clone())
		}
	}
	return out
}
