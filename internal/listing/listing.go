// Package listing defines the room listing records held by the catalog.
package listing

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Type is the kind of accommodation a listing advertises.
type Type string

const (
	Studio         Type = "Studio"
	OneBedroom     Type = "1BR"
	TwoBedroom     Type = "2BR"
	FlatmateWanted Type = "Flatmate"
)

// Types returns every listing type in display order.
func Types() []Type {
	return []Type{Studio, OneBedroom, TwoBedroom, FlatmateWanted}
}

// Label returns a human readable name for the type.
func (t Type) Label() string {
	switch t {
	case Studio:
		return "Studio"
	case OneBedroom:
		return "1 bedroom"
	case TwoBedroom:
		return "2 bedroom"
	case FlatmateWanted:
		return "Flatmate wanted"
	default:
		return ""
	}
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	switch t {
	case Studio, OneBedroom, TwoBedroom, FlatmateWanted:
		return true
	}
	return false
}

// Partition names one of the two collections that make up the catalog.
type Partition string

const (
	Popular Partition = "popular"
	Nearby  Partition = "nearby"
)

// Partitions returns the partitions in merge order.
func Partitions() []Partition {
	return []Partition{Popular, Nearby}
}

// Flatmate is a short profile of someone already living at a listing.
type Flatmate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Verified bool   `json:"verified,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Bio      string `json:"about,omitempty"`
	Gender   string `json:"gender,omitempty"`
}

// Initials returns up to two upper-cased initials for avatar placeholders.
func (f Flatmate) Initials() string {
	var b strings.Builder
	for i, word := range strings.Fields(f.Name) {
		if i == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Listing is a leasing or room advertisement.
type Listing struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Subtitle     string     `json:"subtitle,omitempty"`
	Thumbnail    string     `json:"img,omitempty"`
	Price        string     `json:"price,omitempty"`
	Badge        string     `json:"badge,omitempty"`
	Type         Type       `json:"type,omitempty"`
	Location     string     `json:"loc,omitempty"`
	Distance     *float64   `json:"km,omitempty"`
	Saved        bool       `json:"saved"`
	Description  string     `json:"desc,omitempty"`
	Rating       *float64   `json:"rating,omitempty"`
	ReviewCount  *int       `json:"reviews,omitempty"`
	Images       []string   `json:"images"`
	Flatmates    []Flatmate `json:"flatmates"`
	ExternalURL  string     `json:"tradeMeUrl,omitempty"`
	ContactEmail string     `json:"hostEmail,omitempty"`
}

// Clone returns a deep copy so callers never share slices or pointers
// with the original.
func (l Listing) Clone() Listing {
	dup := l
	if l.Distance != nil {
		d := *l.Distance
		dup.Distance = &d
	}
	if l.Rating != nil {
		r := *l.Rating
		dup.Rating = &r
	}
	if l.ReviewCount != nil {
		c := *l.ReviewCount
		dup.ReviewCount = &c
	}
	if l.Images != nil {
		dup.Images = make([]string, len(l.Images))
		copy(dup.Images, l.Images)
	}
	if l.Flatmates != nil {
		dup.Flatmates = make([]Flatmate, len(l.Flatmates))
		copy(dup.Flatmates, l.Flatmates)
	}
	return dup
}

// CloneAll deep-copies a slice of listings. A nil input yields an empty,
// non-nil slice so snapshots always serialize partitions as arrays.
func CloneAll(items []Listing) []Listing {
	dup := make([]Listing, len(items))
	for i, item := range items {
		dup[i] = item.Clone()
	}
	return dup
}

// RatingValue returns the rating or zero when unset.
func (l Listing) RatingValue() float64 {
	if l.Rating == nil {
		return 0
	}
	return *l.Rating
}

// Reviews returns the review count or zero when unset.
func (l Listing) Reviews() int {
	if l.ReviewCount == nil {
		return 0
	}
	return *l.ReviewCount
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
