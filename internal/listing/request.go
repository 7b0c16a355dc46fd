package listing

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	defaultTitle       = "New room"
	defaultBadge       = "New"
	defaultExternalURL = "#"
)

// NewRequest carries the fields a user supplies when listing a room.
// Zero values mean "not supplied" and are filled in by Build.
type NewRequest struct {
	// ID fixes the identifier; empty lets the catalog generate one.
	ID           string
	Title        string
	Subtitle     string
	Thumbnail    string
	Price        string
	Badge        string
	Type         Type     `validate:"omitempty,oneof=Studio 1BR 2BR Flatmate"`
	Location     string
	Distance     *float64 `validate:"omitempty,finite,gte=0"`
	Description  string
	Rating       *float64 `validate:"omitempty,finite,gte=0,lte=5"`
	ReviewCount  *int     `validate:"omitempty,gte=0"`
	Images       []string
	Flatmates    []Flatmate
	ExternalURL  string `validate:"omitempty,url"`
	ContactEmail string `validate:"omitempty,email"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			f := fl.Field()
			if f.Kind() != reflect.Float32 && f.Kind() != reflect.Float64 {
				return true
			}
			return isFinite(f.Float())
		})
	})
	return validate
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// finitePtr copies v, dropping NaN and infinities to nil. JSON cannot
// encode them, so one in the catalog would fail every later flush.
func finitePtr(v *float64) *float64 {
	if v == nil || !isFinite(*v) {
		return nil
	}
	d := *v
	return &d
}

// Validate checks the request against the listing invariants.
func (r NewRequest) Validate() error {
	if err := validatorInstance().Struct(r); err != nil {
		return fmt.Errorf("invalid listing: %w", err)
	}
	return nil
}

// Build produces a fully populated listing with the given id. It is the
// only place default values for new listings are decided.
func (r NewRequest) Build(id string) Listing {
	images := append([]string{}, r.Images...)
	flatmates := append([]Flatmate{}, r.Flatmates...)

	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = defaultTitle
	}
	subtitle := strings.TrimSpace(r.Subtitle)
	if subtitle == "" {
		subtitle = strings.TrimSpace(r.Location)
	}
	thumb := r.Thumbnail
	if thumb == "" && len(images) > 0 {
		thumb = images[0]
	}
	badge := r.Badge
	if badge == "" {
		badge = defaultBadge
	}
	external := r.ExternalURL
	if external == "" {
		external = defaultExternalURL
	}
	rating := 0.0
	if rp := finitePtr(r.Rating); rp != nil {
		rating = *rp
	}
	reviews := 0
	if r.ReviewCount != nil {
		reviews = *r.ReviewCount
	}

	l := Listing{
		ID:           id,
		Title:        title,
		Subtitle:     subtitle,
		Thumbnail:    thumb,
		Price:        r.Price,
		Badge:        badge,
		Type:         r.Type,
		Location:     r.Location,
		Saved:        false,
		Description:  r.Description,
		Rating:       &rating,
		ReviewCount:  &reviews,
		Images:       images,
		Flatmates:    flatmates,
		ExternalURL:  external,
		ContactEmail: r.ContactEmail,
	}
	l.Distance = finitePtr(r.Distance)
	return l
}

// Patch names the listing attributes to replace. Nil fields are left
// untouched. The identifier cannot be patched.
type Patch struct {
	Title        *string
	Subtitle     *string
	Thumbnail    *string
	Price        *string
	Badge        *string
	Type         *Type
	Location     *string
	Distance     *float64
	Saved        *bool
	Description  *string
	Rating       *float64
	ReviewCount  *int
	Images       []string
	Flatmates    []Flatmate
	ExternalURL  *string
	ContactEmail *string
}

// Apply returns a copy of l with the patch's fields merged in. A
// non-finite distance clears it; a non-finite rating is ignored.
func (p Patch) Apply(l Listing) Listing {
	out := l.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Subtitle != nil {
		out.Subtitle = *p.Subtitle
	}
	if p.Thumbnail != nil {
		out.Thumbnail = *p.Thumbnail
	}
	if p.Price != nil {
		out.Price = *p.Price
	}
	if p.Badge != nil {
		out.Badge = *p.Badge
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.Distance != nil {
		out.Distance = finitePtr(p.Distance)
	}
	if p.Saved != nil {
		out.Saved = *p.Saved
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if r := finitePtr(p.Rating); r != nil {
		out.Rating = r
	}
	if p.ReviewCount != nil {
		c := *p.ReviewCount
		out.ReviewCount = &c
	}
	if p.Images != nil {
		out.Images = append([]string{}, p.Images...)
	}
	if p.Flatmates != nil {
		out.Flatmates = append([]Flatmate{}, p.Flatmates...)
	}
	if p.ExternalURL != nil {
		out.ExternalURL = *p.ExternalURL
	}
	if p.ContactEmail != nil {
		out.ContactEmail = *p.ContactEmail
	}
	return out
}

// Empty reports whether the patch would change nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Subtitle == nil && p.Thumbnail == nil &&
		p.Price == nil && p.Badge == nil && p.Type == nil && p.Location == nil &&
		p.Distance == nil && p.Saved == nil && p.Description == nil &&
		p.Rating == nil && p.ReviewCount == nil && p.Images == nil &&
		p.Flatmates == nil && p.ExternalURL == nil && p.ContactEmail == nil
}
