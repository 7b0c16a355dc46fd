package listing

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuild_FillsDefaults(t *testing.T) {
	l := NewRequest{Location: "Hamilton", Images: []string{"a.jpg", "b.jpg"}}.Build("u1")

	if l.ID != "u1" {
		t.Fatalf("ID = %q, want u1", l.ID)
	}
	if l.Title != defaultTitle {
		t.Fatalf("Title = %q, want %q", l.Title, defaultTitle)
	}
	if l.Subtitle != "Hamilton" {
		t.Fatalf("Subtitle = %q, want location fallback", l.Subtitle)
	}
	if l.Badge != "New" || l.Saved {
		t.Fatalf("Badge/Saved = %q/%v, want New/false", l.Badge, l.Saved)
	}
	if l.Thumbnail != "a.jpg" {
		t.Fatalf("Thumbnail = %q, want first image", l.Thumbnail)
	}
	if l.RatingValue() != 0 || l.Reviews() != 0 || l.Rating == nil || l.ReviewCount == nil {
		t.Fatalf("rating/reviews = %v/%v, want explicit zeros", l.Rating, l.ReviewCount)
	}
	if l.Flatmates == nil || len(l.Flatmates) != 0 {
		t.Fatalf("Flatmates = %#v, want empty non-nil", l.Flatmates)
	}
	if l.ExternalURL != "#" {
		t.Fatalf("ExternalURL = %q, want #", l.ExternalURL)
	}
}

func TestBuild_DoesNotAliasRequestSlices(t *testing.T) {
	req := NewRequest{Images: []string{"a.jpg"}}
	l := req.Build("u1")
	req.Images[0] = "changed.jpg"
	if l.Images[0] != "a.jpg" {
		t.Fatalf("Images[0] = %q, want a.jpg", l.Images[0])
	}
}

func TestNewRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     NewRequest
		wantErr bool
	}{
		{"empty", NewRequest{}, false},
		{"full", NewRequest{Title: "Room", Type: Studio, Rating: Float(4.5), ReviewCount: Int(3), ContactEmail: "host@example.com", ExternalURL: "https://example.com/l/1"}, false},
		{"rating above five", NewRequest{Rating: Float(5.5)}, true},
		{"negative rating", NewRequest{Rating: Float(-1)}, true},
		{"negative reviews", NewRequest{ReviewCount: Int(-2)}, true},
		{"bad email", NewRequest{ContactEmail: "nope"}, true},
		{"bad url", NewRequest{ExternalURL: "not a url"}, true},
		{"unknown type", NewRequest{Type: Type("Castle")}, true},
		{"negative distance", NewRequest{Distance: Float(-0.1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "invalid listing") {
				t.Fatalf("error = %q, want it to mention invalid listing", err)
			}
		})
	}
}

func TestPatch_ChangesOnlyNamedFields(t *testing.T) {
	orig := Listing{
		ID:       "p1",
		Title:    "Sunny 1BR",
		Price:    "$420/wk",
		Distance: Float(1.0),
		Images:   []string{"x.jpg"},
	}
	got := Patch{Price: String("$500")}.Apply(orig)

	want := orig.Clone()
	want.Price = "$500"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Apply mismatch (-want +got):\n%s", diff)
	}
	if orig.Price != "$420/wk" {
		t.Fatalf("original mutated: price = %q", orig.Price)
	}
}

func TestPatch_Empty(t *testing.T) {
	if !(Patch{}).Empty() {
		t.Fatal("zero Patch should be empty")
	}
	if (Patch{Saved: Bool(true)}).Empty() {
		t.Fatal("Patch with Saved set should not be empty")
	}
}

func TestClone_IsDeep(t *testing.T) {
	orig := Listing{ID: "p1", Rating: Float(4), Images: []string{"a"}, Flatmates: []Flatmate{{ID: "f1"}}}
	dup := orig.Clone()
	*dup.Rating = 1
	dup.Images[0] = "b"
	dup.Flatmates[0].ID = "f2"
	if *orig.Rating != 4 || orig.Images[0] != "a" || orig.Flatmates[0].ID != "f1" {
		t.Fatalf("Clone shares state with original: %#v", orig)
	}
}

func TestNonFiniteNumbersAreDropped(t *testing.T) {
	inf := math.Inf(1)
	l := NewRequest{Distance: &inf, Rating: Float(math.NaN())}.Build("u1")
	if l.Distance != nil || l.RatingValue() != 0 {
		t.Fatalf("Build kept non-finite values: distance %v rating %v", l.Distance, l.RatingValue())
	}

	base := Listing{ID: "p1", Distance: Float(1.2), Rating: Float(4)}
	out := Patch{Distance: Float(math.NaN()), Rating: &inf}.Apply(base)
	if out.Distance != nil || *out.Rating != 4 {
		t.Fatalf("Apply = distance %v rating %v, want nil and 4", out.Distance, *out.Rating)
	}

	if err := (NewRequest{Distance: &inf}).Validate(); err == nil {
		t.Fatal("Validate accepted an infinite distance")
	}
	if err := (NewRequest{Distance: Float(0.8), Rating: Float(4.5)}).Validate(); err != nil {
		t.Fatalf("Validate(finite) = %v", err)
	}
}

func TestFlatmateInitials(t *testing.T) {
	tests := map[string]string{
		"Alex":          "A",
		"kay cee":       "KC",
		"Mary Ann Lee":  "MA",
		"":              "",
		"  ari   rose ": "AR",
		"Émile Zola":    "ÉZ",
		"ōta ümit":      "ŌÜ",
	}
	for name, want := range tests {
		if got := (Flatmate{Name: name}).Initials(); got != want {
			t.Errorf("Initials(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestTypeValid(t *testing.T) {
	for _, typ := range Types() {
		if !typ.Valid() || typ.Label() == "" {
			t.Errorf("type %q should be valid with a label", typ)
		}
	}
	if Type("Castle").Valid() {
		t.Error("unknown type reported valid")
	}
}
