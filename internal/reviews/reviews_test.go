package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func fixtures() Fixtures {
	return Fixtures{Now: func() time.Time { return testNow }}
}

func reviewIDs(rs []Review) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestSort_Orders(t *testing.T) {
	p1, err := fixtures().ByListing(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ByListing: %v", err)
	}
	tests := []struct {
		order Order
		want  []string
	}{
		{Relevant, []string{"p1-r2", "p1-r1", "p1-r5", "p1-r3", "p1-r4"}},
		{Newest, []string{"p1-r1", "p1-r4", "p1-r2", "p1-r3", "p1-r5"}},
		{Highest, []string{"p1-r2", "p1-r1", "p1-r5", "p1-r3", "p1-r4"}},
		{Lowest, []string{"p1-r4", "p1-r3", "p1-r5", "p1-r1", "p1-r2"}},
	}
	for _, tt := range tests {
		t.Run(tt.order.String(), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, reviewIDs(Sort(p1, tt.order, testNow))); diff != "" {
				t.Fatalf("Sort (-want +got):\n%s", diff)
			}
		})
	}
	if p1[0].ID != "p1-r1" {
		t.Fatal("Sort reordered its input")
	}
}

func TestSort_TiesPreferRecent(t *testing.T) {
	rs := []Review{
		{ID: "old", Rating: 4, CreatedAt: testNow.AddDate(0, 0, -10)},
		{ID: "new", Rating: 4, CreatedAt: testNow.AddDate(0, 0, -1)},
	}
	if got := reviewIDs(Sort(rs, Highest, testNow)); got[0] != "new" {
		t.Fatalf("Highest tie order = %v, want new first", got)
	}
}

func TestAverage(t *testing.T) {
	p1, _ := fixtures().ByListing(context.Background(), "p1")
	if got := Average(p1); math.Abs(got-3.8) > 1e-9 {
		t.Fatalf("Average = %v, want 3.8", got)
	}
	if Average(nil) != 0 {
		t.Fatal("Average(nil) != 0")
	}
}

func TestLoad_UsesServiceReviews(t *testing.T) {
	got, err := Load(context.Background(), fixtures(), "n1", Meta{Count: 50}, testNow)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"n1-r1", "n1-r2"}, reviewIDs(got)); diff != "" {
		t.Fatalf("Load (-want +got):\n%s", diff)
	}
}

func TestLoad_SynthesizesWhenServiceEmpty(t *testing.T) {
	meta := Meta{Average: 4.2, Count: 88}
	first, err := Load(context.Background(), fixtures(), "p2", meta, testNow)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(first) < minSample || len(first) > maxSample {
		t.Fatalf("synthesized %d reviews, want %d..%d", len(first), minSample, maxSample)
	}
	for _, r := range first {
		if r.Rating < 2 || r.Rating > 5 || math.Mod(r.Rating*2, 1) != 0 {
			t.Errorf("rating %v not a half step in 2..5", r.Rating)
		}
		if r.CreatedAt.After(testNow) || testNow.Sub(r.CreatedAt) > 90*24*time.Hour {
			t.Errorf("createdAt %v outside the last 90 days", r.CreatedAt)
		}
		if !strings.HasPrefix(r.ID, "p2-syn-") || r.ListingID != "p2" {
			t.Errorf("review %#v not tied to p2", r)
		}
	}

	again, _ := Load(context.Background(), fixtures(), "p2", meta, testNow)
	if diff := cmp.Diff(first, again); diff != "" {
		t.Fatalf("synthesis not deterministic (-first +again):\n%s", diff)
	}
}

func TestLoad_SynthesisRespectsCount(t *testing.T) {
	got := Synthesize("p4", Meta{Average: 3.9, Count: 2}, testNow)
	if len(got) != 2 {
		t.Fatalf("Synthesize with count 2 = %d reviews", len(got))
	}
}

func TestLoad_NoReviews(t *testing.T) {
	got, err := Load(context.Background(), fixtures(), "p2", Meta{}, testNow)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("Load = %#v, want empty slice", got)
	}
}

type brokenService struct{}

func (brokenService) ByListing(context.Context, string) ([]Review, error) {
	return nil, errors.New("offline")
}

func TestLoad_ServiceError(t *testing.T) {
	if _, err := Load(context.Background(), brokenService{}, "p1", Meta{Count: 3}, testNow); err == nil {
		t.Fatal("Load returned nil error for failing service")
	}
}

func TestHTTPService_ByListing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/listings/p3/reviews" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"listingId": "p3",
			"reviews":   []Review{{ID: "p3-r1", ListingID: "p3", Rating: 4.5, CreatedAt: testNow}},
		})
	}))
	t.Cleanup(server.Close)

	svc, err := NewHTTPService(server.URL + "/api")
	if err != nil {
		t.Fatalf("NewHTTPService: %v", err)
	}
	got, err := svc.ByListing(context.Background(), "p3")
	if err != nil {
		t.Fatalf("ByListing: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p3-r1" || !got[0].CreatedAt.Equal(testNow) {
		t.Fatalf("ByListing = %#v", got)
	}

	if _, err := svc.ByListing(context.Background(), "missing"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("ByListing(missing) error = %v, want 404", err)
	}
}

func TestOrderNext(t *testing.T) {
	if Lowest.Next() != Relevant || Relevant.Next() != Newest {
		t.Fatal("Order.Next does not cycle")
	}
}
