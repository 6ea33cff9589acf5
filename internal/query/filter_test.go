package query

import (
	"reflect"
	"testing"

	"estateflow/api/internal/store"
)

func sampleListings() []store.Listing {
	return []store.Listing{
		{ID: "l1", Title: "Seafront Villa", Description: "Private beach access", Location: "Jounieh", Type: "Villa", Size: 450, Bedrooms: 5, SellingPrice: 2_400_000, IsHotDeal: true},
		{ID: "l2", Title: "Downtown Apartment", Description: "City views", Location: "Beirut", Type: "Apartment", Size: 120, Bedrooms: 2, SellingPrice: 650_000},
		{ID: "l3", Title: "Hillside Villa", Description: "Panoramic terrace", Location: "Broummana", Type: "Villa", Size: 380, Bedrooms: 4, SellingPrice: 1_800_000},
		{ID: "l4", Title: "Corner Office Space", Description: "Commercial district", Location: "Beirut", Type: "Commercial", Size: 200, Bedrooms: 0, SellingPrice: 5_500_000},
		{ID: "l5", Title: "Garden Apartment", Description: "Quiet neighborhood near the beach", Location: "Batroun", Type: "Apartment", Size: 95, Bedrooms: 3, SellingPrice: 480_000, IsHotDeal: true},
	}
}

func ids(listings []store.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func TestAllWildcardsIsIdentity(t *testing.T) {
	listings := sampleListings()
	got := Filter(listings, "", Facets{Type: Wildcard, Location: Wildcard, PriceRange: Wildcard})
	if !reflect.DeepEqual(ids(got), ids(listings)) {
		t.Fatalf("wildcard filter changed the set or order: %v", ids(got))
	}
}

func TestEmptyInput(t *testing.T) {
	got := Filter(nil, "villa", Facets{Type: "Villa"})
	if len(got) != 0 {
		t.Fatalf("expected empty result for empty input")
	}
}

func TestTypeFacetPreservesOrder(t *testing.T) {
	got := Filter(sampleListings(), "", Facets{Type: "Villa"})
	want := []string{"l1", "l3"}
	if !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
	for _, l := range got {
		if l.Type != "Villa" {
			t.Fatalf("non-villa leaked through: %s", l.ID)
		}
	}
}

func TestTextSearchIsCaseInsensitiveSubstring(t *testing.T) {
	got := Filter(sampleListings(), "BEACH", Facets{})
	want := []string{"l1", "l5"}
	if !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}

	// Matches against location too.
	got = Filter(sampleListings(), "beirut", Facets{})
	want = []string{"l2", "l4"}
	if !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
}

func TestFacetsComposeWithAnd(t *testing.T) {
	got := Filter(sampleListings(), "", Facets{Type: "Apartment", Location: "Beirut"})
	if !reflect.DeepEqual(ids(got), []string{"l2"}) {
		t.Fatalf("expected [l2], got %v", ids(got))
	}
}

func TestPriceBuckets(t *testing.T) {
	listings := sampleListings()

	cases := []struct {
		bucket string
		want   []string
	}{
		{PriceUnder1M, []string{"l2", "l5"}},
		{Price1MTo5M, []string{"l1", "l3"}},
		{PriceOver5M, []string{"l4"}},
		{Wildcard, []string{"l1", "l2", "l3", "l4", "l5"}},
	}
	for _, tc := range cases {
		got := Filter(listings, "", Facets{PriceRange: tc.bucket})
		if !reflect.DeepEqual(ids(got), tc.want) {
			t.Fatalf("bucket %q: expected %v, got %v", tc.bucket, tc.want, ids(got))
		}
	}
}

func TestBucketBoundariesAreInclusive(t *testing.T) {
	listings := []store.Listing{
		{ID: "low", SellingPrice: 1_000_000},
		{ID: "high", SellingPrice: 5_000_000},
	}
	got := Filter(listings, "", Facets{PriceRange: Price1MTo5M})
	if !reflect.DeepEqual(ids(got), []string{"low", "high"}) {
		t.Fatalf("expected both boundary listings, got %v", ids(got))
	}
}

func TestMinBedroomsFloor(t *testing.T) {
	got := Filter(sampleListings(), "", Facets{MinBedrooms: 4})
	if !reflect.DeepEqual(ids(got), []string{"l1", "l3"}) {
		t.Fatalf("expected [l1 l3], got %v", ids(got))
	}
}

func TestSizeRangeBounds(t *testing.T) {
	got := Filter(sampleListings(), "", Facets{MinSize: 100, MaxSize: 400})
	if !reflect.DeepEqual(ids(got), []string{"l2", "l3", "l4"}) {
		t.Fatalf("expected [l2 l3 l4], got %v", ids(got))
	}
}

func TestHotDealFlag(t *testing.T) {
	got := Filter(sampleListings(), "", Facets{HotDealOnly: true})
	if !reflect.DeepEqual(ids(got), []string{"l1", "l5"}) {
		t.Fatalf("expected hot deals only, got %v", ids(got))
	}
}

func TestFilterIsDeterministic(t *testing.T) {
	listings := sampleListings()
	facets := Facets{Type: "Apartment", PriceRange: PriceUnder1M}
	first := Filter(listings, "apartment", facets)
	second := Filter(listings, "apartment", facets)
	if !reflect.DeepEqual(ids(first), ids(second)) {
		t.Fatalf("identical inputs produced different outputs")
	}
}

func TestOptionsDeriveDistinctValuesWithWildcardFirst(t *testing.T) {
	opts := Options(sampleListings())

	wantTypes := []string{Wildcard, "Villa", "Apartment", "Commercial"}
	if !reflect.DeepEqual(opts.Types, wantTypes) {
		t.Fatalf("expected types %v, got %v", wantTypes, opts.Types)
	}

	wantLocations := []string{Wildcard, "Jounieh", "Beirut", "Broummana", "Batroun"}
	if !reflect.DeepEqual(opts.Locations, wantLocations) {
		t.Fatalf("expected locations %v, got %v", wantLocations, opts.Locations)
	}
}

func TestOptionsOnEmptySet(t *testing.T) {
	opts := Options(nil)
	if !reflect.DeepEqual(opts.Types, []string{Wildcard}) || !reflect.DeepEqual(opts.Locations, []string{Wildcard}) {
		t.Fatalf("expected wildcard-only options for empty set, got %#v", opts)
	}
}
