package search

import (
	"context"
	"errors"
	"testing"
)

func staticProvider(records []ListingRecord) ListingProvider {
	return func(ctx context.Context) ([]ListingRecord, error) {
		return records, nil
	}
}

var sampleRecords = []ListingRecord{
	{ID: "lst_1", Title: "Beachfront Villa", Description: "Sea view", Location: "Batroun", Type: "Villa", Status: "For Sale", Price: 1200000},
	{ID: "lst_2", Title: "Downtown Apartment", Description: "City center", Location: "Beirut", Type: "Apartment", Status: "Sold", Price: 450000},
	{ID: "lst_3", Title: "Mountain Chalet", Description: "Near the beach road", Location: "Faraya", Type: "Villa", Status: "For Sale", Price: 800000},
}

func TestFallbackTextMatch(t *testing.T) {
	f := NewFallback(staticProvider(sampleRecords))

	results, total, err := f.Search(Query{Text: "BEACH"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if results[0].ID != "lst_1" || results[1].ID != "lst_3" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestFallbackStatusFilter(t *testing.T) {
	f := NewFallback(staticProvider(sampleRecords))

	results, _, err := f.Search(Query{Status: "Sold"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "lst_2" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestFallbackLimit(t *testing.T) {
	f := NewFallback(staticProvider(sampleRecords))

	results, total, err := f.Search(Query{Limit: 1})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
}

func TestFallbackProviderError(t *testing.T) {
	wantErr := errors.New("store down")
	f := NewFallback(func(ctx context.Context) ([]ListingRecord, error) {
		return nil, wantErr
	})

	if _, _, err := f.Search(Query{Text: "villa"}); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestServiceUsesFallbackWithoutMeili(t *testing.T) {
	svc := NewService(nil, NewFallback(staticProvider(sampleRecords)))

	if !svc.Healthy() {
		t.Fatal("service should be healthy via fallback")
	}
	results, _, err := svc.Search(Query{Text: "beirut"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "lst_2" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestServiceUnavailable(t *testing.T) {
	svc := NewService(nil, nil)

	if svc.Healthy() {
		t.Fatal("service should not be healthy")
	}
	if _, _, err := svc.Search(Query{Text: "x"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
