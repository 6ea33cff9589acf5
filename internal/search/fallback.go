package search

import (
	"context"
	"strings"
)

// ListingProvider supplies the current listings for fallback search.
type ListingProvider func(ctx context.Context) ([]ListingRecord, error)

// Fallback is a degraded in-memory searcher used when Meilisearch is
// down. It scans the store's listings with a case-insensitive
// substring match, which is good enough for a small catalogue.
type Fallback struct {
	provide ListingProvider
}

func NewFallback(provide ListingProvider) *Fallback {
	return &Fallback{provide: provide}
}

func (f *Fallback) Healthy() bool { return f.provide != nil }

func (f *Fallback) Search(q Query) ([]Result, int, error) {
	records, err := f.provide(context.Background())
	if err != nil {
		return nil, 0, err
	}

	needle := strings.ToLower(strings.TrimSpace(q.Text))
	limit := q.Limit
	if limit == 0 {
		limit = 20
	}

	results := make([]Result, 0, limit)
	total := 0
	for _, r := range records {
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		if needle != "" && !matchesRecord(r, needle) {
			continue
		}
		total++
		if len(results) < limit {
			results = append(results, Result{
				ID:       r.ID,
				Title:    r.Title,
				Location: r.Location,
				Type:     r.Type,
				Status:   r.Status,
				Price:    r.Price,
			})
		}
	}
	return results, total, nil
}

func matchesRecord(r ListingRecord, needle string) bool {
	return strings.Contains(strings.ToLower(r.Title), needle) ||
		strings.Contains(strings.ToLower(r.Location), needle) ||
		strings.Contains(strings.ToLower(r.Description), needle)
}
