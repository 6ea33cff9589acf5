package search

import "log"

// Service fronts the Meilisearch searcher with an in-memory fallback.
// Indexing is best-effort: a write that cannot reach Meilisearch is
// logged and dropped, and the next full reindex repairs the index.
type Service struct {
	meili    *Meili
	fallback *Fallback
}

// NewService builds the facade. meili may be nil when no Meilisearch
// URL is configured; every query then goes through the fallback.
func NewService(meili *Meili, fallback *Fallback) *Service {
	return &Service{meili: meili, fallback: fallback}
}

func (s *Service) Healthy() bool {
	if s.meili != nil && s.meili.Healthy() {
		return true
	}
	return s.fallback != nil && s.fallback.Healthy()
}

func (s *Service) Search(q Query) ([]Result, int, error) {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return results, total, nil
		}
		log.Printf("search: meilisearch query failed, using fallback: %v", err)
	}
	if s.fallback == nil {
		return nil, 0, ErrUnavailable
	}
	return s.fallback.Search(q)
}

// IndexListing upserts a listing in the background.
func (s *Service) IndexListing(record ListingRecord) {
	if s.meili == nil {
		return
	}
	go func() {
		if err := s.meili.IndexListing(record); err != nil {
			log.Printf("search: %v", err)
		}
	}()
}

// DeleteListing removes a listing from the index in the background.
func (s *Service) DeleteListing(id string) {
	if s.meili == nil {
		return
	}
	go func() {
		if err := s.meili.DeleteListing(id); err != nil {
			log.Printf("search: %v", err)
		}
	}()
}

// ReindexAll rebuilds the listings index from the given records. Run
// at startup so the index catches up with writes made while
// Meilisearch was down.
func (s *Service) ReindexAll(records []ListingRecord) error {
	if s.meili == nil || !s.meili.Healthy() {
		return nil
	}
	return s.meili.IndexListings(records)
}

// Close releases background resources.
func (s *Service) Close() {
	if s.meili != nil {
		s.meili.Close()
	}
}
