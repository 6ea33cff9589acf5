package search

import (
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const idxListings = "estateflow_listings"

// Meili implements Searcher via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures the listings
// index. An unreachable server is tolerated; the health loop flips the
// flag back when it recovers and the caller falls back meanwhile.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxListings,
		PrimaryKey: "id",
	}); err != nil {
		log.Printf("search: create index %s (may already exist): %v", idxListings, err)
	}

	index := m.client.Index(idxListings)
	filterable := []interface{}{"status", "type", "location"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("search: update filterable attrs for %s: %v", idxListings, err)
	}
	searchable := []string{"title", "location", "description"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("search: update searchable attrs for %s: %v", idxListings, err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search queries the listings index.
func (m *Meili) Search(q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	sr := &meili.SearchRequest{
		Limit: limit,
	}
	if q.Status != "" {
		sr.Filter = []string{fmt.Sprintf("status = %q", q.Status)}
	}

	resp, err := m.client.Index(idxListings).Search(q.Text, sr)
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch search: %w", err)
	}

	results := make([]Result, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		results = append(results, hitToResult(hit))
	}
	return results, int(resp.EstimatedTotalHits), nil
}

// IndexListing upserts one listing document.
func (m *Meili) IndexListing(record ListingRecord) error {
	_, err := m.client.Index(idxListings).AddDocuments([]ListingRecord{record}, nil)
	if err != nil {
		return fmt.Errorf("index listing %s: %w", record.ID, err)
	}
	return nil
}

// IndexListings bulk-indexes listings during reindex.
func (m *Meili) IndexListings(records []ListingRecord) error {
	if len(records) == 0 {
		return nil
	}
	if _, err := m.client.Index(idxListings).AddDocuments(records, nil); err != nil {
		return fmt.Errorf("index listings: %w", err)
	}
	return nil
}

// DeleteListing removes a listing from the index.
func (m *Meili) DeleteListing(id string) error {
	if _, err := m.client.Index(idxListings).DeleteDocument(id, nil); err != nil {
		return fmt.Errorf("delete listing %s: %w", id, err)
	}
	return nil
}

func hitToResult(hit meili.Hit) Result {
	return Result{
		ID:       decodeString(hit, "id"),
		Title:    decodeString(hit, "title"),
		Location: decodeString(hit, "location"),
		Type:     decodeString(hit, "type"),
		Status:   decodeString(hit, "status"),
		Price:    decodeFloat(hit, "price"),
	}
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFloat(hit meili.Hit, key string) float64 {
	raw, ok := hit[key]
	if !ok {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	return 0
}
