// Package query implements pure, synchronous in-memory filtering over
// listing snapshots. Every call is deterministic and preserves the
// input order; wildcard facets are identity.
package query

import (
	"strings"

	"estateflow/api/internal/store"
)

// Wildcard is the facet value that disables a dimension.
const Wildcard = "All"

// Price bucket labels. Mutually exclusive ranges over sellingPrice.
const (
	PriceUnder1M = "Under 1M"
	Price1MTo5M  = "1M - 5M"
	PriceOver5M  = "Over 5M"
)

// Facets is one structured filter state. Zero values are wildcards:
// empty strings for the enum dimensions, zero for the numeric bounds,
// false for the hot-deal flag.
type Facets struct {
	Type        string
	Location    string
	PriceRange  string
	MinBedrooms int
	MinSize     float64
	MaxSize     float64
	HotDealOnly bool
}

// Filter returns the listings matching the free-text query and every
// active facet, AND-composed, in their original relative order.
func Filter(listings []store.Listing, text string, facets Facets) []store.Listing {
	needle := strings.ToLower(strings.TrimSpace(text))

	out := make([]store.Listing, 0, len(listings))
	for _, listing := range listings {
		if !matchesText(listing, needle) {
			continue
		}
		if !wildcard(facets.Type) && listing.Type != facets.Type {
			continue
		}
		if !wildcard(facets.Location) && listing.Location != facets.Location {
			continue
		}
		if facets.MinBedrooms > 0 && listing.Bedrooms < facets.MinBedrooms {
			continue
		}
		if facets.MinSize > 0 && listing.Size < facets.MinSize {
			continue
		}
		if facets.MaxSize > 0 && listing.Size > facets.MaxSize {
			continue
		}
		if !matchesPrice(listing.SellingPrice, facets.PriceRange) {
			continue
		}
		if facets.HotDealOnly && !listing.IsHotDeal {
			continue
		}
		out = append(out, listing)
	}
	return out
}

func matchesText(listing store.Listing, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(listing.Title), needle) ||
		strings.Contains(strings.ToLower(listing.Location), needle) ||
		strings.Contains(strings.ToLower(listing.Description), needle)
}

func matchesPrice(price float64, bucket string) bool {
	switch bucket {
	case "", Wildcard:
		return true
	case PriceUnder1M:
		return price < 1_000_000
	case Price1MTo5M:
		return price >= 1_000_000 && price <= 5_000_000
	case PriceOver5M:
		return price > 5_000_000
	default:
		// Unknown labels filter nothing rather than everything.
		return true
	}
}

func wildcard(value string) bool {
	return value == "" || value == Wildcard
}

// FacetOptions are the selectable values for the dynamic dimensions,
// derived from the listings currently in memory.
type FacetOptions struct {
	Types     []string `json:"types"`
	Locations []string `json:"locations"`
}

// Options derives the distinct type and location values present in the
// listing set, prefixed with the wildcard, in first-seen order.
func Options(listings []store.Listing) FacetOptions {
	opts := FacetOptions{
		Types:     []string{Wildcard},
		Locations: []string{Wildcard},
	}
	seenTypes := map[string]struct{}{}
	seenLocations := map[string]struct{}{}
	for _, listing := range listings {
		if listing.Type != "" {
			if _, ok := seenTypes[listing.Type]; !ok {
				seenTypes[listing.Type] = struct{}{}
				opts.Types = append(opts.Types, listing.Type)
			}
		}
		if listing.Location != "" {
			if _, ok := seenLocations[listing.Location]; !ok {
				seenLocations[listing.Location] = struct{}{}
				opts.Locations = append(opts.Locations, listing.Location)
			}
		}
	}
	return opts
}

// PriceRanges returns the fixed bucket labels, wildcard first.
func PriceRanges() []string {
	return []string{Wildcard, PriceUnder1M, Price1MTo5M, PriceOver5M}
}
