package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"estateflow/api/internal/store"
)

// ListingSource loads the listing to render.
type ListingSource interface {
	GetListing(ctx context.Context, id string) (store.Listing, error)
}

// Service renders listing brochures.
type Service struct {
	source     ListingSource
	agencyName string
}

func NewService(source ListingSource, agencyName string) *Service {
	if agencyName == "" {
		agencyName = "EstateFlow Realty"
	}
	return &Service{source: source, agencyName: agencyName}
}

// Brochure generates a PDF brochure for a listing. Only offloaded or
// inline image references usable inside a standalone page are
// included; acquisition price and margin data never leave the back
// office.
func (s *Service) Brochure(ctx context.Context, listingID string) (*Result, error) {
	listing, err := s.source.GetListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}

	html, err := RenderBrochureHTML(TemplateData{
		Title:       listing.Title,
		Description: listing.Description,
		Location:    listing.Location,
		Type:        listing.Type,
		Status:      listing.Status,
		Price:       listing.SellingPrice,
		Size:        listing.Size,
		Bedrooms:    listing.Bedrooms,
		Bathrooms:   listing.Bathrooms,
		IsHotDeal:   listing.IsHotDeal,
		Images:      inlineImages(listing.Images),
		GeneratedAt: time.Now(),
		AgencyName:  s.agencyName,
	})
	if err != nil {
		return nil, fmt.Errorf("render brochure: %w", err)
	}

	return exportPDF(html, listing.Title)
}

// inlineImages keeps only references a detached HTML page can load.
// Object-storage keys would need presigning, so they are skipped.
func inlineImages(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "https://") {
			out = append(out, ref)
		}
	}
	return out
}
