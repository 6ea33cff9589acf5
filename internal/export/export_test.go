package export

import (
	"strings"
	"testing"
	"time"
)

func TestRenderBrochureHTML(t *testing.T) {
	html, err := RenderBrochureHTML(TemplateData{
		Title:       "Beachfront Villa",
		Description: "Stunning sea view",
		Location:    "Batroun",
		Type:        "Villa",
		Status:      "For Sale",
		Price:       1250000,
		Size:        420,
		Bedrooms:    5,
		Bathrooms:   4,
		IsHotDeal:   true,
		GeneratedAt: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		AgencyName:  "EstateFlow Realty",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"Beachfront Villa",
		"Batroun",
		"$1,250,000",
		"Hot Deal",
		"EstateFlow Realty",
		"Mar 14, 2026",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered brochure missing %q", want)
		}
	}
}

func TestRenderBrochureEscapesHTML(t *testing.T) {
	html, err := RenderBrochureHTML(TemplateData{
		Title:       "<script>alert(1)</script>",
		GeneratedAt: time.Now(),
		AgencyName:  "EstateFlow Realty",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Fatal("title was not escaped")
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{950, "$950"},
		{45000, "$45,000"},
		{1250000, "$1,250,000"},
		{1000000000, "$1,000,000,000"},
	}
	for _, tc := range tests {
		if got := FormatPrice(tc.in); got != tc.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Beachfront Villa", "Beachfront-Villa"},
		{"Flat #4 (2nd floor)", "Flat-4-2nd-floor"},
		{"", "listing"},
		{strings.Repeat("a", 80), strings.Repeat("a", 50)},
	}
	for _, tc := range tests {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	got := percentEncodeForDataURL("a b<c>")
	if got != "a%20b%3Cc%3E" {
		t.Fatalf("got %q", got)
	}
}

func TestInlineImagesFiltersObjectRefs(t *testing.T) {
	got := inlineImages([]string{
		"data:image/jpeg;base64,abcd",
		"obj://estateflow-media/img_1.jpg",
		"https://cdn.example.com/x.jpg",
	})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(got), got)
	}
}
