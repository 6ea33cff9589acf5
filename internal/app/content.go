package app

import (
	"encoding/json"

	"estateflow/api/internal/store"
)

// Content sections are a fixed set of singleton documents. An unknown
// section is a 404; a known section that was never saved serves its
// default shape below.
var contentSections = map[string]struct{}{
	"homepage": {},
	"metadata": {},
	"footer":   {},
	"about":    {},
	"contact":  {},
}

var contentDefaults = map[string]json.RawMessage{
	"homepage": json.RawMessage(`{
		"heroTitle": "Find Your Dream Property",
		"heroSubtitle": "Hand-picked homes and investments across the country.",
		"heroImage": "",
		"aboutTitle": "Why EstateFlow",
		"aboutText": "We acquire, renovate and sell properties with full transparency on every deal.",
		"showHotDeals": true
	}`),
	"metadata": json.RawMessage(`{
		"siteTitle": "EstateFlow Realty",
		"siteDescription": "Real estate sales and rentals",
		"propertyTypes": ["Apartment", "Villa", "Penthouse", "Townhouse", "Commercial", "Land"],
		"currency": "USD"
	}`),
	"footer": json.RawMessage(`{
		"tagline": "Your trusted property partner.",
		"address": "",
		"phone": "",
		"email": "",
		"social": {"facebook": "", "instagram": "", "linkedin": ""}
	}`),
	"about": json.RawMessage(`{
		"title": "About Us",
		"body": "EstateFlow Realty helps buyers, sellers and renters move with confidence.",
		"mission": "",
		"vision": ""
	}`),
	"contact": json.RawMessage(`{
		"title": "Get in Touch",
		"subtitle": "Our advisors reply within one business day.",
		"address": "",
		"phone": "",
		"email": "",
		"whatsapp": "",
		"mapEmbedUrl": ""
	}`),
}

// fallbackTestimonials keeps the public testimonials strip populated
// when no approved feedback exists yet.
var fallbackTestimonials = []store.Feedback{
	{
		ID:       "fb_fallback_1",
		Name:     "Rania H.",
		Role:     "Homeowner",
		Content:  "The team handled everything from the first visit to the final signature. Could not have been smoother.",
		Rating:   5,
		Approved: true,
	},
	{
		ID:       "fb_fallback_2",
		Name:     "Omar S.",
		Role:     "Investor",
		Content:  "Transparent numbers on every deal. I knew the acquisition story before I committed.",
		Rating:   5,
		Approved: true,
	},
	{
		ID:       "fb_fallback_3",
		Name:     "Lara M.",
		Role:     "Tenant",
		Content:  "Found a rental that matched my budget in under a week.",
		Rating:   4,
		Approved: true,
	},
}

func validContentSection(section string) bool {
	_, ok := contentSections[section]
	return ok
}

func defaultContent(section string) json.RawMessage {
	if data, ok := contentDefaults[section]; ok {
		return data
	}
	return json.RawMessage(`{}`)
}
