package seo

import (
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/business"
)

const schemaContext = "https://schema.org"

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Script marshals v for embedding inside a <script type="application/ld+json"> element.
// encoding/json escapes <, > and & so the payload cannot close the script element.
func Script(v any) template.JS {
	return template.JS(JSON(v))
}

// Schemas builds structured data for one business and its service areas.
type Schemas struct {
	info  business.BusinessInfo
	areas []business.ServiceArea
}

// NewSchemas binds the builders to a business record and service-area list.
func NewSchemas(info business.BusinessInfo, areas []business.ServiceArea) Schemas {
	return Schemas{info: info, areas: append([]business.ServiceArea(nil), areas...)}
}

// Default returns builders bound to the site's business constants.
func Default() Schemas {
	return NewSchemas(business.Info, business.ServiceAreas())
}

// LocalBusiness returns the ProfessionalService record describing the agency.
func (s Schemas) LocalBusiness() map[string]any {
	info := s.info
	m := map[string]any{
		"@context":    schemaContext,
		"@type":       "ProfessionalService",
		"@id":         info.URL + "/#business",
		"name":        info.Name,
		"description": info.Description,
		"url":         info.URL,
		"telephone":   info.Phone,
		"email":       info.Email,
		"priceRange":  info.PriceRange,
		"image":       info.Image,
		"address": map[string]any{
			"@type":           "PostalAddress",
			"streetAddress":   info.Street,
			"addressLocality": info.Locality,
			"addressRegion":   info.Region,
			"postalCode":      info.PostalCode,
			"addressCountry":  info.Country,
		},
		"geo": map[string]any{
			"@type":     "GeoCoordinates",
			"latitude":  info.Geo.Latitude,
			"longitude": info.Geo.Longitude,
		},
		"openingHoursSpecification": []map[string]any{
			{
				"@type":     "OpeningHoursSpecification",
				"dayOfWeek": append([]string(nil), info.OpeningHours.DayOfWeek...),
				"opens":     info.OpeningHours.Opens,
				"closes":    info.OpeningHours.Closes,
			},
		},
		"areaServed": s.areaServed(),
	}
	if info.Logo != "" {
		m["logo"] = info.Logo
	}
	if len(info.SameAs) > 0 {
		m["sameAs"] = append([]string(nil), info.SameAs...)
	}
	if info.HasMap != "" {
		m["hasMap"] = info.HasMap
	}
	return m
}

// ServiceInput describes a single service page.
type ServiceInput struct {
	Name        string
	Description string
	URL         string
	Image       string // optional; defaults to the business image
}

// Service returns a Service record provided by the agency across every service area.
func (s Schemas) Service(in ServiceInput) map[string]any {
	image := in.Image
	if image == "" {
		image = s.info.Image
	}
	return map[string]any{
		"@context":    schemaContext,
		"@type":       "Service",
		"name":        in.Name,
		"description": in.Description,
		"url":         in.URL,
		"image":       image,
		"provider":    s.providerRef(),
		"areaServed":  s.areaServed(),
	}
}

// LocationInput describes one suburb landing page.
type LocationInput struct {
	Location    string
	Description string
	URL         string
	Services    []string
}

// Location returns a LocalBusiness record scoped to a single suburb. The offer catalogue
// is omitted, not emptied, when no services are supplied.
func (s Schemas) Location(in LocationInput) map[string]any {
	m := map[string]any{
		"@context":           schemaContext,
		"@type":              "LocalBusiness",
		"name":               fmt.Sprintf("%s - %s", s.info.Name, in.Location),
		"description":        in.Description,
		"url":                in.URL,
		"telephone":          s.info.Phone,
		"email":              s.info.Email,
		"image":              s.info.Image,
		"priceRange":         s.info.PriceRange,
		"areaServed":         cityPlace(in.Location, s.info.Region, s.info.Country),
		"parentOrganization": s.providerRef(),
	}
	if len(in.Services) > 0 {
		offers := make([]map[string]any, 0, len(in.Services))
		for i, name := range in.Services {
			offers = append(offers, map[string]any{
				"@type":    "Offer",
				"position": i + 1,
				"itemOffered": map[string]any{
					"@type": "Service",
					"name":  name,
				},
			})
		}
		m["hasOfferCatalog"] = map[string]any{
			"@type":           "OfferCatalog",
			"name":            fmt.Sprintf("Digital marketing services in %s", in.Location),
			"itemListElement": offers,
		}
	}
	return m
}

// WebPage returns a WebPage record that is part of the agency website.
func (s Schemas) WebPage(name, description, url string) map[string]any {
	m := map[string]any{
		"@context": schemaContext,
		"@type":    "WebPage",
		"name":     name,
		"url":      url,
		"isPartOf": map[string]any{
			"@type": "WebSite",
			"name":  s.info.Name,
			"url":   s.info.URL,
		},
	}
	if description != "" {
		m["description"] = description
	}
	return m
}

func (s Schemas) providerRef() map[string]any {
	return map[string]any{
		"@type":     "ProfessionalService",
		"@id":       s.info.URL + "/#business",
		"name":      s.info.Name,
		"url":       s.info.URL,
		"telephone": s.info.Phone,
	}
}

func (s Schemas) areaServed() []map[string]any {
	out := make([]map[string]any, 0, len(s.areas))
	for _, area := range s.areas {
		out = append(out, cityPlace(area.Name, area.State, area.Country))
	}
	return out
}

func cityPlace(city, state, country string) map[string]any {
	return map[string]any{
		"@type": "City",
		"name":  city,
		"containedInPlace": map[string]any{
			"@type": "State",
			"name":  state,
			"containedInPlace": map[string]any{
				"@type": "Country",
				"name":  country,
			},
		},
	}
}

// WebSite returns a minimal WebSite schema with optional SearchAction.
func WebSite(name, url, searchActionURL string) map[string]any {
	m := map[string]any{
		"@context": schemaContext,
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if searchActionURL != "" {
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      searchActionURL + "{search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// BreadcrumbItem maps a display name to an absolute URL.
type BreadcrumbItem struct {
	Name string
	URL  string
}

// BreadcrumbList builds schema.org BreadcrumbList with 1-based positions in input order.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.URL,
		})
	}
	return map[string]any{
		"@context":        schemaContext,
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// FAQ is one question/answer pair.
type FAQ struct {
	Question string
	Answer   string
}

// FAQPage builds a FAQPage with one Question entity per pair.
func FAQPage(faqs []FAQ) map[string]any {
	entities := make([]map[string]any, 0, len(faqs))
	for _, f := range faqs {
		entities = append(entities, map[string]any{
			"@type": "Question",
			"name":  f.Question,
			"acceptedAnswer": map[string]any{
				"@type": "Answer",
				"text":  f.Answer,
			},
		})
	}
	return map[string]any{
		"@context":   schemaContext,
		"@type":      "FAQPage",
		"mainEntity": entities,
	}
}

// Article returns a minimal Article schema payload.
func Article(headline, url, imageURL, authorName, datePublished string) map[string]any {
	m := map[string]any{
		"@context": schemaContext,
		"@type":    "Article",
		"headline": headline,
	}
	if url != "" {
		m["url"] = url
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	if authorName != "" {
		m["author"] = map[string]any{"@type": "Organization", "name": authorName}
	}
	if datePublished != "" {
		m["datePublished"] = datePublished
	}
	return m
}
