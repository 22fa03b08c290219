package cms

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// blogSlugs is the published post list. The sitemap and blog index follow this order.
var blogSlugs = []string{
	"local-seo-checklist-moreton-bay",
	"google-ads-budget-for-trades",
	"industrial-b2b-marketing-brendale",
}

// LegalSlugs are the legal pages rendered under their own top-level routes.
var LegalSlugs = []string{"privacy-policy", "terms"}

// BlogSlugs returns the declared blog post slugs.
func BlogSlugs() []string {
	return append([]string(nil), blogSlugs...)
}

// PrettifySlug turns "google-ads-budget" into "Google Ads Budget".
func PrettifySlug(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}
