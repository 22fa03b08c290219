package seo

import (
	"html/template"
	"strings"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
	Locale      string
}

type Twitter struct {
	Card  string
	Site  string
	Image string
}

// Meta is the per-page SEO view model consumed by the base layout.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	Keywords    []string
	OG          OpenGraph
	Twitter     Twitter
	JSONLD      []template.JS
}

// Defaults fills Open Graph and Twitter fields that were left empty from the page fields.
func (m Meta) Defaults(siteName, image string) Meta {
	if m.Robots == "" {
		m.Robots = "index,follow"
	}
	if m.OG.Title == "" {
		m.OG.Title = m.Title
	}
	if m.OG.Description == "" {
		m.OG.Description = m.Description
	}
	if m.OG.URL == "" {
		m.OG.URL = m.Canonical
	}
	if m.OG.Type == "" {
		m.OG.Type = "website"
	}
	if m.OG.SiteName == "" {
		m.OG.SiteName = siteName
	}
	if m.OG.Locale == "" {
		m.OG.Locale = "en_AU"
	}
	if m.OG.Image == "" {
		m.OG.Image = image
	}
	if m.Twitter.Card == "" {
		m.Twitter.Card = "summary_large_image"
	}
	if m.Twitter.Image == "" {
		m.Twitter.Image = m.OG.Image
	}
	return m
}

// WithSchemas appends JSON-LD payloads to the page metadata.
func (m Meta) WithSchemas(schemas ...map[string]any) Meta {
	for _, s := range schemas {
		if len(s) == 0 {
			continue
		}
		m.JSONLD = append(m.JSONLD, Script(s))
	}
	return m
}

// AbsoluteURL joins a site base URL and a path without doubling slashes.
func AbsoluteURL(base, path string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	path = strings.TrimSpace(path)
	if path == "" || path == "/" {
		return base + "/"
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
