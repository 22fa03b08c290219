package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/business"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/cms"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/locations"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/seo"
)

// ChangeFrequency is the sitemaps.org changefreq hint.
type ChangeFrequency string

const (
	Daily   ChangeFrequency = "daily"
	Weekly  ChangeFrequency = "weekly"
	Monthly ChangeFrequency = "monthly"
	Yearly  ChangeFrequency = "yearly"
)

// Entry is one routable URL.
type Entry struct {
	URL             string
	LastModified    time.Time
	ChangeFrequency ChangeFrequency
	Priority        float64
}

type route struct {
	path     string
	freq     ChangeFrequency
	priority float64
}

// StaticRoutes returns the hand-ranked static pages, including one page per service.
func StaticRoutes() []string {
	routes := staticRoutes()
	out := make([]string, 0, len(routes))
	for _, r := range routes {
		out = append(out, r.path)
	}
	return out
}

func staticRoutes() []route {
	routes := []route{
		{path: "/", freq: Weekly, priority: 1.0},
		{path: "/services", freq: Monthly, priority: 0.9},
	}
	for _, svc := range business.Services() {
		routes = append(routes, route{path: "/services/" + svc.Slug, freq: Monthly, priority: 0.8})
	}
	return append(routes,
		route{path: "/locations", freq: Monthly, priority: 0.8},
		route{path: "/contact", freq: Monthly, priority: 0.8},
		route{path: "/about", freq: Monthly, priority: 0.7},
		route{path: "/blog", freq: Weekly, priority: 0.7},
		route{path: "/privacy-policy", freq: Yearly, priority: 0.3},
		route{path: "/terms", freq: Yearly, priority: 0.3},
	)
}

// Builder enumerates the site's URLs against a base URL.
type Builder struct {
	BaseURL   string
	BlogSlugs []string
}

// New returns a Builder for baseURL and the given blog slugs.
func New(baseURL string, blogSlugs []string) Builder {
	return Builder{BaseURL: baseURL, BlogSlugs: append([]string(nil), blogSlugs...)}
}

// Build concatenates static routes, one entry per registry slug and one per blog slug.
// Every entry is stamped with now.
func (b Builder) Build(now time.Time) []Entry {
	static := staticRoutes()
	slugs := locations.AllSlugs()
	out := make([]Entry, 0, len(static)+len(slugs)+len(b.BlogSlugs))

	for _, r := range static {
		out = append(out, b.entry(r.path, now, r.freq, r.priority))
	}
	for _, slug := range slugs {
		out = append(out, b.entry("/locations/"+slug, now, Monthly, 0.7))
	}
	for _, slug := range b.BlogSlugs {
		out = append(out, b.entry("/blog/"+slug, now, Monthly, 0.6))
	}
	return out
}

func (b Builder) entry(path string, now time.Time, freq ChangeFrequency, priority float64) Entry {
	return Entry{
		URL:             seo.AbsoluteURL(b.BaseURL, path),
		LastModified:    now,
		ChangeFrequency: freq,
		Priority:        priority,
	}
}

// Build uses the business URL and the published blog list.
func Build(now time.Time) []Entry {
	return New(business.Info.URL, cms.BlogSlugs()).Build(now)
}

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// WriteXML renders entries as a sitemaps.org urlset document.
func WriteXML(w io.Writer, entries []Entry) error {
	doc := urlset{Xmlns: xmlns, URLs: make([]xmlURL, 0, len(entries))}
	for _, e := range entries {
		doc.URLs = append(doc.URLs, xmlURL{
			Loc:        e.URL,
			LastMod:    e.LastModified.UTC().Format(time.RFC3339),
			ChangeFreq: string(e.ChangeFrequency),
			Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
		})
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("sitemap: encode: %w", err)
	}
	return enc.Flush()
}

// Robots returns a robots.txt body pointing crawlers at the sitemap.
func Robots(baseURL string) string {
	return "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " + seo.AbsoluteURL(baseURL, "/sitemap.xml") + "\n"
}
