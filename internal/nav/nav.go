package nav

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/seo"
)

// Item represents a top-level navigation item.
type Item struct {
	Path  string
	Label string
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href   string
	Label  string
	Active bool
}

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/services", Label: "Services"},
	{Path: "/locations", Label: "Locations"},
	{Path: "/blog", Label: "Blog"},
	{Path: "/about", Label: "About"},
	{Path: "/contact", Label: "Contact"},
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:   it.Path,
			Label:  it.Label,
			Active: isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds entries from Home down to the current path. labels overrides the
// prettified segment label for a given href, e.g. a location's display name.
func Breadcrumbs(currentPath string, labels map[string]string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", Label: "Home", Active: currentPath == "/"}}
	clean := path.Clean("/" + strings.TrimPrefix(currentPath, "/"))
	if clean == "/" {
		return crumbs
	}

	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	href := ""
	for i, part := range parts {
		href += "/" + part
		label, ok := labels[href]
		if !ok {
			label = sectionLabel(href, part)
		}
		crumbs = append(crumbs, Crumb{Href: href, Label: label, Active: i == len(parts)-1})
	}
	return crumbs
}

// SchemaItems converts crumbs to absolute BreadcrumbList items.
func SchemaItems(baseURL string, crumbs []Crumb) []seo.BreadcrumbItem {
	items := make([]seo.BreadcrumbItem, 0, len(crumbs))
	for _, c := range crumbs {
		items = append(items, seo.BreadcrumbItem{Name: c.Label, URL: seo.AbsoluteURL(baseURL, c.Href)})
	}
	return items
}

func sectionLabel(href, segment string) string {
	for _, it := range Main {
		if it.Path == href {
			return it.Label
		}
	}
	return TitleFromSegment(segment)
}

// TitleFromSegment turns "north-lakes" into "North Lakes".
func TitleFromSegment(seg string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	return cases.Title(language.English).String(s)
}
