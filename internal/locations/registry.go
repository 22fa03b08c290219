package locations

import (
	"sort"
	"strings"
)

// Zone classifies a service-area location and selects the content variant shown for it.
type Zone string

const (
	ZoneIndustrial Zone = "industrial"
	ZoneRetail     Zone = "retail"
)

// Location is a single service-area page in the registry.
type Location struct {
	Slug          string
	Name          string
	Zone          Zone
	SEOTitle      string
	H1            string
	Description   string
	Keywords      []string
	Landmarks     []string
	FocusServices []string
}

// Zones lists the zones in registry order.
func Zones() []Zone {
	return []Zone{ZoneIndustrial, ZoneRetail}
}

// Valid reports whether z is a known zone.
func (z Zone) Valid() bool {
	switch z {
	case ZoneIndustrial, ZoneRetail:
		return true
	default:
		return false
	}
}

// registry is declared industrial zone first, then retail. Order is significant for AllSlugs.
var registry = []Location{
	{
		Slug:        "brendale",
		Name:        "Brendale",
		Zone:        ZoneIndustrial,
		SEOTitle:    "Digital Marketing Brendale | Red Ox Digital",
		H1:          "Digital Marketing for Brendale Businesses",
		Description: "Brendale's industrial estate is packed with trades, manufacturers and wholesalers competing for the same local searches. We build lead-focused websites and Google campaigns that put your business in front of buyers across the Pine Rivers district.",
		Keywords:    []string{"digital marketing brendale", "seo brendale", "google ads brendale", "industrial marketing pine rivers"},
		Landmarks:   []string{"Brendale Industrial Estate", "Kremzow Road", "South Pine Road", "Pine Rivers Showgrounds"},
		FocusServices: []string{
			"Local SEO",
			"Google Ads",
			"Website Design",
		},
	},
	{
		Slug:        "narangba",
		Name:        "Narangba",
		Zone:        ZoneIndustrial,
		SEOTitle:    "Digital Marketing Narangba | Red Ox Digital",
		H1:          "Marketing That Works as Hard as Narangba Industry",
		Description: "From fabrication shops on Potassium Street to transport depots off the Bruce Highway, Narangba operators need enquiries, not vanity metrics. Our campaigns are built around quote requests and phone calls.",
		Keywords:    []string{"digital marketing narangba", "seo narangba", "narangba industrial estate marketing"},
		Landmarks:   []string{"Narangba Innovation Precinct", "Potassium Street", "Narangba Railway Station"},
		FocusServices: []string{
			"Google Ads",
			"Local SEO",
		},
	},
	{
		Slug:        "dakabin",
		Name:        "Dakabin",
		Zone:        ZoneIndustrial,
		SEOTitle:    "Digital Marketing Dakabin | Red Ox Digital",
		H1:          "Dakabin's Local Digital Marketing Team",
		Description: "Red Ox Digital is based in Dakabin, so the businesses along Boundary Road and around the Dakabin rail corridor are our neighbours. We help local trades and light industry win more work online.",
		Keywords:    []string{"digital marketing dakabin", "seo dakabin", "web design dakabin", "marketing agency moreton bay"},
		Landmarks:   []string{"Boundary Road", "Dakabin Railway Station", "Lake Kurwongbah"},
		FocusServices: []string{
			"Local SEO",
			"Website Design",
			"Social Media Marketing",
		},
	},
	{
		Slug:        "burpengary",
		Name:        "Burpengary",
		Zone:        ZoneIndustrial,
		SEOTitle:    "Digital Marketing Burpengary | Red Ox Digital",
		H1:          "Digital Marketing for Burpengary Trades and Industry",
		Description: "Burpengary's service and light-industrial businesses rely on steady local demand. We combine Google Business Profile work, search ads and fast websites to keep the phone ringing.",
		Keywords:    []string{"digital marketing burpengary", "seo burpengary", "google ads burpengary"},
		Landmarks:   []string{"Burpengary Service Centre", "Station Road", "Burpengary Creek"},
		FocusServices: []string{
			"Google Ads",
			"Website Design",
		},
	},
	{
		Slug:        "north-lakes",
		Name:        "North Lakes",
		Zone:        ZoneRetail,
		SEOTitle:    "Digital Marketing North Lakes | Red Ox Digital",
		H1:          "Digital Marketing for North Lakes Retail and Services",
		Description: "North Lakes is the retail heart of Moreton Bay. Shoppers compare options on their phones before they visit Westfield, so we make sure your shop, clinic or studio is the one they find.",
		Keywords:    []string{"digital marketing north lakes", "seo north lakes", "social media marketing north lakes"},
		Landmarks:   []string{"Westfield North Lakes", "IKEA North Lakes", "North Lakes Town Centre", "Lakefield Drive"},
		FocusServices: []string{
			"Social Media Marketing",
			"Local SEO",
			"Content Marketing",
		},
	},
	{
		Slug:        "mango-hill",
		Name:        "Mango Hill",
		Zone:        ZoneRetail,
		SEOTitle:    "Digital Marketing Mango Hill | Red Ox Digital",
		H1:          "Helping Mango Hill Businesses Get Found Online",
		Description: "Mango Hill's growing residential community supports cafes, health practitioners and boutique retailers. We build local search visibility and social campaigns that turn nearby residents into regulars.",
		Keywords:    []string{"digital marketing mango hill", "seo mango hill", "local marketing mango hill"},
		Landmarks:   []string{"Mango Hill Village", "Mango Hill East Station", "Capestone"},
		FocusServices: []string{
			"Local SEO",
			"Social Media Marketing",
		},
	},
	{
		Slug:        "kallangur",
		Name:        "Kallangur",
		Zone:        ZoneRetail,
		SEOTitle:    "Digital Marketing Kallangur | Red Ox Digital",
		H1:          "Kallangur Digital Marketing Built for Local Shops",
		Description: "Anzac Avenue carries thousands of drivers past Kallangur businesses every day. We help you capture that attention online with local SEO, reviews strategy and targeted ads.",
		Keywords:    []string{"digital marketing kallangur", "seo kallangur", "google ads kallangur"},
		Landmarks:   []string{"Anzac Avenue", "Kallangur Fair", "Kallangur Library"},
		FocusServices: []string{
			"Local SEO",
			"Google Ads",
		},
	},
	{
		Slug:        "petrie",
		Name:        "Petrie",
		Zone:        ZoneRetail,
		SEOTitle:    "Digital Marketing Petrie | Red Ox Digital",
		H1:          "Digital Marketing for Petrie and the Mill Precinct",
		Description: "With the university campus at the old Petrie Mill site, Petrie businesses have a new audience of students and staff. We help hospitality and retail operators reach them where they scroll.",
		Keywords:    []string{"digital marketing petrie", "seo petrie", "social media petrie"},
		Landmarks:   []string{"The Mill at Moreton Bay", "Petrie Railway Station", "Gympie Road"},
		FocusServices: []string{
			"Social Media Marketing",
			"Content Marketing",
		},
	},
	{
		Slug:        "strathpine",
		Name:        "Strathpine",
		Zone:        ZoneRetail,
		SEOTitle:    "Digital Marketing Strathpine | Red Ox Digital",
		H1:          "Strathpine Digital Marketing for Retail and Professional Services",
		Description: "Strathpine Centre and the Gympie Road strip host a mix of retailers and professional practices. We sharpen your search presence and build websites that convert local traffic.",
		Keywords:    []string{"digital marketing strathpine", "seo strathpine", "web design strathpine"},
		Landmarks:   []string{"Strathpine Centre", "Gympie Road", "Pine Rivers Park"},
		FocusServices: []string{
			"Website Design",
			"Local SEO",
		},
	},
	{
		Slug:        "redcliffe",
		Name:        "Redcliffe",
		Zone:        ZoneRetail,
		SEOTitle:    "Digital Marketing Redcliffe | Red Ox Digital",
		H1:          "Digital Marketing for Redcliffe Peninsula Businesses",
		Description: "Tourism, dining and retail drive the Redcliffe Peninsula. We help seaside businesses stand out to day-trippers and locals with search, social and content that reflects the bayside lifestyle.",
		Keywords:    []string{"digital marketing redcliffe", "seo redcliffe", "tourism marketing redcliffe"},
		Landmarks:   []string{"Redcliffe Jetty", "Suttons Beach", "Redcliffe Parade"},
		FocusServices: []string{
			"Social Media Marketing",
			"Content Marketing",
			"Local SEO",
		},
	},
	{
		Slug:        "morayfield",
		Name:        "Morayfield",
		Zone:        ZoneRetail,
		SEOTitle:    "Digital Marketing Morayfield | Red Ox Digital",
		H1:          "Digital Marketing for Morayfield Retailers",
		Description: "Morayfield Shopping Centre anchors one of the fastest-growing corridors in Queensland. We help retailers and service businesses grab local demand with ads and search built for the area.",
		Keywords:    []string{"digital marketing morayfield", "seo morayfield", "google ads morayfield"},
		Landmarks:   []string{"Morayfield Shopping Centre", "Morayfield Road", "Morayfield Sport and Events Centre"},
		FocusServices: []string{
			"Google Ads",
			"Local SEO",
		},
	},
}

var bySlug = func() map[string]int {
	idx := make(map[string]int, len(registry))
	for i, loc := range registry {
		idx[loc.Slug] = i
	}
	return idx
}()

// BySlug returns the location registered under slug. The boolean is false when no such
// location exists; callers render a 404 in that case.
func BySlug(slug string) (Location, bool) {
	i, ok := bySlug[strings.TrimSpace(slug)]
	if !ok {
		return Location{}, false
	}
	return clone(registry[i]), true
}

// AllSlugs returns every slug in declaration order.
func AllSlugs() []string {
	out := make([]string, 0, len(registry))
	for _, loc := range registry {
		out = append(out, loc.Slug)
	}
	return out
}

// All returns a copy of the full registry in declaration order.
func All() []Location {
	out := make([]Location, 0, len(registry))
	for _, loc := range registry {
		out = append(out, clone(loc))
	}
	return out
}

// ByZone filters the registry to a single zone, preserving declaration order.
func ByZone(zone Zone) []Location {
	var out []Location
	for _, loc := range registry {
		if loc.Zone == zone {
			out = append(out, clone(loc))
		}
	}
	return out
}

// Drift compares the registry against the suburb names used for structured data.
// It only reports the mismatch; the two lists are edited independently.
func Drift(serviceAreaNames []string) (missingFromRegistry, missingFromAreas []string) {
	areas := make(map[string]struct{}, len(serviceAreaNames))
	for _, name := range serviceAreaNames {
		areas[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	names := make(map[string]struct{}, len(registry))
	for _, loc := range registry {
		key := strings.ToLower(loc.Name)
		names[key] = struct{}{}
		if _, ok := areas[key]; !ok {
			missingFromAreas = append(missingFromAreas, loc.Name)
		}
	}
	for _, name := range serviceAreaNames {
		if _, ok := names[strings.ToLower(strings.TrimSpace(name))]; !ok {
			missingFromRegistry = append(missingFromRegistry, name)
		}
	}
	sort.Strings(missingFromRegistry)
	sort.Strings(missingFromAreas)
	return missingFromRegistry, missingFromAreas
}

func clone(loc Location) Location {
	cp := loc
	cp.Keywords = append([]string(nil), loc.Keywords...)
	cp.Landmarks = append([]string(nil), loc.Landmarks...)
	cp.FocusServices = append([]string(nil), loc.FocusServices...)
	return cp
}
