package seo

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/business"
)

func TestBreadcrumbListPositions(t *testing.T) {
	t.Parallel()

	got := BreadcrumbList([]BreadcrumbItem{
		{Name: "Home", URL: "https://x/"},
		{Name: "SEO", URL: "https://x/seo"},
	})
	want := map[string]any{
		"@context": "https://schema.org",
		"@type":    "BreadcrumbList",
		"itemListElement": []map[string]any{
			{"@type": "ListItem", "position": 1, "name": "Home", "item": "https://x/"},
			{"@type": "ListItem", "position": 2, "name": "SEO", "item": "https://x/seo"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("breadcrumb mismatch (-want +got):\n%s", diff)
	}
}

func TestLocationOmitsCatalogueWithoutServices(t *testing.T) {
	t.Parallel()

	s := Default()
	got := s.Location(LocationInput{Location: "Dakabin", Description: "d", URL: "https://x/locations/dakabin"})
	_, ok := got["hasOfferCatalog"]
	require.False(t, ok)

	got = s.Location(LocationInput{Location: "Dakabin", Services: []string{}})
	_, ok = got["hasOfferCatalog"]
	require.False(t, ok)
}

func TestLocationOfferCatalogue(t *testing.T) {
	t.Parallel()

	got := Default().Location(LocationInput{Location: "Dakabin", Services: []string{"SEO"}})
	catalogue, ok := got["hasOfferCatalog"].(map[string]any)
	require.True(t, ok)

	offers, ok := catalogue["itemListElement"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, offers, 1)
	require.Equal(t, 1, offers[0]["position"])
	require.Equal(t, map[string]any{"@type": "Service", "name": "SEO"}, offers[0]["itemOffered"])
}

func TestServiceDefaultsImageAndCoversAreas(t *testing.T) {
	t.Parallel()

	info := business.Info
	areas := []business.ServiceArea{{Name: "Dakabin", State: "QLD", Country: "AU"}}
	s := NewSchemas(info, areas)

	got := s.Service(ServiceInput{Name: "Local SEO", Description: "d", URL: "https://x/services/local-seo"})
	require.Equal(t, info.Image, got["image"])
	require.Len(t, got["areaServed"], 1)

	got = s.Service(ServiceInput{Name: "Local SEO", Image: "https://x/custom.jpg"})
	require.Equal(t, "https://x/custom.jpg", got["image"])
}

func TestLocalBusinessNestsPlaces(t *testing.T) {
	t.Parallel()

	s := Default()
	got := s.LocalBusiness()
	require.Equal(t, "ProfessionalService", got["@type"])

	areas := got["areaServed"].([]map[string]any)
	require.Len(t, areas, len(business.ServiceAreaNames()))

	want := map[string]any{
		"@type": "City",
		"name":  "North Lakes",
		"containedInPlace": map[string]any{
			"@type": "State",
			"name":  "QLD",
			"containedInPlace": map[string]any{
				"@type": "Country",
				"name":  "AU",
			},
		},
	}
	if diff := cmp.Diff(want, areas[0]); diff != "" {
		t.Fatalf("areaServed[0] mismatch (-want +got):\n%s", diff)
	}

	hours := got["openingHoursSpecification"].([]map[string]any)
	require.Len(t, hours, 1)
	require.Equal(t, "09:00", hours[0]["opens"])
	require.Equal(t, "17:00", hours[0]["closes"])
}

func TestBuildersAreDeterministic(t *testing.T) {
	t.Parallel()

	s := Default()
	require.Equal(t, JSON(s.LocalBusiness()), JSON(s.LocalBusiness()))
	in := LocationInput{Location: "Petrie", Services: []string{"Local SEO", "Google Ads"}}
	require.Equal(t, JSON(s.Location(in)), JSON(s.Location(in)))
}

func TestFAQPage(t *testing.T) {
	t.Parallel()

	got := FAQPage([]FAQ{{Question: "Q1?", Answer: "A1"}})
	var decoded struct {
		Type       string `json:"@type"`
		MainEntity []struct {
			Name           string `json:"name"`
			AcceptedAnswer struct {
				Text string `json:"text"`
			} `json:"acceptedAnswer"`
		} `json:"mainEntity"`
	}
	require.NoError(t, json.Unmarshal([]byte(JSON(got)), &decoded))
	require.Equal(t, "FAQPage", decoded.Type)
	require.Len(t, decoded.MainEntity, 1)
	require.Equal(t, "Q1?", decoded.MainEntity[0].Name)
	require.Equal(t, "A1", decoded.MainEntity[0].AcceptedAnswer.Text)
}

func TestScriptEscapesClosingTag(t *testing.T) {
	t.Parallel()

	out := string(Script(map[string]any{"name": "</script><b>"}))
	require.False(t, strings.Contains(out, "</script>"))
}

func TestAbsoluteURL(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                    "https://x.com/",
		"/":                   "https://x.com/",
		"/services":           "https://x.com/services",
		"locations/dakabin":   "https://x.com/locations/dakabin",
		"https://cdn.x/a.png": "https://cdn.x/a.png",
	}
	for in, want := range cases {
		require.Equal(t, want, AbsoluteURL("https://x.com/", in), in)
	}
}

func TestMetaDefaults(t *testing.T) {
	t.Parallel()

	m := Meta{Title: "T", Description: "D", Canonical: "https://x/"}.Defaults("Site", "https://x/og.jpg")
	require.Equal(t, "T", m.OG.Title)
	require.Equal(t, "https://x/", m.OG.URL)
	require.Equal(t, "https://x/og.jpg", m.Twitter.Image)
	require.Equal(t, "index,follow", m.Robots)

	m = m.WithSchemas(nil, WebSite("Site", "https://x/", ""))
	require.Len(t, m.JSONLD, 1)
}
