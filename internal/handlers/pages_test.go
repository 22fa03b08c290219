package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/consent"
)

func parseHTML(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func schemaTypes(t *testing.T, doc *goquery.Document) []string {
	t.Helper()
	var types []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(s.Text()), &payload))
		if typ, ok := payload["@type"].(string); ok {
			types = append(types, typ)
		}
	})
	return types
}

func TestHomePage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec.Body.String())
	require.Contains(t, doc.Find("title").Text(), "Red Ox Digital")
	require.Equal(t, testBaseURL+"/", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	require.ElementsMatch(t, []string{"ProfessionalService", "WebSite"}, schemaTypes(t, doc))
}

func TestLocationPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/locations/brendale", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec.Body.String())
	require.Equal(t, testBaseURL+"/locations/brendale", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	require.NotEmpty(t, strings.TrimSpace(doc.Find("h1").First().Text()))
	require.Contains(t, schemaTypes(t, doc), "LocalBusiness")
	require.Contains(t, schemaTypes(t, doc), "BreadcrumbList")
	require.Equal(t, 1, doc.Find("article.location.zone-industrial").Length())
}

func TestUnknownLocationRendersNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/locations/atlantis", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	doc := parseHTML(t, rec.Body.String())
	require.Equal(t, "noindex,follow", doc.Find(`meta[name="robots"]`).AttrOr("content", ""))
}

func TestServicePageIncludesFAQSchema(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/services/local-seo", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	types := schemaTypes(t, parseHTML(t, rec.Body.String()))
	require.Contains(t, types, "Service")
	require.Contains(t, types, "FAQPage")

	rec = env.do(http.MethodGet, "/services/knitting", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocationsIndexGroupsByZone(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/locations", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.String())
	require.Equal(t, 1, doc.Find("section.zone-industrial").Length())
	require.Equal(t, 1, doc.Find("section.zone-retail").Length())
}

func TestBlogAndLegalPages(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/blog/local-seo-checklist-moreton-bay", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, schemaTypes(t, parseHTML(t, rec.Body.String())), "Article")

	rec = env.do(http.MethodGet, "/blog/not-a-post", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/privacy-policy", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, parseHTML(t, rec.Body.String()).Find("article.legal").Length())
}

func TestConsentBannerFollowsCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/about", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.String())
	banner := doc.Find("#consent-banner")
	require.Equal(t, 1, banner.Length())
	_, hidden := banner.Attr("hidden")
	require.True(t, hidden, "first render keeps the banner hidden until the delay runs")
	require.Equal(t, "1000", banner.AttrOr("data-delay-ms", ""))
	script := doc.Find("script#consent-prompt").Text()
	require.Contains(t, script, `getAttribute("data-delay-ms")`)
	require.Contains(t, script, "setTimeout")
	require.Contains(t, rec.Body.String(), "<noscript><style>#consent-banner[data-delay-ms]{display:block}</style></noscript>")

	cookie := &http.Cookie{Name: consent.KeySettings, Value: url.QueryEscape(`{"essential":true,"analytics":true,"marketing":false}`)}
	rec = env.do(http.MethodGet, "/about", "", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	doc = parseHTML(t, body)
	banner = doc.Find("#consent-banner")
	_, hidden = banner.Attr("hidden")
	require.True(t, hidden)
	_, delayed := banner.Attr("data-delay-ms")
	require.False(t, delayed)
	require.Equal(t, 0, doc.Find("script#consent-prompt").Length())
	require.NotContains(t, body, "<noscript>")
	require.Contains(t, body, `"analytics_storage":"granted"`)
	require.Contains(t, body, `"ad_storage":"denied"`)
}

func TestContactFormPost(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"name": {"A"}, "email": {"nope"}, "message": {"short"}}
	rec := env.do(http.MethodPost, "/contact", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	doc := parseHTML(t, rec.Body.String())
	require.Equal(t, 1, doc.Find("#name-error").Length())
	require.Equal(t, 1, doc.Find("#email-error").Length())
	require.Equal(t, 1, doc.Find("#message-error").Length())
	require.Equal(t, "nope", doc.Find("#email").AttrOr("value", ""))
	require.Zero(t, env.sink.count())

	form = url.Values{
		"name":    {"Jordan Smith"},
		"email":   {"jordan@example.com"},
		"phone":   {"0412 345 678"},
		"message": {"We need help with our Google Ads in Brendale."},
	}
	rec = env.do(http.MethodPost, "/contact", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/contact?sent=1", rec.Header().Get("Location"))
	require.Equal(t, 1, env.sink.count())

	rec = env.do(http.MethodGet, "/contact?sent=1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, parseHTML(t, rec.Body.String()).Find(".notice.success").Length())
}

func TestSitemapAndRobots(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/sitemap.xml", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/xml"))
	require.Contains(t, rec.Body.String(), "<loc>"+testBaseURL+"/locations/brendale</loc>")
	require.Contains(t, rec.Body.String(), "2025-03-14T09:30:00Z")

	rec = env.do(http.MethodGet, "/robots.txt", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Sitemap: "+testBaseURL+"/sitemap.xml")
}
