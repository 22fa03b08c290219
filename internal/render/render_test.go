package render

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/business"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/nav"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/seo"
)

func testPage() Page {
	meta := seo.Meta{Title: "Test | Red Ox Digital", Description: "desc", Canonical: "https://www.redoxdigital.com.au/about"}.
		Defaults(business.Info.Name, business.Info.Image).
		WithSchemas(seo.WebSite(business.Info.Name, business.Info.URL, ""))
	return Page{
		Meta:        meta,
		Business:    business.Info,
		Path:        "/about",
		Nav:         nav.Build("/about"),
		Breadcrumbs: nav.Breadcrumbs("/about", nil),
		Consent:     Consent{ShowBanner: true, PromptDelayMS: 1000, Signals: `{"analytics_storage":"denied"}`},
		Data:        struct{ Areas []string }{Areas: []string{"Dakabin", "Petrie"}},
	}
}

func TestRenderEmbeddedLayout(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, "about", testPage()))
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	require.Equal(t, "Test | Red Ox Digital", doc.Find("title").Text())
	require.Equal(t, "https://www.redoxdigital.com.au/about", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	require.Equal(t, 1, doc.Find(`script[type="application/ld+json"]`).Length())
	require.Contains(t, doc.Find(`script[type="application/ld+json"]`).Text(), `"@type":"WebSite"`)
	require.Equal(t, "page", doc.Find(`nav[aria-label="Primary"] a[href="/about"]`).AttrOr("aria-current", ""))
	require.Contains(t, doc.Find("main").Text(), "Dakabin, Petrie")

	banner := doc.Find("#consent-banner")
	require.Equal(t, 1, banner.Length())
	_, hidden := banner.Attr("hidden")
	require.True(t, hidden)
	require.Equal(t, "1000", banner.AttrOr("data-delay-ms", ""))
	require.Equal(t, 1, doc.Find("script#consent-prompt").Length())
}

func TestRenderHidesResolvedBanner(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	page := testPage()
	page.Consent.ShowBanner = false

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, "about", page))
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	banner := doc.Find("#consent-banner")
	_, hidden := banner.Attr("hidden")
	require.True(t, hidden)
	_, delayed := banner.Attr("data-delay-ms")
	require.False(t, delayed)
	require.Equal(t, 0, doc.Find("script#consent-prompt").Length())
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	err = r.Render(rec, http.StatusOK, "nope", testPage())
	require.ErrorIs(t, err, ErrUnknownPage)
	require.Equal(t, 0, rec.Body.Len())
}

func TestDevModeReparsesFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pages"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "partials"), 0o755))
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("base.tmpl", `{{define "base"}}[{{template "content" .}}]{{end}}`)
	write("partials/none.tmpl", `{{define "unused"}}{{end}}`)
	write("pages/hello.tmpl", `{{define "content"}}v1{{end}}`)

	r, err := New(WithDir(dir), WithDevMode(true))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusOK, "hello", Page{}))
	require.Equal(t, "[v1]", rec.Body.String())

	write("pages/hello.tmpl", `{{define "content"}}v2{{end}}`)
	rec = httptest.NewRecorder()
	require.NoError(t, r.Render(rec, http.StatusTeapot, "hello", Page{}))
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.True(t, strings.HasSuffix(rec.Body.String(), "v2]"))

	write("pages/hello.tmpl", `{{define "content"}}{{end`)
	require.Error(t, r.Check())
}
