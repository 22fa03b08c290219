package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/sitemap"
)

// SitemapHandlers serve /sitemap.xml and /robots.txt.
type SitemapHandlers struct {
	builder sitemap.Builder
	baseURL string
	clock   func() time.Time
	logger  func(ctx context.Context, event string, fields map[string]any)
}

// NewSitemapHandlers binds the sitemap to baseURL and the published blog slugs.
func NewSitemapHandlers(baseURL string, blogSlugs []string, clock func() time.Time, logger func(context.Context, string, map[string]any)) *SitemapHandlers {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &SitemapHandlers{
		builder: sitemap.New(baseURL, blogSlugs),
		baseURL: baseURL,
		clock:   clock,
		logger:  logger,
	}
}

// Routes registers the crawler endpoints at the site root.
func (h *SitemapHandlers) Routes(r chi.Router) {
	r.Get("/sitemap.xml", h.sitemap)
	r.Get("/robots.txt", h.robots)
}

func (h *SitemapHandlers) sitemap(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := sitemap.WriteXML(&buf, h.builder.Build(h.clock())); err != nil {
		h.logger(r.Context(), "sitemap.render.failed", map[string]any{"error": err.Error()})
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = buf.WriteTo(w)
}

func (h *SitemapHandlers) robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = io.WriteString(w, sitemap.Robots(h.baseURL))
}
