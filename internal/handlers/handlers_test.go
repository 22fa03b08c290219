package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/cms"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/contact"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/imagegen"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/render"
)

const testBaseURL = "https://www.redoxdigital.com.au"

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type recordingSink struct {
	mu    sync.Mutex
	leads []contact.Lead
	err   error
}

func (s *recordingSink) SaveLead(_ context.Context, lead contact.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.leads = append(s.leads, lead)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads)
}

type stubModel struct {
	img imagegen.Image
	err error
}

func (m *stubModel) GenerateImage(context.Context, imagegen.ModelRequest) (imagegen.Image, error) {
	return m.img, m.err
}

type testEnv struct {
	router    chi.Router
	sink      *recordingSink
	model     *stubModel
	imagesDir string
}

type envConfig struct {
	rateLimit  int
	imageGuard func(http.Handler) http.Handler
}

func newTestEnv(t *testing.T, mods ...func(*envConfig)) *testEnv {
	t.Helper()
	cfg := envConfig{}
	for _, mod := range mods {
		mod(&cfg)
	}

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	sink := &recordingSink{}
	contactSvc, err := contact.NewService(contact.ServiceDeps{
		Sink:  sink,
		Clock: func() time.Time { return fixedNow },
		IDGen: func() string { return "lead-1" },
	})
	if err != nil {
		t.Fatalf("contact.NewService: %v", err)
	}
	model := &stubModel{img: imagegen.Image{Data: []byte("jpeg-bytes"), MIMEType: "image/jpeg"}}
	imagesDir := t.TempDir()
	imageSvc, err := imagegen.NewService(imagegen.ServiceDeps{
		Model: model,
		Sink:  imagegen.NewFileSink(imagesDir),
		IDGen: func() string { return "gen-1" },
	})
	if err != nil {
		t.Fatalf("imagegen.NewService: %v", err)
	}

	pages, err := NewPageHandlers(PageDeps{
		Renderer: renderer,
		Content:  cms.NewStore(cms.EmbeddedFS()),
		Contact:  contactSvc,
		BaseURL:  testBaseURL,
	})
	if err != nil {
		t.Fatalf("NewPageHandlers: %v", err)
	}
	contactAPI := NewContactHandlers(contactSvc, WithContactRateLimit(cfg.rateLimit, func() time.Time { return fixedNow }))
	consentAPI := NewConsentHandlers(false, func() time.Time { return fixedNow })
	images := NewImageHandlers(imageSvc, WithImageGuard(cfg.imageGuard))
	crawl := NewSitemapHandlers(testBaseURL, cms.BlogSlugs(), func() time.Time { return fixedNow }, nil)

	router := NewRouter(
		WithPageRoutes(Chain(pages.Routes, crawl.Routes)),
		WithAPIRoutes(Chain(contactAPI.Routes, consentAPI.Routes, images.Routes)),
		WithStaticRoutes(StaticRoutes("", imagesDir)),
		WithNotFound(pages.NotFound),
	)
	return &testEnv{router: router, sink: sink, model: model, imagesDir: imagesDir}
}

func (e *testEnv) do(method, target, contentType, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doWithReferer(method, target, form, referer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(form))
	req.Host = "www.redoxdigital.com.au"
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", referer)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

var errSinkDown = errors.New("sink down")
