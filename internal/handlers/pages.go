package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/business"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/cms"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/consent"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/contact"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/locations"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/nav"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/render"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/seo"
)

const (
	titleSuffix     = " | Red Ox Digital"
	maxFormBytes    = 64 << 10
	maxNearby       = 4
	contactSource   = "contact-page"
	eventRenderFail = "pages.render.failed"
)

// PageDeps wires the HTML page handlers.
type PageDeps struct {
	Renderer      *render.Renderer
	Content       *cms.Store
	Contact       *contact.Service
	BaseURL       string
	Analytics     render.Analytics
	SecureCookies bool
	Logger        func(ctx context.Context, event string, fields map[string]any)
}

// PageHandlers render the public marketing pages.
type PageHandlers struct {
	renderer  *render.Renderer
	content   *cms.Store
	contact   *contact.Service
	baseURL   string
	analytics render.Analytics
	secure    bool
	schemas   seo.Schemas
	logger    func(context.Context, string, map[string]any)
}

// NewPageHandlers validates dependencies and returns the page handlers.
func NewPageHandlers(deps PageDeps) (*PageHandlers, error) {
	if deps.Renderer == nil {
		return nil, errors.New("page handlers: renderer is required")
	}
	if deps.Content == nil {
		return nil, errors.New("page handlers: content store is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(deps.BaseURL), "/")
	if baseURL == "" {
		baseURL = business.Info.URL
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &PageHandlers{
		renderer:  deps.Renderer,
		content:   deps.Content,
		contact:   deps.Contact,
		baseURL:   baseURL,
		analytics: deps.Analytics,
		secure:    deps.SecureCookies,
		schemas:   seo.Default(),
		logger:    logger,
	}, nil
}

// Routes registers every page.
func (h *PageHandlers) Routes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/services", h.ServicesIndex)
	r.Get("/services/{slug}", h.Service)
	r.Get("/locations", h.LocationsIndex)
	r.Get("/locations/{slug}", h.Location)
	r.Get("/about", h.About)
	r.Get("/blog", h.BlogIndex)
	r.Get("/blog/{slug}", h.BlogPost)
	for _, slug := range cms.LegalSlugs {
		r.Get("/"+slug, h.legal(slug))
	}
	r.Get("/contact", h.ContactForm)
	r.Post("/contact", h.ContactSubmit)
}

// Home renders the landing page.
func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	posts, err := h.content.Posts(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if len(posts) > 3 {
		posts = posts[:3]
	}
	meta := seo.Meta{
		Title:       "Digital Marketing Agency Moreton Bay" + titleSuffix,
		Description: business.Info.Description,
		Keywords:    []string{"digital marketing moreton bay", "local seo dakabin", "google ads north lakes"},
	}
	h.render(w, r, http.StatusOK, "home", meta, nil, struct {
		Services  []business.Service
		Locations []locations.Location
		Posts     []cms.Page
	}{business.Services(), locations.All(), posts},
		h.schemas.LocalBusiness(),
		seo.WebSite(business.Info.Name, h.baseURL, ""),
	)
}

// ServicesIndex lists the service catalogue.
func (h *PageHandlers) ServicesIndex(w http.ResponseWriter, r *http.Request) {
	meta := seo.Meta{
		Title:       "Digital Marketing Services" + titleSuffix,
		Description: "Local SEO, Google Ads, websites, social media and content marketing for Moreton Bay businesses.",
	}
	h.render(w, r, http.StatusOK, "services", meta, nil, struct {
		Services []business.Service
	}{business.Services()},
		h.schemas.WebPage("Digital Marketing Services", meta.Description, h.abs(r.URL.Path)),
	)
}

// Service renders one service with its FAQ schema.
func (h *PageHandlers) Service(w http.ResponseWriter, r *http.Request) {
	svc, ok := business.ServiceBySlug(chi.URLParam(r, "slug"))
	if !ok {
		h.NotFound(w, r)
		return
	}
	path := "/services/" + svc.Slug
	meta := seo.Meta{
		Title:       svc.Name + " Moreton Bay" + titleSuffix,
		Description: svc.Summary,
	}
	schemas := []map[string]any{
		h.schemas.Service(seo.ServiceInput{Name: svc.Name, Description: svc.Summary, URL: h.abs(path)}),
	}
	if len(svc.FAQs) > 0 {
		faqs := make([]seo.FAQ, 0, len(svc.FAQs))
		for _, f := range svc.FAQs {
			faqs = append(faqs, seo.FAQ{Question: f.Question, Answer: f.Answer})
		}
		schemas = append(schemas, seo.FAQPage(faqs))
	}
	h.render(w, r, http.StatusOK, "service", meta, map[string]string{path: svc.Name}, struct {
		Service   business.Service
		Locations []locations.Location
	}{svc, locationsOffering(svc.Slug)}, schemas...)
}

type zoneGroup struct {
	Zone      locations.Zone
	Title     string
	Locations []locations.Location
}

var zoneTitles = map[locations.Zone]string{
	locations.ZoneIndustrial: "Industrial and trade hubs",
	locations.ZoneRetail:     "Residential and retail centres",
}

// LocationsIndex groups the registry by zone.
func (h *PageHandlers) LocationsIndex(w http.ResponseWriter, r *http.Request) {
	groups := make([]zoneGroup, 0, len(locations.Zones()))
	for _, zone := range locations.Zones() {
		locs := locations.ByZone(zone)
		if len(locs) == 0 {
			continue
		}
		groups = append(groups, zoneGroup{Zone: zone, Title: zoneTitles[zone], Locations: locs})
	}
	meta := seo.Meta{
		Title:       "Areas We Serve in Moreton Bay" + titleSuffix,
		Description: "Digital marketing for businesses across North Lakes, Brendale, Narangba, Redcliffe and the wider Moreton Bay region.",
	}
	h.render(w, r, http.StatusOK, "locations", meta, nil, struct {
		Zones []zoneGroup
	}{groups},
		h.schemas.WebPage("Areas We Serve", meta.Description, h.abs(r.URL.Path)),
	)
}

// Location renders a suburb landing page. Unknown slugs get the 404 page.
func (h *PageHandlers) Location(w http.ResponseWriter, r *http.Request) {
	loc, ok := locations.BySlug(chi.URLParam(r, "slug"))
	if !ok {
		h.NotFound(w, r)
		return
	}
	path := "/locations/" + loc.Slug
	services := make([]business.Service, 0, len(loc.FocusServices))
	names := make([]string, 0, len(loc.FocusServices))
	for _, slug := range loc.FocusServices {
		if svc, ok := business.ServiceBySlug(slug); ok {
			services = append(services, svc)
			names = append(names, svc.Name)
		}
	}
	meta := seo.Meta{
		Title:       loc.SEOTitle,
		Description: loc.Description,
		Keywords:    loc.Keywords,
	}
	h.render(w, r, http.StatusOK, "location", meta, map[string]string{path: loc.Name}, struct {
		Location locations.Location
		Services []business.Service
		Nearby   []locations.Location
	}{loc, services, nearby(loc)},
		h.schemas.Location(seo.LocationInput{
			Location:    loc.Name,
			Description: loc.Description,
			URL:         h.abs(path),
			Services:    names,
		}),
	)
}

// About renders the agency page with the service-area list.
func (h *PageHandlers) About(w http.ResponseWriter, r *http.Request) {
	meta := seo.Meta{
		Title:       "About Us" + titleSuffix,
		Description: "A Dakabin-based digital marketing team working with trades, industrial operators and retailers across Moreton Bay.",
	}
	h.render(w, r, http.StatusOK, "about", meta, nil, struct {
		Areas []string
	}{business.ServiceAreaNames()},
		h.schemas.LocalBusiness(),
	)
}

// BlogIndex lists published posts.
func (h *PageHandlers) BlogIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := h.content.Posts(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	meta := seo.Meta{
		Title:       "Marketing Tips for Moreton Bay Businesses" + titleSuffix,
		Description: "Practical guides on local SEO, Google Ads and websites from the Red Ox Digital team.",
	}
	h.render(w, r, http.StatusOK, "blog", meta, nil, struct {
		Posts []cms.Page
	}{posts},
		h.schemas.WebPage("Blog", meta.Description, h.abs(r.URL.Path)),
	)
}

// BlogPost renders one markdown post.
func (h *PageHandlers) BlogPost(w http.ResponseWriter, r *http.Request) {
	page, err := h.content.Get(r.Context(), cms.KindBlog, chi.URLParam(r, "slug"))
	if errors.Is(err, cms.ErrNotFound) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	path := "/blog/" + page.Slug
	meta := contentMeta(page)
	meta.OG.Type = "article"
	published := ""
	if !page.PublishedAt.IsZero() {
		published = page.PublishedAt.Format(time.DateOnly)
	}
	author := page.Author
	if author == "" {
		author = business.Info.Name
	}
	h.render(w, r, http.StatusOK, "post", meta, map[string]string{path: page.Title}, struct {
		Post cms.Page
	}{page},
		seo.Article(page.Title, h.abs(path), page.Image, author, published),
	)
}

func (h *PageHandlers) legal(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.content.Get(r.Context(), cms.KindLegal, slug)
		if errors.Is(err, cms.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, "page", contentMeta(page), map[string]string{"/" + slug: page.Title}, struct {
			Page cms.Page
		}{page},
			h.schemas.WebPage(page.Title, page.Summary, h.abs("/"+slug)),
		)
	}
}

type contactView struct {
	Values contact.Values
	Errors map[string]string
	Sent   bool
}

var contactMeta = seo.Meta{
	Title:       "Contact Us" + titleSuffix,
	Description: "Talk to a local digital marketing specialist in Dakabin about growing your Moreton Bay business.",
}

// ContactForm renders the empty form, or the thank-you notice after a redirect.
func (h *PageHandlers) ContactForm(w http.ResponseWriter, r *http.Request) {
	view := contactView{Sent: r.URL.Query().Get("sent") == "1"}
	h.render(w, r, http.StatusOK, "contact", contactMeta, nil, view, h.schemas.LocalBusiness())
}

// ContactSubmit handles the no-script form post. Valid submissions redirect so a refresh
// does not resend them.
func (h *PageHandlers) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "contact", contactMeta, nil, contactView{
			Errors: map[string]string{"message": "We could not read your message. Please try again."},
		})
		return
	}
	values := contact.Values{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Message: r.PostForm.Get("message"),
	}
	if h.contact == nil {
		res := contact.Validate(values)
		h.render(w, r, http.StatusServiceUnavailable, "contact", contactMeta, nil, contactView{Values: res.Values, Errors: res.FieldMap()})
		return
	}
	_, err := h.contact.Submit(r.Context(), contact.Submission{
		Values:    values,
		Source:    contactSource,
		RemoteIP:  clientIP(r),
		UserAgent: r.UserAgent(),
	})
	var verr *contact.ValidationError
	switch {
	case errors.As(err, &verr):
		errs := make(map[string]string, len(verr.Fields))
		for _, fe := range verr.Fields {
			errs[fe.Field] = fe.Message
		}
		h.render(w, r, http.StatusUnprocessableEntity, "contact", contactMeta, nil, contactView{Values: values, Errors: errs})
	case err != nil:
		h.logger(r.Context(), "pages.contact.failed", map[string]any{"error": err.Error()})
		h.render(w, r, http.StatusServiceUnavailable, "contact", contactMeta, nil, contactView{
			Values: values,
			Errors: map[string]string{"message": "Something went wrong sending your message. Please call us instead."},
		})
	default:
		http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
	}
}

// NotFound renders the branded 404 page.
func (h *PageHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	meta := seo.Meta{
		Title:       "Page Not Found" + titleSuffix,
		Description: "The page you were looking for could not be found.",
		Robots:      "noindex,follow",
	}
	h.render(w, r, http.StatusNotFound, "404", meta, nil, nil)
}

func (h *PageHandlers) render(w http.ResponseWriter, r *http.Request, status int, name string, meta seo.Meta, labels map[string]string, data any, schemas ...map[string]any) {
	path := r.URL.Path
	crumbs := nav.Breadcrumbs(path, labels)
	if meta.Canonical == "" && status < http.StatusBadRequest {
		meta.Canonical = h.abs(path)
	}
	meta = meta.Defaults(business.Info.Name, business.Info.Image).WithSchemas(schemas...)
	if path != "/" && status < http.StatusBadRequest {
		meta = meta.WithSchemas(seo.BreadcrumbList(nav.SchemaItems(h.baseURL, crumbs)))
	}
	page := render.Page{
		Meta:        meta,
		Business:    business.Info,
		Path:        path,
		Nav:         nav.Build(path),
		Breadcrumbs: crumbs,
		Analytics:   h.analytics,
		Consent:     h.consentView(r),
		Data:        data,
	}
	if err := h.renderer.Render(w, status, name, page); err != nil {
		h.logger(r.Context(), eventRenderFail, map[string]any{"page": name, "error": err.Error()})
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *PageHandlers) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger(r.Context(), eventRenderFail, map[string]any{"path": r.URL.Path, "error": err.Error()})
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// consentView replays any stored decision through consent mode so the layout emits
// the visitor's signals rather than the denied defaults.
func (h *PageHandlers) consentView(r *http.Request) render.Consent {
	mode := &consent.ConsentMode{}
	store := consent.NewStore(consent.NewCookieStorage(nil, r, h.secure), consent.WithAnalytics(mode))
	signals, ok := mode.Update()
	if !ok {
		signals = consent.DefaultSignals()
	}
	raw, err := json.Marshal(signals)
	if err != nil {
		raw = []byte("{}")
	}
	return render.Consent{
		ShowBanner:    store.State() != consent.StateResolved,
		PromptDelayMS: consent.DefaultPromptDelay.Milliseconds(),
		Signals:       template.JS(raw),
	}
}

func (h *PageHandlers) abs(path string) string {
	return seo.AbsoluteURL(h.baseURL, path)
}

func contentMeta(page cms.Page) seo.Meta {
	title := page.SEO.Title
	if title == "" {
		title = page.Title + titleSuffix
	}
	desc := page.SEO.Description
	if desc == "" {
		desc = page.Summary
	}
	meta := seo.Meta{Title: title, Description: desc}
	if page.SEO.OGImage != "" {
		meta.OG.Image = page.SEO.OGImage
	} else if page.Image != "" {
		meta.OG.Image = page.Image
	}
	return meta
}

// locationsOffering lists registry suburbs that feature the service.
func locationsOffering(serviceSlug string) []locations.Location {
	var out []locations.Location
	for _, loc := range locations.All() {
		for _, s := range loc.FocusServices {
			if s == serviceSlug {
				out = append(out, loc)
				break
			}
		}
	}
	return out
}

// nearby returns other suburbs in the same zone, in registry order.
func nearby(loc locations.Location) []locations.Location {
	out := make([]locations.Location, 0, maxNearby)
	for _, other := range locations.ByZone(loc.Zone) {
		if other.Slug == loc.Slug {
			continue
		}
		out = append(out, other)
		if len(out) == maxNearby {
			break
		}
	}
	return out
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
