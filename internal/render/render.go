package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/business"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/nav"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/seo"
)

//go:embed templates
var embedded embed.FS

// ErrUnknownPage is returned when no page template matches the requested name.
var ErrUnknownPage = errors.New("render: unknown page")

// Analytics holds tag identifiers surfaced to the layout.
type Analytics struct {
	GA4MeasurementID string
	GTMContainerID   string
}

// Consent drives the cookie banner and the consent-mode defaults in the layout. The banner
// is always rendered hidden; when ShowBanner is set a script reveals it after
// PromptDelayMS, or a noscript rule shows it at once.
type Consent struct {
	ShowBanner    bool
	PromptDelayMS int64
	Signals       template.JS
}

// Page is the layout view model. Data carries the page-specific payload.
type Page struct {
	Meta        seo.Meta
	Business    business.BusinessInfo
	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Analytics   Analytics
	Consent     Consent
	Data        any
}

// Renderer executes the base layout around one page template.
type Renderer struct {
	fsys  fs.FS
	dev   bool
	funcs template.FuncMap

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithDir loads templates from a directory on disk instead of the embedded set.
func WithDir(dir string) Option {
	return func(r *Renderer) {
		if strings.TrimSpace(dir) != "" {
			r.fsys = os.DirFS(dir)
		}
	}
}

// WithDevMode reparses templates on every render.
func WithDevMode(dev bool) Option {
	return func(r *Renderer) { r.dev = dev }
}

// New parses the templates once. In dev mode parse errors surface on each render instead.
func New(opts ...Option) (*Renderer, error) {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, err
	}
	r := &Renderer{fsys: sub, funcs: funcMap()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	pages, err := r.parse()
	if err != nil {
		return nil, err
	}
	r.pages = pages
	return r, nil
}

// Check reports whether the templates parse. Used by readiness probes.
func (r *Renderer) Check() error {
	if !r.dev {
		return nil
	}
	_, err := r.parse()
	return err
}

// Render writes the named page inside the base layout. Output is buffered so a template
// error never produces a half-written 200.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data Page) error {
	t, err := r.lookup(page)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

func (r *Renderer) lookup(page string) (*template.Template, error) {
	pages := r.currentPages()
	if r.dev {
		fresh, err := r.parse()
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.pages = fresh
		r.mu.Unlock()
		pages = fresh
	}
	t, ok := pages[page]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, page)
	}
	return t, nil
}

func (r *Renderer) currentPages() map[string]*template.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pages
}

// parse builds one template set per page: the layout plus partials, cloned, plus the page.
func (r *Renderer) parse() (map[string]*template.Template, error) {
	layout, err := template.New("_root").Funcs(r.funcs).ParseFS(r.fsys, "base.tmpl", "partials/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	files, err := fs.Glob(r.fsys, "pages/*.tmpl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("render: no page templates found")
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		clone, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		t, err := clone.ParseFS(r.fsys, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".tmpl")] = t
	}
	return pages, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"year": func() int { return time.Now().Year() },
		"join": strings.Join,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2 January 2006")
		},
		"isoDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"telHref": func(phone string) string {
			return "tel:" + strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
		},
	}
}
