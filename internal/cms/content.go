package cms

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// Content kinds served from markdown.
const (
	KindBlog  = "blog"
	KindLegal = "legal"
)

// ErrNotFound is returned when no markdown file exists for the requested kind and slug.
var ErrNotFound = errors.New("cms: content not found")

//go:embed content
var embedded embed.FS

// EmbeddedFS returns the markdown tree compiled into the binary, rooted at kind directories.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embedded, "content")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page is a rendered markdown document.
type Page struct {
	Kind        string
	Slug        string
	Title       string
	Summary     string
	Author      string
	Image       string
	PublishedAt time.Time
	UpdatedAt   time.Time
	Body        string
	HTML        template.HTML
	SEO         PageSEO
}

// PageSEO holds optional metadata overrides from front matter.
type PageSEO struct {
	Title       string
	Description string
	OGImage     string
}

type frontMatter struct {
	Title       string         `yaml:"title"`
	Summary     string         `yaml:"summary"`
	Author      string         `yaml:"author"`
	Image       string         `yaml:"image"`
	PublishedAt string         `yaml:"published_at"`
	UpdatedAt   string         `yaml:"updated_at"`
	SEO         frontMatterSEO `yaml:"seo"`
}

type frontMatterSEO struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	OGImage     string `yaml:"og_image"`
}

const defaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	page    Page
	expires time.Time
}

// Store loads markdown pages from a filesystem and caches rendered results.
type Store struct {
	fsys   fs.FS
	ttl    time.Duration
	now    func() time.Time
	md     goldmark.Markdown
	policy *bluemonday.Policy

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// Option customises a Store.
type Option func(*Store)

// WithCacheTTL overrides how long rendered pages are cached.
func WithCacheTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithClock overrides the clock used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore constructs a Store reading from fsys. A nil fsys uses the embedded content.
func NewStore(fsys fs.FS, opts ...Option) *Store {
	if fsys == nil {
		fsys = EmbeddedFS()
	}
	s := &Store{
		fsys:   fsys,
		ttl:    defaultCacheTTL,
		now:    time.Now,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: newContentPolicy(),
		items:  map[string]cacheEntry{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Get returns the rendered page for kind/slug.
func (s *Store) Get(ctx context.Context, kind, slug string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	kind = strings.TrimSpace(strings.ToLower(kind))
	slug = sanitizeSlug(slug)
	if kind == "" || slug == "" {
		return Page{}, ErrNotFound
	}

	key := kind + "|" + slug
	if page, ok := s.cached(key); ok {
		return page, nil
	}
	page, err := s.load(kind, slug)
	if err != nil {
		return Page{}, err
	}
	s.store(key, page)
	return page, nil
}

// Posts returns every declared blog post in BlogSlugs order. Missing files are skipped.
func (s *Store) Posts(ctx context.Context) ([]Page, error) {
	slugs := BlogSlugs()
	out := make([]Page, 0, len(slugs))
	for _, slug := range slugs {
		page, err := s.Get(ctx, KindBlog, slug)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, page)
	}
	return out, nil
}

// Invalidate drops every cached page.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.items = map[string]cacheEntry{}
	s.mu.Unlock()
}

func (s *Store) load(kind, slug string) (Page, error) {
	file := path.Join(kind, slug+".md")
	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, fmt.Errorf("cms: read %s: %w", file, err)
	}

	fm, body := splitFrontMatter(string(data))
	front := frontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("cms: parse front matter %s: %w", file, err)
		}
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("cms: render %s: %w", file, err)
	}

	page := Page{
		Kind:        kind,
		Slug:        slug,
		Title:       strings.TrimSpace(front.Title),
		Summary:     strings.TrimSpace(front.Summary),
		Author:      strings.TrimSpace(front.Author),
		Image:       strings.TrimSpace(front.Image),
		PublishedAt: parseDate(front.PublishedAt),
		UpdatedAt:   parseDate(front.UpdatedAt),
		Body:        body,
		HTML:        template.HTML(s.policy.SanitizeBytes(buf.Bytes())),
		SEO: PageSEO{
			Title:       strings.TrimSpace(front.SEO.Title),
			Description: strings.TrimSpace(front.SEO.Description),
			OGImage:     strings.TrimSpace(front.SEO.OGImage),
		},
	}
	if page.Title == "" {
		page.Title = PrettifySlug(slug)
	}
	if page.UpdatedAt.IsZero() {
		page.UpdatedAt = page.PublishedAt
	}
	return page, nil
}

func (s *Store) cached(key string) (Page, bool) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expires) {
		return Page{}, false
	}
	return entry.page, true
}

func (s *Store) store(key string, page Page) {
	s.mu.Lock()
	s.items[key] = cacheEntry{page: page, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func sanitizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	slug = strings.Trim(slug, "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}
