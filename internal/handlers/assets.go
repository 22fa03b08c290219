package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

const assetCacheControl = "public, max-age=604800, stale-while-revalidate=86400"

type etagEntry struct {
	modTime time.Time
	size    int64
	etag    string
}

// fileCache serves files under dir with weak content ETags. Entries are recomputed when
// a file's size or modification time changes, so generated images stay correct.
type fileCache struct {
	dir   string
	files http.Handler

	mu    sync.Mutex
	etags map[string]etagEntry
}

// AssetsWithCache serves dir with long-lived cache headers and If-None-Match support.
// It expects the mount prefix to be stripped already.
func AssetsWithCache(dir string) http.Handler {
	c := &fileCache{dir: dir, files: http.FileServer(http.Dir(dir)), etags: map[string]etagEntry{}}
	return c
}

func (c *fileCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Vary", "Accept-Encoding")
	w.Header().Set("Cache-Control", assetCacheControl)
	if et := c.etag(r.URL.Path); et != "" {
		w.Header().Set("ETag", et)
		if inm := r.Header.Get("If-None-Match"); inm != "" && inm == et {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	c.files.ServeHTTP(w, r)
}

func (c *fileCache) etag(urlPath string) string {
	clean := path.Clean("/" + urlPath)
	full := filepath.Join(c.dir, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return ""
	}

	c.mu.Lock()
	entry, ok := c.etags[clean]
	c.mu.Unlock()
	if ok && entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
		return entry.etag
	}

	et, err := fileETag(full)
	if err != nil {
		return ""
	}
	c.mu.Lock()
	c.etags[clean] = etagEntry{modTime: info.ModTime(), size: info.Size(), etag: et}
	c.mu.Unlock()
	return et
}

func fileETag(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}

// StaticRoutes mounts public assets and generated images. Empty directories are skipped.
func StaticRoutes(assetsDir, imagesDir string) RouteRegistrar {
	return func(r chi.Router) {
		if assetsDir != "" {
			r.Handle("/assets/*", http.StripPrefix("/assets", AssetsWithCache(assetsDir)))
		}
		if imagesDir != "" {
			r.Handle("/images/*", http.StripPrefix("/images", AssetsWithCache(imagesDir)))
		}
	}
}
