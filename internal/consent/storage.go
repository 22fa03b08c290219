package consent

import (
	"net/http"
	"net/url"
	"sync"
	"time"
)

// MapStorage is an in-memory Storage.
type MapStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMapStorage returns a MapStorage seeded with values.
func NewMapStorage(values map[string]string) *MapStorage {
	m := &MapStorage{values: make(map[string]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *MapStorage) Read(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MapStorage) Write(key, value string) {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
}

func (m *MapStorage) Clear(key string) {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
}

const cookieMaxAge = 365 * 24 * time.Hour

// CookieStorage stores values as first-party cookies for the lifetime of one request.
// Writes are visible to later reads on the same instance.
type CookieStorage struct {
	w       http.ResponseWriter
	r       *http.Request
	secure  bool
	written map[string]*string
}

// NewCookieStorage binds storage to a request/response pair.
func NewCookieStorage(w http.ResponseWriter, r *http.Request, secure bool) *CookieStorage {
	return &CookieStorage{w: w, r: r, secure: secure, written: map[string]*string{}}
}

func (c *CookieStorage) Read(key string) (string, bool) {
	if v, ok := c.written[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	if c.r == nil {
		return "", false
	}
	cookie, err := c.r.Cookie(key)
	if err != nil {
		return "", false
	}
	v, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *CookieStorage) Write(key, value string) {
	c.written[key] = &value
	if c.w == nil {
		return
	}
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     "/",
		MaxAge:   int(cookieMaxAge / time.Second),
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *CookieStorage) Clear(key string) {
	c.written[key] = nil
	if c.w == nil {
		return
	}
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
