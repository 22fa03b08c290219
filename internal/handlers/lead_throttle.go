package handlers

import (
	"strings"
	"sync"
	"time"
)

// leadThrottle caps contact submissions in fixed windows. One submission counts against
// the client address and, when given, the sender email, so changing only one of them does
// not reset the budget.
type leadThrottle struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	windows map[string]throttleWindow
}

type throttleWindow struct {
	hits    int
	resetAt time.Time
}

// newLeadThrottle returns nil when limit or window is not positive; a nil throttle admits
// everything.
func newLeadThrottle(limit int, window time.Duration, clock func() time.Time) *leadThrottle {
	if limit <= 0 || window <= 0 {
		return nil
	}
	if clock == nil {
		clock = time.Now
	}
	return &leadThrottle{limit: limit, window: window, clock: clock, windows: map[string]throttleWindow{}}
}

func leadKeys(ip, email string) []string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		ip = "anonymous"
	}
	keys := []string{"ip:" + ip}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		keys = append(keys, "email:"+email)
	}
	return keys
}

// admit counts one submission against every key. If any key is exhausted nothing is
// counted and the wait until the latest blocking window resets is returned.
func (t *leadThrottle) admit(keys ...string) (time.Duration, bool) {
	if t == nil {
		return 0, true
	}
	now := t.clock()
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, w := range t.windows {
		if !now.Before(w.resetAt) {
			delete(t.windows, key)
		}
	}

	var wait time.Duration
	for _, key := range keys {
		if w, ok := t.windows[key]; ok && w.hits >= t.limit {
			if d := w.resetAt.Sub(now); d > wait {
				wait = d
			}
		}
	}
	if wait > 0 {
		return wait, false
	}
	for _, key := range keys {
		w, ok := t.windows[key]
		if !ok {
			w = throttleWindow{resetAt: now.Add(t.window)}
		}
		w.hits++
		t.windows[key] = w
	}
	return 0, true
}

// retryAfterSeconds rounds wait up to whole seconds for the Retry-After header.
func retryAfterSeconds(wait time.Duration) int {
	secs := int((wait + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
