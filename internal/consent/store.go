package consent

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Storage keys for the persisted consent record.
const (
	KeySettings  = "cookie-consent"
	KeyTimestamp = "cookie-consent-date"
)

// DefaultPromptDelay is how long a first-time visitor waits before the banner appears.
const DefaultPromptDelay = time.Second

// ErrInvalidTransition is returned when an action is not allowed in the current state.
var ErrInvalidTransition = errors.New("consent: invalid transition")

// State is the banner lifecycle state.
type State string

const (
	StateUnset     State = "unset"
	StatePrompting State = "prompting"
	StateEditing   State = "editing"
	StateResolved  State = "resolved"
)

// Settings are the per-category choices. Essential is always true.
type Settings struct {
	Essential bool `json:"essential"`
	Analytics bool `json:"analytics"`
	Marketing bool `json:"marketing"`
}

// Storage persists string values by key.
type Storage interface {
	Read(key string) (string, bool)
	Write(key, value string)
	Clear(key string)
}

// Analytics receives consent decisions. Implementations must tolerate being called when no
// tag is loaded.
type Analytics interface {
	ApplyConsent(Settings)
}

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ElapsedScheduler runs f immediately. It serves requests that arrive once the visitor has
// already waited out the prompt delay in the browser.
type ElapsedScheduler struct{}

func (ElapsedScheduler) AfterFunc(_ time.Duration, f func()) Timer {
	f()
	return firedTimer{}
}

type firedTimer struct{}

func (firedTimer) Stop() bool { return false }

type noopAnalytics struct{}

func (noopAnalytics) ApplyConsent(Settings) {}

// Option customises a Store.
type Option func(*Store)

// WithAnalytics sets the integration notified on resolution.
func WithAnalytics(a Analytics) Option {
	return func(s *Store) {
		if a != nil {
			s.analytics = a
		}
	}
}

// WithScheduler replaces the timer source used for the prompt delay.
func WithScheduler(sched Scheduler) Option {
	return func(s *Store) {
		if sched != nil {
			s.sched = sched
		}
	}
}

// WithClock sets the clock used to stamp decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}


// Store is the consent state machine for one visitor.
type Store struct {
	storage   Storage
	analytics Analytics
	sched     Scheduler
	now       func() time.Time
	delay     time.Duration

	mu        sync.Mutex
	state     State
	settings  Settings
	decidedAt time.Time
	pending   Timer
}

// NewStore reads any persisted record once. A record that parses starts the store resolved
// and re-applies it to analytics; a missing or unparsable record starts it unset.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		analytics: noopAnalytics{},
		sched:     realScheduler{},
		now:       time.Now,
		delay:     DefaultPromptDelay,
		state:     StateUnset,
		settings:  Settings{Essential: true},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if settings, ok := s.load(); ok {
		s.state = StateResolved
		s.settings = settings
		if raw, ok := storage.Read(KeyTimestamp); ok {
			if ts, err := time.Parse(time.RFC3339, raw); err == nil {
				s.decidedAt = ts
			}
		}
		s.analytics.ApplyConsent(settings)
	}
	return s
}

func (s *Store) load() (Settings, bool) {
	raw, ok := s.storage.Read(KeySettings)
	if !ok {
		return Settings{}, false
	}
	settings, err := ParseSettings(raw)
	if err != nil {
		return Settings{}, false
	}
	return settings, true
}

// ParseSettings decodes a persisted record. Both optional categories must be present.
func ParseSettings(raw string) (Settings, error) {
	var rec struct {
		Analytics *bool `json:"analytics"`
		Marketing *bool `json:"marketing"`
	}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Settings{}, fmt.Errorf("consent: parse settings: %w", err)
	}
	if rec.Analytics == nil || rec.Marketing == nil {
		return Settings{}, errors.New("consent: parse settings: missing category")
	}
	return Settings{Essential: true, Analytics: *rec.Analytics, Marketing: *rec.Marketing}, nil
}

// Mount schedules the prompt for a visitor with no decision. It is a no-op in any other state
// or when already scheduled.
func (s *Store) Mount() {
	s.mu.Lock()
	if s.state != StateUnset || s.pending != nil {
		s.mu.Unlock()
		return
	}
	sched, delay := s.sched, s.delay
	s.mu.Unlock()

	// AfterFunc may run promptDue before returning, so the timer is only kept while the
	// prompt is still due.
	timer := sched.AfterFunc(delay, s.promptDue)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUnset && s.pending == nil {
		s.pending = timer
		return
	}
	if s.pending != timer {
		timer.Stop()
	}
}

func (s *Store) promptDue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	if s.state == StateUnset {
		s.state = StatePrompting
	}
}

// Unmount cancels a pending prompt.
func (s *Store) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Settings returns the current choices. Before resolution these are the defaults.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// DecidedAt returns when the visitor last resolved consent, or the zero time.
func (s *Store) DecidedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decidedAt
}

// ShowPrompt reports whether the banner should be visible.
func (s *Store) ShowPrompt() bool {
	st := s.State()
	return st == StatePrompting || st == StateEditing
}

// OpenSettings moves from the banner to the settings panel.
func (s *Store) OpenSettings() error {
	return s.move(StatePrompting, StateEditing)
}

// CloseSettings returns from the settings panel to the banner.
func (s *Store) CloseSettings() error {
	return s.move(StateEditing, StatePrompting)
}

func (s *Store) move(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return fmt.Errorf("%w: %s -> %s from %s", ErrInvalidTransition, from, to, s.state)
	}
	s.state = to
	return nil
}

// AcceptAll grants every category.
func (s *Store) AcceptAll() error {
	return s.resolve(Settings{Essential: true, Analytics: true, Marketing: true})
}

// EssentialOnly denies every optional category.
func (s *Store) EssentialOnly() error {
	return s.resolve(Settings{Essential: true})
}

// SavePreferences stores the panel toggles. Essential stays true.
func (s *Store) SavePreferences(analytics, marketing bool) error {
	return s.resolve(Settings{Essential: true, Analytics: analytics, Marketing: marketing})
}

// resolve persists the decision then applies it to analytics before returning.
func (s *Store) resolve(settings Settings) error {
	s.mu.Lock()
	if s.state != StatePrompting && s.state != StateEditing {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot resolve from %s", ErrInvalidTransition, state)
	}
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	settings.Essential = true
	payload, err := json.Marshal(settings)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("consent: encode settings: %w", err)
	}
	now := s.now().UTC()
	s.storage.Write(KeySettings, string(payload))
	s.storage.Write(KeyTimestamp, now.Format(time.RFC3339))
	s.state = StateResolved
	s.settings = settings
	s.decidedAt = now
	analytics := s.analytics
	s.mu.Unlock()

	analytics.ApplyConsent(settings)
	return nil
}
