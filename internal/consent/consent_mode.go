package consent

import (
	"sync"
)

// Signals are Google consent-mode parameters, each "granted" or "denied".
type Signals map[string]string

const (
	granted = "granted"
	denied  = "denied"
)

func flag(b bool) string {
	if b {
		return granted
	}
	return denied
}

// SignalsFor maps settings onto consent-mode parameters.
func SignalsFor(s Settings) Signals {
	return Signals{
		"analytics_storage":       flag(s.Analytics),
		"ad_storage":              flag(s.Marketing),
		"ad_user_data":            flag(s.Marketing),
		"ad_personalization":      flag(s.Marketing),
		"functionality_storage":   granted,
		"security_storage":        granted,
		"personalization_storage": flag(s.Marketing),
	}
}

// DefaultSignals is the state sent before any decision.
func DefaultSignals() Signals {
	return SignalsFor(Settings{Essential: true})
}

// ConsentMode is an Analytics integration that records the latest consent-mode update so the
// page can emit it to the tag. With no tag configured it only records.
type ConsentMode struct {
	mu      sync.Mutex
	last    Signals
	applied bool
}

// ApplyConsent implements Analytics.
func (c *ConsentMode) ApplyConsent(s Settings) {
	c.mu.Lock()
	c.last = SignalsFor(s)
	c.applied = true
	c.mu.Unlock()
}

// Update returns the most recent consent update, if any.
func (c *ConsentMode) Update() (Signals, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.applied {
		return nil, false
	}
	out := make(Signals, len(c.last))
	for k, v := range c.last {
		out[k] = v
	}
	return out, true
}
