package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/consent"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/httpx"
)

const (
	consentActionAcceptAll     = "accept-all"
	consentActionEssentialOnly = "essential-only"
	consentActionSave          = "save"
	maxConsentBodyBytes        = 4 << 10
)

// ConsentHandlers read and record cookie consent decisions.
type ConsentHandlers struct {
	secure bool
	clock  func() time.Time
}

// NewConsentHandlers builds the consent endpoints. secure marks cookies Secure.
func NewConsentHandlers(secure bool, clock func() time.Time) *ConsentHandlers {
	if clock == nil {
		clock = time.Now
	}
	return &ConsentHandlers{secure: secure, clock: clock}
}

// Routes registers GET and POST /consent under the API prefix.
func (h *ConsentHandlers) Routes(r chi.Router) {
	r.Get("/consent", h.get)
	r.Post("/consent", h.post)
}

type consentRequest struct {
	Action    string `json:"action"`
	Analytics bool   `json:"analytics"`
	Marketing bool   `json:"marketing"`
}

func (h *ConsentHandlers) store(w http.ResponseWriter, r *http.Request, opts ...consent.Option) (*consent.Store, *consent.ConsentMode) {
	mode := &consent.ConsentMode{}
	opts = append([]consent.Option{
		consent.WithAnalytics(mode),
		consent.WithClock(h.clock),
	}, opts...)
	store := consent.NewStore(consent.NewCookieStorage(w, r, h.secure), opts...)
	return store, mode
}

func (h *ConsentHandlers) get(w http.ResponseWriter, r *http.Request) {
	store, mode := h.store(nil, r)
	httpx.WriteJSON(w, http.StatusOK, consentPayload(store, mode))
}

func (h *ConsentHandlers) post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := isFormPost(r)
	req, err := decodeConsentRequest(w, r, form)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	switch req.Action {
	case consentActionAcceptAll, consentActionEssentialOnly, consentActionSave:
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_action", "action must be accept-all, essential-only or save", http.StatusBadRequest))
		return
	}

	// A posted decision means the banner was on screen, so the prompt delay has run.
	store, mode := h.store(w, r, consent.WithScheduler(consent.ElapsedScheduler{}))
	store.Mount()
	defer store.Unmount()
	switch req.Action {
	case consentActionAcceptAll:
		err = store.AcceptAll()
	case consentActionEssentialOnly:
		err = store.EssentialOnly()
	case consentActionSave:
		if err = store.OpenSettings(); err == nil {
			err = store.SavePreferences(req.Analytics, req.Marketing)
		}
	}
	if errors.Is(err, consent.ErrInvalidTransition) {
		if form {
			http.Redirect(w, r, sameOriginReferer(r), http.StatusSeeOther)
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("consent_already_recorded", "consent has already been recorded", http.StatusConflict))
		return
	}
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("consent_failed", err.Error(), http.StatusInternalServerError))
		return
	}
	if form {
		http.Redirect(w, r, sameOriginReferer(r), http.StatusSeeOther)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, consentPayload(store, mode))
}

func consentPayload(store *consent.Store, mode *consent.ConsentMode) map[string]any {
	signals, ok := mode.Update()
	if !ok {
		signals = consent.DefaultSignals()
	}
	payload := map[string]any{
		"state":      store.State(),
		"settings":   store.Settings(),
		"showPrompt": store.State() != consent.StateResolved,
		"signals":    signals,
	}
	if store.State() == consent.StateUnset {
		payload["promptDelayMs"] = consent.DefaultPromptDelay.Milliseconds()
	}
	if at := store.DecidedAt(); !at.IsZero() {
		payload["decidedAt"] = at.UTC().Format(time.RFC3339)
	}
	return payload
}

func isFormPost(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

func decodeConsentRequest(w http.ResponseWriter, r *http.Request, form bool) (consentRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxConsentBodyBytes)
	var req consentRequest
	if form {
		if err := r.ParseForm(); err != nil {
			return req, errors.New("form body could not be parsed")
		}
		req.Action = r.PostForm.Get("action")
		req.Analytics, _ = strconv.ParseBool(r.PostForm.Get("analytics"))
		req.Marketing, _ = strconv.ParseBool(r.PostForm.Get("marketing"))
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errors.New("request body must be a JSON object")
	}
	req.Action = strings.ToLower(strings.TrimSpace(req.Action))
	return req, nil
}

// sameOriginReferer returns the referring path when it points back at this host.
func sameOriginReferer(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return "/"
	}
	if ref.Host != "" && ref.Host != r.Host {
		return "/"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
