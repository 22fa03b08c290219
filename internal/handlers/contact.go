package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/contact"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/httpx"
)

const (
	maxContactBodyBytes = 64 << 10
	apiContactSource    = "api"
)

// ContactHandlers expose the contact form as a JSON endpoint.
type ContactHandlers struct {
	service  *contact.Service
	throttle *leadThrottle
}

// ContactOption customises the contact handlers.
type ContactOption func(*ContactHandlers)

// WithContactRateLimit caps submissions per minute for each client IP and each sender email.
// Zero disables limiting.
func WithContactRateLimit(perMinute int, clock func() time.Time) ContactOption {
	return func(h *ContactHandlers) {
		h.throttle = newLeadThrottle(perMinute, time.Minute, clock)
	}
}

// NewContactHandlers builds the JSON contact endpoint.
func NewContactHandlers(service *contact.Service, opts ...ContactOption) *ContactHandlers {
	h := &ContactHandlers{service: service}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers POST /contact under the API prefix.
func (h *ContactHandlers) Routes(r chi.Router) {
	r.Post("/contact", h.submit)
}

func (h *ContactHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.service == nil {
		httpx.WriteError(ctx, w, httpx.NewError("contact_unavailable", "contact form is not configured", http.StatusServiceUnavailable))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxContactBodyBytes)
	var body any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_json", "request body is not valid JSON", http.StatusBadRequest))
		return
	}
	// Non-object JSON validates as an empty form.
	raw, _ := body.(map[string]any)

	email, _ := raw["email"].(string)
	if wait, ok := h.throttle.admit(leadKeys(clientIP(r), email)...); !ok {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many submissions, try again shortly", http.StatusTooManyRequests))
		return
	}

	res := contact.ValidateRaw(raw)
	if !res.OK() {
		httpx.WriteError(ctx, w, httpx.NewError("validation_failed", "one or more fields are invalid", http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"fields": res.FieldMap()}))
		return
	}

	source, _ := raw["source"].(string)
	if source == "" {
		source = apiContactSource
	}
	lead, err := h.service.Submit(ctx, contact.Submission{
		Values:    res.Values,
		Source:    source,
		RemoteIP:  clientIP(r),
		UserAgent: r.UserAgent(),
	})
	var verr *contact.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make(map[string]string, len(verr.Fields))
		for _, fe := range verr.Fields {
			fields[fe.Field] = fe.Message
		}
		httpx.WriteError(ctx, w, httpx.NewError("validation_failed", "one or more fields are invalid", http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"fields": fields}))
	case err != nil:
		httpx.WriteError(ctx, w, httpx.NewError("lead_delivery_failed", "your message could not be delivered, please call us", http.StatusServiceUnavailable))
	default:
		httpx.WriteJSON(w, http.StatusAccepted, map[string]any{"success": true, "id": lead.ID})
	}
}
