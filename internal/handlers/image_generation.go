package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/imagegen"
	"github.com/RedOxDigital/red-ox-digital-sub001/internal/platform/httpx"
)

const maxImageRequestBytes = 1 << 20

// ImageHandlers expose the image generation service. Error bodies use the flat
// {error} and {error, details} shapes the site's authoring scripts expect.
type ImageHandlers struct {
	service *imagegen.Service
	guard   func(http.Handler) http.Handler
}

// ImageOption customises the image handlers.
type ImageOption func(*ImageHandlers)

// WithImageGuard wraps POST in middleware such as an author role check.
func WithImageGuard(mw func(http.Handler) http.Handler) ImageOption {
	return func(h *ImageHandlers) { h.guard = mw }
}

// NewImageHandlers builds the handlers around service.
func NewImageHandlers(service *imagegen.Service, opts ...ImageOption) *ImageHandlers {
	h := &ImageHandlers{service: service}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers GET and POST /generate-image under the API prefix.
func (h *ImageHandlers) Routes(r chi.Router) {
	r.Get("/generate-image", h.describe)
	if h.guard != nil {
		r.With(h.guard).Post("/generate-image", h.generate)
		return
	}
	r.Post("/generate-image", h.generate)
}

func (h *ImageHandlers) generate(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Failed to generate image",
			"details": "image generation is not configured",
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageRequestBytes)
	var req imagegen.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := "Invalid JSON body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "Request body too large"
		} else if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": msg})
		return
	}

	result, err := h.service.Generate(r.Context(), req)
	if err != nil {
		if imagegen.KindOf(err) == imagegen.KindInvalidInput {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Failed to generate image",
			"details": err.Error(),
		})
		return
	}

	body := map[string]any{
		"success":  true,
		"id":       result.ID,
		"path":     result.Path,
		"mimeType": result.MIMEType,
		"size":     result.Size,
	}
	if result.Width > 0 && result.Height > 0 {
		body["width"] = result.Width
		body["height"] = result.Height
	}
	httpx.WriteJSON(w, http.StatusOK, body)
}

func (h *ImageHandlers) describe(w http.ResponseWriter, _ *http.Request) {
	catalogue := imagegen.DefaultCatalogue()
	if h.service != nil {
		catalogue = h.service.Catalogue()
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"categories":         catalogue.All(),
		"aspectRatios":       imagegen.AspectRatios,
		"defaultAspectRatio": imagegen.DefaultAspectRatio,
		"usage": map[string]any{
			"endpoint": "POST /api/generate-image",
			"fields": map[string]string{
				"filename":        "required; output name, extension added from the image type when missing",
				"prompt":          "optional; used verbatim when present",
				"category":        "optional; catalogue category, used with subcategory",
				"subcategory":     "optional; catalogue entry within category",
				"aspectRatio":     "optional; one of 1:1, 16:9, 9:16, 4:3, 3:4 (default 16:9)",
				"enhanceBranding": "optional; append the brand styling suffix (default true)",
			},
			"examples": []map[string]any{
				{"category": "hero", "subcategory": "homepage", "filename": "hero-homepage"},
				{"prompt": "Tradesman reviewing a website on a tablet in a Brendale workshop", "filename": "blog-trades", "aspectRatio": "4:3"},
			},
		},
	})
}
