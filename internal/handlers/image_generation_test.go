package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/imagegen"
)

func TestGenerateImageRequiresPromptSource(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/generate-image", "application/json", `{"filename":"test"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeJSON(t, rec.Body.Bytes())
	if msg, _ := body["error"].(string); !strings.Contains(msg, "prompt or category/subcategory required") {
		t.Fatalf("unexpected error: %v", body)
	}
}

func TestGenerateImageUnknownCatalogueEntry(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/generate-image", "application/json", `{"filename":"test","category":"hero","subcategory":"nonexistent"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg, _ := decodeJSON(t, rec.Body.Bytes())["error"].(string); !strings.Contains(msg, "hero/nonexistent") {
		t.Fatalf("error should name the pair, got %q", msg)
	}
}

func TestGenerateImageMissingFilename(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/generate-image", "application/json", `{"prompt":"a red ox"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGenerateImageInvalidJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/generate-image", "application/json", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if _, ok := decodeJSON(t, rec.Body.Bytes())["error"]; !ok {
		t.Fatalf("expected error field")
	}
}

func TestGenerateImageSuccessWritesFile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/generate-image", "application/json", `{"filename":"test","category":"hero","subcategory":"homepage"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeJSON(t, rec.Body.Bytes())
	if body["success"] != true || body["path"] != "/images/test.jpg" || body["mimeType"] != "image/jpeg" {
		t.Fatalf("unexpected body: %v", body)
	}
	if size, _ := body["size"].(float64); int(size) != len("jpeg-bytes") {
		t.Fatalf("unexpected size %v", body["size"])
	}
	data, err := os.ReadFile(filepath.Join(env.imagesDir, "test.jpg"))
	if err != nil {
		t.Fatalf("read written image: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected file contents %q", data)
	}

	served := env.do(http.MethodGet, "/images/test.jpg", "", "")
	if served.Code != http.StatusOK || served.Body.String() != "jpeg-bytes" {
		t.Fatalf("generated image not served: %d", served.Code)
	}
}

func TestGenerateImageUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.model.err = errors.New("quota exceeded")

	rec := env.do(http.MethodPost, "/api/generate-image", "application/json", `{"filename":"test","prompt":"a red ox"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeJSON(t, rec.Body.Bytes())
	if body["error"] != "Failed to generate image" || body["details"] != "quota exceeded" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestGenerateImageNoPayload(t *testing.T) {
	env := newTestEnv(t)
	env.model.err = imagegen.ErrNoImage

	rec := env.do(http.MethodPost, "/api/generate-image", "application/json", `{"filename":"test","prompt":"a red ox"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := decodeJSON(t, rec.Body.Bytes())["details"]; got != "No image generated" {
		t.Fatalf("unexpected details %v", got)
	}
}

func TestDescribeImageCatalogue(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/generate-image", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeJSON(t, rec.Body.Bytes())
	categories, ok := body["categories"].(map[string]any)
	if !ok {
		t.Fatalf("expected categories map, got %T", body["categories"])
	}
	hero, ok := categories["hero"].(map[string]any)
	if !ok || hero["homepage"] == nil {
		t.Fatalf("expected hero/homepage prompt, got %v", categories["hero"])
	}
	if body["defaultAspectRatio"] != imagegen.DefaultAspectRatio {
		t.Fatalf("unexpected default ratio %v", body["defaultAspectRatio"])
	}
	if _, ok := body["usage"].(map[string]any); !ok {
		t.Fatalf("expected usage documentation")
	}
}

func TestGenerateImageGuard(t *testing.T) {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	env := newTestEnv(t, func(c *envConfig) { c.imageGuard = deny })

	rec := env.do(http.MethodPost, "/api/generate-image", "application/json", `{"filename":"test","prompt":"a red ox"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected guard to run, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/generate-image", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("catalogue should stay public, got %d", rec.Code)
	}
}
