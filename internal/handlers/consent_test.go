package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/RedOxDigital/red-ox-digital-sub001/internal/consent"
)

func cookieNamed(rec interface{ Result() *http.Response }, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestConsentGetDefaults(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/consent", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeJSON(t, rec.Body.Bytes())
	if body["state"] != string(consent.StateUnset) || body["showPrompt"] != true {
		t.Fatalf("unexpected defaults: %v", body)
	}
	if body["promptDelayMs"] != float64(consent.DefaultPromptDelay.Milliseconds()) {
		t.Fatalf("expected prompt delay, got %v", body["promptDelayMs"])
	}
	signals := body["signals"].(map[string]any)
	if signals["analytics_storage"] != "denied" || signals["security_storage"] != "granted" {
		t.Fatalf("unexpected signals: %v", signals)
	}
	if _, ok := body["decidedAt"]; ok {
		t.Fatalf("decidedAt should be absent before a decision")
	}
}

func TestConsentAcceptAllThenConflict(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/consent", "application/json", `{"action":"accept-all"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeJSON(t, rec.Body.Bytes())
	if body["state"] != string(consent.StateResolved) || body["decidedAt"] != "2025-03-14T09:30:00Z" {
		t.Fatalf("unexpected body: %v", body)
	}
	signals := body["signals"].(map[string]any)
	if signals["ad_storage"] != "granted" {
		t.Fatalf("expected marketing granted, got %v", signals)
	}

	settings := cookieNamed(rec, consent.KeySettings)
	if settings == nil {
		t.Fatalf("expected %s cookie", consent.KeySettings)
	}
	if settings.SameSite != http.SameSiteLaxMode || settings.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", settings)
	}

	rec = env.do(http.MethodPost, "/api/consent", "application/json", `{"action":"essential-only"}`, settings)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	rec = env.do(http.MethodPost, "/api/consent", "application/json", `{"action":"save","analytics":false}`, settings)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 reopening settings after a decision, got %d", rec.Code)
	}

	rec = env.do(http.MethodGet, "/api/consent", "", "", settings)
	body = decodeJSON(t, rec.Body.Bytes())
	if body["state"] != string(consent.StateResolved) || body["showPrompt"] != false {
		t.Fatalf("expected resolved state from cookie, got %v", body)
	}
	if _, ok := body["promptDelayMs"]; ok {
		t.Fatalf("resolved visitors get no prompt delay: %v", body)
	}
}

func TestConsentSavePreferences(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/consent", "application/json", `{"action":"save","analytics":true,"marketing":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	settings := decodeJSON(t, rec.Body.Bytes())["settings"].(map[string]any)
	if settings["essential"] != true || settings["analytics"] != true || settings["marketing"] != false {
		t.Fatalf("unexpected settings: %v", settings)
	}
}

func TestConsentRejectsUnknownAction(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/consent", "application/json", `{"action":"maybe"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if cookieNamed(rec, consent.KeySettings) != nil {
		t.Fatalf("no cookie should be written for a rejected action")
	}
}

func TestConsentFormPostRedirectsToReferer(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"action": {"essential-only"}}
	rec := env.doWithReferer(http.MethodPost, "/api/consent", form.Encode(), "https://www.redoxdigital.com.au/locations/brendale")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/locations/brendale" {
		t.Fatalf("unexpected redirect %q", got)
	}

	rec = env.doWithReferer(http.MethodPost, "/api/consent", form.Encode(), "https://evil.example/phish")
	if got := rec.Header().Get("Location"); got != "/" {
		t.Fatalf("cross-origin referer should redirect home, got %q", got)
	}
}
