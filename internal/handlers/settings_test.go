package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tiksave/backend/internal/models"
)

func TestSettingsGetDefaults(t *testing.T) {
	handler := SettingsHandler{Settings: &settingsStub{settings: models.DefaultSettings()}}

	req := clientRequest(http.MethodGet, "/api/v1/settings", "")
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var settings models.Settings
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if settings.Theme != "system" || settings.Language != "en" {
		t.Fatalf("unexpected defaults: %+v", settings)
	}
}

func TestSettingsPutPreservesDownloadCount(t *testing.T) {
	stub := &settingsStub{settings: models.Settings{Theme: "system", Language: "en", DownloadCount: 7}}
	handler := SettingsHandler{Settings: stub}

	req := clientRequest(http.MethodPut, "/api/v1/settings", `{"theme":"dark","autoDownload":true,"language":"de","downloadCount":999}`)
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(stub.saved) != 1 {
		t.Fatalf("saved = %+v", stub.saved)
	}
	got := stub.saved[0]
	if got.Theme != "dark" || !got.AutoDownload || got.Language != "de" {
		t.Fatalf("unexpected settings: %+v", got)
	}
	if got.DownloadCount != 7 {
		t.Fatalf("download count = %d, want 7 (client must not set it)", got.DownloadCount)
	}
}

func TestSettingsPutRoundTripsTutorialSeen(t *testing.T) {
	stub := &settingsStub{settings: models.DefaultSettings()}
	handler := SettingsHandler{Settings: stub}

	req := clientRequest(http.MethodPut, "/api/v1/settings", `{"theme":"system","language":"en","tutorialSeen":true}`)
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(stub.saved) != 1 || !stub.saved[0].TutorialSeen {
		t.Fatalf("expected tutorial seen to persist, saved = %+v", stub.saved)
	}

	var settings models.Settings
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !settings.TutorialSeen {
		t.Fatalf("expected tutorial seen in response, got %+v", settings)
	}
}

func TestSettingsPutInvalidTheme(t *testing.T) {
	handler := SettingsHandler{Settings: &settingsStub{settings: models.DefaultSettings()}}

	req := clientRequest(http.MethodPut, "/api/v1/settings", `{"theme":"neon","language":"en"}`)
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSettingsPutMissingLanguage(t *testing.T) {
	handler := SettingsHandler{Settings: &settingsStub{settings: models.DefaultSettings()}}

	req := clientRequest(http.MethodPut, "/api/v1/settings", `{"theme":"light","language":"  "}`)
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
