package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tiksave/backend/internal/models"
)

func TestHistoryList(t *testing.T) {
	history := &historyStub{recorded: []models.HistoryEntry{
		{CapturedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), Record: testRecord()},
	}}
	handler := HistoryHandler{History: history}

	req := clientRequest(http.MethodGet, "/api/v1/history", "")
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		History []models.HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.History) != 1 || resp.History[0].Record.ID != "7123" {
		t.Fatalf("history = %+v", resp.History)
	}
}

func TestHistoryListEmpty(t *testing.T) {
	handler := HistoryHandler{History: &historyStub{}}

	req := clientRequest(http.MethodGet, "/api/v1/history", "")
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"history":[]`) {
		t.Fatalf("expected empty array, got %s", body)
	}
}

func TestHistoryClear(t *testing.T) {
	history := &historyStub{}
	handler := HistoryHandler{History: history}

	req := clientRequest(http.MethodDelete, "/api/v1/history", "")
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(history.cleared) != 1 || history.cleared[0] != "client-1" {
		t.Fatalf("cleared = %v", history.cleared)
	}
}

func TestHistoryMethodNotAllowed(t *testing.T) {
	handler := HistoryHandler{History: &historyStub{}}

	req := clientRequest(http.MethodPost, "/api/v1/history", "{}")
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
