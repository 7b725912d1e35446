package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tiksave/backend/internal/clients"
	"github.com/tiksave/backend/internal/models"
)

func TestClientRegister(t *testing.T) {
	registry := clients.NewRegistry(clients.NewInMemoryClientStore())
	handler := ClientHandler{Registry: registry}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", nil)
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["clientId"] == "" || resp["token"] == "" {
		t.Fatalf("expected clientId and token, got %v", resp)
	}
}

func TestClientRegisterMethodNotAllowed(t *testing.T) {
	handler := ClientHandler{Registry: clients.NewRegistry(clients.NewInMemoryClientStore())}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

type failingRegistry struct{}

func (failingRegistry) Register(_ context.Context) (models.Client, error) {
	return models.Client{}, errors.New("store offline")
}

func TestClientRegisterStoreFailure(t *testing.T) {
	handler := ClientHandler{Registry: failingRegistry{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", nil)
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
