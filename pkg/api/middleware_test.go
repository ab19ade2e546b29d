package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIKeyMiddleware_MissingKey(t *testing.T) {
	handler := setupTestServer(t, &fakeService{})

	req := httptest.NewRequest("GET", "/v1/tables/incident/records/INC0010042", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}

	var response APIResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Success {
		t.Error("Expected success to be false")
	}
}

func TestAPIKeyMiddleware_WrongKey(t *testing.T) {
	handler := setupTestServer(t, &fakeService{})

	req := httptest.NewRequest("GET", "/v1/tables/incident/records/INC0010042", nil)
	req.Header.Set("X-API-Key", "wrong-key")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestAPIKeyMiddleware_HealthUnprotected(t *testing.T) {
	handler := setupTestServer(t, &fakeService{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 without API key, got %d", w.Code)
	}
}

func TestRequestIDMiddleware_Generated(t *testing.T) {
	handler := setupTestServer(t, &fakeService{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("Expected a generated request ID header")
	}
}

func TestRequestIDMiddleware_PreservesCallerID(t *testing.T) {
	handler := setupTestServer(t, &fakeService{})

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(RequestIDHeader, "caller-supplied-id")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "caller-supplied-id" {
		t.Errorf("Expected caller-supplied ID to be kept, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := setupTestServer(t, &fakeService{})

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 without API key, got %d", w.Code)
	}
}
