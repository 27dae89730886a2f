package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/syncforge/tracksync/internal/dispatch"
	"github.com/syncforge/tracksync/internal/handlers"
	"github.com/syncforge/tracksync/internal/reconcile"
	"github.com/syncforge/tracksync/internal/repository"
	"github.com/syncforge/tracksync/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := repository.NewInMemoryStore()
	registry := dispatch.NewDefaultRegistry(reconcile.New(store, false))
	svc := service.NewSyncService(registry, nil, false)
	handler := handlers.NewWebhookHandler(svc, nil, store, "", 1<<20)
	return NewRouter(handler)
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "webhook endpoint accepts events",
			method:     http.MethodPost,
			path:       "/webhooks/jira",
			body:       `{"eventType":"jira:project_created","timestamp":"2025-01-01T00:00:00Z","entityPayload":{"id":"PRJ-1","name":"Alpha"}}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "webhook endpoint rejects GET",
			method:     http.MethodGet,
			path:       "/webhooks/jira",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "health endpoint",
			method:     http.MethodGet,
			path:       "/healthz",
			wantStatus: http.StatusOK,
		},
		{
			name:       "readiness endpoint",
			method:     http.MethodGet,
			path:       "/readyz",
			wantStatus: http.StatusOK,
		},
		{
			name:       "metrics endpoint",
			method:     http.MethodGet,
			path:       "/metrics",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown path",
			method:     http.MethodGet,
			path:       "/nope",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router := newTestRouter(t)

	// A generated id comes back when the caller sends none.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID header")
	}

	// A caller-provided id is echoed back.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "delivery-42")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "delivery-42" {
		t.Errorf("X-Request-ID = %q, want %q", got, "delivery-42")
	}
}
