package handlers

import (
	"context"
	"crypto/subtle"
	"io"
	"net/http"
	"strings"

	"github.com/syncforge/tracksync/internal/httputil"
	"github.com/syncforge/tracksync/internal/models"
	"github.com/syncforge/tracksync/internal/ratelimit"
	"github.com/syncforge/tracksync/internal/service"
)

// Pipeline is the processing surface the handler needs; the concrete
// implementation is service.SyncService.
type Pipeline interface {
	Process(ctx context.Context, raw []byte) service.Result
	Stats() models.SyncStats
}

// Pinger reports whether the persistent store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type WebhookHandler struct {
	service     Pipeline
	rateLimiter ratelimit.RateLimiter
	store       Pinger
	secret      string
	maxBodySize int64
}

func NewWebhookHandler(svc Pipeline, rateLimiter ratelimit.RateLimiter, store Pinger, secret string, maxBodySize int64) *WebhookHandler {
	if rateLimiter == nil {
		rateLimiter = &ratelimit.NoOpRateLimiter{}
	}
	return &WebhookHandler{
		service:     svc,
		rateLimiter: rateLimiter,
		store:       store,
		secret:      secret,
		maxBodySize: maxBodySize,
	}
}

// HandleWebhook receives one notification and answers with the transport
// status the delivering system keys its retry behavior on.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.secret != "" {
		token := extractBearer(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid webhook token")
			return
		}
	}

	clientIP := getClientIP(r)
	allowed, err := h.rateLimiter.Allow(r.Context(), clientIP)
	if err != nil {
		// Rate limiter trouble should not drop deliveries.
		allowed = true
	}
	if !allowed {
		httputil.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		httputil.WriteError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}
	defer r.Body.Close()

	result := h.service.Process(r.Context(), body)
	httputil.WriteJSON(w, httpStatus(result.Disposition), result.Response)
}

func httpStatus(d service.Disposition) int {
	switch d {
	case service.DispositionAccepted:
		return http.StatusOK
	case service.DispositionIgnored:
		return http.StatusAccepted
	case service.DispositionRejected:
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

func (h *WebhookHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (h *WebhookHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"stats":  h.service.Stats(),
	})
}

func extractBearer(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
