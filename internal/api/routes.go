package api

import (
	"net/http"

	"kvstore/internal/logs"
	"kvstore/internal/metrics"
)

// RegisterRoutes wires all endpoints onto mux and wraps it in the
// middleware chain. The KV routes live at the root, so method+wildcard
// patterns keep the literal observability paths from colliding with keys.
func RegisterRoutes(
	mux *http.ServeMux,
	h *Handler,
	m *metrics.Metrics,
	logger *logs.Logger,
) http.Handler {
	// KV APIs
	mux.HandleFunc("GET /{$}", h.ListKeys)
	mux.HandleFunc("GET /ttl/{key}", h.GetKeyTTL)
	mux.HandleFunc("POST /{key}", h.SetKey)
	mux.HandleFunc("GET /{key}", h.GetKey)
	mux.HandleFunc("DELETE /{key}", h.DeleteKey)

	// Observability APIs
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /health", h.GetHealth)

	// Admin APIs
	mux.HandleFunc("GET /admin/logs", h.GetLogs)

	// Middlewares
	return Chain(
		mux,
		RecoveryMiddleware(logger),
		RequestIDMiddleware,
		LoggingMiddleware(logger),
		MetricsMiddleware(m),
	)
}
