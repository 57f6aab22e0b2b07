package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"kvstore/internal/health"
	"kvstore/internal/logs"
	"kvstore/internal/metrics"
	"kvstore/internal/store"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	logger   *logs.Logger
	analyzer *health.Analyzer
}

// NewHandler creates a new API handler.
func NewHandler(
	st *store.Store,
	m *metrics.Metrics,
	logger *logs.Logger,
) *Handler {
	return &Handler{
		store:    st,
		logger:   logger,
		analyzer: health.NewAnalyzer(m, logger),
	}
}

/* ---------------- POST /{key} ---------------- */

func (h *Handler) SetKey(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	ttl := time.Duration(0)
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		seconds, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "ttl must be an integer number of seconds", http.StatusBadRequest)
			return
		}
		ttl = time.Duration(seconds) * time.Second
	}

	var doc json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	if err := h.store.Set(key, doc, ttl); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info(fmt.Sprintf("key inserted: %s", key))

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(doc)
}

/* ---------------- GET /{key} ---------------- */

func (h *Handler) GetKey(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	value, ok := h.store.Get(key)
	if !ok {
		http.Error(w, "key not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(value)
}

/* ---------------- GET / ---------------- */

func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	entries := h.store.GetAll()

	resp := make(map[string]json.RawMessage, len(entries))
	for k, v := range entries {
		resp[k] = v.Value
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

/* ---------------- GET /ttl/{key} ---------------- */

type ttlResponse struct {
	TTL    *float64 `json:"ttl"`
	Status string   `json:"status"`
}

func (h *Handler) GetKeyTTL(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	remaining, hasExpiry, ok := h.store.GetTTL(key)
	if !ok {
		http.Error(w, "key not found", http.StatusNotFound)
		return
	}

	// ttl is null for entries that never expire.
	resp := ttlResponse{Status: "success"}
	if hasExpiry {
		seconds := remaining.Seconds()
		resp.TTL = &seconds
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

/* ---------------- DELETE /{key} ---------------- */

func (h *Handler) DeleteKey(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	if !h.store.Delete(key) {
		http.Error(w, "key not found", http.StatusNotFound)
		return
	}

	h.logger.Info(fmt.Sprintf("key deleted: %s", key))
	w.WriteHeader(http.StatusNoContent)
}

/* ---------------- GET /health ---------------- */

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	report := h.analyzer.Analyze()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

/* ---------------- GET /admin/logs ---------------- */

func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	n := 100
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.logger.GetLast(n))
}
