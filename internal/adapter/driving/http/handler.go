// Package httphandler implements the read-only JSON API driving adapter.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/keypanel/internal/application"
)

// Handler is the HTTP driving adapter that serves the REST API. Secrets never
// leave it unmasked.
type Handler struct {
	store  *application.KeyStore
	now    func() time.Time
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(store *application.KeyStore, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// RegisterAPIRoutes registers the JSON API routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/keys", h.ListKeys)
	mux.HandleFunc("GET /api/v1/keys/{id}", h.GetKey)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// ListKeys returns every stored key in display order with masked secrets.
func (h *Handler) ListKeys(w http.ResponseWriter, _ *http.Request) {
	keys := h.store.List()

	resp := make([]KeyResponse, 0, len(keys))
	for _, k := range keys {
		resp = append(resp, toKeyResponse(k))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetKey returns a single key by id with its secret masked.
func (h *Handler) GetKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.store.Get(r.PathValue("id"))
	if errors.Is(err, application.ErrKeyNotFound) {
		writeError(w, http.StatusNotFound, "api key not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get api key", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toKeyResponse(key))
}

// Health returns the service status and the number of stored keys.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   h.now().UTC().Format(time.RFC3339),
		Keys:   h.store.Len(),
	})
}
