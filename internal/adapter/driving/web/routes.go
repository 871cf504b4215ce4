package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// The dashboard is served at /; every state change is a POST under /app/keys.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /{$}", h.Dashboard)

	// Key actions.
	mux.HandleFunc("POST /app/keys", h.CreateKey)
	mux.HandleFunc("POST /app/keys/{id}/reveal", h.ToggleReveal)
	mux.HandleFunc("POST /app/keys/{id}/copy", h.CopyKey)
	mux.HandleFunc("POST /app/keys/{id}/edit", h.StartEdit)
	mux.HandleFunc("POST /app/keys/{id}/save", h.SaveEdit)
	mux.HandleFunc("POST /app/keys/{id}/cancel", h.CancelEdit)
	mux.HandleFunc("POST /app/keys/{id}/regenerate", h.RegenerateKey)
	mux.HandleFunc("POST /app/keys/{id}/delete", h.DeleteKey)
}
