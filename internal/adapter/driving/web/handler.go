// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/keypanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/keypanel/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/keypanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/keypanel/internal/application"
)

const (
	pageTitle         = "API Keys"
	sessionCookieName = "keypanel_session"
	confirmFormField  = "confirm"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	keys     *application.KeyService
	sessions *application.SessionRegistry
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	keys *application.KeyService,
	sessions *application.SessionRegistry,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		keys:     keys,
		sessions: sessions,
		logger:   logger,
	}
}

// formConfirmer backs driven.Confirmer with the submitted form: a prompt is
// approved only if the request was posted from the confirmation page.
type formConfirmer struct {
	confirmed bool
	message   string
}

func (c *formConfirmer) Confirm(message string) bool {
	c.message = message
	return c.confirmed
}

// Dashboard renders the API keys page with the full HTML layout.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	csrf := csrfToken(w, r)

	data := toDashboardViewModel(h.keys.Store().List(), sess, csrf)
	h.render(w, r, pages.Dashboard(data))
}

// CreateKey handles the create form.
func (h *Handler) CreateKey(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	sess := h.session(w, r)

	if err := h.keys.Create(r.Context(), sess, r.PostFormValue("label"), r.PostFormValue("secret")); err != nil {
		h.logger.Error("failed to create api key", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	redirectHome(w, r)
}

// ToggleReveal flips whether a key's secret is shown in full.
func (h *Handler) ToggleReveal(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	h.keys.ToggleReveal(h.session(w, r), r.PathValue("id"))
	redirectHome(w, r)
}

// CopyKey writes a key's secret to the clipboard.
func (h *Handler) CopyKey(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	sess := h.session(w, r)

	if err := h.keys.Copy(r.Context(), sess, r.PathValue("id")); err != nil {
		h.writeKeyError(w, err, "copy")
		return
	}
	redirectHome(w, r)
}

// StartEdit puts a key row into edit mode.
func (h *Handler) StartEdit(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	h.keys.StartEdit(h.session(w, r), r.PathValue("id"))
	redirectHome(w, r)
}

// SaveEdit commits the edit form of the row in edit mode.
func (h *Handler) SaveEdit(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	sess := h.session(w, r)

	// Only the row currently in edit mode can be saved.
	if draft, ok := sess.Editing(); !ok || draft.ID != r.PathValue("id") {
		redirectHome(w, r)
		return
	}

	if err := h.keys.SaveEdit(r.Context(), sess, r.PostFormValue("label"), r.PostFormValue("secret")); err != nil {
		h.writeKeyError(w, err, "save")
		return
	}
	redirectHome(w, r)
}

// CancelEdit leaves edit mode without saving.
func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	h.keys.CancelEdit(h.session(w, r))
	redirectHome(w, r)
}

// RegenerateKey replaces a key's secret. Without confirmation it renders the
// confirmation dialog instead.
func (h *Handler) RegenerateKey(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	sess := h.session(w, r)
	confirm := h.confirmer(r)

	_, err := h.keys.Regenerate(r.Context(), sess, r.PathValue("id"), confirm)
	if errors.Is(err, application.ErrNotConfirmed) {
		h.renderConfirm(w, r, confirm.message, "Regenerate", false)
		return
	}
	if err != nil {
		h.writeKeyError(w, err, "regenerate")
		return
	}
	redirectHome(w, r)
}

// DeleteKey removes a key. Without confirmation it renders the confirmation
// dialog instead.
func (h *Handler) DeleteKey(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	sess := h.session(w, r)
	confirm := h.confirmer(r)

	err := h.keys.Delete(r.Context(), sess, r.PathValue("id"), confirm)
	if errors.Is(err, application.ErrNotConfirmed) {
		h.renderConfirm(w, r, confirm.message, "Delete", true)
		return
	}
	if err != nil {
		h.writeKeyError(w, err, "delete")
		return
	}
	redirectHome(w, r)
}

// session returns the caller's Session, issuing a session cookie when the
// request has none or an unknown one.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *application.Session {
	var current string
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		current = cookie.Value
	}

	id, sess := h.sessions.Get(current)
	if id != current {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
	return sess
}

func (h *Handler) confirmer(r *http.Request) *formConfirmer {
	return &formConfirmer{confirmed: r.PostFormValue(confirmFormField) == "yes"}
}

func (h *Handler) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	if !validateCSRF(r) {
		h.logger.Warn("csrf validation failed", "path", r.URL.Path)
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return false
	}
	return true
}

func (h *Handler) renderConfirm(w http.ResponseWriter, r *http.Request, message, label string, destructive bool) {
	data := vm.ConfirmViewModel{
		CSRFToken:    csrfToken(w, r),
		Message:      message,
		ActionURL:    r.URL.Path,
		ConfirmLabel: label,
		Destructive:  destructive,
		CancelURL:    "/",
	}
	h.render(w, r, pages.Confirm(data))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	if err := templates.Layout(pageTitle, page).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeKeyError(w http.ResponseWriter, err error, action string) {
	if errors.Is(err, application.ErrKeyNotFound) {
		http.Error(w, "api key not found", http.StatusNotFound)
		return
	}
	h.logger.Error("api key action failed", "action", action, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// redirectHome sends the browser back to the dashboard after a POST.
func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
