package i18nhandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrmgo/internal/platform/i18n"
	"hrmgo/internal/transport/http/api"
	"hrmgo/internal/transport/http/middleware"
)

// Handler serves translation catalogs to browser clients. Both routes are
// public so the login page can be translated.
type Handler struct {
	Bundle *i18n.Bundle
}

func NewHandler(bundle *i18n.Bundle) *Handler {
	return &Handler{Bundle: bundle}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/i18n/languages", h.handleLanguages)
	r.Get("/i18n/{lang}", h.handleCatalog)
}

func (h *Handler) handleLanguages(w http.ResponseWriter, r *http.Request) {
	current := h.Bundle.Negotiate(r)
	if tr := i18n.FromContext(r.Context()); tr != nil {
		current = tr.Language()
	}
	api.Success(w, map[string]any{
		"languages": h.Bundle.Languages(),
		"default":   i18n.Baseline,
		"current":   current,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.Bundle.Catalog(chi.URLParam(r, "lang"))
	if errors.Is(err, i18n.ErrUnknownLanguage) {
		api.Fail(w, http.StatusNotFound, "unknown_language", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "catalog_failed", "failed to load catalog", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	api.Success(w, catalog, middleware.GetRequestID(r.Context()))
}
