package middleware

import (
	"net/http"

	"hrmgo/internal/platform/i18n"
)

// Language negotiates the response language and stores its translator in
// the request context.
func Language(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tr := bundle.Translator(bundle.Negotiate(r))
			w.Header().Set("Content-Language", tr.Language())
			w.Header().Add("Vary", "Accept-Language")
			next.ServeHTTP(w, r.WithContext(i18n.WithTranslator(r.Context(), tr)))
		})
	}
}
