package i18n

import (
	"context"
	"net/http"
)

const (
	QueryParam = "lang"
	CookieName = "hrmgo_lang"
)

type ctxKey struct{}

func WithTranslator(ctx context.Context, tr *Translator) context.Context {
	return context.WithValue(ctx, ctxKey{}, tr)
}

// FromContext returns the request translator. A nil *Translator is valid and
// returns keys unchanged.
func FromContext(ctx context.Context) *Translator {
	tr, _ := ctx.Value(ctxKey{}).(*Translator)
	return tr
}

// Negotiate picks the language for r: the lang query parameter, then the
// language cookie, then Accept-Language. Unknown explicit choices are skipped.
func (b *Bundle) Negotiate(r *http.Request) string {
	if lang := r.URL.Query().Get(QueryParam); lang != "" {
		if code, err := b.canonical(lang); err == nil {
			return code
		}
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		if code, err := b.canonical(c.Value); err == nil {
			return code
		}
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		return b.Match(header)
	}
	return Baseline
}
