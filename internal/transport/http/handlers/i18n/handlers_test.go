package i18nhandler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrmgo/internal/domain/auth"
	"hrmgo/internal/platform/i18n"
	"hrmgo/internal/transport/http/handlers/handlertest"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	bundle, err := i18n.Default()
	require.NoError(t, err)
	return handlertest.Router(NewHandler(bundle), auth.UserContext{})
}

func TestLanguages(t *testing.T) {
	rec := handlertest.Do(t, newRouter(t), http.MethodGet, "/i18n/languages?lang=fr", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Languages []string `json:"languages"`
		Default   string   `json:"default"`
		Current   string   `json:"current"`
	}
	handlertest.DecodeData(t, rec, &out)
	assert.Equal(t, []string{"en", "es", "fr"}, out.Languages)
	assert.Equal(t, "en", out.Default)
	assert.Equal(t, "fr", out.Current)
}

func TestCatalog(t *testing.T) {
	router := newRouter(t)

	rec := handlertest.Do(t, router, http.MethodGet, "/i18n/es", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var catalog i18n.Catalog
	handlertest.DecodeData(t, rec, &catalog)
	assert.NotEmpty(t, catalog.Modular)
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))

	rec = handlertest.Do(t, router, http.MethodGet, "/i18n/xx", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
