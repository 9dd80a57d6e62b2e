package prefs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrmgo/internal/platform/i18n"
)

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrmctl.yaml")
	s, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultServer, s.Server())
	assert.Equal(t, 10*time.Second, s.Timeout(time.Second))
	token, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hrmctl.yaml")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveSession("tok-1", "hr@example.com"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := Open(path)
	require.NoError(t, err)
	token, _ := reopened.Token()
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "hr@example.com", reopened.Get(KeyEmail))

	require.NoError(t, reopened.ClearSession())
	token, _ = reopened.Token()
	assert.Empty(t, token)
}

func TestReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrmctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: https://hr.example.com\ntimeout: 3s\nlanguage: fr\n"), 0o600))

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "https://hr.example.com", s.Server())
	assert.Equal(t, 3*time.Second, s.Timeout(time.Second))
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrmctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: https://file.example.com\n"), 0o600))
	t.Setenv("HRMCTL_SERVER", "https://env.example.com")

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", s.Server())
}

func TestLanguageStoreBacksProvider(t *testing.T) {
	bundle, err := i18n.Default()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "hrmctl.yaml")

	s, err := Open(path)
	require.NoError(t, err)
	p := i18n.NewProvider(bundle, s)
	assert.Equal(t, i18n.Baseline, p.Language())
	require.NoError(t, p.SetLanguage("es"))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "es", i18n.NewProvider(bundle, reopened).Language())
}
