// Package prefs stores hrmctl settings in a YAML file through viper. The
// store doubles as the API token source and the persisted language.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyServer   = "server"
	KeyToken    = "token"
	KeyEmail    = "email"
	KeyLanguage = "language"
	KeyTimeout  = "timeout"

	DefaultServer = "http://localhost:8080"
	EnvPrefix     = "HRMCTL"
)

// Store wraps a viper instance bound to one config file. Environment
// variables prefixed with HRMCTL_ override file values.
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// DefaultPath returns ~/.hrmctl.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".hrmctl.yaml"), nil
}

// Open reads path if it exists. A missing file is not an error; it is
// created on the first Save.
func Open(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault(KeyServer, DefaultServer)
	v.SetDefault(KeyTimeout, "10s")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return &Store{v: v, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetString(key)
}

// Set updates key and writes the file.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
	return s.save()
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	// Tokens live in this file.
	return os.Chmod(s.path, 0o600)
}

func (s *Store) Server() string { return s.Get(KeyServer) }

// Timeout parses the timeout setting, falling back to def when unset or
// invalid.
func (s *Store) Timeout(def time.Duration) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.v.GetDuration(KeyTimeout)
	if d <= 0 {
		return def
	}
	return d
}

// Token implements apiclient.TokenSource.
func (s *Store) Token() (string, error) {
	return s.Get(KeyToken), nil
}

// SaveSession stores the login result.
func (s *Store) SaveSession(token, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(KeyToken, token)
	s.v.Set(KeyEmail, email)
	return s.save()
}

func (s *Store) ClearSession() error {
	return s.SaveSession("", "")
}

// LoadLanguage implements i18n.LanguageStore.
func (s *Store) LoadLanguage() (string, error) {
	lang := s.Get(KeyLanguage)
	if lang == "" {
		return "", errors.New("no language saved")
	}
	return lang, nil
}

func (s *Store) SaveLanguage(lang string) error {
	return s.Set(KeyLanguage, lang)
}
