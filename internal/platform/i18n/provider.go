package i18n

import (
	"errors"
	"fmt"
	"sync"
)

// LanguageStore persists the selected language outside the process.
type LanguageStore interface {
	LoadLanguage() (string, error)
	SaveLanguage(lang string) error
}

// Provider owns the current language. It is safe for concurrent use.
type Provider struct {
	bundle *Bundle
	store  LanguageStore

	mu sync.RWMutex
	tr *Translator
}

// NewProvider restores the persisted language. A missing, unreadable or
// unknown value falls back to the baseline without failing.
func NewProvider(bundle *Bundle, store LanguageStore) *Provider {
	p := &Provider{bundle: bundle, store: store}
	lang := Baseline
	if store != nil {
		if saved, err := store.LoadLanguage(); err == nil && saved != "" && bundle.Has(saved) {
			lang = saved
		}
	}
	p.tr = bundle.Translator(lang)
	return p
}

func (p *Provider) Language() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tr.Language()
}

// SetLanguage switches and persists the language. The in-memory switch
// stands even when persisting fails; the error is still returned.
func (p *Provider) SetLanguage(lang string) error {
	if _, err := p.bundle.Catalog(lang); err != nil {
		return err
	}
	tr := p.bundle.Translator(lang)

	p.mu.Lock()
	p.tr = tr
	p.mu.Unlock()

	if p.store == nil {
		return nil
	}
	if err := p.store.SaveLanguage(tr.Language()); err != nil {
		return fmt.Errorf("persist language: %w", err)
	}
	return nil
}

func (p *Provider) T(key string) string {
	return p.Translator().T(key)
}

func (p *Provider) Translator() *Translator {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tr
}

func (p *Provider) Bundle() *Bundle { return p.bundle }

// MemoryStore keeps the language in memory. Zero value is ready to use.
type MemoryStore struct {
	mu   sync.Mutex
	lang string
}

func NewMemoryStore(lang string) *MemoryStore {
	return &MemoryStore{lang: lang}
}

func (s *MemoryStore) LoadLanguage() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lang == "" {
		return "", errors.New("no language saved")
	}
	return s.lang, nil
}

func (s *MemoryStore) SaveLanguage(lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = lang
	return nil
}
