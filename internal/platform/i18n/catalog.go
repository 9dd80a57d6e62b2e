// Package i18n resolves translation keys against per-language catalogs and
// keeps the selected language for a process.
//
// Each language has two dictionaries: a modular one with flat keys such as
// "Dashboard", and a namespaced one whose nested maps are addressed with
// dotted keys such as "common.save". Lookup tries modular first, then
// namespaced, then returns the key unchanged.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const Baseline = "en"

//go:embed locales
var embedded embed.FS

var ErrUnknownLanguage = errors.New("unknown language")

type Catalog struct {
	Modular    map[string]string `json:"modular"`
	Namespaced map[string]string `json:"namespaced"`
}

// Bundle holds the catalogs of every available language. It is read-only
// after loading and safe for concurrent use.
type Bundle struct {
	catalogs map[string]*Catalog
	tags     []language.Tag
	matcher  language.Matcher
}

// Default loads the catalogs compiled into the binary.
func Default() (*Bundle, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads <lang>/modular.yaml and <lang>/namespaced.yaml for every
// top-level directory of fsys. Either file may be missing.
func Load(fsys fs.FS) (*Bundle, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	b := &Bundle{catalogs: map[string]*Catalog{}}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		tag, err := language.Parse(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", entry.Name(), err)
		}
		cat, err := loadCatalog(fsys, entry.Name())
		if err != nil {
			return nil, err
		}
		b.catalogs[tag.String()] = cat
	}
	if _, ok := b.catalogs[Baseline]; !ok {
		return nil, fmt.Errorf("baseline language %q has no catalog", Baseline)
	}
	codes := b.Languages()
	// Baseline first so the matcher falls back to it.
	slices.SortStableFunc(codes, func(a, c string) int {
		switch {
		case a == Baseline:
			return -1
		case c == Baseline:
			return 1
		}
		return 0
	})
	for _, code := range codes {
		b.tags = append(b.tags, language.MustParse(code))
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

func loadCatalog(fsys fs.FS, dir string) (*Catalog, error) {
	cat := &Catalog{Modular: map[string]string{}, Namespaced: map[string]string{}}

	var modular map[string]any
	if err := readYAML(fsys, path.Join(dir, "modular.yaml"), &modular); err != nil {
		return nil, err
	}
	for k, v := range modular {
		cat.Modular[k] = fmt.Sprint(v)
	}

	var namespaced map[string]any
	if err := readYAML(fsys, path.Join(dir, "namespaced.yaml"), &namespaced); err != nil {
		return nil, err
	}
	flatten("", namespaced, cat.Namespaced)
	return cat, nil
}

func readYAML(fsys fs.FS, name string, out any) error {
	raw, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Languages returns the available language codes in sorted order.
func (b *Bundle) Languages() []string {
	codes := make([]string, 0, len(b.catalogs))
	for code := range b.catalogs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (b *Bundle) Has(lang string) bool {
	_, ok := b.catalogs[lang]
	return ok
}

// Catalog returns the dictionaries of lang, or ErrUnknownLanguage.
func (b *Bundle) Catalog(lang string) (*Catalog, error) {
	code, err := b.canonical(lang)
	if err != nil {
		return nil, err
	}
	return b.catalogs[code], nil
}

// Translator returns a translator for lang. Unknown languages get the baseline.
func (b *Bundle) Translator(lang string) *Translator {
	code, err := b.canonical(lang)
	if err != nil {
		code = Baseline
	}
	return &Translator{lang: code, catalog: b.catalogs[code]}
}

// Match picks the closest available language for the given Accept-Language
// header. It returns the baseline when nothing matches.
func (b *Bundle) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Baseline
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return Baseline
	}
	return b.tags[idx].String()
}

func (b *Bundle) canonical(lang string) (string, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	if _, ok := b.catalogs[tag.String()]; ok {
		return tag.String(), nil
	}
	base, _ := tag.Base()
	if _, ok := b.catalogs[base.String()]; ok {
		return base.String(), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
}

type Translator struct {
	lang    string
	catalog *Catalog
}

func (t *Translator) Language() string { return t.lang }

// T resolves key through the modular dictionary, then the namespaced one,
// and returns key itself when neither has it.
func (t *Translator) T(key string) string {
	if t == nil || t.catalog == nil {
		return key
	}
	if v, ok := t.catalog.Modular[key]; ok {
		return v
	}
	if v, ok := t.catalog.Namespaced[key]; ok {
		return v
	}
	return key
}
