// Package i18n holds the user-facing strings for the transports. The
// engine itself only returns tagged values; everything rendered to a
// player passes through a Bundle.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLanguage is the fallback for missing languages and keys.
const DefaultLanguage = "en"

// Bundle is a loaded translation table: language tag -> key -> text.
type Bundle struct {
	translations map[string]map[string]string
	tags         []language.Tag
	matcher      language.Matcher
}

// Load reads every embedded locale file into a Bundle.
func Load() (*Bundle, error) {
	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	b := &Bundle{translations: make(map[string]map[string]string)}
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".json")
		data, err := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", name, err)
		}
		table := make(map[string]string)
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", name, err)
		}
		b.translations[name] = table
	}

	if _, ok := b.translations[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("default locale %q missing", DefaultLanguage)
	}

	// Default first so the matcher falls back to it.
	b.tags = append(b.tags, language.Make(DefaultLanguage))
	for name := range b.translations {
		if name != DefaultLanguage {
			b.tags = append(b.tags, language.Make(name))
		}
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// MustLoad is Load for program initialization paths.
func MustLoad() *Bundle {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

// Get returns the text for key in lang, formatted with args. Missing
// languages and keys fall back to the default language; a key missing
// there renders as [[key]] so broken lookups are visible, not silent.
func (b *Bundle) Get(lang, key string, args ...any) string {
	table, ok := b.translations[lang]
	if !ok {
		table = b.translations[DefaultLanguage]
	}
	text, ok := table[key]
	if !ok {
		text, ok = b.translations[DefaultLanguage][key]
		if !ok {
			return fmt.Sprintf("[[%s]]", key)
		}
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}

// Match resolves a client locale hint ("ru-RU", "en_US", ...) to a
// supported language name.
func (b *Bundle) Match(hint string) string {
	if hint == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(strings.ReplaceAll(hint, "_", "-"))
	if err != nil {
		return DefaultLanguage
	}
	_, index, _ := b.matcher.Match(tag)
	base, _ := b.tags[index].Base()
	if _, ok := b.translations[base.String()]; ok {
		return base.String()
	}
	return DefaultLanguage
}

// Languages lists the loaded language names, default first.
func (b *Bundle) Languages() []string {
	out := make([]string, 0, len(b.tags))
	for _, tag := range b.tags {
		base, _ := tag.Base()
		out = append(out, base.String())
	}
	return out
}
