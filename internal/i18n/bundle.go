package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/stratlink-defense/api/internal/domain"
)

//go:embed locales/*.json
var localeFiles embed.FS

// Bundle holds the loaded translation dictionaries for every supported
// language.
type Bundle struct {
	dictionaries map[domain.Language]map[string]string
}

// LoadBundle parses the embedded dictionaries. Every supported language must
// have a dictionary file.
func LoadBundle() (*Bundle, error) {
	dicts := make(map[domain.Language]map[string]string, len(Languages))
	for _, lang := range Languages {
		raw, err := localeFiles.ReadFile(fmt.Sprintf("locales/%s.json", lang))
		if err != nil {
			return nil, fmt.Errorf("i18n: read dictionary %q: %w", lang, err)
		}
		dict := map[string]string{}
		if err := json.Unmarshal(raw, &dict); err != nil {
			return nil, fmt.Errorf("i18n: parse dictionary %q: %w", lang, err)
		}
		if len(dict) == 0 {
			return nil, fmt.Errorf("i18n: dictionary %q is empty", lang)
		}
		dicts[lang] = dict
	}
	return &Bundle{dictionaries: dicts}, nil
}

// Translate resolves a key for the effective language of the given state.
// Missing entries fall back to English, then to the key itself, so the result
// is never empty for a non-empty key.
func (b *Bundle) Translate(state domain.LanguageState, key string) string {
	return b.TranslateLang(EffectiveLanguage(state), key)
}

// TranslateLang resolves a key for a specific language with the same fallback
// chain as Translate.
func (b *Bundle) TranslateLang(lang domain.Language, key string) string {
	if b == nil || key == "" {
		return key
	}
	if dict, ok := b.dictionaries[lang]; ok {
		if value, ok := dict[key]; ok && value != "" {
			return value
		}
	}
	if dict, ok := b.dictionaries[domain.LanguageEnglish]; ok {
		if value, ok := dict[key]; ok && value != "" {
			return value
		}
	}
	return key
}

// Dictionary returns a copy of the full dictionary for a language.
func (b *Bundle) Dictionary(lang domain.Language) (map[string]string, bool) {
	dict, ok := b.dictionaries[lang]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(dict))
	for k, v := range dict {
		out[k] = v
	}
	return out, true
}
