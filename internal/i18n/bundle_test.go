package i18n

import (
	"testing"

	"github.com/stratlink-defense/api/internal/domain"
)

func TestLoadBundleCoversAllLanguages(t *testing.T) {
	bundle, err := LoadBundle()
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}
	for _, lang := range Languages {
		dict, ok := bundle.Dictionary(lang)
		if !ok || len(dict) == 0 {
			t.Fatalf("expected dictionary for %s", lang)
		}
	}
}

func TestTranslateUsesEffectiveLanguage(t *testing.T) {
	bundle, err := LoadBundle()
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}

	en := bundle.Translate(domain.LanguageState{Language: domain.LanguageEnglish}, "cart")
	if en != "Cart" {
		t.Fatalf("expected English cart label, got %q", en)
	}

	// A traditional variant must force the zh-TW dictionary even when the
	// selected language is English.
	forced := bundle.Translate(domain.LanguageState{
		Language: domain.LanguageEnglish,
		Variant:  domain.VariantTraditional,
	}, "cart")
	direct := bundle.TranslateLang(domain.LanguageChineseTraditional, "cart")
	if forced != direct {
		t.Fatalf("expected variant to force zh-TW, got %q vs %q", forced, direct)
	}
	if forced == en {
		t.Fatalf("expected zh-TW label to differ from English")
	}
}

func TestTranslateFallbackChain(t *testing.T) {
	bundle, err := LoadBundle()
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}

	// Unknown keys fall through both dictionaries to the key itself.
	if got := bundle.TranslateLang(domain.LanguageGerman, "no.such.key"); got != "no.such.key" {
		t.Fatalf("expected key echo, got %q", got)
	}
	if got := bundle.TranslateLang(domain.LanguageGerman, ""); got != "" {
		t.Fatalf("expected empty key to stay empty, got %q", got)
	}

	// Every dictionary entry resolves to something non-empty in every language.
	for _, lang := range Languages {
		dict, _ := bundle.Dictionary(domain.LanguageEnglish)
		for key := range dict {
			if got := bundle.TranslateLang(lang, key); got == "" {
				t.Fatalf("empty translation for %s key %q", lang, key)
			}
		}
	}
}
