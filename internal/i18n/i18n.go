// Package i18n owns the language tables, translation dictionaries, and price
// formatting for the storefront. Exchange rates are fixed indicative rates
// used for estimate display only.
package i18n

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/stratlink-defense/api/internal/domain"
)

// Languages lists every supported language in selector order.
var Languages = []domain.Language{
	domain.LanguageEnglish,
	domain.LanguageKorean,
	domain.LanguageChineseSimplified,
	domain.LanguageChineseTraditional,
	domain.LanguageJapanese,
	domain.LanguageGerman,
	domain.LanguageFrench,
	domain.LanguageSpanish,
	domain.LanguageRussian,
}

type languageInfo struct {
	label        string
	currency     string
	locale       string
	rate         float64
	symbol       string
	symbolSuffix bool
}

var languageTable = map[domain.Language]languageInfo{
	domain.LanguageEnglish:            {label: "English", currency: "USD", locale: "en-US", rate: 1.0, symbol: "$"},
	domain.LanguageKorean:             {label: "한국어", currency: "KRW", locale: "ko-KR", rate: 1350.0, symbol: "₩"},
	domain.LanguageChineseSimplified:  {label: "简体中文", currency: "CNY", locale: "zh-CN", rate: 7.25, symbol: "¥"},
	domain.LanguageChineseTraditional: {label: "繁體中文", currency: "TWD", locale: "zh-TW", rate: 32.0, symbol: "NT$"},
	domain.LanguageJapanese:           {label: "日本語", currency: "JPY", locale: "ja-JP", rate: 155.0, symbol: "￥"},
	domain.LanguageGerman:             {label: "Deutsch", currency: "EUR", locale: "de-DE", rate: 0.92, symbol: "€", symbolSuffix: true},
	domain.LanguageFrench:             {label: "Français", currency: "EUR", locale: "fr-FR", rate: 0.92, symbol: "€", symbolSuffix: true},
	domain.LanguageSpanish:            {label: "Español", currency: "EUR", locale: "es-ES", rate: 0.92, symbol: "€", symbolSuffix: true},
	domain.LanguageRussian:            {label: "Русский", currency: "RUB", locale: "ru-RU", rate: 95.0, symbol: "₽", symbolSuffix: true},
}

// ParseLanguage validates a raw language tag against the supported set.
func ParseLanguage(raw string) (domain.Language, bool) {
	tag := domain.Language(strings.TrimSpace(raw))
	_, ok := languageTable[tag]
	return tag, ok
}

// Label returns the native display name for the language selector.
func Label(lang domain.Language) string {
	return languageTable[lang].label
}

// CurrencyCode returns the ISO 4217 code used to display estimates for the
// given language.
func CurrencyCode(lang domain.Language) string {
	info, ok := languageTable[lang]
	if !ok {
		info = languageTable[domain.LanguageEnglish]
	}
	return info.currency
}

// Locale returns the BCP 47 locale backing number formatting for the language.
func Locale(lang domain.Language) string {
	info, ok := languageTable[lang]
	if !ok {
		info = languageTable[domain.LanguageEnglish]
	}
	return info.locale
}

// ExchangeRate returns the indicative units-per-USD rate for the language's
// display currency.
func ExchangeRate(lang domain.Language) float64 {
	info, ok := languageTable[lang]
	if !ok {
		return 1.0
	}
	return info.rate
}

// EffectiveLanguage resolves the language used for translation and price
// display. A chosen Chinese variant overrides the selected language.
func EffectiveLanguage(state domain.LanguageState) domain.Language {
	switch state.Variant {
	case domain.VariantSimplified:
		return domain.LanguageChineseSimplified
	case domain.VariantTraditional:
		return domain.LanguageChineseTraditional
	default:
		return state.Language
	}
}

// IsChinese reports whether the language carries a variant sub-selector.
func IsChinese(lang domain.Language) bool {
	return lang == domain.LanguageChineseSimplified || lang == domain.LanguageChineseTraditional
}

// DefaultVariant returns the variant implied by a Chinese language tag.
func DefaultVariant(lang domain.Language) domain.ChineseVariant {
	switch lang {
	case domain.LanguageChineseSimplified:
		return domain.VariantSimplified
	case domain.LanguageChineseTraditional:
		return domain.VariantTraditional
	default:
		return domain.VariantNone
	}
}

// NationalityLanguage is the inferred default for a buyer's nationality.
type NationalityLanguage struct {
	Language    domain.Language
	HasVariants bool
}

var nationalityLanguages = map[string]NationalityLanguage{
	"United States":  {Language: domain.LanguageEnglish},
	"United Kingdom": {Language: domain.LanguageEnglish},
	"Canada":         {Language: domain.LanguageEnglish},
	"Australia":      {Language: domain.LanguageEnglish},
	"South Korea":    {Language: domain.LanguageKorean},
	"North Korea":    {Language: domain.LanguageKorean},
	"China":          {Language: domain.LanguageChineseSimplified, HasVariants: true},
	"Taiwan":         {Language: domain.LanguageChineseTraditional, HasVariants: true},
	"Hong Kong":      {Language: domain.LanguageChineseTraditional, HasVariants: true},
	"Macau":          {Language: domain.LanguageChineseTraditional, HasVariants: true},
	"Japan":          {Language: domain.LanguageJapanese},
	"Germany":        {Language: domain.LanguageGerman},
	"Austria":        {Language: domain.LanguageGerman},
	"Switzerland":    {Language: domain.LanguageGerman},
	"France":         {Language: domain.LanguageFrench},
	"Spain":          {Language: domain.LanguageSpanish},
	"Mexico":         {Language: domain.LanguageSpanish},
	"Russia":         {Language: domain.LanguageRussian},
}

// LanguageForNationality infers the default language for a nationality.
func LanguageForNationality(nationality string) (NationalityLanguage, bool) {
	info, ok := nationalityLanguages[strings.TrimSpace(nationality)]
	return info, ok
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, 0, len(Languages))
	for _, lang := range Languages {
		tags = append(tags, language.MustParse(Locale(lang)))
	}
	return language.NewMatcher(tags)
}()

// MatchAcceptLanguage negotiates a supported language from an Accept-Language
// header. It falls back to English when nothing matches.
func MatchAcceptLanguage(header string) domain.Language {
	if strings.TrimSpace(header) == "" {
		return domain.LanguageEnglish
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return domain.LanguageEnglish
	}
	_, index, conf := matcher.Match(tags...)
	if conf == language.No || index < 0 || index >= len(Languages) {
		return domain.LanguageEnglish
	}
	return Languages[index]
}
