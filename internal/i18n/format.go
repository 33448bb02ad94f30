package i18n

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/stratlink-defense/api/internal/domain"
)

var printers = func() map[domain.Language]*message.Printer {
	out := make(map[domain.Language]*message.Printer, len(Languages))
	for _, lang := range Languages {
		out[lang] = message.NewPrinter(language.MustParse(Locale(lang)))
	}
	return out
}()

// ConvertUSD converts a whole-USD amount into the display currency of the
// language, rounded to whole units.
func ConvertUSD(lang domain.Language, usd int64) int64 {
	return int64(math.Round(float64(usd) * ExchangeRate(lang)))
}

// FormatPrice renders a USD reference amount in the display currency of the
// effective language: locale digit grouping, no fraction digits, and the
// currency symbol in the locale's customary position.
func FormatPrice(state domain.LanguageState, usd int64) string {
	return FormatPriceLang(EffectiveLanguage(state), usd)
}

// FormatPriceLang is FormatPrice for an explicit language.
func FormatPriceLang(lang domain.Language, usd int64) string {
	info, ok := languageTable[lang]
	if !ok {
		lang = domain.LanguageEnglish
		info = languageTable[lang]
	}
	printer := printers[lang]
	amount := printer.Sprint(number.Decimal(ConvertUSD(lang, usd),
		number.MaxFractionDigits(0),
		number.MinFractionDigits(0),
	))
	if info.symbolSuffix {
		return amount + " " + info.symbol
	}
	return info.symbol + amount
}
