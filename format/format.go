// Package format renders calculation results as locale-aware display strings.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/inexabali-blip/calculator-nedvizhimosti/domain"
)

// Placeholder is shown instead of a value that is absent or not a finite number.
const Placeholder = "—"

const fallbackCurrency = "USD"

type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// New builds a Formatter for a BCP 47 locale such as "ru" or "en-US". An
// unparsable locale falls back to Russian.
func New(locale string) *Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || locale == "" {
		tag = language.Russian
	}
	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}
}

func (f *Formatter) Locale() string { return f.tag.String() }

// Number renders v with exactly digits fraction digits and locale grouping.
func (f *Formatter) Number(v float64, digits int) string {
	if !finite(v) {
		return Placeholder
	}
	if digits < 0 {
		digits = 0
	}
	rounded, _ := decimal.NewFromFloat(v).Round(int32(digits)).Float64()
	return f.printer.Sprintf("%v", number.Decimal(rounded,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits),
	))
}

// Percent renders v (already in percent units) with a trailing "%".
func (f *Formatter) Percent(v float64, digits int) string {
	if !finite(v) {
		return Placeholder
	}
	return f.Number(v, digits) + "%"
}

func (f *Formatter) OptionalPercent(o domain.OptionalFloat, digits int) string {
	v, ok := o.Get()
	if !ok {
		return Placeholder
	}
	return f.Percent(v, digits)
}

// Currency renders a whole-unit money amount followed by the currency symbol.
// Codes that are not ISO 4217 are printed verbatim.
func (f *Formatter) Currency(v float64, code string) string {
	if !finite(v) {
		return Placeholder
	}
	code = domain.NormalizeCurrency(code)
	if code == "" {
		code = fallbackCurrency
	}

	symbol := code
	if unit, err := currency.ParseISO(code); err == nil {
		symbol = f.printer.Sprint(currency.Symbol(unit))
	}
	return f.Number(v, 0) + " " + symbol
}

// Years renders a payback period such as "9.8 years".
func (f *Formatter) Years(o domain.OptionalFloat) string {
	v, ok := o.Get()
	if !ok || !finite(v) {
		return Placeholder
	}
	return f.Number(v, 1) + " years"
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
