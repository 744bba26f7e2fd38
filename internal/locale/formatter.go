// AngelaMos | 2026
// formatter.go

// Package locale formats numbers and money the way a tenant's locale and
// currency settings ask for.
package locale

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultLocale   = "en-US"
	DefaultCurrency = "USD"

	// AutoDecimals uses the currency's standard scale for Currency and the
	// locale default for Number.
	AutoDecimals = -1

	maxDecimals = 10
)

type Options struct {
	Locale   string `json:"locale"`
	Currency string `json:"currency"`
	Decimals int    `json:"decimals"`
}

// Key is the canonical form of o: equal keys always produce identical
// output.
func (o Options) Key() string {
	n := o.normalize()
	return n.Locale + "|" + n.Currency + "|" + strconv.Itoa(n.Decimals)
}

func (o Options) normalize() Options {
	tag, err := language.Parse(strings.TrimSpace(o.Locale))
	if err != nil || tag == language.Und {
		tag = language.AmericanEnglish
	}

	code := strings.ToUpper(strings.TrimSpace(o.Currency))
	if _, err := currency.ParseISO(code); err != nil {
		code = DefaultCurrency
	}

	decimals := o.Decimals
	if decimals < 0 {
		decimals = AutoDecimals
	}
	if decimals > maxDecimals {
		decimals = maxDecimals
	}

	return Options{Locale: tag.String(), Currency: code, Decimals: decimals}
}

// Formatter is immutable once built and safe for concurrent use.
type Formatter struct {
	opts    Options
	printer *message.Printer
	unit    currency.Unit
	symbol  string
	scale   int
}

// New builds a Formatter. Unknown locales fall back to en-US and unknown
// currency codes to USD.
func New(o Options) *Formatter {
	n := o.normalize()

	tag := language.MustParse(n.Locale)
	unit := currency.MustParseISO(n.Currency)
	printer := message.NewPrinter(tag)

	scale, _ := currency.Standard.Rounding(unit)
	if n.Decimals != AutoDecimals {
		scale = n.Decimals
	}

	return &Formatter{
		opts:    n,
		printer: printer,
		unit:    unit,
		symbol:  printer.Sprint(currency.Symbol(unit)),
		scale:   scale,
	}
}

func (f *Formatter) Options() Options {
	return f.opts
}

// Number formats v with the locale's grouping and decimal separators.
// NaN and infinities format as an empty string.
func (f *Formatter) Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}

	if f.opts.Decimals == AutoDecimals {
		return f.printer.Sprint(number.Decimal(v))
	}
	return f.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(f.opts.Decimals),
		number.MaxFractionDigits(f.opts.Decimals),
	))
}

// Currency formats v as money: sign, currency symbol, then the amount at
// the currency's scale.
func (f *Formatter) Currency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	amount := f.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(f.scale),
		number.MaxFractionDigits(f.scale),
	))

	return fmt.Sprintf("%s%s%s", sign, f.symbol, amount)
}

func (f *Formatter) CurrencyCode() string {
	return f.unit.String()
}
