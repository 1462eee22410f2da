package goquery

import (
	"regexp"
	"strings"

	"github.com/fwojciec/thronewatch"
	"github.com/shopspring/decimal"
)

// Price is an amount in minor units of a currency.
type Price struct {
	Cents    int64
	Currency string
}

// CurrencySymbols maps price markers found in page text to ISO codes.
// ISO codes themselves ("USD 12.50", "12,50 EUR") are recognized as well.
var CurrencySymbols = map[string]string{
	"US$": "USD",
	"CA$": "CAD",
	"AU$": "AUD",
	"NZ$": "NZD",
	"MX$": "MXN",
	"C$":  "CAD",
	"A$":  "AUD",
	"R$":  "BRL",
	"$":   "USD",
	"€":   "EUR",
	"£":   "GBP",
	"¥":   "JPY",
	"₹":   "INR",
	"₩":   "KRW",
	"zł":  "PLN",
}

const (
	markerPattern = `(US\$|CA\$|AU\$|NZ\$|MX\$|C\$|A\$|R\$|\$|€|£|¥|₹|₩|zł|\b[A-Z]{3}\b)`
	numberPattern = `(\d+(?:[.,]\d+|[ '\x{00A0}\x{202F}]\d{3}\b)*)`
)

var (
	leadingPriceRe  = regexp.MustCompile(markerPattern + `\s*` + numberPattern)
	trailingPriceRe = regexp.MustCompile(numberPattern + `\s*` + markerPattern)
)

// ParsePrice finds the first amount with a currency marker in text, whether
// the marker leads ("$12.50", "USD 12.50") or trails ("12,50 €"). A trailing
// match that shares its marker with a leading one ("2 $12.50") is ignored.
// Text without a recognizable marker or without digits yields false.
func ParsePrice(text string) (Price, bool) {
	type candidate struct {
		start, end int
		price      Price
	}

	var leading []candidate
	for _, m := range leadingPriceRe.FindAllStringSubmatchIndex(text, -1) {
		if p, ok := buildPrice(text[m[4]:m[5]], text[m[2]:m[3]]); ok {
			leading = append(leading, candidate{m[0], m[1], p})
		}
	}

	candidates := leading
	for _, m := range trailingPriceRe.FindAllStringSubmatchIndex(text, -1) {
		p, ok := buildPrice(text[m[2]:m[3]], text[m[4]:m[5]])
		if !ok {
			continue
		}
		overlaps := false
		for _, l := range leading {
			if m[0] < l.end && l.start < m[1] {
				overlaps = true
				break
			}
		}
		if !overlaps {
			candidates = append(candidates, candidate{m[0], m[1], p})
		}
	}
	if len(candidates) == 0 {
		return Price{}, false
	}

	first := candidates[0]
	for _, c := range candidates[1:] {
		if c.start < first.start {
			first = c
		}
	}
	return first.price, true
}

func buildPrice(number, marker string) (Price, bool) {
	currency, ok := currencyForMarker(marker)
	if !ok {
		return Price{}, false
	}
	amount, ok := parseAmount(number)
	if !ok {
		return Price{}, false
	}
	cents, ok := toMinorUnits(amount, currency)
	if !ok {
		return Price{}, false
	}
	return Price{Cents: cents, Currency: currency}, true
}

func currencyForMarker(marker string) (string, bool) {
	if code, ok := CurrencySymbols[marker]; ok {
		return code, true
	}
	if c, ok := thronewatch.LookupCurrency(marker); ok {
		return c.Code, true
	}
	return "", false
}

// parseAmount parses a number written with arbitrary grouping and decimal
// separators. When both '.' and ',' appear the rightmost one is the decimal
// separator. A lone separator followed by exactly three digits, or a
// separator that repeats, groups thousands; otherwise it is decimal.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\'', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" {
		return decimal.Decimal{}, false
	}

	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")
	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case dots == 1 || commas == 1:
		sep := "."
		if commas == 1 {
			sep = ","
		}
		if len(s)-strings.LastIndex(s, sep)-1 == 3 {
			s = strings.Replace(s, sep, "", 1)
		} else {
			s = strings.Replace(s, sep, ".", 1)
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// toMinorUnits converts a major-unit amount using the currency's exponent.
// Amounts that do not fit in an int64 are rejected.
func toMinorUnits(amount decimal.Decimal, currency string) (int64, bool) {
	return roundToInt64(amount.Shift(int32(thronewatch.CurrencyExponent(currency))))
}

func roundToInt64(d decimal.Decimal) (int64, bool) {
	n := d.Round(0).BigInt()
	if !n.IsInt64() {
		return 0, false
	}
	return n.Int64(), true
}
