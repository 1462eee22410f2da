package thronewatch

import "strings"

// Currency describes how amounts in a currency are written.
type Currency struct {
	Code     string
	Symbol   string
	Exponent int // number of minor-unit digits
}

var currencies = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$", Exponent: 2},
	"EUR": {Code: "EUR", Symbol: "€", Exponent: 2},
	"GBP": {Code: "GBP", Symbol: "£", Exponent: 2},
	"CAD": {Code: "CAD", Symbol: "C$", Exponent: 2},
	"AUD": {Code: "AUD", Symbol: "A$", Exponent: 2},
	"NZD": {Code: "NZD", Symbol: "NZ$", Exponent: 2},
	"BRL": {Code: "BRL", Symbol: "R$", Exponent: 2},
	"MXN": {Code: "MXN", Symbol: "MX$", Exponent: 2},
	"INR": {Code: "INR", Symbol: "₹", Exponent: 2},
	"JPY": {Code: "JPY", Symbol: "¥", Exponent: 0},
	"KRW": {Code: "KRW", Symbol: "₩", Exponent: 0},
	"PLN": {Code: "PLN", Symbol: "zł", Exponent: 2},
	"CHF": {Code: "CHF", Exponent: 2},
	"SEK": {Code: "SEK", Exponent: 2},
	"NOK": {Code: "NOK", Exponent: 2},
	"DKK": {Code: "DKK", Exponent: 2},
}

// LookupCurrency returns the currency for an ISO code.
func LookupCurrency(code string) (Currency, bool) {
	c, ok := currencies[strings.ToUpper(code)]
	return c, ok
}

// CurrencyExponent returns the number of minor-unit digits for a currency.
// Unknown currencies default to 2.
func CurrencyExponent(code string) int {
	if c, ok := LookupCurrency(code); ok {
		return c.Exponent
	}
	return 2
}
