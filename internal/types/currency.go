package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimalCurrencies are charged by Stripe in whole units
// https://docs.stripe.com/currencies#zero-decimal
var zeroDecimalCurrencies = map[string]struct{}{
	"bif": {}, "clp": {}, "djf": {}, "gnf": {}, "jpy": {}, "kmf": {}, "krw": {}, "mga": {},
	"pyg": {}, "rwf": {}, "ugx": {}, "vnd": {}, "vuv": {}, "xaf": {}, "xof": {}, "xpf": {},
}

// IsZeroDecimalCurrency reports whether amounts in code have no minor unit
func IsZeroDecimalCurrency(code string) bool {
	_, ok := zeroDecimalCurrencies[strings.ToLower(code)]
	return ok
}

// ToMajorUnits converts a provider amount in minor units to a decimal amount
// in the currency's major unit, e.g. 2900 usd -> 29.00
func ToMajorUnits(amount int64, currency string) decimal.Decimal {
	d := decimal.NewFromInt(amount)
	if IsZeroDecimalCurrency(currency) {
		return d
	}
	return d.Shift(-2)
}
