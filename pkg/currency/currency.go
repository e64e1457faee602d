// Package currency converts hourly rates between currencies using a fixed
// exchange-rate table. Rates are approximate and exist only so that price
// filters expressed in one currency can be applied to rates quoted in
// another; this is not a financial-grade conversion service.
package currency

import (
	"fmt"
	"strings"
)

// usdRates maps an ISO 4217 code to the value of one USD in that currency.
var usdRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"CAD": 1.36,
	"AUD": 1.52,
	"CHF": 0.88,
	"JPY": 149.50,
	"INR": 83.10,
	"BRL": 4.97,
	"PLN": 3.98,
	"UAH": 38.20,
}

// Convert converts amount from one currency to another via USD.
// Currency codes are case-insensitive. Unknown codes return an error.
func Convert(amount float64, from, to string) (float64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == to {
		return amount, nil
	}

	fromRate, ok := usdRates[from]
	if !ok {
		return 0, fmt.Errorf("unknown currency %q", from)
	}
	toRate, ok := usdRates[to]
	if !ok {
		return 0, fmt.Errorf("unknown currency %q", to)
	}

	return amount / fromRate * toRate, nil
}

// Supported reports whether code is present in the rate table.
func Supported(code string) bool {
	_, ok := usdRates[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}
