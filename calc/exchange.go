package calc

import (
	"fmt"
	"strings"
)

// Currencies of the exchange calculator, in display order.
var Currencies = []string{"KRW", "USD", "EUR", "JPY", "CNY", "GBP"}

// Reference pairwise rates. The table is not derived from one base so
// a round trip does not always return the original amount.
var exchangeMatrix = map[string]map[string]float64{
	"KRW": {"KRW": 1, "USD": 0.00074, "EUR": 0.00068, "JPY": 0.11, "CNY": 0.0053, "GBP": 0.00059},
	"USD": {"KRW": 1350, "USD": 1, "EUR": 0.92, "JPY": 149, "CNY": 7.2, "GBP": 0.79},
	"EUR": {"KRW": 1470, "USD": 1.09, "EUR": 1, "JPY": 162, "CNY": 7.85, "GBP": 0.86},
	"JPY": {"KRW": 9.1, "USD": 0.0067, "EUR": 0.0062, "JPY": 1, "CNY": 0.048, "GBP": 0.0053},
	"CNY": {"KRW": 189, "USD": 0.14, "EUR": 0.13, "JPY": 20.8, "CNY": 1, "GBP": 0.11},
	"GBP": {"KRW": 1700, "USD": 1.26, "EUR": 1.16, "JPY": 188, "CNY": 9.1, "GBP": 1},
}

// ExchangeRate is the reference rate for one unit of from in to.
func ExchangeRate(from, to string) (float64, error) {
	row, ok := exchangeMatrix[strings.ToUpper(from)]
	if !ok {
		return 0, fmt.Errorf("%w: currency %q", ErrInvalidInput, from)
	}
	rate, ok := row[strings.ToUpper(to)]
	if !ok {
		return 0, fmt.Errorf("%w: currency %q", ErrInvalidInput, to)
	}
	return rate, nil
}

func Exchange(amount float64, from, to string) (float64, error) {
	rate, err := ExchangeRate(from, to)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}
