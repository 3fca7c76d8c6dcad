// Package rates supplies exchange rates for the currency category: a live
// HTTP source, the static fallback table and a one-shot Loader that never
// fails.
package rates

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"unitconv"
)

var (
	ErrFetchFailed      = errors.New("exchange rate fetch failed")
	ErrMalformedPayload = errors.New("malformed exchange rate payload")
)

const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

// Table holds how many units of each currency one unit of Base buys.
type Table struct {
	Base    string
	Rates   map[string]float64
	Updated time.Time
	Source  string
}

// Fallback derives a USD quoted table from the built-in won factors.
func Fallback() Table {
	units := unitconv.DefaultCurrencyUnits()
	usdInBase := 0.0
	for _, u := range units {
		if u.Key == "usd" {
			usdInBase = u.ToBase
		}
	}
	t := Table{
		Base:   "USD",
		Rates:  make(map[string]float64, len(units)),
		Source: SourceFallback,
	}
	for _, u := range units {
		t.Rates[strings.ToUpper(u.Key)] = usdInBase / u.ToBase
	}
	t.Rates["USD"] = 1
	return t
}

// Validate checks that every rate is usable and that codes are present.
func (t Table) Validate(codes ...string) error {
	if len(t.Rates) == 0 {
		return fmt.Errorf("%w: no rates", ErrMalformedPayload)
	}
	for code, r := range t.Rates {
		if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("%w: rate %s=%v", ErrMalformedPayload, code, r)
		}
	}
	var missing []string
	for _, code := range codes {
		if _, ok := t.Rates[strings.ToUpper(code)]; !ok {
			missing = append(missing, strings.ToUpper(code))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing %s", ErrMalformedPayload, strings.Join(missing, ","))
	}
	return nil
}

// Category rebuilds template (normally the catalog's currency category)
// with this table's rates.
func (t Table) Category(template unitconv.Category) (unitconv.Category, error) {
	return unitconv.CurrencyCategory(t.Rates, template)
}

// Apply returns a copy of catalog whose currency category uses t.
func (t Table) Apply(catalog *unitconv.Catalog, category string) (*unitconv.Catalog, error) {
	template, err := catalog.Category(category)
	if err != nil {
		return nil, err
	}
	cat, err := t.Category(template)
	if err != nil {
		return nil, err
	}
	return catalog.With(cat)
}

// Rate converts amount between two codes of the table.
func (t Table) Rate(from, to string) (float64, error) {
	rf, ok := t.Rates[strings.ToUpper(from)]
	if !ok {
		return math.NaN(), fmt.Errorf("%w: %s", unitconv.ErrUnknownUnit, from)
	}
	rt, ok := t.Rates[strings.ToUpper(to)]
	if !ok {
		return math.NaN(), fmt.Errorf("%w: %s", unitconv.ErrUnknownUnit, to)
	}
	return rt / rf, nil
}
