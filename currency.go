package unitconv

import (
	"fmt"
	"strings"
)

// CurrencyCategory rebuilds the currency category from quoted rates.
// rates maps upper case ISO codes to how many units of that currency one
// unit of the quote currency buys, e.g. {"USD": 1, "KRW": 1350}. Unit keys
// of template are the lower case codes; the template unit with factor 1
// stays the base.
func CurrencyCategory(rates map[string]float64, template Category) (Category, error) {
	base := ""
	for _, u := range template.Units {
		if u.ToBase == 1 {
			base = u.Key
			break
		}
	}
	if base == "" {
		return Category{}, fmt.Errorf("%w: currency template %q has no base unit", ErrInvalidCatalog, template.Key)
	}
	baseRate, ok := rates[strings.ToUpper(base)]
	if !ok || !validFactor(baseRate) {
		return Category{}, fmt.Errorf("%w: no rate for base currency %s", ErrInvalidCatalog, strings.ToUpper(base))
	}

	out := template.clone()
	for i := range out.Units {
		code := strings.ToUpper(out.Units[i].Key)
		rate, ok := rates[code]
		if !ok || !validFactor(rate) {
			return Category{}, fmt.Errorf("%w: no rate for currency %s", ErrInvalidCatalog, code)
		}
		if out.Units[i].Key == base {
			out.Units[i].ToBase = 1
			continue
		}
		// base units per one unit of code
		out.Units[i].ToBase = baseRate / rate
	}
	return out, nil
}
