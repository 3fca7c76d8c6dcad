package unitconv

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Convert converts raw from one unit to another inside category. Empty or
// non-numeric input converts to 0. Unknown category or unit keys yield NaN,
// which Format renders as "0". No rounding is applied.
func (c *Catalog) Convert(category, from, to string, raw any) float64 {
	v, ok := ParseValue(raw)
	if !ok {
		return 0
	}
	res, err := c.convert(category, from, to, v)
	if err != nil {
		return math.NaN()
	}
	return res
}

// ConvertStrict is Convert for callers that want lookup failures reported.
// Invalid numeric input still converts to 0 without an error.
func (c *Catalog) ConvertStrict(category, from, to string, raw any) (float64, error) {
	v, ok := ParseValue(raw)
	if !ok {
		return 0, nil
	}
	return c.convert(category, from, to, v)
}

func (c *Catalog) convert(category, from, to string, v float64) (float64, error) {
	e, err := c.lookup(category)
	if err != nil {
		return math.NaN(), err
	}
	fromUnit, err := e.unit(from)
	if err != nil {
		return math.NaN(), err
	}
	toUnit, err := e.unit(to)
	if err != nil {
		return math.NaN(), err
	}
	if e.cat.kind == KindCustom {
		return e.cat.rule(v, from, to), nil
	}
	// from -> base -> to
	return v * fromUnit.ToBase / toUnit.ToBase, nil
}

// ParseValue reads a user supplied number. Strings must be decimal numbers
// as a whole, surrounding blanks aside; hex forms such as "0x1p3" are
// rejected. Non-finite values are rejected.
func ParseValue(raw any) (float64, bool) {
	var v float64
	switch x := raw.(type) {
	case nil:
		return 0, false
	case string:
		s := strings.TrimSpace(x)
		if s == "" || strings.ContainsAny(s, "xXpP") {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		v = f
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int8:
		v = float64(x)
	case int16:
		v = float64(x)
	case int32:
		v = float64(x)
	case int64:
		v = float64(x)
	case uint:
		v = float64(x)
	case uint8:
		v = float64(x)
	case uint16:
		v = float64(x)
	case uint32:
		v = float64(x)
	case uint64:
		v = float64(x)
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

const DefaultPrecision = 3

// Format renders v with DefaultPrecision fractional digits.
func Format(v float64) string {
	return FormatPrecision(v, DefaultPrecision)
}

// FormatPrecision renders v for display. NaN renders as "0". Magnitudes of
// at least 1e9, or below 1e-6 but non-zero, use two-digit scientific
// notation ("1.23e+9"). Anything else is fixed-point with trailing zeros
// removed. Exact halfway cases round away from zero.
func FormatPrecision(v float64, precision int) string {
	if math.IsNaN(v) {
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e9 || (abs < 1e-6 && v != 0) {
		return formatExponent(v)
	}
	if precision < 0 {
		precision = 0
	}
	s := strconv.FormatFloat(awayFromTie(v, precision), 'f', precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// formatExponent writes "1.23e+9" rather than Go's "1.23e+09".
func formatExponent(v float64) string {
	if math.IsInf(v, 1) {
		return "Infinity"
	}
	if math.IsInf(v, -1) {
		return "-Infinity"
	}
	if v != 0 {
		shortest := strconv.FormatFloat(math.Abs(v), 'e', -1, 64)
		if _, e, ok := strings.Cut(shortest, "e"); ok {
			if exp, err := strconv.Atoi(e); err == nil {
				v = awayFromTie(v, 2-exp)
			}
		}
	}
	s := strconv.FormatFloat(v, 'e', 2, 64)
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + sign + digits
}

// awayFromTie nudges v one ulp away from zero when it lies exactly halfway
// between two values with digits fractional digits (negative digits count
// places left of the point). strconv rounds such ties to even.
func awayFromTie(v float64, digits int) float64 {
	r := new(big.Rat).SetFloat64(math.Abs(v))
	if r == nil || r.Sign() == 0 {
		return v
	}
	n := digits
	if n < 0 {
		n = -n
	}
	scale := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil))
	if digits >= 0 {
		r.Mul(r, scale)
	} else {
		r.Quo(r, scale)
	}
	r.Mul(r, big.NewRat(2, 1))
	if !r.IsInt() || r.Num().Bit(0) == 0 {
		return v
	}
	return math.Nextafter(v, math.Copysign(math.Inf(1), v))
}
