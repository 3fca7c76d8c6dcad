// Package calc holds the small health and money calculators shown next to
// the converters: BMI, daily calories, tip, discount, take-home salary,
// water intake and a fixed currency exchange matrix.
//
// Rounding follows the display rules of the site: half values round up
// toward positive infinity.
package calc

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidInput = errors.New("invalid input")

// Round rounds half values toward positive infinity.
func Round(v float64) float64 {
	return math.Floor(v + 0.5)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return Round(v*10) / 10
}

func checkRange(name string, v, min, max float64, unit string) error {
	if math.IsNaN(v) || v < min || v > max {
		return fmt.Errorf("%w: %s must be within %g-%g%s, got %g", ErrInvalidInput, name, min, max, unit, v)
	}
	return nil
}
