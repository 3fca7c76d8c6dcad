package calc

import "fmt"

// WaterActivity is the base intake in ml per kg of body weight.
type WaterActivity string

const (
	WaterLow      WaterActivity = "low"
	WaterModerate WaterActivity = "moderate"
	WaterHigh     WaterActivity = "high"
	WaterIntense  WaterActivity = "intense"
)

var waterPerKg = map[WaterActivity]float64{
	WaterLow:      30,
	WaterModerate: 33,
	WaterHigh:     36,
	WaterIntense:  40,
}

type Climate string

const (
	Cool Climate = "cool"
	Mild Climate = "moderate"
	Warm Climate = "warm"
	Hot  Climate = "hot"
)

var climateFactor = map[Climate]float64{
	Cool: 1.0,
	Mild: 1.1,
	Warm: 1.2,
	Hot:  1.4,
}

const (
	exerciseLitresPerHour = 0.625
	foodShare             = 0.2
	cupMl                 = 200
	MaxExerciseMinutes    = 480
)

// Water is a daily intake estimate in litres.
type Water struct {
	Base     float64 // body weight and activity only
	Climate  float64 // base adjusted for climate
	Exercise float64
	Total    float64
	Food     float64
	Drink    float64
	Cups     int
}

// WaterIntake estimates daily water needs. Values are unrounded; use
// Round1 for display.
func WaterIntake(weightKg float64, activity WaterActivity, climate Climate, exerciseMin float64) (Water, error) {
	if err := checkRange("weight", weightKg, 30, 200, "kg"); err != nil {
		return Water{}, err
	}
	if err := checkRange("exercise", exerciseMin, 0, MaxExerciseMinutes, "min"); err != nil {
		return Water{}, err
	}
	perKg, ok := waterPerKg[activity]
	if !ok {
		return Water{}, fmt.Errorf("%w: activity %q", ErrInvalidInput, activity)
	}
	factor, ok := climateFactor[climate]
	if !ok {
		return Water{}, fmt.Errorf("%w: climate %q", ErrInvalidInput, climate)
	}

	w := Water{Base: weightKg * perKg / 1000}
	w.Climate = w.Base * factor
	w.Exercise = exerciseMin / 60 * exerciseLitresPerHour
	w.Total = w.Climate + w.Exercise
	w.Food = w.Total * foodShare
	w.Drink = w.Total - w.Food
	w.Cups = int(Round(w.Drink * 1000 / cupMl))
	return w, nil
}
