package calc

import "fmt"

// BMIClass is a band of the Asian BMI classification.
type BMIClass int

const (
	Underweight BMIClass = iota
	Normal
	Overweight
	Obese1
	Obese2
)

var bmiClasses = []struct {
	class BMIClass
	max   float64
	label string
}{
	{Underweight, 18.5, "저체중"},
	{Normal, 23, "정상"},
	{Overweight, 25, "과체중"},
	{Obese1, 30, "비만 1단계"},
	{Obese2, 999, "비만 2단계"},
}

func (c BMIClass) String() string {
	if c < Underweight || c > Obese2 {
		return fmt.Sprintf("BMIClass(%d)", int(c))
	}
	return bmiClasses[c].label
}

// Accepted body measurements for the BMI calculator.
const (
	MinBMIHeight = 50
	MaxBMIHeight = 250
	MinBMIWeight = 10
	MaxBMIWeight = 300
)

// ClassifyBMI maps a BMI value to its band.
func ClassifyBMI(bmi float64) BMIClass {
	for _, c := range bmiClasses {
		if bmi < c.max {
			return c.class
		}
	}
	return Obese2
}

// BMI computes weight / height² from centimetres and kilograms, rounded to
// one decimal.
func BMI(heightCm, weightKg float64) (float64, error) {
	if err := checkRange("height", heightCm, MinBMIHeight, MaxBMIHeight, "cm"); err != nil {
		return 0, err
	}
	if err := checkRange("weight", weightKg, MinBMIWeight, MaxBMIWeight, "kg"); err != nil {
		return 0, err
	}
	m := heightCm / 100
	return Round1(weightKg / (m * m)), nil
}

// IdealWeightRange is the weight interval, in kg, that keeps BMI between
// 18.5 and 22.9 for the given height.
func IdealWeightRange(heightCm float64) (lo, hi float64, err error) {
	if heightCm <= 0 {
		return 0, 0, fmt.Errorf("%w: height must be positive, got %g", ErrInvalidInput, heightCm)
	}
	m := heightCm / 100
	return Round1(18.5 * m * m), Round1(22.9 * m * m), nil
}

type BMIResult struct {
	BMI      float64
	Class    BMIClass
	IdealMin float64
	IdealMax float64
	// Adjust is the weight to gain (positive) or lose (negative) to reach
	// the ideal range, zero when already inside it.
	Adjust float64
}

// AssessBMI combines BMI, its class and the distance to the ideal range.
func AssessBMI(heightCm, weightKg float64) (BMIResult, error) {
	bmi, err := BMI(heightCm, weightKg)
	if err != nil {
		return BMIResult{}, err
	}
	lo, hi, err := IdealWeightRange(heightCm)
	if err != nil {
		return BMIResult{}, err
	}
	res := BMIResult{BMI: bmi, Class: ClassifyBMI(bmi), IdealMin: lo, IdealMax: hi}
	switch {
	case bmi < 18.5:
		res.Adjust = lo - weightKg
	case bmi > 22.9:
		res.Adjust = hi - weightKg
	}
	return res, nil
}
