package calc

import "fmt"

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Activity is the TDEE multiplier for a weekly exercise level.
type Activity float64

const (
	Sedentary        Activity = 1.2
	LightlyActive    Activity = 1.375
	ModeratelyActive Activity = 1.55
	VeryActive       Activity = 1.725
	ExtraActive      Activity = 1.9
)

var activityLabels = map[Activity]string{
	Sedentary:        "비활동적 (운동 거의 안함)",
	LightlyActive:    "가벼운 활동 (주 1-3회 운동)",
	ModeratelyActive: "보통 활동 (주 3-5회 운동)",
	VeryActive:       "활발한 활동 (주 6-7회 운동)",
	ExtraActive:      "매우 활발 (하루 2회 운동 또는 격한 운동)",
}

func (a Activity) String() string {
	if l, ok := activityLabels[a]; ok {
		return l
	}
	return fmt.Sprintf("Activity(%g)", float64(a))
}

func (a Activity) valid() bool {
	_, ok := activityLabels[a]
	return ok
}

// Person holds the inputs of the calorie calculator.
type Person struct {
	Gender   Gender
	Age      float64
	HeightCm float64
	WeightKg float64
}

func (p Person) Validate() error {
	if p.Gender != Male && p.Gender != Female {
		return fmt.Errorf("%w: gender %q", ErrInvalidInput, p.Gender)
	}
	if err := checkRange("age", p.Age, 10, 100, ""); err != nil {
		return err
	}
	if err := checkRange("height", p.HeightCm, 100, 250, "cm"); err != nil {
		return err
	}
	return checkRange("weight", p.WeightKg, 30, 200, "kg")
}

// BMR is the revised Harris-Benedict basal metabolic rate in kcal/day.
func BMR(p Person) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if p.Gender == Male {
		return 88.362 + 13.397*p.WeightKg + 4.799*p.HeightCm - 5.677*p.Age, nil
	}
	return 447.593 + 9.247*p.WeightKg + 3.098*p.HeightCm - 4.330*p.Age, nil
}

// Macros are daily grams derived from the maintenance calories.
type Macros struct {
	Carbs   float64
	Protein float64
	Fat     float64
}

type CalorieResult struct {
	BMR      float64
	TDEE     float64
	Maintain float64
	Lose     float64
	Gain     float64
	FastLose float64
	Macros   Macros
}

// Calories computes BMR, TDEE and the rounded daily targets per goal.
func Calories(p Person, activity Activity) (CalorieResult, error) {
	if !activity.valid() {
		return CalorieResult{}, fmt.Errorf("%w: activity level %g", ErrInvalidInput, float64(activity))
	}
	bmr, err := BMR(p)
	if err != nil {
		return CalorieResult{}, err
	}
	tdee := bmr * float64(activity)
	maintain := Round(tdee)
	return CalorieResult{
		BMR:      bmr,
		TDEE:     tdee,
		Maintain: maintain,
		Lose:     Round(tdee - 500),
		Gain:     Round(tdee + 500),
		FastLose: Round(tdee - 1000),
		Macros: Macros{
			Carbs:   Round(maintain * 0.5 / 4),
			Protein: Round(maintain * 0.2 / 4),
			Fat:     Round(maintain * 0.25 / 9),
		},
	}, nil
}
