package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"unitconv"
	"unitconv/calc"
)

type calculator struct {
	usage   string
	minArgs int
	run     func(w io.Writer, args []string) error
}

var calculatorOrder = []string{"bmi", "calorie", "tip", "discount", "salary", "water", "exchange"}

var calculators = map[string]calculator{
	"bmi":      {"<height-cm> <weight-kg>", 2, calcBMI},
	"calorie":  {"<male|female> <age> <height-cm> <weight-kg> [activity 1.2-1.9]", 4, calcCalorie},
	"tip":      {"<bill> <rate%> [people]", 2, calcTip},
	"discount": {"<price> <rate%>", 2, calcDiscount},
	"salary":   {"<gross> [monthly|yearly] [dependents]", 1, calcSalary},
	"water":    {"<weight-kg> [low|moderate|high|intense] [cool|moderate|warm|hot] [exercise-min]", 1, calcWater},
	"exchange": {"<amount> <from> <to>", 3, calcExchange},
}

func cmdCalc(_ context.Context, a *app, args []string) error {
	c, ok := calculators[args[0]]
	if !ok {
		for _, name := range calculatorOrder {
			fmt.Fprintf(a.stdout, "calc %s %s\n", name, calculators[name].usage)
		}
		if args[0] == "help" {
			return nil
		}
		return fmt.Errorf("unknown calculator %q", args[0])
	}
	rest := args[1:]
	if len(rest) < c.minArgs {
		return fmt.Errorf("usage: calc %s %s", args[0], c.usage)
	}
	return c.run(a.stdout, rest)
}

func numbers(args ...string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, s := range args {
		v, ok := unitconv.ParseValue(s)
		if !ok {
			return nil, fmt.Errorf("%w: not a number: %q", calc.ErrInvalidInput, s)
		}
		out[i] = v
	}
	return out, nil
}

// optional returns args[i] or def when absent.
func optional(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}

// won renders an amount rounded to whole won with thousands separators.
func won(v float64) string {
	return humanize.Comma(int64(calc.Round(v))) + "원"
}

func calcBMI(w io.Writer, args []string) error {
	n, err := numbers(args[0], args[1])
	if err != nil {
		return err
	}
	res, err := calc.AssessBMI(n[0], n[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "BMI %s (%s)\n", strconv.FormatFloat(res.BMI, 'f', -1, 64), res.Class)
	fmt.Fprintf(w, "이상적인 체중 범위: %skg - %skg\n",
		strconv.FormatFloat(res.IdealMin, 'f', -1, 64), strconv.FormatFloat(res.IdealMax, 'f', -1, 64))
	switch {
	case res.Adjust > 0:
		fmt.Fprintf(w, "%.1fkg 정도 체중 증가를 권장합니다.\n", res.Adjust)
	case res.Adjust < 0:
		fmt.Fprintf(w, "%.1fkg 정도 체중 감량을 권장합니다.\n", -res.Adjust)
	default:
		fmt.Fprintln(w, "건강한 체중을 유지하고 계십니다!")
	}
	return nil
}

func calcCalorie(w io.Writer, args []string) error {
	n, err := numbers(args[1], args[2], args[3], optional(args, 4, "1.2"))
	if err != nil {
		return err
	}
	p := calc.Person{Gender: calc.Gender(strings.ToLower(args[0])), Age: n[0], HeightCm: n[1], WeightKg: n[2]}
	activity := calc.Activity(n[3])
	res, err := calc.Calories(p, activity)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "BMR %s kcal, TDEE %s kcal (%s)\n",
		humanize.Comma(int64(calc.Round(res.BMR))), humanize.Comma(int64(calc.Round(res.TDEE))), activity)
	fmt.Fprintf(w, "체중 유지 %s kcal\n", humanize.Comma(int64(res.Maintain)))
	fmt.Fprintf(w, "체중 감량 (주 0.5kg) %s kcal\n", humanize.Comma(int64(res.Lose)))
	fmt.Fprintf(w, "체중 증량 (주 0.5kg) %s kcal\n", humanize.Comma(int64(res.Gain)))
	fmt.Fprintf(w, "탄수화물 %.0fg, 단백질 %.0fg, 지방 %.0fg\n", res.Macros.Carbs, res.Macros.Protein, res.Macros.Fat)
	return nil
}

func calcTip(w io.Writer, args []string) error {
	n, err := numbers(args[0], args[1], optional(args, 2, "1"))
	if err != nil {
		return err
	}
	t := calc.SplitTip(n[0], n[1], int(n[2]))
	fmt.Fprintf(w, "팁 %s, 총액 %s, 1인당 %s\n", won(t.Tip), won(t.Total), won(t.PerPerson))
	return nil
}

func calcDiscount(w io.Writer, args []string) error {
	n, err := numbers(args[0], args[1])
	if err != nil {
		return err
	}
	amount, final := calc.Discount(n[0], n[1])
	fmt.Fprintf(w, "할인 금액 %s, 최종 가격 %s\n", won(amount), won(final))
	return nil
}

func calcSalary(w io.Writer, args []string) error {
	n, err := numbers(args[0], optional(args, 2, "1"))
	if err != nil {
		return err
	}
	period := calc.Monthly
	switch optional(args, 1, "monthly") {
	case "monthly":
	case "yearly":
		period = calc.Yearly
	default:
		return fmt.Errorf("%w: period %q", calc.ErrInvalidInput, args[1])
	}
	p := calc.Salary(n[0], period, int(n[1]))
	rows := []struct {
		label string
		v     float64
	}{
		{"국민연금", p.Pension},
		{"건강보험", p.Health},
		{"장기요양", p.LongTermCare},
		{"고용보험", p.Employment},
		{"소득세", p.IncomeTax},
		{"지방소득세", p.LocalTax},
		{"총 공제액", p.Deductions},
		{"실수령액", p.Net},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s %s\n", r.label, won(r.v))
	}
	return nil
}

func calcWater(w io.Writer, args []string) error {
	n, err := numbers(args[0], optional(args, 3, "0"))
	if err != nil {
		return err
	}
	activity := calc.WaterActivity(optional(args, 1, string(calc.WaterModerate)))
	climate := calc.Climate(optional(args, 2, string(calc.Mild)))
	res, err := calc.WaterIntake(n[0], activity, climate, n[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "총 %sL (물 %sL, 음식 %sL), 하루 %d컵\n",
		liters(res.Total), liters(res.Drink), liters(res.Food), res.Cups)
	return nil
}

func liters(v float64) string {
	return strconv.FormatFloat(calc.Round1(v), 'f', -1, 64)
}

func calcExchange(w io.Writer, args []string) error {
	n, err := numbers(args[0])
	if err != nil {
		return err
	}
	from, to := strings.ToUpper(args[1]), strings.ToUpper(args[2])
	v, err := calc.Exchange(n[0], from, to)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s = %s %s\n",
		humanize.FormatFloat("#,###.##", n[0]), from, humanize.FormatFloat("#,###.##", v), to)
	return nil
}
