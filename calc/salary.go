package calc

import "math"

// Monthly deduction rates for 2024.
const (
	PensionRate        = 0.045
	PensionCap         = 248850
	HealthRate         = 0.03545
	LongTermCareRate   = 0.1295 // of the health insurance premium
	EmploymentRate     = 0.009
	LocalTaxRate       = 0.1 // of the income tax
	DependentDeduction = 150000
)

type taxBracket struct {
	min, max  float64
	rate      float64
	deduction float64
}

// Simplified withholding table for one dependent.
var taxTable = []taxBracket{
	{0, 1060000, 0, 0},
	{1060000, 2100000, 0.04, 42400},
	{2100000, 3160000, 0.05, 63400},
	{3160000, 5000000, 0.07, 126600},
	{5000000, 10000000, 0.10, 276600},
	{10000000, math.Inf(1), 0.15, 776600},
}

type Period int

const (
	Monthly Period = iota
	Yearly
)

// IncomeTax is the monthly withholding for a salary with the given number
// of dependents, the earner included.
func IncomeTax(monthly float64, dependents int) float64 {
	taxable := math.Max(0, monthly-float64(dependents-1)*DependentDeduction)
	for _, b := range taxTable {
		if taxable >= b.min && taxable < b.max {
			return math.Max(0, taxable*b.rate-b.deduction)
		}
	}
	return 0
}

type Payslip struct {
	Gross        float64
	Pension      float64
	Health       float64
	LongTermCare float64
	Employment   float64
	IncomeTax    float64
	LocalTax     float64
	Deductions   float64
	Net          float64
}

// Salary computes the monthly payslip for gross paid per period. Fewer than
// one dependent counts as one.
func Salary(gross float64, period Period, dependents int) Payslip {
	if dependents < 1 {
		dependents = 1
	}
	monthly := gross
	if period == Yearly {
		monthly = gross / 12
	}
	if monthly == 0 {
		return Payslip{}
	}
	p := Payslip{
		Gross:      monthly,
		Pension:    math.Min(monthly*PensionRate, PensionCap),
		Health:     monthly * HealthRate,
		Employment: monthly * EmploymentRate,
		IncomeTax:  IncomeTax(monthly, dependents),
	}
	p.LongTermCare = p.Health * LongTermCareRate
	p.LocalTax = p.IncomeTax * LocalTaxRate
	p.Deductions = p.Pension + p.Health + p.LongTermCare + p.Employment + p.IncomeTax + p.LocalTax
	p.Net = monthly - p.Deductions
	return p
}
