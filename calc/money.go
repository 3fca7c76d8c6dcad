package calc

type Tip struct {
	Tip       float64
	Total     float64
	PerPerson float64
}

// SplitTip adds rate percent to bill and splits the total between people.
// Fewer than one person counts as one.
func SplitTip(bill, rate float64, people int) Tip {
	if people < 1 {
		people = 1
	}
	tip := bill * (rate / 100)
	total := bill + tip
	return Tip{Tip: tip, Total: total, PerPerson: total / float64(people)}
}

// Discount returns the amount taken off price at rate percent and what is
// left to pay.
func Discount(price, rate float64) (amount, final float64) {
	amount = price * (rate / 100)
	return amount, price - amount
}
