package unitconv

import (
	"math"
)

// Kind tells how a category converts between its units.
type Kind int

const (
	KindLinear Kind = iota
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Rule converts value from one unit key to another inside a custom category.
// Unit keys the rule does not know yield NaN.
type Rule func(value float64, from, to string) float64

type Unit struct {
	Key    string
	Name   string
	ToBase float64 // base units per one of this unit, linear categories only
}

type Category struct {
	Key   string
	Name  string
	Icon  string
	Note  string
	Units []Unit

	kind     Kind
	rule     Rule
	ruleName string
}

// Linear builds a category whose units all carry a ToBase factor.
func Linear(key, name string, units ...Unit) Category {
	return Category{
		Key:   key,
		Name:  name,
		Units: units,
		kind:  KindLinear,
	}
}

// Custom builds a category converted by rule. ruleName is how storage
// codecs refer to the rule, see LookupRule.
func Custom(key, name, ruleName string, rule Rule, units ...Unit) Category {
	return Category{
		Key:      key,
		Name:     name,
		Units:    units,
		kind:     KindCustom,
		rule:     rule,
		ruleName: ruleName,
	}
}

func (c Category) Kind() Kind       { return c.kind }
func (c Category) RuleName() string { return c.ruleName }

func (c Category) clone() Category {
	out := c
	out.Units = append([]Unit(nil), c.Units...)
	return out
}

func validFactor(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
