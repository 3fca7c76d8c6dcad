package unitconv

import (
	"fmt"
)

// Catalog is an immutable registry of categories. It is safe to share
// between goroutines; every accessor returns copies.
type Catalog struct {
	order      []string
	categories map[string]*entry
}

type entry struct {
	cat   Category
	index map[string]int // unit key -> position in cat.Units
}

// NewCatalog validates categories and freezes them in the given order.
func NewCatalog(categories ...Category) (*Catalog, error) {
	c := &Catalog{
		categories: make(map[string]*entry, len(categories)),
	}
	for _, cat := range categories {
		if _, dup := c.categories[cat.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, cat.Key)
		}
		e, err := newEntry(cat.clone())
		if err != nil {
			return nil, err
		}
		c.order = append(c.order, cat.Key)
		c.categories[cat.Key] = e
	}
	return c, nil
}

func newEntry(cat Category) (*entry, error) {
	if cat.Key == "" {
		return nil, fmt.Errorf("%w: category without key", ErrInvalidCatalog)
	}
	if len(cat.Units) == 0 {
		return nil, fmt.Errorf("%w: category %q has no units", ErrInvalidCatalog, cat.Key)
	}
	e := &entry{cat: cat, index: make(map[string]int, len(cat.Units))}
	bases := 0
	for i, u := range cat.Units {
		if u.Key == "" {
			return nil, fmt.Errorf("%w: category %q has a unit without key", ErrInvalidCatalog, cat.Key)
		}
		if _, dup := e.index[u.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate unit %q in category %q", ErrInvalidCatalog, u.Key, cat.Key)
		}
		e.index[u.Key] = i

		switch cat.kind {
		case KindLinear:
			if !validFactor(u.ToBase) {
				return nil, fmt.Errorf("%w: unit %s.%s has factor %v", ErrInvalidCatalog, cat.Key, u.Key, u.ToBase)
			}
			if u.ToBase == 1 {
				bases++
			}
		case KindCustom:
			if u.ToBase != 0 {
				return nil, fmt.Errorf("%w: unit %s.%s has a factor in a custom category", ErrInvalidCatalog, cat.Key, u.Key)
			}
		}
	}
	switch cat.kind {
	case KindLinear:
		if bases != 1 {
			return nil, fmt.Errorf("%w: category %q has %d base units, want 1", ErrInvalidCatalog, cat.Key, bases)
		}
	case KindCustom:
		if cat.rule == nil {
			return nil, fmt.Errorf("%w: custom category %q has no rule", ErrInvalidCatalog, cat.Key)
		}
	default:
		return nil, fmt.Errorf("%w: category %q has kind %v", ErrInvalidCatalog, cat.Key, cat.kind)
	}
	return e, nil
}

// Categories lists category keys in registration order.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.order...)
}

func (c *Catalog) Category(key string) (Category, error) {
	e, err := c.lookup(key)
	if err != nil {
		return Category{}, err
	}
	return e.cat.clone(), nil
}

func (c *Catalog) Units(category string) ([]Unit, error) {
	e, err := c.lookup(category)
	if err != nil {
		return nil, err
	}
	return append([]Unit(nil), e.cat.Units...), nil
}

func (c *Catalog) Unit(category, unit string) (Unit, error) {
	e, err := c.lookup(category)
	if err != nil {
		return Unit{}, err
	}
	return e.unit(unit)
}

func (c *Catalog) UnitName(category, unit string) (string, error) {
	u, err := c.Unit(category, unit)
	if err != nil {
		return "", err
	}
	return u.Name, nil
}

// With returns a copy of the catalog where cat replaces the category with
// the same key, or is appended when the key is new.
func (c *Catalog) With(cat Category) (*Catalog, error) {
	cats := make([]Category, 0, len(c.order)+1)
	replaced := false
	for _, key := range c.order {
		if key == cat.Key {
			cats = append(cats, cat)
			replaced = true
			continue
		}
		cats = append(cats, c.categories[key].cat)
	}
	if !replaced {
		cats = append(cats, cat)
	}
	return NewCatalog(cats...)
}

func (c *Catalog) lookup(key string) (*entry, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	e, ok := c.categories[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	return e, nil
}

func (e *entry) unit(key string) (Unit, error) {
	i, ok := e.index[key]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %q in category %q", ErrUnknownUnit, key, e.cat.Key)
	}
	return e.cat.Units[i], nil
}
