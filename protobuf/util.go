package unitconvpb

import (
	"fmt"
	"time"

	"unitconv"
)

const snapshotVersion = 1

func NewCatalog(cat *unitconv.Catalog, at time.Time) *Catalog {
	out := &Catalog{Version: snapshotVersion, DatetimeMs: at.UnixMilli()}
	for _, key := range cat.Categories() {
		c, err := cat.Category(key)
		if err != nil {
			continue
		}
		pc := &Category{
			Key:  c.Key,
			Name: c.Name,
			Icon: c.Icon,
			Note: c.Note,
			Kind: c.Kind().String(),
			Rule: c.RuleName(),
		}
		for _, u := range c.Units {
			pc.Units = append(pc.Units, &Unit{Key: u.Key, Name: u.Name, ToBase: u.ToBase})
		}
		out.Categories = append(out.Categories, pc)
	}
	return out
}

// ToCatalog validates the snapshot and resolves rule names.
func ToCatalog(snap *Catalog) (*unitconv.Catalog, error) {
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: snapshot version %d", unitconv.ErrInvalidCatalog, snap.Version)
	}
	cats := make([]unitconv.Category, 0, len(snap.Categories))
	for _, pc := range snap.Categories {
		units := make([]unitconv.Unit, 0, len(pc.Units))
		for _, u := range pc.Units {
			units = append(units, unitconv.Unit{Key: u.Key, Name: u.Name, ToBase: u.ToBase})
		}
		var c unitconv.Category
		switch pc.Kind {
		case unitconv.KindLinear.String():
			c = unitconv.Linear(pc.Key, pc.Name, units...)
		case unitconv.KindCustom.String():
			rule, err := unitconv.LookupRule(pc.Rule)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", pc.Key, err)
			}
			c = unitconv.Custom(pc.Key, pc.Name, pc.Rule, rule, units...)
		default:
			return nil, fmt.Errorf("%w: category %s has kind %q", unitconv.ErrInvalidCatalog, pc.Key, pc.Kind)
		}
		c.Icon = pc.Icon
		c.Note = pc.Note
		cats = append(cats, c)
	}
	return unitconv.NewCatalog(cats...)
}

func MarshalCatalog(cat *unitconv.Catalog) []byte {
	return NewCatalog(cat, time.Now()).Marshal()
}

func UnmarshalCatalog(data []byte) (*unitconv.Catalog, error) {
	var snap Catalog
	if err := snap.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: %v", unitconv.ErrInvalidCatalog, err)
	}
	return ToCatalog(&snap)
}
