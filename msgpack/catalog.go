package unitconvmsgpack

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"unitconv"
)

type Catalog struct {
	Version    int        `msgpack:"version"`
	DatetimeMs int64      `msgpack:"date,omitempty"`
	Categories []Category `msgpack:"categories,omitempty"`
}

type Category struct {
	Key   string `msgpack:"key"`
	Name  string `msgpack:"name,omitempty"`
	Icon  string `msgpack:"icon,omitempty"`
	Note  string `msgpack:"note,omitempty"`
	Kind  string `msgpack:"kind"`
	Rule  string `msgpack:"rule,omitempty"`
	Units []Unit `msgpack:"units,omitempty"`
}

type Unit struct {
	Key    string  `msgpack:"key"`
	Name   string  `msgpack:"name,omitempty"`
	ToBase float64 `msgpack:"to_base,omitempty"`
}

const snapshotVersion = 1

func NewCatalog(cat *unitconv.Catalog, at time.Time) Catalog {
	out := Catalog{Version: snapshotVersion, DatetimeMs: at.UnixMilli()}
	for _, key := range cat.Categories() {
		c, err := cat.Category(key)
		if err != nil {
			continue
		}
		mc := Category{
			Key:  c.Key,
			Name: c.Name,
			Icon: c.Icon,
			Note: c.Note,
			Kind: c.Kind().String(),
			Rule: c.RuleName(),
		}
		for _, u := range c.Units {
			mc.Units = append(mc.Units, Unit{Key: u.Key, Name: u.Name, ToBase: u.ToBase})
		}
		out.Categories = append(out.Categories, mc)
	}
	return out
}

// ToCatalog validates the snapshot and resolves rule names.
func ToCatalog(snap *Catalog) (*unitconv.Catalog, error) {
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: snapshot version %d", unitconv.ErrInvalidCatalog, snap.Version)
	}
	cats := make([]unitconv.Category, 0, len(snap.Categories))
	for _, mc := range snap.Categories {
		units := make([]unitconv.Unit, 0, len(mc.Units))
		for _, u := range mc.Units {
			units = append(units, unitconv.Unit{Key: u.Key, Name: u.Name, ToBase: u.ToBase})
		}
		var c unitconv.Category
		switch mc.Kind {
		case unitconv.KindLinear.String():
			c = unitconv.Linear(mc.Key, mc.Name, units...)
		case unitconv.KindCustom.String():
			rule, err := unitconv.LookupRule(mc.Rule)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", mc.Key, err)
			}
			c = unitconv.Custom(mc.Key, mc.Name, mc.Rule, rule, units...)
		default:
			return nil, fmt.Errorf("%w: category %s has kind %q", unitconv.ErrInvalidCatalog, mc.Key, mc.Kind)
		}
		c.Icon = mc.Icon
		c.Note = mc.Note
		cats = append(cats, c)
	}
	return unitconv.NewCatalog(cats...)
}

func MarshalCatalog(cat *unitconv.Catalog) ([]byte, error) {
	snap := NewCatalog(cat, time.Now())
	return msgpack.Marshal(&snap)
}

func UnmarshalCatalog(data []byte) (*unitconv.Catalog, error) {
	var snap Catalog
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return ToCatalog(&snap)
}
