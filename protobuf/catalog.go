// Package unitconvpb encodes catalog snapshots in the protobuf wire format.
// The messages are hand encoded with protowire and follow this schema:
//
//	message Catalog {
//	  int32 version = 1;
//	  int64 datetime_ms = 2;
//	  repeated Category categories = 3;
//	}
//	message Category {
//	  string key = 1;
//	  string name = 2;
//	  string icon = 3;
//	  string note = 4;
//	  string kind = 5;
//	  string rule = 6;
//	  repeated Unit units = 7;
//	}
//	message Unit {
//	  string key = 1;
//	  string name = 2;
//	  double to_base = 3;
//	}
package unitconvpb

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

type Catalog struct {
	Version    int32
	DatetimeMs int64
	Categories []*Category
}

type Category struct {
	Key   string
	Name  string
	Icon  string
	Note  string
	Kind  string
	Rule  string
	Units []*Unit
}

type Unit struct {
	Key    string
	Name   string
	ToBase float64
}

func (c *Catalog) Marshal() []byte {
	var b []byte
	if c.Version != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(c.Version)))
	}
	if c.DatetimeMs != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(c.DatetimeMs))
	}
	for _, cat := range c.Categories {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, cat.Marshal())
	}
	return b
}

func (c *Category) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, c.Key)
	b = appendString(b, 2, c.Name)
	b = appendString(b, 3, c.Icon)
	b = appendString(b, 4, c.Note)
	b = appendString(b, 5, c.Kind)
	b = appendString(b, 6, c.Rule)
	for _, u := range c.Units {
		b = protowire.AppendTag(b, 7, protowire.BytesType)
		b = protowire.AppendBytes(b, u.Marshal())
	}
	return b
}

func (u *Unit) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, u.Key)
	b = appendString(b, 2, u.Name)
	if u.ToBase != 0 {
		b = protowire.AppendTag(b, 3, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(u.ToBase))
	}
	return b
}

func (c *Catalog) Unmarshal(b []byte) error {
	*c = Catalog{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			c.Version = int32(v)
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			c.DatetimeMs = int64(v)
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			cat := &Category{}
			if err := cat.Unmarshal(v); err != nil {
				return 0, fmt.Errorf("category %d: %w", len(c.Categories), err)
			}
			c.Categories = append(c.Categories, cat)
			return n, nil
		}
		return 0, nil
	})
}

func (c *Category) Unmarshal(b []byte) error {
	*c = Category{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.BytesType {
			return 0, nil
		}
		var n int
		switch num {
		case 1:
			c.Key, n = protowire.ConsumeString(b)
		case 2:
			c.Name, n = protowire.ConsumeString(b)
		case 3:
			c.Icon, n = protowire.ConsumeString(b)
		case 4:
			c.Note, n = protowire.ConsumeString(b)
		case 5:
			c.Kind, n = protowire.ConsumeString(b)
		case 6:
			c.Rule, n = protowire.ConsumeString(b)
		case 7:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return m, nil
			}
			u := &Unit{}
			if err := u.Unmarshal(v); err != nil {
				return 0, fmt.Errorf("unit %d: %w", len(c.Units), err)
			}
			c.Units = append(c.Units, u)
			n = m
		}
		return n, nil
	})
}

func (u *Unit) Unmarshal(b []byte) error {
	*u = Unit{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			var n int
			u.Key, n = protowire.ConsumeString(b)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			var n int
			u.Name, n = protowire.ConsumeString(b)
			return n, nil
		case num == 3 && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			u.ToBase = math.Float64frombits(v)
			return n, nil
		}
		return 0, nil
	})
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// walkFields hands every field value in b to field, which returns how many
// bytes it consumed. Fields it leaves at 0 are skipped as unknown.
func walkFields(b []byte, field func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m, err := field(num, typ, b)
		if err != nil {
			return err
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}
