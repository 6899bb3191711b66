package types

import (
	"math/big"

	"svfront/token"
)

// Value is the constant-value representation getDefaultValue hands back. A
// zero Value with all fields empty is the default for a Void/Error type,
// which has no meaningful default.
type Value struct {
	Int      *token.IntValue // integral default (all-x or zero), reuses the lexer's literal representation
	Real     float64
	Str      string
	IsNull   bool // Null/CHandle/Event's default
	Elements []Value
}

// GetDefaultValue implements spec.md §4.5's "Default values" rule and is
// part of the §6 Downstream interface: integral defaults to all-x when
// four-state and zero otherwise, floating defaults to 0.0, an enum defers to
// its base type, Null/CHandle/Event get a null placeholder, and any
// remaining aggregate (unpacked array/struct/union — packed composites are
// integral and handled above) defaults elementwise.
func (m *Model) GetDefaultValue(t *Type) Value {
	c := Canonical(t)
	switch {
	case c.IsEnum():
		return m.GetDefaultValue(c.EnumBase)
	case c.IsIntegral():
		return defaultIntegralValue(c.BitWidth(), c.IsSigned(), c.IsFourState())
	case c.IsFloating():
		return Value{Real: 0.0}
	case c.Kind == KindString:
		return Value{Str: ""}
	case c.Kind == KindNull, c.Kind == KindCHandle, c.Kind == KindEvent:
		return Value{IsNull: true}
	case c.Kind == KindUnpackedArray:
		elemDefault := m.GetDefaultValue(c.Element)
		elems := make([]Value, c.Dim.Width())
		for i := range elems {
			elems[i] = elemDefault
		}
		return Value{Elements: elems}
	case c.Kind == KindUnpackedStruct, c.Kind == KindUnpackedUnion:
		elems := make([]Value, len(c.Members))
		for i, f := range c.Members {
			elems[i] = m.GetDefaultValue(f.Type)
		}
		return Value{Elements: elems}
	default:
		return Value{}
	}
}

// defaultIntegralValue builds the all-x (four-state) or all-zero (two-state)
// default for a width-bit integral, matching IntValue's representation of a
// literal: Bits holds known 0/1 bits, XZMask marks unknown positions, ZMask
// is the subset of those that are z rather than x. An all-x default has
// every bit unknown and none of them z.
func defaultIntegralValue(width int, signed, fourState bool) Value {
	iv := &token.IntValue{Bits: big.NewInt(0), Width: width, Signed: signed, FourState: fourState}
	if fourState && width > 0 {
		iv.XZMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	}
	return Value{Int: iv}
}
