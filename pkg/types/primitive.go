package types

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Variant tags a Primitive value. Order here is the cross-variant
// ordering used by Compare: Bool < Integer < Float < String.
type Variant int

const (
	VariantBoolean Variant = iota
	VariantInteger
	VariantFloat
	VariantString
)

func (v Variant) String() string {
	switch v {
	case VariantBoolean:
		return "Boolean"
	case VariantInteger:
		return "Integer"
	case VariantFloat:
		return "Float"
	case VariantString:
		return "String"
	default:
		return "Unknown"
	}
}

// Primitive is the tagged scalar used exclusively as a secondary-index
// key: one of Boolean, Integer (signed 128-bit), Float (64-bit, NaN
// rejected), or String.
//
// original_source/src/table/primitive.rs compares across variants with
// cmp::Ordering::Equal, which breaks the transitivity an Ord impl is
// supposed to guarantee (spec.md §9 flags this as a latent bug). This
// port picks the stable, documented fix instead: variant tag order first,
// same-variant natural order second.
type Primitive struct {
	tag Variant
	b   bool
	i   big.Int
	f   float64
	s   string
}

func NewBoolean(b bool) Primitive {
	return Primitive{tag: VariantBoolean, b: b}
}

func NewInteger(i int64) Primitive {
	p := Primitive{tag: VariantInteger}
	p.i.SetInt64(i)
	return p
}

// NewBigInteger builds an Integer Primitive from an arbitrary-precision
// value, covering the full signed 128-bit range the spec calls for.
func NewBigInteger(i *big.Int) Primitive {
	p := Primitive{tag: VariantInteger}
	p.i.Set(i)
	return p
}

// NewFloat builds a Float Primitive. NaN is rejected by returning ok=false:
// the spec requires NaN never appear in a Primitive (caller responsibility).
func NewFloat(f float64) (p Primitive, ok bool) {
	if f != f { // NaN check without importing math for one comparison
		return Primitive{}, false
	}
	return Primitive{tag: VariantFloat, f: f}, true
}

func NewString(s string) Primitive {
	return Primitive{tag: VariantString, s: s}
}

func (p Primitive) Variant() Variant { return p.tag }

func (p Primitive) Boolean() (bool, bool) {
	return p.b, p.tag == VariantBoolean
}

func (p Primitive) Integer() (*big.Int, bool) {
	if p.tag != VariantInteger {
		return nil, false
	}
	v := new(big.Int).Set(&p.i)
	return v, true
}

func (p Primitive) Float() (float64, bool) {
	return p.f, p.tag == VariantFloat
}

func (p Primitive) Str() (string, bool) {
	return p.s, p.tag == VariantString
}

// Compare implements the Comparable interface so a Primitive can be used
// directly as a btree key. Cross-variant comparisons order by variant tag
// (Boolean < Integer < Float < String), never "equal".
func (p Primitive) Compare(other Comparable) int {
	o := other.(Primitive)
	if p.tag != o.tag {
		if p.tag < o.tag {
			return -1
		}
		return 1
	}

	switch p.tag {
	case VariantBoolean:
		switch {
		case p.b == o.b:
			return 0
		case !p.b && o.b:
			return -1
		default:
			return 1
		}
	case VariantInteger:
		return p.i.Cmp(&o.i)
	case VariantFloat:
		switch {
		case p.f < o.f:
			return -1
		case p.f > o.f:
			return 1
		default:
			return 0
		}
	case VariantString:
		switch {
		case p.s < o.s:
			return -1
		case p.s > o.s:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// primitiveWire is the JSON wire shape for a Primitive. Integer travels as
// a decimal string so values outside the float64/int64 range survive the
// framer's JSON round trip intact.
type primitiveWire struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// MarshalJSON lets a Primitive travel through the record framer's JSON
// payloads unchanged, e.g. as a secondary index's selected key.
func (p Primitive) MarshalJSON() ([]byte, error) {
	w := primitiveWire{Type: p.tag.String()}
	switch p.tag {
	case VariantBoolean:
		w.Value = fmt.Sprintf("%v", p.b)
	case VariantInteger:
		w.Value = p.i.String()
	case VariantFloat:
		w.Value = fmt.Sprintf("%g", p.f)
	case VariantString:
		w.Value = p.s
	}
	return json.Marshal(w)
}

func (p *Primitive) UnmarshalJSON(data []byte) error {
	var w primitiveWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("primitive: %w", err)
	}

	switch w.Type {
	case VariantBoolean.String():
		*p = NewBoolean(w.Value == "true")
	case VariantInteger.String():
		i, ok := new(big.Int).SetString(w.Value, 10)
		if !ok {
			return fmt.Errorf("primitive: invalid integer literal %q", w.Value)
		}
		*p = NewBigInteger(i)
	case VariantFloat.String():
		var f float64
		if _, err := fmt.Sscanf(w.Value, "%g", &f); err != nil {
			return fmt.Errorf("primitive: invalid float literal %q: %w", w.Value, err)
		}
		pr, ok := NewFloat(f)
		if !ok {
			return fmt.Errorf("primitive: decoded NaN, which is never a valid Primitive")
		}
		*p = pr
	case VariantString.String():
		*p = NewString(w.Value)
	default:
		return fmt.Errorf("primitive: unknown variant %q", w.Type)
	}
	return nil
}

func (p Primitive) String() string {
	switch p.tag {
	case VariantBoolean:
		return fmt.Sprintf("Primitive::Boolean(%v)", p.b)
	case VariantInteger:
		return fmt.Sprintf("Primitive::Integer(%s)", p.i.String())
	case VariantFloat:
		return fmt.Sprintf("Primitive::Float(%v)", p.f)
	case VariantString:
		return fmt.Sprintf("Primitive::String(%q)", p.s)
	default:
		return "Primitive::Unknown"
	}
}
