package types

import (
	"math"
	"math/big"
	"testing"
)

func TestPrimitive_SameVariantOrdering(t *testing.T) {
	cases := []struct {
		name     string
		a, b     Primitive
		wantSign int
	}{
		{"bool false<true", NewBoolean(false), NewBoolean(true), -1},
		{"bool equal", NewBoolean(true), NewBoolean(true), 0},
		{"int less", NewInteger(1), NewInteger(2), -1},
		{"int equal", NewInteger(5), NewInteger(5), 0},
		{"string less", NewString("a"), NewString("b"), -1},
		{"string equal", NewString("x"), NewString("x"), 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.a.Compare(c.b)
			if sign(got) != c.wantSign {
				t.Fatalf("Compare = %d, want sign %d", got, c.wantSign)
			}
		})
	}

	f1, ok := NewFloat(1.5)
	if !ok {
		t.Fatalf("NewFloat(1.5) rejected")
	}
	f2, ok := NewFloat(2.5)
	if !ok {
		t.Fatalf("NewFloat(2.5) rejected")
	}
	if f1.Compare(f2) >= 0 {
		t.Fatalf("1.5 should compare less than 2.5")
	}
}

func TestPrimitive_NaNRejected(t *testing.T) {
	nan := math.NaN()
	if _, ok := NewFloat(nan); ok {
		t.Fatalf("NewFloat(NaN) should be rejected")
	}
}

func TestPrimitive_CrossVariantOrderingIsNeverEqual(t *testing.T) {
	// The original implementation's Ord impl returned Equal across
	// variants, breaking transitivity. Every cross-variant comparison here
	// must return a strict, antisymmetric result instead.
	values := []Primitive{
		NewBoolean(true),
		NewInteger(0),
		mustFloat(t, 0),
		NewString(""),
	}

	for i := range values {
		for j := range values {
			if i == j {
				continue
			}
			got := values[i].Compare(values[j])
			if got == 0 {
				t.Fatalf("values[%d].Compare(values[%d]) = 0, want non-zero across distinct variants", i, j)
			}
			if sign(got) != -sign(values[j].Compare(values[i])) {
				t.Fatalf("Compare is not antisymmetric for %d,%d", i, j)
			}
		}
	}
}

func TestPrimitive_VariantOrderIsBoolIntFloatString(t *testing.T) {
	b := NewBoolean(true)
	i := NewInteger(0)
	f := mustFloat(t, 0)
	s := NewString("")

	if b.Compare(i) >= 0 {
		t.Fatalf("Boolean should sort before Integer")
	}
	if i.Compare(f) >= 0 {
		t.Fatalf("Integer should sort before Float")
	}
	if f.Compare(s) >= 0 {
		t.Fatalf("Float should sort before String")
	}
}

func TestPrimitive_BigIntegerRoundTrip(t *testing.T) {
	big128, ok := new(big.Int).SetString("170141183460469231731687303715884105727", 10)
	if !ok {
		t.Fatalf("failed to parse big literal")
	}
	p := NewBigInteger(big128)

	got, ok := p.Integer()
	if !ok {
		t.Fatalf("Integer() ok=false for an Integer primitive")
	}
	if got.Cmp(big128) != 0 {
		t.Fatalf("got %s, want %s", got.String(), big128.String())
	}
}

func TestPrimitive_AccessorsReportWrongVariant(t *testing.T) {
	s := NewString("hi")
	if _, ok := s.Integer(); ok {
		t.Fatalf("Integer() should report ok=false on a String primitive")
	}
	if _, ok := s.Boolean(); ok {
		t.Fatalf("Boolean() should report ok=false on a String primitive")
	}
	if _, ok := s.Float(); ok {
		t.Fatalf("Float() should report ok=false on a String primitive")
	}
	if v, ok := s.Str(); !ok || v != "hi" {
		t.Fatalf("Str() = %v, %v, want hi, true", v, ok)
	}
}

func TestPrimitive_String(t *testing.T) {
	if NewString("x").String() == "" {
		t.Fatalf("String() returned empty")
	}
	if NewInteger(1).String() == "" {
		t.Fatalf("String() returned empty")
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func mustFloat(t *testing.T, f float64) Primitive {
	t.Helper()
	p, ok := NewFloat(f)
	if !ok {
		t.Fatalf("NewFloat(%v) rejected", f)
	}
	return p
}
