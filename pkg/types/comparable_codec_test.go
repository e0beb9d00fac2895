package types

import (
	"testing"
	"time"
)

func TestMarshalComparable_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Round(time.Second)
	cases := []Comparable{
		IntKey(42),
		VarcharKey("hello"),
		FloatKey(3.5),
		BoolKey(true),
		DateKey(now),
	}

	for _, k := range cases {
		data, err := MarshalComparable(k)
		if err != nil {
			t.Fatalf("MarshalComparable(%v): %v", k, err)
		}
		got, err := UnmarshalComparable(data)
		if err != nil {
			t.Fatalf("UnmarshalComparable(%s): %v", data, err)
		}
		if got.Compare(k) != 0 {
			t.Fatalf("round trip mismatch: got %v, want %v", got, k)
		}
	}
}

func TestUnmarshalComparable_UnknownType(t *testing.T) {
	if _, err := UnmarshalComparable([]byte(`{"type":"mystery","value":"x"}`)); err == nil {
		t.Fatalf("expected an error for an unknown wire type")
	}
}
