package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// comparableWire is the JSON wire shape for a Comparable primary key: every
// concrete key type the engine ships travels as a tagged decimal/text
// string, the same approach Primitive uses for its own wire format.
type comparableWire struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// MarshalComparable encodes one of the engine's built-in key types
// (IntKey, VarcharKey, FloatKey, BoolKey, DateKey) for storage in a WAL
// record. A caller-defined Comparable type is not supported here: anything
// that needs to survive a commit record must be one of the five built-ins.
func MarshalComparable(k Comparable) ([]byte, error) {
	var w comparableWire
	switch v := k.(type) {
	case IntKey:
		w = comparableWire{Type: "int", Value: strconv.Itoa(int(v))}
	case VarcharKey:
		w = comparableWire{Type: "varchar", Value: string(v)}
	case FloatKey:
		w = comparableWire{Type: "float", Value: strconv.FormatFloat(float64(v), 'g', -1, 64)}
	case BoolKey:
		w = comparableWire{Type: "bool", Value: strconv.FormatBool(bool(v))}
	case DateKey:
		w = comparableWire{Type: "date", Value: time.Time(v).Format(time.RFC3339Nano)}
	default:
		return nil, fmt.Errorf("types: %T does not implement a known Comparable wire encoding", k)
	}
	return json.Marshal(w)
}

// UnmarshalComparable is the inverse of MarshalComparable.
func UnmarshalComparable(data []byte) (Comparable, error) {
	var w comparableWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("types: decode comparable wire shape: %w", err)
	}

	switch w.Type {
	case "int":
		n, err := strconv.Atoi(w.Value)
		if err != nil {
			return nil, fmt.Errorf("types: invalid int key %q: %w", w.Value, err)
		}
		return IntKey(n), nil
	case "varchar":
		return VarcharKey(w.Value), nil
	case "float":
		f, err := strconv.ParseFloat(w.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("types: invalid float key %q: %w", w.Value, err)
		}
		return FloatKey(f), nil
	case "bool":
		b, err := strconv.ParseBool(w.Value)
		if err != nil {
			return nil, fmt.Errorf("types: invalid bool key %q: %w", w.Value, err)
		}
		return BoolKey(b), nil
	case "date":
		t, err := time.Parse(time.RFC3339Nano, w.Value)
		if err != nil {
			return nil, fmt.Errorf("types: invalid date key %q: %w", w.Value, err)
		}
		return DateKey(t), nil
	default:
		return nil, fmt.Errorf("types: unknown comparable wire type %q", w.Type)
	}
}
