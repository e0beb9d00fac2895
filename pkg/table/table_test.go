package table

import (
	"testing"

	"github.com/bobboyms/kvtable/pkg/errors"
	"github.com/bobboyms/kvtable/pkg/secondary"
	"github.com/bobboyms/kvtable/pkg/types"
)

func byValueIndex() *secondary.Index[string] {
	return secondary.New[string]("by_value", 4,
		func(v string) types.Primitive { return types.NewString(v) },
		func(k types.Primitive) bool { _, ok := k.Str(); return ok },
	)
}

func TestNew_EmptyTableHasNoIndexes(t *testing.T) {
	tb := New[string](10)
	if _, err := tb.Index("missing"); err == nil {
		t.Fatalf("expected IndexNotFoundError")
	}
	if len(tb.Indexes()) != 0 {
		t.Fatalf("expected no registered indexes")
	}
	if tb.FanOut() != 10 {
		t.Fatalf("FanOut() = %d, want 10", tb.FanOut())
	}
}

func TestNewWithSecondaryIndexes_Registers(t *testing.T) {
	ix := byValueIndex()
	tb, err := NewWithSecondaryIndexes[string](10, ix)
	if err != nil {
		t.Fatalf("NewWithSecondaryIndexes: %v", err)
	}
	got, err := tb.Index("by_value")
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if got != ix {
		t.Fatalf("Index returned a different instance")
	}
}

func TestNewWithSecondaryIndexes_DuplicateNameFails(t *testing.T) {
	_, err := NewWithSecondaryIndexes[string](10, byValueIndex(), byValueIndex())
	if _, ok := err.(*errors.IndexAlreadyExistsError); !ok {
		t.Fatalf("expected IndexAlreadyExistsError, got %v", err)
	}
}

func TestTable_TryBeginTxnRejectsSecondConcurrentTxn(t *testing.T) {
	tb := New[string](10)
	if err := tb.TryBeginTxn(); err != nil {
		t.Fatalf("first TryBeginTxn: %v", err)
	}
	if err := tb.TryBeginTxn(); err == nil {
		t.Fatalf("expected TransactionInFlightError on second TryBeginTxn")
	}
	tb.EndTxn()
	if err := tb.TryBeginTxn(); err != nil {
		t.Fatalf("TryBeginTxn after EndTxn: %v", err)
	}
}

func TestTable_PrimaryIsUsable(t *testing.T) {
	tb := New[string](10)
	if err := tb.Primary().Insert(types.IntKey(1), "a", false); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	v, ok := tb.Primary().Find(types.IntKey(1))
	if !ok || v != "a" {
		t.Fatalf("Find = %v, %v", v, ok)
	}
}
