// Package table aggregates one primary ordered index with a name-keyed set
// of secondary indexes (spec.md §4.G). The table itself is passive: it only
// hands out references to its indexes. All mutation happens through a
// transaction (package txn).
package table

import (
	"github.com/bobboyms/kvtable/pkg/btree"
	"github.com/bobboyms/kvtable/pkg/errors"
	"github.com/bobboyms/kvtable/pkg/secondary"
)

// Table bundles a primary btree.Root with zero or more named secondary
// indexes over the same value type.
type Table[V any] struct {
	fanOut   int
	primary  *btree.Root[V]
	indexes  map[string]*secondary.Index[V]
	inFlight bool
}

// New builds an empty table with no secondary indexes.
func New[V any](fanOut int) *Table[V] {
	return &Table[V]{
		fanOut:  fanOut,
		primary: btree.New[V](fanOut),
		indexes: make(map[string]*secondary.Index[V]),
	}
}

// NewWithSecondaryIndexes builds an empty table and registers idx under
// their own names. Two indexes sharing a name fail with
// *errors.IndexAlreadyExistsError.
func NewWithSecondaryIndexes[V any](fanOut int, idx ...*secondary.Index[V]) (*Table[V], error) {
	t := New[V](fanOut)
	for _, ix := range idx {
		if _, exists := t.indexes[ix.Name()]; exists {
			return nil, &errors.IndexAlreadyExistsError{Name: ix.Name()}
		}
		t.indexes[ix.Name()] = ix
	}
	return t, nil
}

// FanOut reports the fan-out this table's primary index was built with.
func (t *Table[V]) FanOut() int {
	return t.fanOut
}

// Primary returns the table's primary ordered index.
func (t *Table[V]) Primary() *btree.Root[V] {
	return t.primary
}

// Index looks up a secondary index by name, failing with
// *errors.IndexNotFoundError if none is registered under it.
func (t *Table[V]) Index(name string) (*secondary.Index[V], error) {
	ix, ok := t.indexes[name]
	if !ok {
		return nil, &errors.IndexNotFoundError{Name: name}
	}
	return ix, nil
}

// Indexes returns every registered secondary index, keyed by name. Callers
// must treat the returned map as read-only.
func (t *Table[V]) Indexes() map[string]*secondary.Index[V] {
	return t.indexes
}

// TryBeginTxn marks the table as having a transaction in flight, failing
// with *errors.TransactionInFlightError if one already is.
//
// This stands in for the exclusive borrow a transaction holds in the
// original Rust implementation: the core has no concurrency control, so
// this is a single best-effort guard against a second concurrent
// transaction on the same table, not a general-purpose lock. Only package
// txn should call it.
func (t *Table[V]) TryBeginTxn() error {
	if t.inFlight {
		return &errors.TransactionInFlightError{}
	}
	t.inFlight = true
	return nil
}

// EndTxn clears the in-flight marker set by TryBeginTxn. Only package txn
// should call it.
func (t *Table[V]) EndTxn() {
	t.inFlight = false
}
