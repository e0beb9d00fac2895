// Package secondary implements a secondary index over a table's primary
// values (spec.md §4.F): a selector projects a value to a Primitive key, a
// validator accepts or rejects Primitive probes that don't belong to this
// index's domain, and the index itself maps each selected key to the set of
// primary keys whose value currently selects to it.
//
// The original implementation mutates a found set through an unsafe
// pointer cast, because Rust's borrow checker won't let find() hand back a
// mutable reference. Go needs none of that: a map is already a reference
// type, so Root[V].Find(key) on V = map[types.Comparable]struct{} returns a
// handle that mutates the index in place with no unsafe code at all.
package secondary

import (
	"github.com/bobboyms/kvtable/pkg/btree"
	"github.com/bobboyms/kvtable/pkg/errors"
	"github.com/bobboyms/kvtable/pkg/types"
)

// Selector projects a stored value to the Primitive this index keys on.
type Selector[V any] func(value V) types.Primitive

// Validator reports whether a Primitive probe belongs to this index's
// domain (its "narrowed type" check, without a distinct Go type for it).
type Validator func(key types.Primitive) bool

// Index is one named secondary index over values of type V.
type Index[V any] struct {
	name      string
	tree      *btree.Root[map[types.Comparable]struct{}]
	selector  Selector[V]
	validator Validator
}

// New builds an empty secondary index. fanOut governs the index's own
// internal tree, independent of the table's primary fan-out.
func New[V any](name string, fanOut int, selector Selector[V], validator Validator) *Index[V] {
	return &Index[V]{
		name:      name,
		tree:      btree.New[map[types.Comparable]struct{}](fanOut),
		selector:  selector,
		validator: validator,
	}
}

func (ix *Index[V]) Name() string { return ix.name }

// Select projects value to the key this index would file it under.
func (ix *Index[V]) Select(value V) types.Primitive {
	return ix.selector(value)
}

// Validate reports whether key belongs to this index's domain.
func (ix *Index[V]) Validate(key types.Primitive) bool {
	return ix.validator(key)
}

// Find returns a snapshot of the primary-key set filed under key. An
// unrecognised key type fails with *errors.InvalidKeyTypeError; a key with
// no entries returns an empty, non-nil set.
func (ix *Index[V]) Find(key types.Primitive) (map[types.Comparable]struct{}, error) {
	if !ix.validator(key) {
		return nil, &errors.InvalidKeyTypeError{Name: ix.name, TypeName: key.Variant().String()}
	}
	set, ok := ix.tree.Find(key)
	if !ok {
		return map[types.Comparable]struct{}{}, nil
	}
	out := make(map[types.Comparable]struct{}, len(set))
	for k := range set {
		out[k] = struct{}{}
	}
	return out, nil
}

// AppendTo files primary under key, creating the set if this is its first
// member. Idempotent: appending an already-present primary is a no-op.
func (ix *Index[V]) AppendTo(key types.Primitive, primary types.Comparable) error {
	if !ix.validator(key) {
		return &errors.InvalidKeyTypeError{Name: ix.name, TypeName: key.Variant().String()}
	}
	if set, ok := ix.tree.Find(key); ok {
		set[primary] = struct{}{}
		return nil
	}
	return ix.tree.Insert(key, map[types.Comparable]struct{}{primary: {}}, false)
}

// RemoveFrom drops primary from the set filed under key, removing the
// entry entirely once its set goes empty. Removing an absent entry is a
// no-op, matching the table-level invariant that all present sets are
// non-empty.
func (ix *Index[V]) RemoveFrom(key types.Primitive, primary types.Comparable) error {
	if !ix.validator(key) {
		return &errors.InvalidKeyTypeError{Name: ix.name, TypeName: key.Variant().String()}
	}
	set, ok := ix.tree.Find(key)
	if !ok {
		return nil
	}
	delete(set, primary)
	if len(set) == 0 {
		return ix.tree.Remove(key)
	}
	return nil
}
