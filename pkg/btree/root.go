package btree

import "github.com/bobboyms/kvtable/pkg/types"

// Root is the externally visible ordered index: one intermediate node plus
// the fan-out it was built with. Depth only ever grows at the root, when
// the top intermediate itself overflows.
type Root[V any] struct {
	fanOut int
	inner  *intermediate[V]
}

// New builds an empty index with the given fan-out. fanOut must be >= 1.
func New[V any](fanOut int) *Root[V] {
	return &Root[V]{
		fanOut: fanOut,
		inner:  newIntermediate[V](fanOut),
	}
}

// NewDefault builds an empty index using DefaultFanOut.
func NewDefault[V any]() *Root[V] {
	return New[V](DefaultFanOut)
}

// FanOut reports the fan-out this index was built with. It never changes
// over the index's lifetime.
func (r *Root[V]) FanOut() int {
	return r.fanOut
}

// Find returns the value stored under key, if any.
func (r *Root[V]) Find(key types.Comparable) (V, bool) {
	return r.inner.find(key)
}

// Insert places value under key. With allowUpsert false, inserting over an
// existing key fails with *errors.DuplicateKeyError.
func (r *Root[V]) Insert(key types.Comparable, value V, allowUpsert bool) error {
	split, err := r.inner.insert(key, value, allowUpsert)
	if err != nil {
		return err
	}
	if split != nil {
		old := r.inner
		newRoot := newIntermediate[V](r.fanOut)
		newRoot.seps = []types.Comparable{split.loLastKey, split.hiLastKey}
		newRoot.children = []node[V]{old, split.hiNode}
		r.inner = newRoot
	}
	return nil
}

// Update replaces the value stored under key, failing with
// *errors.NotFoundError if key is absent.
func (r *Root[V]) Update(key types.Comparable, value V) error {
	return r.inner.update(key, value)
}

// Remove deletes key from the index, failing with *errors.NotFoundError if
// it is absent. Removal never merges or rebalances nodes: an emptied leaf
// is left in place until the next snapshot rebuild.
func (r *Root[V]) Remove(key types.Comparable) error {
	return r.inner.remove(key)
}

// Collect returns every key/value pair in ascending key order.
func (r *Root[V]) Collect() []Pair[V] {
	var out []Pair[V]
	r.inner.collect(&out)
	return out
}
