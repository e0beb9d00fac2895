package btree

import (
	"fmt"
	"sort"

	kverrors "github.com/bobboyms/kvtable/pkg/errors"
	"github.com/bobboyms/kvtable/pkg/types"
)

// leaf stores up to n key/value pairs in sorted order.
type leaf[V any] struct {
	n      int
	keys   []types.Comparable
	values []V
}

func newLeaf[V any](n int) *leaf[V] {
	return &leaf[V]{n: n}
}

// search returns the index of the first key >= probe, and whether that
// index is an exact match.
func (l *leaf[V]) search(probe types.Comparable) (idx int, exact bool) {
	idx = sort.Search(len(l.keys), func(i int) bool {
		return l.keys[i].Compare(probe) >= 0
	})
	exact = idx < len(l.keys) && l.keys[idx].Compare(probe) == 0
	return idx, exact
}

func (l *leaf[V]) find(key types.Comparable) (V, bool) {
	idx, exact := l.search(key)
	if !exact {
		var zero V
		return zero, false
	}
	return l.values[idx], true
}

func (l *leaf[V]) insert(key types.Comparable, value V, allowUpsert bool) (*splitResult[V], error) {
	idx, exact := l.search(key)

	var insertErr error
	if exact {
		if allowUpsert {
			l.values[idx] = value
		} else {
			insertErr = &kverrors.DuplicateKeyError{Key: fmt.Sprint(key)}
		}
	} else {
		l.keys = append(l.keys, nil)
		copy(l.keys[idx+1:], l.keys[idx:])
		l.keys[idx] = key

		var zero V
		l.values = append(l.values, zero)
		copy(l.values[idx+1:], l.values[idx:])
		l.values[idx] = value
	}

	if len(l.keys) > l.n {
		return l.split(), nil
	}
	return nil, insertErr
}

// split breaks this leaf into two at the midpoint, keeping the first half
// and returning the second half as a sibling. Split point is (len+1)/2: the
// left half keeps the extra element when the count is odd.
func (l *leaf[V]) split() *splitResult[V] {
	mid := (len(l.keys) + 1) / 2

	hiKeys := append([]types.Comparable(nil), l.keys[mid:]...)
	hiValues := append([]V(nil), l.values[mid:]...)
	l.keys = l.keys[:mid]
	l.values = l.values[:mid]

	hi := &leaf[V]{n: l.n, keys: hiKeys, values: hiValues}

	return &splitResult[V]{
		loLastKey: l.keys[len(l.keys)-1],
		hiLastKey: hi.keys[len(hi.keys)-1],
		hiNode:    hi,
	}
}

func (l *leaf[V]) update(key types.Comparable, value V) error {
	idx, exact := l.search(key)
	if !exact {
		return &kverrors.NotFoundError{Key: fmt.Sprint(key)}
	}
	l.values[idx] = value
	return nil
}

func (l *leaf[V]) remove(key types.Comparable) error {
	idx, exact := l.search(key)
	if !exact {
		return &kverrors.NotFoundError{Key: fmt.Sprint(key)}
	}
	l.keys = append(l.keys[:idx], l.keys[idx+1:]...)
	l.values = append(l.values[:idx], l.values[idx+1:]...)
	return nil
}

func (l *leaf[V]) collect(out *[]Pair[V]) {
	for i, k := range l.keys {
		*out = append(*out, Pair[V]{Key: k, Value: l.values[i]})
	}
}
