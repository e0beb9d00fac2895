package btree

import (
	"fmt"
	"sort"

	kverrors "github.com/bobboyms/kvtable/pkg/errors"
	"github.com/bobboyms/kvtable/pkg/types"
)

// intermediate fans out to up to n+1 children, each guarded by a separator
// that is the maximum key reachable through it (not the minimum of the
// next child, as a classic B+-tree would do).
type intermediate[V any] struct {
	n        int
	seps     []types.Comparable
	children []node[V]
}

func newIntermediate[V any](n int) *intermediate[V] {
	return &intermediate[V]{n: n}
}

// childIndex returns the first separator index >= probe, or len(seps) if
// probe exceeds every separator. A result of len(seps) means "route to the
// last child": the rightmost child's dominion extends upward so probes
// above the current maximum always land somewhere.
func (in *intermediate[V]) childIndex(probe types.Comparable) int {
	return sort.Search(len(in.seps), func(i int) bool {
		return in.seps[i].Compare(probe) >= 0
	})
}

// dispatch resolves childIndex to an actual slot, clamping to the last
// child when the probe is above every separator. ok is false only when the
// node has no children at all.
func (in *intermediate[V]) dispatch(key types.Comparable) (slot int, ok bool) {
	if len(in.children) == 0 {
		return 0, false
	}
	idx := in.childIndex(key)
	if idx == len(in.children) {
		idx = len(in.children) - 1
	}
	return idx, true
}

func (in *intermediate[V]) find(key types.Comparable) (V, bool) {
	slot, ok := in.dispatch(key)
	if !ok {
		var zero V
		return zero, false
	}
	return in.children[slot].find(key)
}

func (in *intermediate[V]) insert(key types.Comparable, value V, allowUpsert bool) (*splitResult[V], error) {
	if len(in.children) == 0 {
		// A fresh root seeds itself with a single leaf on its first insert.
		l := newLeaf[V](in.n)
		l.keys = []types.Comparable{key}
		l.values = []V{value}
		in.seps = []types.Comparable{key}
		in.children = []node[V]{l}
		return nil, nil
	}

	slot, _ := in.dispatch(key)
	split, err := in.children[slot].insert(key, value, allowUpsert)
	in.seps[slot] = maxKey(in.seps[slot], key)
	if err != nil {
		return nil, err
	}
	if split == nil {
		return nil, nil
	}

	in.seps[slot] = split.loLastKey
	insertAt := slot + 1
	in.seps = append(in.seps, nil)
	copy(in.seps[insertAt+1:], in.seps[insertAt:])
	in.seps[insertAt] = split.hiLastKey

	in.children = append(in.children, nil)
	copy(in.children[insertAt+1:], in.children[insertAt:])
	in.children[insertAt] = split.hiNode

	if len(in.children) > in.n+1 {
		return in.split(), nil
	}
	return nil, nil
}

// split mirrors leaf.split at the child-array level: right half =
// (len+1)/2 onward, left half keeps the rest.
func (in *intermediate[V]) split() *splitResult[V] {
	mid := (len(in.children) + 1) / 2

	hiSeps := append([]types.Comparable(nil), in.seps[mid:]...)
	hiChildren := append([]node[V](nil), in.children[mid:]...)
	in.seps = in.seps[:mid]
	in.children = in.children[:mid]

	hi := &intermediate[V]{n: in.n, seps: hiSeps, children: hiChildren}

	return &splitResult[V]{
		loLastKey: in.seps[len(in.seps)-1],
		hiLastKey: hi.seps[len(hi.seps)-1],
		hiNode:    hi,
	}
}

func (in *intermediate[V]) update(key types.Comparable, value V) error {
	slot, ok := in.dispatch(key)
	if !ok {
		return &kverrors.NotFoundError{Key: fmt.Sprint(key)}
	}
	return in.children[slot].update(key, value)
}

func (in *intermediate[V]) remove(key types.Comparable) error {
	slot, ok := in.dispatch(key)
	if !ok {
		return &kverrors.NotFoundError{Key: fmt.Sprint(key)}
	}
	return in.children[slot].remove(key)
}

func (in *intermediate[V]) collect(out *[]Pair[V]) {
	for _, c := range in.children {
		c.collect(out)
	}
}
