package btree

import (
	"testing"

	kverrors "github.com/bobboyms/kvtable/pkg/errors"
	"github.com/bobboyms/kvtable/pkg/types"
)

func TestRoot_InsertFindManyKeysSmallFanOut(t *testing.T) {
	r := New[int](2)

	const n = 50
	for i := 0; i < n; i++ {
		if err := r.Insert(types.IntKey(i), i*i, false); err != nil {
			t.Fatalf("insert(%d): %v", i, err)
		}
	}

	for i := 0; i < n; i++ {
		v, ok := r.Find(types.IntKey(i))
		if !ok || v != i*i {
			t.Fatalf("find(%d) = %v, %v, want %d", i, v, ok, i*i)
		}
	}

	if _, ok := r.Find(types.IntKey(n + 1)); ok {
		t.Fatalf("find(%d) unexpectedly found", n+1)
	}
}

func TestRoot_InsertOutOfOrder(t *testing.T) {
	r := New[string](3)
	order := []int{42, 7, 99, 1, 55, 23, 8, 16, 4}
	for _, k := range order {
		if err := r.Insert(types.IntKey(k), "v", false); err != nil {
			t.Fatalf("insert(%d): %v", k, err)
		}
	}

	pairs := r.Collect()
	if len(pairs) != len(order) {
		t.Fatalf("collect returned %d pairs, want %d", len(pairs), len(order))
	}
	for i := 1; i < len(pairs); i++ {
		if pairs[i-1].Key.Compare(pairs[i].Key) >= 0 {
			t.Fatalf("collect not in ascending order at index %d: %v", i, pairs)
		}
	}
}

func TestRoot_DuplicateInsertFailsWithoutUpsert(t *testing.T) {
	r := New[string](4)
	if err := r.Insert(types.IntKey(1), "a", false); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := r.Insert(types.IntKey(1), "b", false)
	if _, ok := err.(*kverrors.DuplicateKeyError); !ok {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}
}

func TestRoot_DuplicateInsertWithUpsertReplaces(t *testing.T) {
	r := New[string](4)
	if err := r.Insert(types.IntKey(1), "a", false); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := r.Insert(types.IntKey(1), "b", true); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	v, _ := r.Find(types.IntKey(1))
	if v != "b" {
		t.Fatalf("got %v, want b", v)
	}
}

func TestRoot_UpdateAndRemove(t *testing.T) {
	r := New[int](2)
	for i := 0; i < 20; i++ {
		r.Insert(types.IntKey(i), i, false)
	}

	if err := r.Update(types.IntKey(10), 1000); err != nil {
		t.Fatalf("update: %v", err)
	}
	if v, _ := r.Find(types.IntKey(10)); v != 1000 {
		t.Fatalf("update did not take effect: %v", v)
	}

	if err := r.Remove(types.IntKey(10)); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := r.Find(types.IntKey(10)); ok {
		t.Fatalf("key still present after remove")
	}

	if err := r.Update(types.IntKey(10), 1); err == nil {
		t.Fatalf("expected NotFoundError updating a removed key")
	}
	if err := r.Remove(types.IntKey(10)); err == nil {
		t.Fatalf("expected NotFoundError removing an already-removed key")
	}
}

func TestRoot_RemoveDoesNotMergeNodes(t *testing.T) {
	// Removing every key from a leaf must not collapse it: invariant is
	// that only a snapshot rebuild ever shrinks the tree's shape.
	r := New[int](2)
	for i := 0; i < 10; i++ {
		r.Insert(types.IntKey(i), i, false)
	}
	for i := 0; i < 10; i++ {
		if err := r.Remove(types.IntKey(i)); err != nil {
			t.Fatalf("remove(%d): %v", i, err)
		}
	}
	if pairs := r.Collect(); len(pairs) != 0 {
		t.Fatalf("collect after removing everything = %v, want empty", pairs)
	}
	// The tree must still accept new inserts post-drain.
	if err := r.Insert(types.IntKey(100), 100, false); err != nil {
		t.Fatalf("insert after drain: %v", err)
	}
}

func TestRoot_GrowsDepthOnOverflow(t *testing.T) {
	r := New[int](1)
	for i := 0; i < 10; i++ {
		if err := r.Insert(types.IntKey(i), i, false); err != nil {
			t.Fatalf("insert(%d): %v", i, err)
		}
	}
	if len(r.inner.children) < 2 {
		t.Fatalf("root's top level should have grown past a single child")
	}
	for i := 0; i < 10; i++ {
		v, ok := r.Find(types.IntKey(i))
		if !ok || v != i {
			t.Fatalf("find(%d) = %v, %v", i, v, ok)
		}
	}
}

func TestRoot_FindUpdateRemoveOnEmptyTree(t *testing.T) {
	r := New[int](4)
	if _, ok := r.Find(types.IntKey(1)); ok {
		t.Fatalf("find on empty tree unexpectedly found")
	}
	if err := r.Update(types.IntKey(1), 1); err == nil {
		t.Fatalf("expected NotFoundError updating an empty tree")
	}
	if err := r.Remove(types.IntKey(1)); err == nil {
		t.Fatalf("expected NotFoundError removing from an empty tree")
	}
}

func TestNewDefault_UsesDefaultFanOut(t *testing.T) {
	r := NewDefault[int]()
	if r.FanOut() != DefaultFanOut {
		t.Fatalf("FanOut() = %d, want %d", r.FanOut(), DefaultFanOut)
	}
}
