package txn

import "github.com/bobboyms/kvtable/pkg/types"

type requestKind int

const (
	reqInsert requestKind = iota
	reqUpdate
	reqRemove
)

// Request is one pending mutation to submit to Transaction.Exec.
type Request[V any] struct {
	kind  requestKind
	key   types.Comparable
	value V
}

// Insert builds a Request that inserts value under key, or updates it in
// place if key already has a committed row.
func Insert[V any](key types.Comparable, value V) Request[V] {
	return Request[V]{kind: reqInsert, key: key, value: value}
}

// Update builds a Request that replaces the value stored under key.
func Update[V any](key types.Comparable, value V) Request[V] {
	return Request[V]{kind: reqUpdate, key: key, value: value}
}

// Remove builds a Request that deletes key.
func Remove[V any](key types.Comparable) Request[V] {
	var zero V
	return Request[V]{kind: reqRemove, key: key, value: zero}
}
