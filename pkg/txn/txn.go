// Package txn implements the write-ahead transaction engine (spec.md §4.H):
// a transaction buffers its mutations in an in-memory write-set, serves
// reads from that write-set first, and only touches the table itself at
// commit, in the strict order validate -> write WAL record -> apply.
package txn

import (
	"fmt"

	"github.com/bobboyms/kvtable/pkg/errors"
	"github.com/bobboyms/kvtable/pkg/frame"
	"github.com/bobboyms/kvtable/pkg/table"
	"github.com/bobboyms/kvtable/pkg/types"
)

type opTag int

const (
	opInsert opTag = iota
	opUpdate
	opRemove
)

func (t opTag) String() string {
	switch t {
	case opInsert:
		return "insert"
	case opUpdate:
		return "update"
	case opRemove:
		return "remove"
	default:
		return "unknown"
	}
}

type pendingOp[V any] struct {
	tag   opTag
	value V
}

// Transaction borrows a table exclusively (enforced via
// table.TryBeginTxn/EndTxn) for its entire lifetime: from New through
// whichever of Commit or Abort ends it.
type Transaction[V any] struct {
	table    *table.Table[V]
	writeSet map[types.Comparable]pendingOp[V]

	// Verbose, when set, makes Commit print the validation error if commit
	// validation fails, in the same bare fmt.Printf style the original
	// engine uses for its recovery and vacuum passes.
	Verbose bool
}

// New starts a transaction against t. It fails with
// *errors.TransactionInFlightError if t already has one in flight.
func New[V any](t *table.Table[V]) (*Transaction[V], error) {
	if err := t.TryBeginTxn(); err != nil {
		return nil, err
	}
	return &Transaction[V]{
		table:    t,
		writeSet: make(map[types.Comparable]pendingOp[V]),
	}, nil
}

// Exec buffers req into the write-set. The rewrite rules guarantee the
// pending tag is always commit-valid: Insert means no committed row
// exists, Update/Remove mean one does (as last observed by this
// transaction).
func (tx *Transaction[V]) Exec(req Request[V]) error {
	switch req.kind {
	case reqInsert:
		tx.execInsert(req.key, req.value)
	case reqUpdate:
		tx.execUpdate(req.key, req.value)
	case reqRemove:
		tx.execRemove(req.key)
	}
	return nil
}

func (tx *Transaction[V]) execInsert(key types.Comparable, value V) {
	if op, ok := tx.writeSet[key]; ok {
		switch op.tag {
		case opInsert, opUpdate:
			op.value = value
		case opRemove:
			op.tag = opUpdate
			op.value = value
		}
		tx.writeSet[key] = op
		return
	}

	if _, found := tx.table.Primary().Find(key); found {
		tx.writeSet[key] = pendingOp[V]{tag: opUpdate, value: value}
	} else {
		tx.writeSet[key] = pendingOp[V]{tag: opInsert, value: value}
	}
}

func (tx *Transaction[V]) execUpdate(key types.Comparable, value V) {
	if op, ok := tx.writeSet[key]; ok {
		switch op.tag {
		case opInsert, opUpdate:
			op.value = value
		case opRemove:
			op.tag = opUpdate
			op.value = value
		}
		tx.writeSet[key] = op
		return
	}
	tx.writeSet[key] = pendingOp[V]{tag: opUpdate, value: value}
}

func (tx *Transaction[V]) execRemove(key types.Comparable) {
	if op, ok := tx.writeSet[key]; ok && op.tag == opInsert {
		delete(tx.writeSet, key)
		return
	}
	tx.writeSet[key] = pendingOp[V]{tag: opRemove}
}

// Find reads key, consulting the write-set before the committed primary
// index.
func (tx *Transaction[V]) Find(key types.Comparable) (V, bool) {
	if op, ok := tx.writeSet[key]; ok {
		if op.tag == opRemove {
			var zero V
			return zero, false
		}
		return op.value, true
	}
	return tx.table.Primary().Find(key)
}

// Select resolves a secondary index lookup, layering the pending write-set
// over the committed index so uncommitted inserts, updates, and removes
// are reflected without touching the index itself.
func (tx *Transaction[V]) Select(indexName string, key types.Primitive) (map[types.Comparable]struct{}, error) {
	ix, err := tx.table.Index(indexName)
	if err != nil {
		return nil, err
	}

	committed, err := ix.Find(key)
	if err != nil {
		return nil, err
	}

	result := make(map[types.Comparable]struct{}, len(committed))
	for k := range committed {
		result[k] = struct{}{}
	}

	for k := range result {
		op, ok := tx.writeSet[k]
		if !ok {
			continue
		}
		if op.tag == opRemove || ix.Select(op.value).Compare(key) != 0 {
			delete(result, k)
		}
	}

	for k, op := range tx.writeSet {
		if op.tag == opRemove {
			continue
		}
		if ix.Select(op.value).Compare(key) == 0 {
			result[k] = struct{}{}
		}
	}

	return result, nil
}

// Abort discards the write-set without touching the table, then releases
// the table's transaction slot.
func (tx *Transaction[V]) Abort() {
	tx.table.EndTxn()
}

// Commit validates every pending operation, durably logs the write-set as
// one WAL record, applies it to the table, and releases the transaction
// slot. A validation failure leaves the table byte-for-byte unchanged. A
// failure writing the WAL record also leaves the table unchanged, though
// it may leave a partial temp file behind for the next dump to replace. A
// failure during apply, after a successful WAL write, is unrecoverable in
// memory; the caller's recovery path is to discard this table and reload
// from folder.
func (tx *Transaction[V]) Commit(folder string) error {
	defer tx.table.EndTxn()

	if len(tx.writeSet) == 0 {
		return nil
	}

	if err := tx.validate(); err != nil {
		if tx.Verbose {
			fmt.Printf("commit aborted: %v\n", err)
		}
		return err
	}

	if err := tx.writeLog(folder); err != nil {
		return err
	}

	return tx.apply()
}

func (tx *Transaction[V]) validate() error {
	for k, op := range tx.writeSet {
		_, found := tx.table.Primary().Find(k)
		if op.tag == opInsert {
			if found {
				return &errors.DuplicateKeyError{Key: fmt.Sprint(k)}
			}
		} else if !found {
			return &errors.KeyNotFoundError{Key: fmt.Sprint(k)}
		}
	}
	return nil
}

func (tx *Transaction[V]) apply() error {
	for k, op := range tx.writeSet {
		switch op.tag {
		case opInsert:
			for _, ix := range tx.table.Indexes() {
				if err := ix.AppendTo(ix.Select(op.value), k); err != nil {
					return err
				}
			}
			if err := tx.table.Primary().Insert(k, op.value, false); err != nil {
				return err
			}
		case opUpdate:
			oldValue, _ := tx.table.Primary().Find(k)
			for _, ix := range tx.table.Indexes() {
				if err := ix.RemoveFrom(ix.Select(oldValue), k); err != nil {
					return err
				}
				if err := ix.AppendTo(ix.Select(op.value), k); err != nil {
					return err
				}
			}
			if err := tx.table.Primary().Update(k, op.value); err != nil {
				return err
			}
		case opRemove:
			oldValue, _ := tx.table.Primary().Find(k)
			for _, ix := range tx.table.Indexes() {
				if err := ix.RemoveFrom(ix.Select(oldValue), k); err != nil {
					return err
				}
			}
			if err := tx.table.Primary().Remove(k); err != nil {
				return err
			}
		}
	}
	return nil
}

func (tx *Transaction[V]) writeLog(folder string) error {
	entries := make([]walEntry[V], 0, len(tx.writeSet))
	for k, op := range tx.writeSet {
		keyData, err := types.MarshalComparable(k)
		if err != nil {
			return fmt.Errorf("txn: encode write-set key: %w", err)
		}
		entries = append(entries, walEntry[V]{
			Key:   keyData,
			Tag:   op.tag.String(),
			Value: op.value,
		})
	}

	_, err := frame.Dump(commitDir(folder), walRecord[V]{Entries: entries}, frame.DefaultOptions())
	if err != nil {
		return fmt.Errorf("txn: write WAL record: %w", err)
	}
	return nil
}
