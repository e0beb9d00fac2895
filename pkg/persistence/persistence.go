// Package persistence implements the two whole-table operations that sit
// above a transaction's per-commit WAL records (spec.md §4.I): Dump
// collapses a table down to one full snapshot, and Load rebuilds a table
// from a folder written by Dump plus whatever commit records have
// accumulated since.
//
// Ported from original_source/src/persistence.rs, reusing pkg/frame for
// the framed-file I/O and the teacher's checkpoint.go idiom of sorting a
// directory's file names before replaying them in order.
package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bobboyms/kvtable/pkg/frame"
	"github.com/bobboyms/kvtable/pkg/secondary"
	"github.com/bobboyms/kvtable/pkg/table"
	"github.com/bobboyms/kvtable/pkg/types"
)

const snapshotFileName = "full_dump.json"

func commitDir(folder string) string {
	return filepath.Join(folder, "commit")
}

// walEntry mirrors the wire shape package txn writes for each commit
// record (key encoded via types.MarshalComparable, tag one of
// "insert"/"update"/"remove"). The two packages never import each other;
// they agree on the shape by convention, the same way a client and server
// agree on a wire format without sharing a type.
type walEntry[V any] struct {
	Key   []byte `json:"key"`
	Tag   string `json:"tag"`
	Value V      `json:"value"`
}

type walRecord[V any] struct {
	Entries []walEntry[V] `json:"entries"`
}

// snapshotRow is the wire shape of one row in full_dump.json. Comparable
// is an interface, so a btree.Pair can't round-trip through encoding/json
// directly (Unmarshal has no concrete type to decode into); rows travel
// with the same tagged-key encoding as a commit record's entries.
type snapshotRow[V any] struct {
	Key   []byte `json:"key"`
	Value V      `json:"value"`
}

// Dump collapses t's current primary index into one full snapshot file
// and discards every commit record that snapshot now absorbs. Secondary
// indexes are never written to disk: Load rebuilds them from the
// snapshot's rows, the same way a fresh commit builds them as rows are
// inserted.
func Dump[V any](t *table.Table[V], folder string) error {
	pairs := t.Primary().Collect()

	rows := make([]snapshotRow[V], 0, len(pairs))
	for _, p := range pairs {
		keyData, err := types.MarshalComparable(p.Key)
		if err != nil {
			return fmt.Errorf("persistence: encode snapshot key: %w", err)
		}
		rows = append(rows, snapshotRow[V]{Key: keyData, Value: p.Value})
	}

	path, err := frame.Dump(folder, rows, frame.DefaultOptions())
	if err != nil {
		return fmt.Errorf("persistence: dump snapshot: %w", err)
	}

	dest := filepath.Join(folder, snapshotFileName)
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("persistence: rename snapshot into place: %w", err)
	}

	if err := frame.RemoveDir(commitDir(folder)); err != nil {
		return fmt.Errorf("persistence: clear commit log: %w", err)
	}
	return nil
}

// Load rebuilds a table from folder: the full snapshot (if any) loaded
// first with allow_upsert=false since a snapshot can never contain a
// duplicate key, then every commit record replayed in file-name order
// (commit file names are a timestamp+UUIDv7 prefix, so lexical order is
// chronological order) with allow_upsert=true for inserts, since a
// replayed insert may be re-overwriting a key the snapshot already
// restored. idx registers the same secondary indexes the table was built
// with; Load repopulates them from scratch as each row is restored.
func Load[V any](folder string, fanOut int, idx ...*secondary.Index[V]) (*table.Table[V], error) {
	tb, err := table.NewWithSecondaryIndexes[V](fanOut, idx...)
	if err != nil {
		return nil, fmt.Errorf("persistence: build table: %w", err)
	}

	if err := loadSnapshot(tb, folder); err != nil {
		return nil, err
	}
	if err := replayCommits(tb, folder); err != nil {
		return nil, err
	}
	return tb, nil
}

func loadSnapshot[V any](tb *table.Table[V], folder string) error {
	path := filepath.Join(folder, snapshotFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("persistence: stat snapshot: %w", err)
	}

	rows, err := frame.Load[[]snapshotRow[V]](path, frame.DefaultOptions())
	if err != nil {
		return fmt.Errorf("persistence: load snapshot: %w", err)
	}

	for _, row := range rows {
		key, err := types.UnmarshalComparable(row.Key)
		if err != nil {
			return fmt.Errorf("persistence: decode snapshot key: %w", err)
		}
		if err := insertRestored(tb, key, row.Value); err != nil {
			return fmt.Errorf("persistence: restore snapshot row: %w", err)
		}
	}
	return nil
}

func replayCommits[V any](tb *table.Table[V], folder string) error {
	dir := commitDir(folder)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("persistence: read commit log: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		record, err := frame.Load[walRecord[V]](path, frame.DefaultOptions())
		if err != nil {
			return fmt.Errorf("persistence: load commit record %q: %w", name, err)
		}

		for _, e := range record.Entries {
			key, err := types.UnmarshalComparable(e.Key)
			if err != nil {
				return fmt.Errorf("persistence: decode key in %q: %w", name, err)
			}
			if err := applyEntry(tb, key, e); err != nil {
				return fmt.Errorf("persistence: replay %q: %w", name, err)
			}
		}
	}
	return nil
}

func applyEntry[V any](tb *table.Table[V], key types.Comparable, e walEntry[V]) error {
	switch e.Tag {
	case "insert":
		if old, ok := tb.Primary().Find(key); ok {
			removeFromIndexes(tb, key, old)
		}
		if err := tb.Primary().Insert(key, e.Value, true); err != nil {
			return err
		}
		addToIndexes(tb, key, e.Value)
	case "update":
		if old, ok := tb.Primary().Find(key); ok {
			removeFromIndexes(tb, key, old)
		}
		if err := tb.Primary().Update(key, e.Value); err != nil {
			return err
		}
		addToIndexes(tb, key, e.Value)
	case "remove":
		if old, ok := tb.Primary().Find(key); ok {
			removeFromIndexes(tb, key, old)
		}
		if err := tb.Primary().Remove(key); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown write tag %q", e.Tag)
	}
	return nil
}

func insertRestored[V any](tb *table.Table[V], key types.Comparable, value V) error {
	if err := tb.Primary().Insert(key, value, false); err != nil {
		return err
	}
	addToIndexes(tb, key, value)
	return nil
}

func addToIndexes[V any](tb *table.Table[V], key types.Comparable, value V) {
	for _, ix := range tb.Indexes() {
		_ = ix.AppendTo(ix.Select(value), key)
	}
}

func removeFromIndexes[V any](tb *table.Table[V], key types.Comparable, value V) {
	for _, ix := range tb.Indexes() {
		_ = ix.RemoveFrom(ix.Select(value), key)
	}
}
