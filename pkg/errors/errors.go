package errors

import (
	"fmt"
)

// DuplicateKeyError is returned when a leaf insert without upsert hits an
// existing key.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key violation: key %q already exists", e.Key)
}

// NotFoundError is returned when update/remove targets a missing key.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("key %q not found", e.Key)
}

// KeyNotFoundError is returned by commit validation when an Update/Remove
// target is no longer present in the primary index.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("target key %q not found; transaction aborted", e.Key)
}

// IndexNotFoundError is returned when a table operation names an unknown
// secondary index.
type IndexNotFoundError struct {
	Name string
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("secondary index %q not found", e.Name)
}

// IndexAlreadyExistsError is returned when two secondary indexes are
// registered under the same name.
type IndexAlreadyExistsError struct {
	Name string
}

func (e *IndexAlreadyExistsError) Error() string {
	return fmt.Sprintf("secondary index %q already registered", e.Name)
}

// InvalidKeyTypeError is returned when a Primitive's variant does not
// match a secondary index's expected narrow type.
type InvalidKeyTypeError struct {
	Name     string
	TypeName string
}

func (e *InvalidKeyTypeError) Error() string {
	return fmt.Sprintf("illegal key type for index %q: %s", e.Name, e.TypeName)
}

// HashMismatchError is a record-framer integrity failure: the stored
// SHA-512 hash does not match the payload actually read from disk.
type HashMismatchError struct {
	Path string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("hash mismatch reading %q: file is corrupt or torn", e.Path)
}

// FileSizeMismatchError is a record-framer integrity failure: the declared
// payload length does not match the bytes actually read.
type FileSizeMismatchError struct {
	Path     string
	Declared uint64
	Got      int
}

func (e *FileSizeMismatchError) Error() string {
	return fmt.Sprintf("file size mismatch reading %q: declared %d bytes, got %d", e.Path, e.Declared, e.Got)
}

// TransactionInFlightError is returned when a second transaction is
// started against a table that already has one in flight. The core has
// no concurrency control; this is a single best-effort runtime guard
// standing in for the borrow checker the original Rust implementation
// relies on.
type TransactionInFlightError struct{}

func (e *TransactionInFlightError) Error() string {
	return "table already has a transaction in flight"
}
