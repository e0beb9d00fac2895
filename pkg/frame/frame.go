// Package frame implements the record framer (spec.md §4.A): every file
// this engine writes to disk — the full snapshot and each per-commit WAL
// entry — shares the same on-disk shape:
//
//	bytes 0..8    payload length L, unsigned 64-bit little-endian
//	bytes 8..72   SHA-512(payload), 64 bytes
//	bytes 72..72+L payload, UTF-8 text (JSON by default)
//
// The length+hash envelope catches torn writes without a separate
// journal; writing to a fresh timestamped file and letting the caller
// rename it over a stable name gives atomic replace for free.
package frame

import (
	"bufio"
	"crypto/sha512"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bobboyms/kvtable/pkg/errors"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const hashSize = 64 // SHA-512 digest size

// Dump encodes v, writes it as a framed file under dir, fsyncs, and
// returns the path it wrote. The filename is a nanosecond timestamp
// disambiguated with a time-ordered UUIDv7 suffix, so two commits in the
// same wall-clock tick never collide and files still sort chronologically
// by their numeric prefix (spec.md §9 DESIGN NOTES flags the bare-timestamp
// collision risk; this is the "clock+counter-like generator" it asks for).
// The caller is responsible for any rename onto a stable name.
func Dump(dir string, v any, opts Options) (string, error) {
	payload, err := encode(v, opts.Encoding)
	if err != nil {
		return "", fmt.Errorf("frame: encode payload: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("frame: create dir %q: %w", dir, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("frame: generate file id: %w", err)
	}
	name := fmt.Sprintf("%020d-%s.json", time.Now().UnixNano(), id.String())
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("frame: create %q: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriterSize(f, max(opts.BufferSize, 1024))

	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(payload)))
	if _, err := bw.Write(lenBuf[:]); err != nil {
		return "", fmt.Errorf("frame: write length: %w", err)
	}

	sum := sha512.Sum512(payload)
	if _, err := bw.Write(sum[:]); err != nil {
		return "", fmt.Errorf("frame: write hash: %w", err)
	}

	if _, err := bw.Write(payload); err != nil {
		return "", fmt.Errorf("frame: write payload: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("frame: flush: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("frame: fsync: %w", err)
	}

	return path, nil
}

// Load reads a framed file, verifies its length and hash, and decodes its
// payload into a value of type T.
func Load[T any](path string, opts Options) (T, error) {
	var zero T

	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("frame: open %q: %w", path, err)
	}
	defer f.Close()

	var lenBuf [8]byte
	if _, err := io.ReadFull(f, lenBuf[:]); err != nil {
		return zero, fmt.Errorf("frame: read length: %w", err)
	}
	declared := binary.LittleEndian.Uint64(lenBuf[:])

	var wantHash [hashSize]byte
	if _, err := io.ReadFull(f, wantHash[:]); err != nil {
		return zero, fmt.Errorf("frame: read hash: %w", err)
	}

	payload, err := io.ReadAll(f)
	if err != nil {
		return zero, fmt.Errorf("frame: read payload: %w", err)
	}

	if uint64(len(payload)) != declared {
		return zero, &errors.FileSizeMismatchError{Path: path, Declared: declared, Got: len(payload)}
	}

	gotHash := sha512.Sum512(payload)
	if gotHash != wantHash {
		return zero, &errors.HashMismatchError{Path: path}
	}

	if err := decode(payload, &zero, opts.Encoding); err != nil {
		return zero, fmt.Errorf("frame: decode payload: %w", err)
	}
	return zero, nil
}

// RemoveDir deletes a directory tree, treating "already gone" as success
// — the caller (persistence.Dump) uses this to drop the commit/ folder
// once a snapshot has absorbed it, and a concurrent or repeated dump
// finding it already gone is not an error.
func RemoveDir(path string) error {
	if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("frame: remove dir %q: %w", path, err)
	}
	return nil
}

func encode(v any, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingBSON:
		// MarshalExtJSON renders the value as BSON's "extended JSON" text
		// so it still fits the framer's UTF-8-payload contract (relaxed
		// mode, matching pkg/storage/bson.go's BsonToJson).
		return bson.MarshalExtJSON(v, false, false)
	default:
		return json.Marshal(v)
	}
}

func decode(payload []byte, out any, enc Encoding) error {
	switch enc {
	case EncodingBSON:
		return bson.UnmarshalExtJSON(payload, false, out)
	default:
		return json.Unmarshal(payload, out)
	}
}
