package frame

// Encoding selects the payload codec a framed file uses. The canonical
// wire format (spec.md §6) is JSON; BSON is offered as an opt-in
// alternative, written as BSON extended-JSON text so the payload stays
// UTF-8, the way the teacher offers BSON alongside raw JSON text
// (pkg/storage/bson.go in the original engine).
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingBSON
)

// Options configures Dump and Load. Durability in this engine is
// fsync-at-commit, always (spec.md Non-goals exclude weaker or stronger
// crash tolerance) — BufferSize and Encoding are the only real knobs.
type Options struct {
	// BufferSize sizes the bufio buffer used before the mandatory fsync.
	BufferSize int

	// Encoding picks the payload codec. Defaults to JSON, the spec's
	// canonical format.
	Encoding Encoding
}

// DefaultOptions returns the safe default: buffered JSON, fsync always.
func DefaultOptions() Options {
	return Options{
		BufferSize: 64 * 1024,
		Encoding:   EncodingJSON,
	}
}
