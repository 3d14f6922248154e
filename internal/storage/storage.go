package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"splice/internal/tensor"
)

// Kind identifies a storage backend implementation. The value is recorded
// in manifests, so renaming an existing kind breaks previously written data.
type Kind string

const (
	// KindMemory keeps arrays in a process-wide named store.
	KindMemory Kind = "mem"
	// KindFiles writes one container file per key under a root directory.
	KindFiles Kind = "files"
	// KindFilesZstd is the files layout with zstd-compressed containers.
	KindFilesZstd Kind = "files_zstd"
	// KindSQLite keeps all containers in a single SQLite database file.
	KindSQLite Kind = "sqlite"
)

var (
	// ErrUnavailable reports that a backend kind or location cannot be
	// resolved to live storage.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrNotFound reports that the location is reachable but holds no
	// array under the requested key.
	ErrNotFound = errors.New("array not found")
)

// Valid reports whether the kind names a known backend.
func (k Kind) Valid() bool {
	switch k {
	case KindMemory, KindFiles, KindFilesZstd, KindSQLite:
		return true
	default:
		return false
	}
}

func (k Kind) String() string { return string(k) }

// ParseKind converts a manifest or config string into a Kind.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.TrimSpace(strings.ToLower(raw)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown backend kind %q", ErrUnavailable, raw)
	}
	return k, nil
}

// Reader retrieves arrays previously stored under keys. Implementations
// are safe for concurrent use.
type Reader interface {
	// Get returns the complete array stored under key.
	Get(ctx context.Context, key string) (tensor.Array, error)
	// GetRange returns rows [lo, hi) along the leading axis. Backends
	// that cannot read partially fall back to Get plus an in-memory
	// slice; the result is identical either way.
	GetRange(ctx context.Context, key string, lo, hi int) (tensor.Array, error)
	Close() error
}

// Writer stores arrays under keys. One writer per location.
type Writer interface {
	// Put stores the array under key, replacing any previous value.
	Put(ctx context.Context, key string, arr tensor.Array) error
	// Location returns the string a manifest should record to find
	// this data again through OpenReader.
	Location() string
	// Kind returns the backend kind for the same purpose.
	Kind() Kind
	Close() error
}

// OpenReader resolves a (kind, location) pair recorded in a manifest.
// Unknown kinds and unreachable locations yield ErrUnavailable.
func OpenReader(kind Kind, location string) (Reader, error) {
	switch kind {
	case KindMemory:
		return openMemoryReader(location)
	case KindFiles:
		return openFilesReader(location)
	case KindFilesZstd:
		return openZstdReader(location)
	case KindSQLite:
		return openSQLiteReader(location)
	default:
		return nil, fmt.Errorf("%w: unknown backend kind %q", ErrUnavailable, kind)
	}
}

// NewWriter opens or creates writable storage of the given kind at the
// given location.
func NewWriter(kind Kind, location string) (Writer, error) {
	switch kind {
	case KindMemory:
		return newMemoryWriter(location)
	case KindFiles:
		return newFilesWriter(location)
	case KindFilesZstd:
		return newZstdWriter(location)
	case KindSQLite:
		return newSQLiteWriter(location)
	default:
		return nil, fmt.Errorf("%w: unknown backend kind %q", ErrUnavailable, kind)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage key must not be empty")
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// rangeFromFull cuts rows [lo, hi) out of a fully loaded array. Shared by
// the backends without seekable containers.
func rangeFromFull(arr tensor.Array, lo, hi int) (tensor.Array, error) {
	out, err := arr.Slice(0, lo, hi)
	if err != nil {
		return tensor.Array{}, fmt.Errorf("slice rows [%d, %d): %w", lo, hi, err)
	}
	return out, nil
}
