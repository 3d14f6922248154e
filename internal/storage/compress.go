package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/zstd"

	"splice/internal/tensor"
)

const compressedExt = ".splz"

// zstdWriter is the files layout with each container compressed as a
// whole. Compression trades the seekable header for smaller files, so the
// matching reader always decompresses fully.
type zstdWriter struct {
	root string
	lock *flock.Flock
	enc  *zstd.Encoder
}

func newZstdWriter(location string) (*zstdWriter, error) {
	root, err := resolveFilesRoot(location, true)
	if err != nil {
		return nil, err
	}
	lock := flock.New(filepath.Join(root, writerLockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire writer lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: another writer holds %s", ErrUnavailable, root)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("init zstd encoder: %w", err)
	}
	return &zstdWriter{root: root, lock: lock, enc: enc}, nil
}

func (w *zstdWriter) Put(ctx context.Context, key string, arr tensor.Array) error {
	if err := ensureContext(ctx).Err(); err != nil {
		return err
	}
	path, err := containerPath(w.root, key, compressedExt)
	if err != nil {
		return err
	}
	encoded, err := tensor.Encode(arr)
	if err != nil {
		return fmt.Errorf("encode array for key %q: %w", key, err)
	}
	return writeFileAtomic(path, w.enc.EncodeAll(encoded, nil))
}

func (w *zstdWriter) Location() string { return w.root }
func (w *zstdWriter) Kind() Kind       { return KindFilesZstd }

func (w *zstdWriter) Close() error {
	var errs []error
	if w.enc != nil {
		if err := w.enc.Close(); err != nil {
			errs = append(errs, err)
		}
		w.enc = nil
	}
	if w.lock != nil {
		if err := w.lock.Unlock(); err != nil {
			errs = append(errs, err)
		}
		w.lock = nil
	}
	return errors.Join(errs...)
}

type zstdReader struct {
	root string
	dec  *zstd.Decoder
}

func openZstdReader(location string) (*zstdReader, error) {
	root, err := resolveFilesRoot(location, false)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd decoder: %w", err)
	}
	return &zstdReader{root: root, dec: dec}, nil
}

func (r *zstdReader) Get(ctx context.Context, key string) (tensor.Array, error) {
	if err := ensureContext(ctx).Err(); err != nil {
		return tensor.Array{}, err
	}
	path, err := containerPath(r.root, key, compressedExt)
	if err != nil {
		return tensor.Array{}, err
	}
	compressed, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tensor.Array{}, fmt.Errorf("%w: key %q under %s", ErrNotFound, key, r.root)
		}
		return tensor.Array{}, fmt.Errorf("read container for key %q: %w", key, err)
	}
	encoded, err := r.dec.DecodeAll(compressed, nil)
	if err != nil {
		return tensor.Array{}, fmt.Errorf("decompress container for key %q: %w", key, err)
	}
	arr, err := tensor.Decode(encoded)
	if err != nil {
		return tensor.Array{}, fmt.Errorf("decode container for key %q: %w", key, err)
	}
	return arr, nil
}

func (r *zstdReader) GetRange(ctx context.Context, key string, lo, hi int) (tensor.Array, error) {
	arr, err := r.Get(ctx, key)
	if err != nil {
		return tensor.Array{}, err
	}
	return rangeFromFull(arr, lo, hi)
}

func (r *zstdReader) Close() error {
	if r.dec != nil {
		r.dec.Close()
		r.dec = nil
	}
	return nil
}
