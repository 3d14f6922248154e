package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"splice/internal/tensor"
)

const (
	containerExt   = ".splc"
	writerLockName = ".splice-writer.lock"
)

// filesWriter stores one container file per key under a root directory.
// A lock file keeps concurrent writers off the same root.
type filesWriter struct {
	root string
	lock *flock.Flock
}

func newFilesWriter(location string) (*filesWriter, error) {
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
	return &filesWriter{root: root, lock: lock}, nil
}

func (w *filesWriter) Put(ctx context.Context, key string, arr tensor.Array) error {
	if err := ensureContext(ctx).Err(); err != nil {
		return err
	}
	path, err := containerPath(w.root, key, containerExt)
	if err != nil {
		return err
	}
	encoded, err := tensor.Encode(arr)
	if err != nil {
		return fmt.Errorf("encode array for key %q: %w", key, err)
	}
	return writeFileAtomic(path, encoded)
}

func (w *filesWriter) Location() string { return w.root }
func (w *filesWriter) Kind() Kind       { return KindFiles }

func (w *filesWriter) Close() error {
	if w.lock == nil {
		return nil
	}
	err := w.lock.Unlock()
	w.lock = nil
	return err
}

type filesReader struct {
	root string
}

func openFilesReader(location string) (*filesReader, error) {
	root, err := resolveFilesRoot(location, false)
	if err != nil {
		return nil, err
	}
	return &filesReader{root: root}, nil
}

func (r *filesReader) Get(ctx context.Context, key string) (tensor.Array, error) {
	if err := ensureContext(ctx).Err(); err != nil {
		return tensor.Array{}, err
	}
	path, err := containerPath(r.root, key, containerExt)
	if err != nil {
		return tensor.Array{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tensor.Array{}, fmt.Errorf("%w: key %q under %s", ErrNotFound, key, r.root)
		}
		return tensor.Array{}, fmt.Errorf("read container for key %q: %w", key, err)
	}
	arr, err := tensor.Decode(data)
	if err != nil {
		return tensor.Array{}, fmt.Errorf("decode container for key %q: %w", key, err)
	}
	return arr, nil
}

// GetRange reads only the requested rows: the header tells us the row
// size, a seek skips everything before lo.
func (r *filesReader) GetRange(ctx context.Context, key string, lo, hi int) (tensor.Array, error) {
	if err := ensureContext(ctx).Err(); err != nil {
		return tensor.Array{}, err
	}
	path, err := containerPath(r.root, key, containerExt)
	if err != nil {
		return tensor.Array{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tensor.Array{}, fmt.Errorf("%w: key %q under %s", ErrNotFound, key, r.root)
		}
		return tensor.Array{}, fmt.Errorf("open container for key %q: %w", key, err)
	}
	defer f.Close()

	header, headerLen, err := tensor.ReadHeader(f)
	if err != nil {
		return tensor.Array{}, fmt.Errorf("read container header for key %q: %w", key, err)
	}
	if len(header.Shape) == 0 {
		return tensor.Array{}, fmt.Errorf("key %q: range read needs at least one dimension", key)
	}
	rows := header.Shape[0]
	if lo < 0 || hi > rows || lo > hi {
		return tensor.Array{}, fmt.Errorf("key %q: rows [%d, %d) outside [0, %d)", key, lo, hi, rows)
	}

	rowLen := header.DType.Size()
	for _, dim := range header.Shape[1:] {
		rowLen *= dim
	}
	if _, err := f.Seek(int64(headerLen)+int64(lo)*int64(rowLen), io.SeekStart); err != nil {
		return tensor.Array{}, fmt.Errorf("seek container for key %q: %w", key, err)
	}
	buf := make([]byte, (hi-lo)*rowLen)
	if _, err := io.ReadFull(f, buf); err != nil {
		return tensor.Array{}, fmt.Errorf("read rows [%d, %d) for key %q: %w", lo, hi, key, err)
	}

	shape := append([]int{hi - lo}, header.Shape[1:]...)
	arr, err := tensor.New(header.DType, shape, buf)
	if err != nil {
		return tensor.Array{}, fmt.Errorf("assemble rows for key %q: %w", key, err)
	}
	return arr, nil
}

func (r *filesReader) Close() error { return nil }

// resolveFilesRoot validates (and for writers, creates) the backend root
// directory and checks the process can actually use it.
func resolveFilesRoot(location string, writable bool) (string, error) {
	if strings.TrimSpace(location) == "" {
		return "", fmt.Errorf("%w: files backend needs a directory", ErrUnavailable)
	}
	root, err := filepath.Abs(location)
	if err != nil {
		return "", fmt.Errorf("%w: resolve %q: %v", ErrUnavailable, location, err)
	}
	if writable {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return "", fmt.Errorf("%w: create %s: %v", ErrUnavailable, root, err)
		}
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %v", ErrUnavailable, root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrUnavailable, root)
	}
	mode := uint32(unix.R_OK | unix.X_OK)
	if writable {
		mode |= unix.W_OK
	}
	if err := unix.Access(root, mode); err != nil {
		return "", fmt.Errorf("%w: insufficient permissions on %s: %v", ErrUnavailable, root, err)
	}
	return root, nil
}

// containerPath maps a key to its file, rejecting keys that escape the
// root. Keys may contain path separators to shard large stores.
func containerPath(root, key, ext string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	cleaned := filepath.Clean(key)
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("key %q escapes the storage root", key)
	}
	return filepath.Join(root, cleaned+ext), nil
}

// writeFileAtomic stages content in a temp file and renames it into place
// so readers never observe a half-written container.
func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create container dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".splice-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp container: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp container: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp container: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp container: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename container into place: %w", err)
	}
	success = true
	return nil
}
