package manifest

import (
	"context"
	"fmt"
	"sync"

	"splice/internal/storage"
	"splice/internal/tensor"
)

// readerCache keeps one open reader per (kind, location). Manifests are
// loaded repeatedly and concurrently; reopening a database or directory
// handle per load would dominate the work. Readers are safe for
// concurrent use and live for the process. Open failures are not
// cached, so a location that appears later resolves on the next load.
var readerCache = struct {
	mu sync.Mutex
	m  map[readerKey]storage.Reader
}{m: make(map[readerKey]storage.Reader)}

type readerKey struct {
	kind     storage.Kind
	location string
}

func cachedReader(kind storage.Kind, location string) (storage.Reader, error) {
	key := readerKey{kind: kind, location: location}
	readerCache.mu.Lock()
	defer readerCache.mu.Unlock()
	if reader, ok := readerCache.m[key]; ok {
		return reader, nil
	}
	reader, err := storage.OpenReader(kind, location)
	if err != nil {
		return nil, err
	}
	readerCache.m[key] = reader
	return reader, nil
}

// Load retrieves the complete stored array and checks it against the
// declared shape.
func (a Array) Load(ctx context.Context) (tensor.Array, error) {
	reader, err := cachedReader(a.StorageKind, a.StorageLocation)
	if err != nil {
		return tensor.Array{}, fmt.Errorf("resolve %s storage at %s: %w", a.StorageKind, a.StorageLocation, err)
	}
	arr, err := reader.Get(ctx, a.StorageKey)
	if err != nil {
		return tensor.Array{}, fmt.Errorf("load key %q: %w", a.StorageKey, err)
	}
	if !shapeEqual(arr.Shape(), a.Shape) {
		return tensor.Array{}, fmt.Errorf("key %q: %w: stored %v, declared %v",
			a.StorageKey, ErrShapeMismatch, arr.Shape(), a.Shape)
	}
	return arr, nil
}

// Load retrieves the frames covering [start, start+duration) on the
// owning cut's timeline. A negative duration means "the rest of the
// array". Frame indices follow the rounding contract and are clamped to
// the stored extent, so windows reaching outside the array (a negative
// Start after truncation, or a request past the end) clip rather than
// fail.
func (t TemporalArray) Load(ctx context.Context, start, duration float64) (tensor.Array, error) {
	if t.TemporalDim < 0 || t.TemporalDim >= len(t.Array.Shape) {
		return tensor.Array{}, fmt.Errorf("key %q: temporal dim %d out of range for shape %v",
			t.Array.StorageKey, t.TemporalDim, t.Array.Shape)
	}
	frames := t.Frames()
	startRel := start - t.Start
	i0 := clampFrame(FrameCount(startRel, t.FrameShift), frames)
	i1 := frames
	if duration >= 0 {
		i1 = clampFrame(FrameCount(startRel+duration, t.FrameShift), frames)
	}
	if i1 < i0 {
		i1 = i0
	}

	reader, err := cachedReader(t.Array.StorageKind, t.Array.StorageLocation)
	if err != nil {
		return tensor.Array{}, fmt.Errorf("resolve %s storage at %s: %w",
			t.Array.StorageKind, t.Array.StorageLocation, err)
	}

	// Time on the leading axis allows a partial read; otherwise the
	// whole array comes back and is narrowed in memory.
	if t.TemporalDim == 0 {
		window, err := reader.GetRange(ctx, t.Array.StorageKey, i0, i1)
		if err != nil {
			return tensor.Array{}, fmt.Errorf("load frames [%d, %d) of key %q: %w",
				i0, i1, t.Array.StorageKey, err)
		}
		if !shapeEqual(window.Shape()[1:], t.Array.Shape[1:]) {
			return tensor.Array{}, fmt.Errorf("key %q: %w: stored trailing dims %v, declared %v",
				t.Array.StorageKey, ErrShapeMismatch, window.Shape()[1:], t.Array.Shape[1:])
		}
		return window, nil
	}

	full, err := reader.Get(ctx, t.Array.StorageKey)
	if err != nil {
		return tensor.Array{}, fmt.Errorf("load key %q: %w", t.Array.StorageKey, err)
	}
	if !shapeEqual(full.Shape(), t.Array.Shape) {
		return tensor.Array{}, fmt.Errorf("key %q: %w: stored %v, declared %v",
			t.Array.StorageKey, ErrShapeMismatch, full.Shape(), t.Array.Shape)
	}
	window, err := full.Slice(t.TemporalDim, i0, i1)
	if err != nil {
		return tensor.Array{}, fmt.Errorf("narrow key %q to frames [%d, %d): %w",
			t.Array.StorageKey, i0, i1, err)
	}
	return window, nil
}
