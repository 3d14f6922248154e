package storage

import (
	"context"
	"fmt"
	"sync"

	"splice/internal/tensor"
)

// memoryStores holds every named in-process store. A manifest written
// through a memory writer stays resolvable by OpenReader for the life of
// the process.
var memoryStores = struct {
	mu sync.Mutex
	m  map[string]*memoryStore
}{m: make(map[string]*memoryStore)}

type memoryStore struct {
	mu     sync.RWMutex
	arrays map[string]tensor.Array
}

func lookupMemoryStore(location string, create bool) (*memoryStore, bool) {
	memoryStores.mu.Lock()
	defer memoryStores.mu.Unlock()
	store, ok := memoryStores.m[location]
	if !ok && create {
		store = &memoryStore{arrays: make(map[string]tensor.Array)}
		memoryStores.m[location] = store
		ok = true
	}
	return store, ok
}

// ResetMemory drops the named in-process store. Tests use this to isolate
// store names across cases.
func ResetMemory(location string) {
	memoryStores.mu.Lock()
	defer memoryStores.mu.Unlock()
	delete(memoryStores.m, location)
}

type memoryWriter struct {
	location string
	store    *memoryStore
}

func newMemoryWriter(location string) (*memoryWriter, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: memory store needs a name", ErrUnavailable)
	}
	store, _ := lookupMemoryStore(location, true)
	return &memoryWriter{location: location, store: store}, nil
}

func (w *memoryWriter) Put(ctx context.Context, key string, arr tensor.Array) error {
	if err := ensureContext(ctx).Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	w.store.arrays[key] = arr
	return nil
}

func (w *memoryWriter) Location() string { return w.location }
func (w *memoryWriter) Kind() Kind       { return KindMemory }
func (w *memoryWriter) Close() error     { return nil }

type memoryReader struct {
	location string
	store    *memoryStore
}

func openMemoryReader(location string) (*memoryReader, error) {
	store, ok := lookupMemoryStore(location, false)
	if !ok {
		return nil, fmt.Errorf("%w: no memory store named %q", ErrUnavailable, location)
	}
	return &memoryReader{location: location, store: store}, nil
}

func (r *memoryReader) Get(ctx context.Context, key string) (tensor.Array, error) {
	if err := ensureContext(ctx).Err(); err != nil {
		return tensor.Array{}, err
	}
	if err := validateKey(key); err != nil {
		return tensor.Array{}, err
	}
	r.store.mu.RLock()
	arr, ok := r.store.arrays[key]
	r.store.mu.RUnlock()
	if !ok {
		return tensor.Array{}, fmt.Errorf("%w: key %q in memory store %q", ErrNotFound, key, r.location)
	}
	return arr, nil
}

func (r *memoryReader) GetRange(ctx context.Context, key string, lo, hi int) (tensor.Array, error) {
	arr, err := r.Get(ctx, key)
	if err != nil {
		return tensor.Array{}, err
	}
	return rangeFromFull(arr, lo, hi)
}

func (r *memoryReader) Close() error { return nil }
