package testsupport

import (
	"testing"

	"splice/internal/config"
	"splice/internal/registry"
	"splice/internal/storage"
)

// MustOpenRegistry opens a registry.Store for tests and registers cleanup.
func MustOpenRegistry(t testing.TB, cfg *config.Config) *registry.Store {
	t.Helper()

	store, err := registry.Open(cfg.Paths.RegistryPath)
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustWriter opens an array storage writer for the configured backend
// and registers cleanup.
func MustWriter(t testing.TB, cfg *config.Config) storage.Writer {
	t.Helper()

	w, err := storage.NewWriter(cfg.StorageKind(), cfg.StorageLocation())
	if err != nil {
		t.Fatalf("storage.NewWriter: %v", err)
	}
	t.Cleanup(func() {
		w.Close()
	})
	return w
}
