package testsupport

import (
	"path/filepath"
	"testing"

	"splice/internal/config"
	"splice/internal/storage"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Array storage defaults to an isolated in-memory backend that is reset
// when the test finishes.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.RegistryPath = filepath.Join(base, "registry.db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Storage.Backend = string(storage.KindMemory)
	cfgVal.Storage.Location = "test-" + t.Name()
	cfgVal.Logging.Level = "error"

	location := cfgVal.Storage.Location
	t.Cleanup(func() { storage.ResetMemory(location) })

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithFilesStorage switches array storage to the files backend rooted in
// the test temp directory. Compressed selects the zstd container layout.
func WithFilesStorage(compressed bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Backend = string(storage.KindFiles)
		b.cfg.Storage.Compression = compressed
		b.cfg.Storage.Location = filepath.Join(b.baseDir, "arrays")
	}
}

// WithSQLiteStorage points array storage at a SQLite file in the test
// temp directory.
func WithSQLiteStorage() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Backend = string(storage.KindSQLite)
		b.cfg.Storage.Compression = false
		b.cfg.Storage.Location = filepath.Join(b.baseDir, "arrays.db")
	}
}

// WithParallelism overrides the bulk-load worker count.
func WithParallelism(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Load.Parallelism = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.RegistryPath)
}
