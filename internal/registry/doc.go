// Package registry persists cut records in SQLite so sets survive
// process restarts and can be assembled incrementally. Records are
// stored in serialized form; arrays stay in their storage backends and
// are never copied into the registry.
package registry
