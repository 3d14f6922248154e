// Package storage maps opaque string keys to encoded arrays across a set
// of interchangeable backends. Manifests record a backend kind plus a
// location string; OpenReader resolves that pair back to live access
// without the caller knowing which backend produced the data.
//
// Four kinds ship: an in-process memory store, a directory of container
// files, the same layout with zstd-compressed containers, and a single
// SQLite database file. Readers are safe for concurrent use. Writers
// assume a single writer per location; the files backends enforce this
// with a lock file, the others leave the discipline to the caller.
package storage
