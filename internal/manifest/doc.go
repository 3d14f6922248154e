// Package manifest describes stored arrays without holding their bytes.
// An Array records where a whole array lives (backend kind, location,
// key) and what shape it has; a TemporalArray adds the time anchoring
// needed to window, truncate, and pad it against a cut's local timeline.
//
// Transformations never touch storage. Truncate and Pad return new
// manifests that re-anchor the same stored bytes; actual narrowing and
// fill synthesis happen lazily when Load runs. All frame arithmetic goes
// through the rounding contract in frames.go so that truncate, pad, and
// load can never disagree about an index.
package manifest
