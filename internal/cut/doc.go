// Package cut models time-bounded segments of recordings and the custom
// attributes they carry. A Cut owns a window of a recording's timeline
// plus a bag of named values: scalars, nested structures, or array
// manifests that load lazily from storage. Truncating or padding a cut
// returns a new value with every temporal manifest re-anchored, so an
// attribute loaded afterwards still covers exactly the cut's window.
//
// Padding never rewrites stored arrays. It wraps the original cut in a
// MixedCut alongside a PaddingCut holding the exact sub-second residual
// and the per-attribute fill values; the synthetic frames come into
// existence only when an attribute is loaded.
package cut
