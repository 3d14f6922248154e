// Package tensor implements the immutable N-dimensional array value type
// used for feature and label payloads.
//
// Arrays carry a dtype, a shape, and row-major little-endian raw bytes. All
// operations return new values; nothing mutates in place, so arrays may be
// shared freely between goroutines. The binary container codec in codec.go
// is the on-disk form used by every storage backend; its header is readable
// on its own so backends can serve leading-axis windows without touching the
// payload.
package tensor
