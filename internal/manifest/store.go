package manifest

import (
	"context"
	"fmt"

	"splice/internal/storage"
	"splice/internal/tensor"
)

// Store writes the array under key and returns the manifest that finds
// it again. Manifests are only ever created here and by the transform
// methods; shapes never change after the write.
func Store(ctx context.Context, w storage.Writer, key string, arr tensor.Array) (Array, error) {
	if err := w.Put(ctx, key, arr); err != nil {
		return Array{}, fmt.Errorf("store key %q: %w", key, err)
	}
	return Array{
		StorageKey:      key,
		StorageLocation: w.Location(),
		StorageKind:     w.Kind(),
		Shape:           arr.Shape(),
	}, nil
}

// StoreTemporal writes the array and anchors it on a cut-local timeline:
// frameShift seconds per step along temporalDim, index 0 at start
// seconds from the cut's time zero.
func StoreTemporal(ctx context.Context, w storage.Writer, key string, arr tensor.Array, temporalDim int, frameShift, start float64) (TemporalArray, error) {
	base, err := Store(ctx, w, key, arr)
	if err != nil {
		return TemporalArray{}, err
	}
	out := TemporalArray{
		Array:       base,
		TemporalDim: temporalDim,
		FrameShift:  frameShift,
		Start:       start,
	}
	if err := out.Validate(); err != nil {
		return TemporalArray{}, fmt.Errorf("temporal anchoring for key %q: %w", key, err)
	}
	return out, nil
}
