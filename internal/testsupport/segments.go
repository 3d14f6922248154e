package testsupport

import (
	"context"
	"testing"

	"splice/internal/cut"
	"splice/internal/manifest"
	"splice/internal/storage"
	"splice/internal/tensor"
)

// NewCut builds a plain cut starting at zero.
func NewCut(t testing.TB, id string, duration float64) cut.Cut {
	t.Helper()

	c, err := cut.New(id, 0, duration)
	if err != nil {
		t.Fatalf("cut.New: %v", err)
	}
	return c
}

// NewTemporalCut builds a cut carrying one stored temporal attribute with
// the given frame count. Frame values run 0..frames-1 and the frame shift
// derives from duration/frames, so the attribute spans the cut exactly.
func NewTemporalCut(t testing.TB, w storage.Writer, id string, duration float64, frames int, attr string) cut.Cut {
	t.Helper()

	values := make([]float32, frames)
	for i := range values {
		values[i] = float32(i)
	}
	arr, err := tensor.FromFloat32([]int{frames}, values)
	if err != nil {
		t.Fatalf("tensor.FromFloat32: %v", err)
	}

	m, err := manifest.StoreTemporal(context.Background(), w, id+"/"+attr, arr, 0, duration/float64(frames), 0)
	if err != nil {
		t.Fatalf("manifest.StoreTemporal: %v", err)
	}

	c := NewCut(t, id, duration)
	withAttr, err := c.WithAttr(attr, m)
	if err != nil {
		t.Fatalf("WithAttr(%s): %v", attr, err)
	}
	return withAttr
}

// NewPadding builds a padding cut.
func NewPadding(t testing.TB, id string, duration float64) cut.PaddingCut {
	t.Helper()

	p, err := cut.NewPadding(id, duration)
	if err != nil {
		t.Fatalf("cut.NewPadding: %v", err)
	}
	return p
}

// MustPad pads the segment to the target duration and fails the test on
// error. The result is a MixedCut when padding was actually added.
func MustPad(t testing.TB, seg cut.Segment, target float64, opts ...cut.PadOption) cut.Segment {
	t.Helper()

	padded, err := seg.Pad(target, opts...)
	if err != nil {
		t.Fatalf("Pad(%v): %v", target, err)
	}
	return padded
}
