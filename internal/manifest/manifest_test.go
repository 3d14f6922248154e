package manifest_test

import (
	"context"
	"errors"
	"testing"

	"splice/internal/manifest"
	"splice/internal/storage"
	"splice/internal/tensor"
)

// memWriter opens a uniquely named in-process store for one test.
func memWriter(t *testing.T) storage.Writer {
	t.Helper()
	name := "manifest-" + t.Name()
	t.Cleanup(func() { storage.ResetMemory(name) })
	w, err := storage.NewWriter(storage.KindMemory, name)
	if err != nil {
		t.Fatalf("open memory writer: %v", err)
	}
	return w
}

func frameVector(t *testing.T, frames int) tensor.Array {
	t.Helper()
	values := make([]float32, frames)
	for i := range values {
		values[i] = float32(i)
	}
	arr, err := tensor.FromFloat32([]int{frames}, values)
	if err != nil {
		t.Fatalf("build frame vector: %v", err)
	}
	return arr
}

func TestStoreThenLoadWholeArray(t *testing.T) {
	ctx := context.Background()
	w := memWriter(t)
	original := frameVector(t, 10)

	m, err := manifest.Store(ctx, w, "whole", original)
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if m.StorageKind != storage.KindMemory || m.StorageKey != "whole" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	loaded, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.Equal(original) {
		t.Fatal("loaded array differs from stored array")
	}
}

func TestLoadDetectsShapeMismatch(t *testing.T) {
	ctx := context.Background()
	w := memWriter(t)
	m, err := manifest.Store(ctx, w, "k", frameVector(t, 10))
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	m.Shape = []int{11}
	if _, err := m.Load(ctx); !errors.Is(err, manifest.ErrShapeMismatch) {
		t.Fatalf("Load = %v, want ErrShapeMismatch", err)
	}
}

func TestLoadMissingLocationIsUnavailable(t *testing.T) {
	m := manifest.Array{
		StorageKey:      "k",
		StorageLocation: "never-created-" + t.Name(),
		StorageKind:     storage.KindMemory,
		Shape:           []int{4},
	}
	if _, err := m.Load(context.Background()); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("Load = %v, want ErrUnavailable", err)
	}
}

func TestTemporalLoadWindows(t *testing.T) {
	ctx := context.Background()
	w := memWriter(t)
	const frames = 50
	const shift = 0.4

	m, err := manifest.StoreTemporal(ctx, w, "frames", frameVector(t, frames), 0, shift, 0)
	if err != nil {
		t.Fatalf("StoreTemporal failed: %v", err)
	}

	cases := []struct {
		name            string
		start, duration float64
		wantLo, wantHi  int
	}{
		{"full span", 0, frames * shift, 0, frames},
		{"rest of array", 0, -1, 0, frames},
		{"leading window rounds up at tie", 0, 5.0, 0, 13},
		{"interior window", 2.0, 1.2, 5, 8},
		{"window past the end clips", 18.0, 10.0, 45, frames},
		{"window before the anchor clips", -2.0, 2.8, 0, 2},
		{"empty window", 4.0, 0, 10, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.Load(ctx, tc.start, tc.duration)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got.Dim(0) != tc.wantHi-tc.wantLo {
				t.Fatalf("window length %d, want %d", got.Dim(0), tc.wantHi-tc.wantLo)
			}
			values, err := got.Float32s()
			if err != nil {
				t.Fatalf("Float32s failed: %v", err)
			}
			for i, v := range values {
				if v != float32(tc.wantLo+i) {
					t.Fatalf("frame %d = %v, want %d", i, v, tc.wantLo+i)
				}
			}
		})
	}
}

func TestTemporalLoadInnerAxis(t *testing.T) {
	ctx := context.Background()
	w := memWriter(t)
	// 2 channels x 6 frames, time on axis 1.
	arr, err := tensor.FromFloat32([]int{2, 6}, []float32{
		0, 1, 2, 3, 4, 5,
		10, 11, 12, 13, 14, 15,
	})
	if err != nil {
		t.Fatalf("build array: %v", err)
	}
	m, err := manifest.StoreTemporal(ctx, w, "chan-major", arr, 1, 0.5, 0)
	if err != nil {
		t.Fatalf("StoreTemporal failed: %v", err)
	}

	got, err := m.Load(ctx, 1.0, 1.0)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Dim(0) != 2 || got.Dim(1) != 2 {
		t.Fatalf("unexpected shape %v", got.Shape())
	}
	values, _ := got.Float32s()
	want := []float32{2, 3, 12, 13}
	for i := range want {
		if values[i] != want[i] {
			t.Fatalf("values = %v, want %v", values, want)
		}
	}
}

func TestTemporalLoadThroughFilesBackendPartialRead(t *testing.T) {
	ctx := context.Background()
	w, err := storage.NewWriter(storage.KindFiles, t.TempDir())
	if err != nil {
		t.Fatalf("open files writer: %v", err)
	}
	defer w.Close()

	m, err := manifest.StoreTemporal(ctx, w, "ondisk", frameVector(t, 20), 0, 0.25, 0)
	if err != nil {
		t.Fatalf("StoreTemporal failed: %v", err)
	}
	got, err := m.Load(ctx, 1.0, 2.0)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Dim(0) != 8 {
		t.Fatalf("window length %d, want 8", got.Dim(0))
	}
	values, _ := got.Float32s()
	if values[0] != 4 || values[7] != 11 {
		t.Fatalf("unexpected window %v", values)
	}
}

func TestTruncateReanchors(t *testing.T) {
	ctx := context.Background()
	w := memWriter(t)
	m, err := manifest.StoreTemporal(ctx, w, "k", frameVector(t, 10), 0, 0.5, 0)
	if err != nil {
		t.Fatalf("StoreTemporal failed: %v", err)
	}

	moved := m.Truncate(2.0)
	if moved.Start != -2.0 {
		t.Fatalf("Start = %v, want -2.0", moved.Start)
	}
	if moved.Array.StorageKey != m.Array.StorageKey {
		t.Fatal("truncate must keep the same stored array")
	}

	// The shrunk cut's window [0, rest) now begins 2 s into the array.
	got, err := moved.Load(ctx, 0, -1)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	values, _ := got.Float32s()
	if len(values) != 6 || values[0] != 4 {
		t.Fatalf("clipped window = %v, want frames 4..9", values)
	}

	// Chained truncation keeps re-anchoring the same bytes.
	again := moved.Truncate(1.0)
	if again.Start != -3.0 {
		t.Fatalf("chained Start = %v, want -3.0", again.Start)
	}
}

func TestPadSizesFill(t *testing.T) {
	base := manifest.TemporalArray{
		Array: manifest.Array{
			StorageKey:      "k",
			StorageLocation: "loc",
			StorageKind:     storage.KindMemory,
			Shape:           []int{121},
		},
		FrameShift: 4.895 / 121,
	}

	t.Run("right pad keeps anchor", func(t *testing.T) {
		padded, fill := base.Pad(4.895, 4.9, manifest.PadRight, 0)
		if !padded.Equal(base) {
			t.Fatal("right pad must not change the manifest")
		}
		if fill.Frames != 0 {
			t.Fatalf("fill frames = %d, want 0 for a sub-frame residual", fill.Frames)
		}
	})

	t.Run("left pad shifts anchor", func(t *testing.T) {
		padded, fill := base.Pad(4.895, 6.0, manifest.PadLeft, -1)
		if got := padded.Start; got != manifest.RoundSeconds(6.0-4.895) {
			t.Fatalf("Start = %v, want %v", got, manifest.RoundSeconds(6.0-4.895))
		}
		wantFrames := manifest.FrameCount(manifest.RoundSeconds(6.0-4.895), base.FrameShift)
		if fill.Frames != wantFrames || fill.Value != -1 || fill.Direction != manifest.PadLeft {
			t.Fatalf("fill = %+v, want %d frames of -1 on the left", fill, wantFrames)
		}
	})

	t.Run("target at or below current is a no-op", func(t *testing.T) {
		padded, fill := base.Pad(4.895, 4.895, manifest.PadRight, 0)
		if !padded.Equal(base) || fill.Frames != 0 {
			t.Fatalf("no-op pad changed manifest or produced fill %+v", fill)
		}
	})
}

func TestValidateCatchesBadAnchoring(t *testing.T) {
	good := manifest.TemporalArray{
		Array: manifest.Array{
			StorageKey:      "k",
			StorageLocation: "loc",
			StorageKind:     storage.KindMemory,
			Shape:           []int{4, 2},
		},
		FrameShift:  0.1,
		TemporalDim: 1,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid manifest rejected: %v", err)
	}

	bad := good
	bad.FrameShift = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("zero frame shift accepted")
	}
	bad = good
	bad.TemporalDim = 2
	if err := bad.Validate(); err == nil {
		t.Fatal("temporal dim past rank accepted")
	}
	empty := good
	empty.Array.StorageKey = ""
	if err := empty.Validate(); err == nil {
		t.Fatal("missing storage key accepted")
	}
}
