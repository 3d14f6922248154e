package manifest

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"splice/internal/storage"
)

// Manifest is the closed set of attachable array descriptors: Array for
// data without time semantics, TemporalArray for time-anchored data.
// Load paths dispatch on the concrete type.
type Manifest interface {
	AsMap() map[string]any
	Validate() error
	isManifest()
}

func (Array) isManifest()         {}
func (TemporalArray) isManifest() {}

// Array locates a whole stored array. The shape is fixed at write time;
// Load verifies the stored bytes still agree with it.
type Array struct {
	StorageKey      string
	StorageLocation string
	StorageKind     storage.Kind
	Shape           []int
}

// TemporalArray anchors a stored array on its owning cut's local
// timeline: index i along TemporalDim covers time [Start + i*FrameShift,
// Start + (i+1)*FrameShift).
type TemporalArray struct {
	Array       Array
	TemporalDim int
	// FrameShift is the seconds represented by one index step. Written
	// as duration / frames, so two cuts of nominally equal span can
	// carry slightly different values.
	FrameShift float64
	// Start is the offset in seconds from the owning cut's time zero to
	// index 0. Truncation can drive it negative: the array then began
	// before the cut's window, and Load clips the leading frames.
	Start float64
}

// Validate checks that the manifest could plausibly resolve to storage.
func (a Array) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.StorageKey, validation.Required),
		validation.Field(&a.StorageLocation, validation.Required),
		validation.Field(&a.StorageKind, validation.By(validBackendKind)),
		validation.Field(&a.Shape, validation.Required, validation.By(validShape)),
	)
}

// Validate checks the time anchoring on top of the Array fields.
func (t TemporalArray) Validate() error {
	if err := t.Array.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&t,
		validation.Field(&t.FrameShift, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&t.TemporalDim, validation.Min(0), validation.Max(len(t.Array.Shape)-1)),
	)
}

func validBackendKind(value any) error {
	kind, ok := value.(storage.Kind)
	if !ok || !kind.Valid() {
		return fmt.Errorf("unknown backend kind %q", value)
	}
	return nil
}

func validShape(value any) error {
	shape, ok := value.([]int)
	if !ok {
		return fmt.Errorf("shape must be []int")
	}
	for _, dim := range shape {
		if dim < 0 {
			return fmt.Errorf("negative dimension %d", dim)
		}
	}
	return nil
}

// Equal compares descriptive fields; two manifests naming the same
// stored bytes the same way are equal regardless of how they were built.
func (a Array) Equal(other Array) bool {
	return a.StorageKey == other.StorageKey &&
		a.StorageLocation == other.StorageLocation &&
		a.StorageKind == other.StorageKind &&
		shapeEqual(a.Shape, other.Shape)
}

// Equal compares descriptive fields including the time anchoring.
func (t TemporalArray) Equal(other TemporalArray) bool {
	return t.Array.Equal(other.Array) &&
		t.TemporalDim == other.TemporalDim &&
		t.FrameShift == other.FrameShift &&
		t.Start == other.Start
}

// Frames returns the stored frame count along the temporal axis.
func (t TemporalArray) Frames() int {
	if t.TemporalDim < 0 || t.TemporalDim >= len(t.Array.Shape) {
		return 0
	}
	return t.Array.Shape[t.TemporalDim]
}

// Truncate re-anchors the manifest for a cut whose window moved forward
// by offset seconds. Storage is untouched; if the new anchor is
// negative, the array started before the shrunk cut and Load clips the
// frames that fall outside.
func (t TemporalArray) Truncate(offset float64) TemporalArray {
	out := t
	out.Start = RoundSeconds(t.Start - offset)
	return out
}

// Direction selects which side of a cut padding extends.
type Direction int

const (
	PadRight Direction = iota
	PadLeft
)

func (d Direction) String() string {
	if d == PadLeft {
		return "left"
	}
	return "right"
}

// Fill describes the synthetic frames a composite load concatenates
// around real data. No storage backs these frames.
type Fill struct {
	Frames    int
	Value     float64
	Direction Direction
}

// Pad re-anchors the manifest for a cut extended from current to target
// seconds and sizes the fill the load path must synthesize. The fill is
// not stored in the manifest: padding frames exist only at load time.
func (t TemporalArray) Pad(current, target float64, dir Direction, value float64) (TemporalArray, Fill) {
	residual := RoundSeconds(target - current)
	if residual <= 0 {
		return t, Fill{Direction: dir}
	}
	fill := Fill{
		Frames:    FrameCount(residual, t.FrameShift),
		Value:     value,
		Direction: dir,
	}
	out := t
	if dir == PadLeft {
		out.Start = RoundSeconds(t.Start + residual)
	}
	return out, fill
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
