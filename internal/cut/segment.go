package cut

import (
	"context"

	"splice/internal/tensor"
)

// Segment is a time-bounded entity: a data Cut, a synthetic PaddingCut,
// or a MixedCut stitching tracks of both. The set is closed; loaders
// dispatch on the concrete type.
type Segment interface {
	ID() string
	Duration() float64
	// Attr returns the named attribute value without loading anything.
	Attr(name string) (any, error)
	// LoadAttr resolves the named attribute to an array over the
	// segment's own time window.
	LoadAttr(ctx context.Context, name string) (tensor.Array, error)
	// Pad extends the segment to target seconds. A target at or below
	// the current duration returns the receiver unchanged.
	Pad(target float64, opts ...PadOption) (Segment, error)
	isSegment()
}

func (Cut) isSegment()        {}
func (PaddingCut) isSegment() {}
func (MixedCut) isSegment()   {}

// Equal compares two segments of any kind by value: same concrete type,
// same descriptive fields, attributes and manifests compared field by
// field.
func Equal(a, b Segment) bool {
	switch av := a.(type) {
	case Cut:
		bv, ok := b.(Cut)
		return ok && av.Equal(bv)
	case PaddingCut:
		bv, ok := b.(PaddingCut)
		return ok && av.Equal(bv)
	case MixedCut:
		bv, ok := b.(MixedCut)
		return ok && av.Equal(bv)
	default:
		return false
	}
}
