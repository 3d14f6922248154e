package cutset

import (
	"fmt"

	"splice/internal/cut"
	"splice/internal/manifest"
)

// Pad pads every member to the target duration. A non-positive target
// means the longest member's duration, so a heterogeneous set comes out
// rectangular. Members already at or past the target pass through
// unchanged; the rest become mixed cuts whose padding track is the
// exact residual. Each member is padded against its own frame shift,
// so two cuts with the same frame count but different shifts keep
// their own frame geometry.
func (s Set) Pad(target float64, opts ...cut.PadOption) (Set, error) {
	if target <= 0 {
		target = s.MaxDuration()
	} else {
		target = manifest.RoundSeconds(target)
	}

	padded := make([]cut.Segment, len(s.segments))
	for i, seg := range s.segments {
		out, err := seg.Pad(target, opts...)
		if err != nil {
			return Set{}, fmt.Errorf("pad %q to %v s: %w", seg.ID(), target, err)
		}
		padded[i] = out
	}
	return FromSegments(padded...)
}
