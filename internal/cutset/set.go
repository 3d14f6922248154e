package cutset

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"splice/internal/cut"
	"splice/internal/manifest"
)

// Set is an ordered collection of segments with unique IDs. Like the
// segments it holds, a Set is a value: mutating operations return a new
// Set and leave the receiver alone.
type Set struct {
	segments []cut.Segment
	index    map[string]int
}

// FromSegments builds a set, rejecting duplicate IDs.
func FromSegments(segments ...cut.Segment) (Set, error) {
	out := Set{
		segments: make([]cut.Segment, 0, len(segments)),
		index:    make(map[string]int, len(segments)),
	}
	for _, seg := range segments {
		if seg == nil {
			return Set{}, fmt.Errorf("cut set: nil segment")
		}
		if _, dup := out.index[seg.ID()]; dup {
			return Set{}, fmt.Errorf("cut set: duplicate id %q", seg.ID())
		}
		out.index[seg.ID()] = len(out.segments)
		out.segments = append(out.segments, seg)
	}
	return out, nil
}

// Len returns the number of segments.
func (s Set) Len() int { return len(s.segments) }

// At returns the segment at position i.
func (s Set) At(i int) cut.Segment {
	return s.segments[i]
}

// Get returns the segment with the given ID.
func (s Set) Get(id string) (cut.Segment, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.segments[i], true
}

// Append returns a set extended with more segments.
func (s Set) Append(segments ...cut.Segment) (Set, error) {
	return FromSegments(append(s.Segments(), segments...)...)
}

// Segments returns a copy of the segment list in set order.
func (s Set) Segments() []cut.Segment {
	return append([]cut.Segment(nil), s.segments...)
}

// EachSegment calls fn for every segment in order, stopping at the
// first error.
func (s Set) EachSegment(fn func(cut.Segment) error) error {
	for _, seg := range s.segments {
		if err := fn(seg); err != nil {
			return err
		}
	}
	return nil
}

// SortedByID returns a set reordered by natural ID order, so cut-2
// sorts before cut-10.
func (s Set) SortedByID() Set {
	segments := s.Segments()
	c := collate.New(language.Und, collate.Numeric)
	sort.SliceStable(segments, func(i, j int) bool {
		return c.CompareString(segments[i].ID(), segments[j].ID()) < 0
	})
	out, err := FromSegments(segments...)
	if err != nil {
		// IDs were unique going in; reordering cannot change that.
		panic(err)
	}
	return out
}

// MaxDuration returns the longest member duration, rounded like every
// other duration in the system. Zero for an empty set.
func (s Set) MaxDuration() float64 {
	max := 0.0
	for _, seg := range s.segments {
		if d := seg.Duration(); d > max {
			max = d
		}
	}
	return manifest.RoundSeconds(max)
}

// Equal compares two sets member by member, order included.
func (s Set) Equal(other Set) bool {
	if len(s.segments) != len(other.segments) {
		return false
	}
	for i := range s.segments {
		if !cut.Equal(s.segments[i], other.segments[i]) {
			return false
		}
	}
	return true
}
