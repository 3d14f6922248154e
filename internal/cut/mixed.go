package cut

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"splice/internal/manifest"
	"splice/internal/tensor"
)

// Track places a data or padding cut at an offset inside a MixedCut.
type Track struct {
	Cut    Segment
	Offset float64
}

// MixedCut concatenates tracks on a shared timeline. Padding produces
// the two-track form: the unmodified original plus a PaddingCut.
// Attribute loads stitch per-track arrays together, each data track
// windowed by its own cut and frame shift, each padding track
// synthesized on the fly.
type MixedCut struct {
	id     string
	tracks []Track
}

// NewMixed constructs a composite from tracks ordered by offset. Tracks
// hold data or padding cuts only; composites do not nest.
func NewMixed(id string, tracks []Track) (MixedCut, error) {
	if id == "" {
		return MixedCut{}, fmt.Errorf("mixed cut id must not be empty")
	}
	if len(tracks) < 2 {
		return MixedCut{}, fmt.Errorf("mixed cut %q: need at least two tracks, got %d", id, len(tracks))
	}
	prev := 0.0
	for i, track := range tracks {
		switch track.Cut.(type) {
		case Cut, PaddingCut:
		default:
			return MixedCut{}, fmt.Errorf("mixed cut %q: track %d holds %T, want data or padding cut", id, i, track.Cut)
		}
		if track.Offset < 0 {
			return MixedCut{}, fmt.Errorf("mixed cut %q: track %d offset %v must not be negative", id, i, track.Offset)
		}
		if track.Offset < prev {
			return MixedCut{}, fmt.Errorf("mixed cut %q: track offsets must not decrease", id)
		}
		prev = track.Offset
	}
	return MixedCut{id: id, tracks: append([]Track(nil), tracks...)}, nil
}

func mixFromPad(data Segment, padding PaddingCut, dir manifest.Direction) (MixedCut, error) {
	var tracks []Track
	if dir == manifest.PadLeft {
		tracks = []Track{
			{Cut: padding, Offset: 0},
			{Cut: data, Offset: padding.duration},
		}
	} else {
		tracks = []Track{
			{Cut: data, Offset: 0},
			{Cut: padding, Offset: manifest.RoundSeconds(data.Duration())},
		}
	}
	return NewMixed(uuid.NewString(), tracks)
}

func (m MixedCut) ID() string { return m.id }

// Duration is the extent of the furthest-reaching track.
func (m MixedCut) Duration() float64 {
	end := 0.0
	for _, track := range m.tracks {
		if trackEnd := track.Offset + track.Cut.Duration(); trackEnd > end {
			end = trackEnd
		}
	}
	return manifest.RoundSeconds(end)
}

// Tracks returns the track list in offset order.
func (m MixedCut) Tracks() []Track {
	return append([]Track(nil), m.tracks...)
}

// Attr reads the attribute from the first data track; padding tracks
// never answer attribute reads.
func (m MixedCut) Attr(name string) (any, error) {
	for _, track := range m.tracks {
		if data, ok := track.Cut.(Cut); ok {
			value, err := data.Attr(name)
			if err != nil {
				return nil, fmt.Errorf("mixed cut %q: %w", m.id, err)
			}
			return value, nil
		}
	}
	return nil, fmt.Errorf("mixed cut %q has no data track: %w: %q", m.id, ErrAttributeNotFound, name)
}

// LoadAttr stitches the attribute across tracks. Data tracks load their
// own windows with their own manifests; padding tracks synthesize
// constant frames sized by the padding duration and the attribute's
// frame shift. A plain Array attribute has no time axis to extend, so
// the data track's array is returned unchanged.
func (m MixedCut) LoadAttr(ctx context.Context, name string) (tensor.Array, error) {
	value, err := m.Attr(name)
	if err != nil {
		return tensor.Array{}, err
	}

	switch ref := value.(type) {
	case manifest.Array:
		return m.loadWholeArray(ctx, name)
	case manifest.TemporalArray:
		return m.loadStitched(ctx, name, ref)
	default:
		return tensor.Array{}, fmt.Errorf("mixed cut %q attribute %q holds %T: %w", m.id, name, value, ErrNotLoadable)
	}
}

func (m MixedCut) loadWholeArray(ctx context.Context, name string) (tensor.Array, error) {
	for _, track := range m.tracks {
		if data, ok := track.Cut.(Cut); ok {
			arr, err := data.LoadAttr(ctx, name)
			if err != nil {
				return tensor.Array{}, fmt.Errorf("mixed cut %q: %w", m.id, err)
			}
			return arr, nil
		}
	}
	return tensor.Array{}, fmt.Errorf("mixed cut %q has no data track: %w: %q", m.id, ErrAttributeNotFound, name)
}

func (m MixedCut) loadStitched(ctx context.Context, name string, ref manifest.TemporalArray) (tensor.Array, error) {
	parts := make([]tensor.Array, 0, len(m.tracks))
	var sample tensor.Array
	// Fills preceding the first data part cannot be synthesized until a
	// loaded part reveals the dtype and trailing dims.
	var pending []manifest.Fill

	for _, track := range m.tracks {
		switch seg := track.Cut.(type) {
		case Cut:
			part, err := seg.LoadAttr(ctx, name)
			if err != nil {
				return tensor.Array{}, fmt.Errorf("mixed cut %q: %w", m.id, err)
			}
			if sample.IsZero() {
				for _, fill := range pending {
					lead, err := syntheticFrames(part, ref.TemporalDim, fill.Frames, fill.Value)
					if err != nil {
						return tensor.Array{}, fmt.Errorf("mixed cut %q attribute %q: %w", m.id, name, err)
					}
					parts = append(parts, lead)
				}
				pending = nil
			}
			sample = part
			parts = append(parts, part)
		case PaddingCut:
			_, fill := ref.Pad(0, seg.duration, manifest.PadRight, seg.fillValue(name))
			if fill.Frames == 0 {
				continue
			}
			if sample.IsZero() {
				pending = append(pending, fill)
				continue
			}
			synth, err := syntheticFrames(sample, ref.TemporalDim, fill.Frames, fill.Value)
			if err != nil {
				return tensor.Array{}, fmt.Errorf("mixed cut %q attribute %q: %w", m.id, name, err)
			}
			parts = append(parts, synth)
		}
	}
	if sample.IsZero() {
		return tensor.Array{}, fmt.Errorf("mixed cut %q has no data track: %w: %q", m.id, ErrAttributeNotFound, name)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	out, err := tensor.Concat(ref.TemporalDim, parts...)
	if err != nil {
		return tensor.Array{}, fmt.Errorf("mixed cut %q attribute %q: stitch tracks: %w", m.id, name, err)
	}
	return out, nil
}

// syntheticFrames builds a constant block shaped like the sample with
// the temporal axis resized to frames.
func syntheticFrames(sample tensor.Array, temporalDim, frames int, value float64) (tensor.Array, error) {
	shape := sample.Shape()
	if temporalDim < 0 || temporalDim >= len(shape) {
		return tensor.Array{}, fmt.Errorf("temporal dim %d out of range for shape %v", temporalDim, shape)
	}
	shape[temporalDim] = frames
	return tensor.Full(sample.DType(), shape, value)
}

// Pad appends (or prepends) one more padding track.
func (m MixedCut) Pad(target float64, opts ...PadOption) (Segment, error) {
	cfg := newPadConfig(opts)
	current := m.Duration()
	residual := manifest.RoundSeconds(target - current)
	if residual <= 0 {
		return m, nil
	}

	bag := Attributes{}
	for _, track := range m.tracks {
		if data, ok := track.Cut.(Cut); ok {
			bag = data.custom
			break
		}
	}
	padding, err := newPaddingFor(bag, residual, cfg)
	if err != nil {
		return nil, fmt.Errorf("mixed cut %q: %w", m.id, err)
	}

	tracks := make([]Track, 0, len(m.tracks)+1)
	if cfg.direction == manifest.PadLeft {
		tracks = append(tracks, Track{Cut: padding, Offset: 0})
		for _, track := range m.tracks {
			tracks = append(tracks, Track{Cut: track.Cut, Offset: manifest.RoundSeconds(track.Offset + residual)})
		}
	} else {
		tracks = append(tracks, m.tracks...)
		tracks = append(tracks, Track{Cut: padding, Offset: current})
	}
	return NewMixed(uuid.NewString(), tracks)
}

// Equal compares descriptive fields, tracks included.
func (m MixedCut) Equal(other MixedCut) bool {
	if m.id != other.id || len(m.tracks) != len(other.tracks) {
		return false
	}
	for i := range m.tracks {
		if m.tracks[i].Offset != other.tracks[i].Offset {
			return false
		}
		if !Equal(m.tracks[i].Cut, other.tracks[i].Cut) {
			return false
		}
	}
	return true
}
