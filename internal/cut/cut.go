package cut

import (
	"context"
	"fmt"

	"splice/internal/manifest"
	"splice/internal/tensor"
)

// Recording references externally managed audio. Only the ID travels
// through serialization; resolving it to actual samples happens outside
// this library. SamplingRate is an optional hint and is not serialized.
type Recording struct {
	ID           string
	SamplingRate int
}

// Cut is a window [start, start+duration) over a recording's timeline
// carrying custom attributes. Cuts are immutable values: every
// transformation returns a new cut, and attached temporal manifests are
// always interpreted against the cut's local timeline [0, duration).
type Cut struct {
	id        string
	start     float64
	duration  float64
	channel   int
	recording *Recording
	custom    Attributes
}

// New constructs a cut. Duration must be positive.
func New(id string, start, duration float64) (Cut, error) {
	if id == "" {
		return Cut{}, fmt.Errorf("cut id must not be empty")
	}
	if start < 0 {
		return Cut{}, fmt.Errorf("cut %q: start %v must not be negative", id, start)
	}
	if duration <= 0 {
		return Cut{}, fmt.Errorf("cut %q: duration %v must be positive", id, duration)
	}
	return Cut{id: id, start: start, duration: duration}, nil
}

func (c Cut) ID() string        { return c.id }
func (c Cut) Start() float64    { return c.start }
func (c Cut) Duration() float64 { return c.duration }
func (c Cut) Channel() int      { return c.channel }

// Recording returns the referenced recording, if any.
func (c Cut) Recording() (Recording, bool) {
	if c.recording == nil {
		return Recording{}, false
	}
	return *c.recording, true
}

// Attributes returns the cut's attribute bag.
func (c Cut) Attributes() Attributes { return c.custom }

// WithChannel returns a copy reading the given channel.
func (c Cut) WithChannel(channel int) Cut {
	out := c
	out.channel = channel
	return out
}

// WithRecording returns a copy referencing the recording.
func (c Cut) WithRecording(rec Recording) Cut {
	out := c
	out.recording = &rec
	return out
}

// WithAttr returns a copy carrying the attribute. The value is
// normalized per Attributes rules; names of built-in fields are
// rejected.
func (c Cut) WithAttr(name string, value any) (Cut, error) {
	bag, err := c.custom.With(name, value)
	if err != nil {
		return Cut{}, fmt.Errorf("cut %q: %w", c.id, err)
	}
	out := c
	out.custom = bag
	return out, nil
}

// Attr returns the named attribute value; manifests come back
// unloaded.
func (c Cut) Attr(name string) (any, error) {
	value, err := c.custom.Get(name)
	if err != nil {
		return nil, fmt.Errorf("cut %q: %w", c.id, err)
	}
	return value, nil
}

// LoadAttr resolves a manifest-valued attribute to its array. A plain
// Array loads whole, ignoring the cut's window; a TemporalArray loads
// the cut's own window [0, duration), so earlier truncations and
// paddings are already reflected.
func (c Cut) LoadAttr(ctx context.Context, name string) (tensor.Array, error) {
	value, err := c.Attr(name)
	if err != nil {
		return tensor.Array{}, err
	}
	switch m := value.(type) {
	case manifest.Array:
		arr, err := m.Load(ctx)
		if err != nil {
			return tensor.Array{}, fmt.Errorf("cut %q attribute %q: %w", c.id, name, err)
		}
		return arr, nil
	case manifest.TemporalArray:
		arr, err := m.Load(ctx, 0, c.duration)
		if err != nil {
			return tensor.Array{}, fmt.Errorf("cut %q attribute %q: %w", c.id, name, err)
		}
		return arr, nil
	default:
		return tensor.Array{}, fmt.Errorf("cut %q attribute %q holds %T: %w", c.id, name, value, ErrNotLoadable)
	}
}

// Truncate keeps the window [offset, offset+duration) of the cut,
// expressed on the cut's local timeline. A non-positive duration keeps
// everything from offset to the end. Every temporal manifest is
// re-anchored so the kept window becomes the new time zero; plain
// arrays and scalars are copied unchanged.
func (c Cut) Truncate(offset, duration float64) (Cut, error) {
	offset = manifest.RoundSeconds(offset)
	newDuration := manifest.RoundSeconds(duration)
	if duration <= 0 {
		newDuration = manifest.RoundSeconds(c.duration - offset)
	}
	if offset < 0 || newDuration <= 0 || manifest.RoundSeconds(offset+newDuration-c.duration) > 0 {
		return Cut{}, fmt.Errorf("cut %q: truncate to [%v, %v) of %v s: %w",
			c.id, offset, offset+newDuration, c.duration, ErrInvalidRange)
	}

	out := c
	out.start = manifest.RoundSeconds(c.start + offset)
	out.duration = newDuration
	if c.custom.Len() == 0 || offset == 0 {
		return out, nil
	}

	bag := Attributes{}
	for _, name := range c.custom.Names() {
		value, err := c.custom.Get(name)
		if err != nil {
			return Cut{}, err
		}
		if temporal, ok := value.(manifest.TemporalArray); ok {
			value = temporal.Truncate(offset)
		}
		if bag, err = bag.With(name, value); err != nil {
			return Cut{}, err
		}
	}
	out.custom = bag
	return out, nil
}

// Equal compares descriptive fields: identity, window, channel,
// recording reference (by ID), and attributes.
func (c Cut) Equal(other Cut) bool {
	if c.id != other.id || c.start != other.start ||
		c.duration != other.duration || c.channel != other.channel {
		return false
	}
	rec, ok := c.Recording()
	otherRec, otherOK := other.Recording()
	if ok != otherOK || (ok && rec.ID != otherRec.ID) {
		return false
	}
	return c.custom.Equal(other.custom)
}

// Pad extends the cut to target seconds. When target exceeds the
// current duration, the result is a MixedCut holding the unmodified
// original plus a PaddingCut whose duration is the exact sub-second
// residual; per-attribute fill values are recorded on the padding cut
// and synthesized at load time.
func (c Cut) Pad(target float64, opts ...PadOption) (Segment, error) {
	cfg := newPadConfig(opts)
	residual := manifest.RoundSeconds(target - c.duration)
	if residual <= 0 {
		return c, nil
	}
	padding, err := newPaddingFor(c.custom, residual, cfg)
	if err != nil {
		return nil, fmt.Errorf("cut %q: %w", c.id, err)
	}
	return mixFromPad(c, padding, cfg.direction)
}
