package cut

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"splice/internal/manifest"
	"splice/internal/tensor"
)

// PadOption adjusts how Pad extends a segment.
type PadOption func(*padConfig)

type padConfig struct {
	direction manifest.Direction
	values    map[string]float64
}

func newPadConfig(opts []PadOption) padConfig {
	cfg := padConfig{direction: manifest.PadRight}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithDirection pads on the given side. The default is PadRight.
func WithDirection(dir manifest.Direction) PadOption {
	return func(cfg *padConfig) { cfg.direction = dir }
}

// WithPadValue sets the fill value for one attribute's synthetic
// frames. Attributes without a configured value fill with zero.
func WithPadValue(name string, value float64) PadOption {
	return func(cfg *padConfig) {
		if cfg.values == nil {
			cfg.values = make(map[string]float64)
		}
		cfg.values[name] = value
	}
}

func (cfg padConfig) valueFor(name string) float64 { return cfg.values[name] }

// PaddingCut is a synthetic segment with no recording and no stored
// arrays. Its attribute bag holds only the scalar fill values used when
// a composite load synthesizes frames; its duration is the exact
// residual needed to reach a padding target.
type PaddingCut struct {
	id       string
	duration float64
	custom   Attributes
}

// NewPadding constructs a standalone padding segment.
func NewPadding(id string, duration float64) (PaddingCut, error) {
	if id == "" {
		return PaddingCut{}, fmt.Errorf("padding cut id must not be empty")
	}
	if duration <= 0 {
		return PaddingCut{}, fmt.Errorf("padding cut %q: duration %v must be positive", id, duration)
	}
	return PaddingCut{id: id, duration: duration}, nil
}

// newPaddingFor builds the padding counterpart of a data cut's bag: one
// scalar fill value per temporal-manifest attribute.
func newPaddingFor(custom Attributes, duration float64, cfg padConfig) (PaddingCut, error) {
	padding := PaddingCut{id: uuid.NewString(), duration: duration}
	for _, name := range custom.Names() {
		value, err := custom.Get(name)
		if err != nil {
			return PaddingCut{}, err
		}
		if _, ok := value.(manifest.TemporalArray); !ok {
			continue
		}
		bag, err := padding.custom.With(name, cfg.valueFor(name))
		if err != nil {
			return PaddingCut{}, err
		}
		padding.custom = bag
	}
	return padding, nil
}

func (p PaddingCut) ID() string        { return p.id }
func (p PaddingCut) Duration() float64 { return p.duration }

// Attributes returns the scalar fill values.
func (p PaddingCut) Attributes() Attributes { return p.custom }

// Attr returns the fill value recorded for the attribute.
func (p PaddingCut) Attr(name string) (any, error) {
	value, err := p.custom.Get(name)
	if err != nil {
		return nil, fmt.Errorf("padding cut %q: %w", p.id, err)
	}
	return value, nil
}

// LoadAttr always fails: a padding cut stores scalars, not manifests.
// Synthetic frames exist only inside a composite load.
func (p PaddingCut) LoadAttr(ctx context.Context, name string) (tensor.Array, error) {
	if !p.custom.Has(name) {
		return tensor.Array{}, fmt.Errorf("padding cut %q: %w: %q", p.id, ErrAttributeNotFound, name)
	}
	return tensor.Array{}, fmt.Errorf("padding cut %q attribute %q: %w", p.id, name, ErrNotLoadable)
}

// fillValue returns the configured fill for an attribute, zero when the
// padding cut predates the attribute.
func (p PaddingCut) fillValue(name string) float64 {
	value, err := p.custom.Get(name)
	if err != nil {
		return 0
	}
	scalar, ok := value.(float64)
	if !ok {
		return 0
	}
	return scalar
}

// Pad extends the padding itself; two stretches of silence are one
// longer stretch.
func (p PaddingCut) Pad(target float64, opts ...PadOption) (Segment, error) {
	residual := manifest.RoundSeconds(target - p.duration)
	if residual <= 0 {
		return p, nil
	}
	out := p
	out.duration = manifest.RoundSeconds(p.duration + residual)
	return out, nil
}

// Equal compares descriptive fields.
func (p PaddingCut) Equal(other PaddingCut) bool {
	return p.id == other.id &&
		p.duration == other.duration &&
		p.custom.Equal(other.custom)
}
