package cut

import (
	"fmt"
	"sort"

	"splice/internal/manifest"
)

// reservedNames are the serialized built-in fields of every segment
// kind. Attributes must not shadow them, or records would stop round
// tripping.
var reservedNames = map[string]struct{}{
	"id":           {},
	"start":        {},
	"duration":     {},
	"channel":      {},
	"recording_id": {},
	"type":         {},
	"custom":       {},
	"tracks":       {},
	"offset":       {},
}

// Attributes is an immutable bag of named custom values. Values are
// normalized on attachment: numbers become float64, nested maps and
// lists are normalized recursively, and array manifests are kept as
// manifest.Array / manifest.TemporalArray. Normalization means a bag
// compares equal to itself after a serialization round trip.
//
// The zero value is an empty bag ready for use.
type Attributes struct {
	entries map[string]any
}

// With returns a bag extended (or overwritten) with one attribute.
func (a Attributes) With(name string, value any) (Attributes, error) {
	if name == "" {
		return Attributes{}, fmt.Errorf("attribute name must not be empty")
	}
	if _, reserved := reservedNames[name]; reserved {
		return Attributes{}, fmt.Errorf("%w: %q", ErrAttributeNameConflict, name)
	}
	normalized, err := normalizeValue(value)
	if err != nil {
		return Attributes{}, fmt.Errorf("attribute %q: %w", name, err)
	}
	entries := make(map[string]any, len(a.entries)+1)
	for k, v := range a.entries {
		entries[k] = v
	}
	entries[name] = normalized
	return Attributes{entries: entries}, nil
}

// Get returns the attribute value. Manifest-valued entries come back as
// the manifest itself, never the loaded array.
func (a Attributes) Get(name string) (any, error) {
	value, ok := a.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAttributeNotFound, name)
	}
	return value, nil
}

// Has reports whether the attribute exists.
func (a Attributes) Has(name string) bool {
	_, ok := a.entries[name]
	return ok
}

// Len returns the number of attributes.
func (a Attributes) Len() int { return len(a.entries) }

// Names returns the attribute names in sorted order.
func (a Attributes) Names() []string {
	names := make([]string, 0, len(a.entries))
	for name := range a.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AsMap returns the serialized form: manifests become tagged maps,
// everything else is already plain. Returns nil for an empty bag.
func (a Attributes) AsMap() map[string]any {
	if len(a.entries) == 0 {
		return nil
	}
	out := make(map[string]any, len(a.entries))
	for name, value := range a.entries {
		out[name] = valueAsMap(value)
	}
	return out
}

// Equal compares two bags structurally.
func (a Attributes) Equal(other Attributes) bool {
	if len(a.entries) != len(other.entries) {
		return false
	}
	for name, value := range a.entries {
		theirs, ok := other.entries[name]
		if !ok || !valuesEqual(value, theirs) {
			return false
		}
	}
	return true
}

// attributesFrom rebuilds a bag from a decoded custom sub-map, turning
// tagged maps back into manifests.
func attributesFrom(record map[string]any) (Attributes, error) {
	bag := Attributes{}
	var err error
	for name, value := range record {
		if bag, err = bag.With(name, value); err != nil {
			return Attributes{}, err
		}
	}
	return bag, nil
}

func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool, string, float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case manifest.Array:
		return v, nil
	case manifest.TemporalArray:
		return v, nil
	case manifest.Manifest:
		return v, nil
	case map[string]any:
		if manifest.IsManifestMap(v) {
			m, err := manifest.FromMap(v)
			if err != nil {
				return nil, err
			}
			return m, nil
		}
		out := make(map[string]any, len(v))
		for key, inner := range v {
			normalized, err := normalizeValue(inner)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			out[key] = normalized
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			normalized, err := normalizeValue(inner)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = normalized
		}
		return out, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out, nil
	case []float64:
		out := make([]any, len(v))
		for i, f := range v {
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported attribute value type %T", value)
	}
}

func valueAsMap(value any) any {
	switch v := value.(type) {
	case manifest.Manifest:
		return v.AsMap()
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = valueAsMap(inner)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = valueAsMap(inner)
		}
		return out
	default:
		return v
	}
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case manifest.Array:
		bv, ok := b.(manifest.Array)
		return ok && av.Equal(bv)
	case manifest.TemporalArray:
		bv, ok := b.(manifest.TemporalArray)
		return ok && av.Equal(bv)
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for key, inner := range av {
			theirs, ok := bv[key]
			if !ok || !valuesEqual(inner, theirs) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
