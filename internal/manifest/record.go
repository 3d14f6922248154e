package manifest

import (
	"fmt"

	"splice/internal/storage"
)

// Serialized manifest field names. These are wire format: changing one
// orphans previously written records.
const (
	fieldType        = "type"
	fieldStorageKey  = "storage_key"
	fieldStorageLoc  = "storage_location"
	fieldStorageKind = "storage_backend_kind"
	fieldShape       = "shape"
	fieldFrameShift  = "frame_shift"
	fieldTemporalDim = "temporal_dim"
	fieldStart       = "start"

	typeArray         = "array"
	typeTemporalArray = "temporal_array"
)

// AsMap returns the tagged wire representation of the manifest.
func (a Array) AsMap() map[string]any {
	return map[string]any{
		fieldType:        typeArray,
		fieldStorageKey:  a.StorageKey,
		fieldStorageLoc:  a.StorageLocation,
		fieldStorageKind: string(a.StorageKind),
		fieldShape:       append([]int(nil), a.Shape...),
	}
}

// AsMap returns the tagged wire representation of the manifest.
func (t TemporalArray) AsMap() map[string]any {
	record := t.Array.AsMap()
	record[fieldType] = typeTemporalArray
	record[fieldFrameShift] = t.FrameShift
	record[fieldTemporalDim] = t.TemporalDim
	record[fieldStart] = t.Start
	return record
}

// IsManifestMap reports whether a decoded attribute value carries a
// manifest type tag, distinguishing manifests from plain nested maps.
func IsManifestMap(record map[string]any) bool {
	tag, ok := record[fieldType].(string)
	if !ok {
		return false
	}
	return tag == typeArray || tag == typeTemporalArray
}

// FromMap rebuilds a manifest from its tagged wire representation.
// Numeric fields tolerate the types different decoders produce (JSON
// yields float64, YAML yields int).
func FromMap(record map[string]any) (Manifest, error) {
	tag, _ := record[fieldType].(string)
	switch tag {
	case typeArray:
		arr, err := arrayFromMap(record)
		if err != nil {
			return nil, err
		}
		if err := arr.Validate(); err != nil {
			return nil, fmt.Errorf("invalid array manifest: %w", err)
		}
		return arr, nil
	case typeTemporalArray:
		arr, err := arrayFromMap(record)
		if err != nil {
			return nil, err
		}
		out := TemporalArray{Array: arr}
		if out.FrameShift, err = floatField(record, fieldFrameShift); err != nil {
			return nil, err
		}
		if out.TemporalDim, err = intField(record, fieldTemporalDim); err != nil {
			return nil, err
		}
		if out.Start, err = floatField(record, fieldStart); err != nil {
			return nil, err
		}
		if err := out.Validate(); err != nil {
			return nil, fmt.Errorf("invalid temporal array manifest: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown manifest type %q", tag)
	}
}

func arrayFromMap(record map[string]any) (Array, error) {
	key, err := stringField(record, fieldStorageKey)
	if err != nil {
		return Array{}, err
	}
	location, err := stringField(record, fieldStorageLoc)
	if err != nil {
		return Array{}, err
	}
	rawKind, err := stringField(record, fieldStorageKind)
	if err != nil {
		return Array{}, err
	}
	kind, err := storage.ParseKind(rawKind)
	if err != nil {
		return Array{}, err
	}
	shape, err := shapeField(record, fieldShape)
	if err != nil {
		return Array{}, err
	}
	return Array{
		StorageKey:      key,
		StorageLocation: location,
		StorageKind:     kind,
		Shape:           shape,
	}, nil
}

func stringField(record map[string]any, field string) (string, error) {
	raw, ok := record[field]
	if !ok {
		return "", fmt.Errorf("manifest record misses %q", field)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("manifest field %q is %T, want string", field, raw)
	}
	return value, nil
}

func floatField(record map[string]any, field string) (float64, error) {
	raw, ok := record[field]
	if !ok {
		return 0, fmt.Errorf("manifest record misses %q", field)
	}
	value, ok := asFloat(raw)
	if !ok {
		return 0, fmt.Errorf("manifest field %q is %T, want number", field, raw)
	}
	return value, nil
}

func intField(record map[string]any, field string) (int, error) {
	raw, ok := record[field]
	if !ok {
		return 0, fmt.Errorf("manifest record misses %q", field)
	}
	value, ok := asInt(raw)
	if !ok {
		return 0, fmt.Errorf("manifest field %q is %T, want integer", field, raw)
	}
	return value, nil
}

func shapeField(record map[string]any, field string) ([]int, error) {
	raw, ok := record[field]
	if !ok {
		return nil, fmt.Errorf("manifest record misses %q", field)
	}
	switch dims := raw.(type) {
	case []int:
		return append([]int(nil), dims...), nil
	case []any:
		shape := make([]int, len(dims))
		for i, d := range dims {
			value, ok := asInt(d)
			if !ok {
				return nil, fmt.Errorf("manifest field %q element %d is %T, want integer", field, i, d)
			}
			shape[i] = value
		}
		return shape, nil
	default:
		return nil, fmt.Errorf("manifest field %q is %T, want integer list", field, raw)
	}
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func asInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}
