package cut

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Serialized field names and type tags. These are wire format; a
// renamed key orphans previously written records.
const (
	fieldType        = "type"
	fieldID          = "id"
	fieldStart       = "start"
	fieldDuration    = "duration"
	fieldChannel     = "channel"
	fieldRecordingID = "recording_id"
	fieldCustom      = "custom"
	fieldTracks      = "tracks"
	fieldOffset      = "offset"
	fieldCut         = "cut"

	typeCut     = "cut"
	typePadding = "padding"
	typeMixed   = "mixed"
)

// Serialize converts any segment into its nested map representation:
// fixed keys for built-in fields, a custom sub-map with tagged manifest
// records, nested track records for composites.
func Serialize(seg Segment) map[string]any {
	switch s := seg.(type) {
	case Cut:
		record := map[string]any{
			fieldType:     typeCut,
			fieldID:       s.id,
			fieldStart:    s.start,
			fieldDuration: s.duration,
			fieldChannel:  s.channel,
		}
		if rec, ok := s.Recording(); ok {
			record[fieldRecordingID] = rec.ID
		}
		if custom := s.custom.AsMap(); custom != nil {
			record[fieldCustom] = custom
		}
		return record
	case PaddingCut:
		record := map[string]any{
			fieldType:     typePadding,
			fieldID:       s.id,
			fieldDuration: s.duration,
		}
		if custom := s.custom.AsMap(); custom != nil {
			record[fieldCustom] = custom
		}
		return record
	case MixedCut:
		tracks := make([]any, len(s.tracks))
		for i, track := range s.tracks {
			tracks[i] = map[string]any{
				fieldOffset: track.Offset,
				fieldCut:    Serialize(track.Cut),
			}
		}
		return map[string]any{
			fieldType:   typeMixed,
			fieldID:     s.id,
			fieldTracks: tracks,
		}
	default:
		return nil
	}
}

var (
	cutRecordRules = validation.Map(
		validation.Key(fieldType, validation.In(typeCut)),
		validation.Key(fieldID, validation.Required),
		validation.Key(fieldStart, validation.By(nonNegativeNumber)),
		validation.Key(fieldDuration, validation.By(positiveNumber)),
		validation.Key(fieldChannel, validation.By(integerNumber)).Optional(),
		validation.Key(fieldRecordingID, validation.Required).Optional(),
		validation.Key(fieldCustom, validation.By(plainMap)).Optional(),
	)
	paddingRecordRules = validation.Map(
		validation.Key(fieldType, validation.In(typePadding)),
		validation.Key(fieldID, validation.Required),
		validation.Key(fieldDuration, validation.By(positiveNumber)),
		validation.Key(fieldCustom, validation.By(plainMap)).Optional(),
	)
	mixedRecordRules = validation.Map(
		validation.Key(fieldType, validation.In(typeMixed)),
		validation.Key(fieldID, validation.Required),
		validation.Key(fieldTracks, validation.Required),
	)
	trackRecordRules = validation.Map(
		validation.Key(fieldOffset, validation.By(nonNegativeNumber)),
		validation.Key(fieldCut, validation.By(plainMap)),
	)
)

// Deserialize rebuilds a segment from its map representation. The
// record is validated before anything is constructed; decoding is
// strict about types but tolerant of the numeric widening JSON and YAML
// decoders apply.
func Deserialize(record map[string]any) (Segment, error) {
	tag, _ := record[fieldType].(string)
	switch tag {
	case typeCut:
		return deserializeCut(record)
	case typePadding:
		return deserializePadding(record)
	case typeMixed:
		return deserializeMixed(record)
	default:
		return nil, fmt.Errorf("unknown segment type %q", tag)
	}
}

func deserializeCut(record map[string]any) (Segment, error) {
	if err := validation.Validate(record, cutRecordRules); err != nil {
		return nil, fmt.Errorf("invalid cut record: %w", err)
	}
	id, _ := record[fieldID].(string)
	start, _ := asFloat(record[fieldStart])
	duration, _ := asFloat(record[fieldDuration])
	out, err := New(id, start, duration)
	if err != nil {
		return nil, fmt.Errorf("invalid cut record: %w", err)
	}
	if raw, ok := record[fieldChannel]; ok {
		channel, _ := asInt(raw)
		out = out.WithChannel(channel)
	}
	if raw, ok := record[fieldRecordingID]; ok {
		recordingID, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("invalid cut record: recording_id is %T, want string", raw)
		}
		out = out.WithRecording(Recording{ID: recordingID})
	}
	bag, err := customFrom(record)
	if err != nil {
		return nil, fmt.Errorf("invalid cut record %q: %w", id, err)
	}
	out.custom = bag
	return out, nil
}

func deserializePadding(record map[string]any) (Segment, error) {
	if err := validation.Validate(record, paddingRecordRules); err != nil {
		return nil, fmt.Errorf("invalid padding record: %w", err)
	}
	id, _ := record[fieldID].(string)
	duration, _ := asFloat(record[fieldDuration])
	out, err := NewPadding(id, duration)
	if err != nil {
		return nil, fmt.Errorf("invalid padding record: %w", err)
	}
	bag, err := customFrom(record)
	if err != nil {
		return nil, fmt.Errorf("invalid padding record %q: %w", id, err)
	}
	out.custom = bag
	return out, nil
}

func deserializeMixed(record map[string]any) (Segment, error) {
	if err := validation.Validate(record, mixedRecordRules); err != nil {
		return nil, fmt.Errorf("invalid mixed record: %w", err)
	}
	id, _ := record[fieldID].(string)
	rawTracks, ok := record[fieldTracks].([]any)
	if !ok {
		return nil, fmt.Errorf("invalid mixed record %q: tracks is %T, want list", id, record[fieldTracks])
	}
	tracks := make([]Track, len(rawTracks))
	for i, rawTrack := range rawTracks {
		trackRecord, ok := rawTrack.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid mixed record %q: track %d is %T, want map", id, i, rawTrack)
		}
		if err := validation.Validate(trackRecord, trackRecordRules); err != nil {
			return nil, fmt.Errorf("invalid mixed record %q: track %d: %w", id, i, err)
		}
		offset, _ := asFloat(trackRecord[fieldOffset])
		cutRecord, _ := trackRecord[fieldCut].(map[string]any)
		inner, err := Deserialize(cutRecord)
		if err != nil {
			return nil, fmt.Errorf("invalid mixed record %q: track %d: %w", id, i, err)
		}
		tracks[i] = Track{Cut: inner, Offset: offset}
	}
	out, err := NewMixed(id, tracks)
	if err != nil {
		return nil, fmt.Errorf("invalid mixed record: %w", err)
	}
	return out, nil
}

func customFrom(record map[string]any) (Attributes, error) {
	raw, ok := record[fieldCustom]
	if !ok {
		return Attributes{}, nil
	}
	sub, ok := raw.(map[string]any)
	if !ok {
		return Attributes{}, fmt.Errorf("custom is %T, want map", raw)
	}
	return attributesFrom(sub)
}

func nonNegativeNumber(value any) error {
	f, ok := asFloat(value)
	if !ok {
		return fmt.Errorf("must be a number, got %T", value)
	}
	if f < 0 {
		return fmt.Errorf("must not be negative, got %v", f)
	}
	return nil
}

func positiveNumber(value any) error {
	f, ok := asFloat(value)
	if !ok {
		return fmt.Errorf("must be a number, got %T", value)
	}
	if f <= 0 {
		return fmt.Errorf("must be positive, got %v", f)
	}
	return nil
}

func integerNumber(value any) error {
	if _, ok := asInt(value); !ok {
		return fmt.Errorf("must be an integer, got %T", value)
	}
	return nil
}

func plainMap(value any) error {
	if _, ok := value.(map[string]any); !ok {
		return fmt.Errorf("must be a map, got %T", value)
	}
	return nil
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
