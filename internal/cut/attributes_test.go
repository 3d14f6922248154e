package cut_test

import (
	"errors"
	"testing"

	"splice/internal/cut"
	"splice/internal/manifest"
	"splice/internal/storage"
)

func TestAttributesNormalizeNumbers(t *testing.T) {
	var bag cut.Attributes
	cases := []struct {
		name  string
		value any
		want  any
	}{
		{"int", 42, float64(42)},
		{"int64", int64(-7), float64(-7)},
		{"float32", float32(1.5), float64(1.5)},
		{"uint16", uint16(9), float64(9)},
		{"bool", true, true},
		{"string", "spk", "spk"},
		{"nil", nil, nil},
	}
	for _, tc := range cases {
		next, err := bag.With(tc.name, tc.value)
		if err != nil {
			t.Fatalf("With(%s) failed: %v", tc.name, err)
		}
		bag = next
		got, err := bag.Get(tc.name)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("Get(%s) = %#v, want %#v", tc.name, got, tc.want)
		}
	}
	if bag.Len() != len(cases) {
		t.Fatalf("Len = %d, want %d", bag.Len(), len(cases))
	}
}

func TestAttributesRejectReservedNames(t *testing.T) {
	var bag cut.Attributes
	for _, name := range []string{"id", "start", "duration", "channel", "recording_id", "type", "custom", "tracks", "offset"} {
		if _, err := bag.With(name, 1); !errors.Is(err, cut.ErrAttributeNameConflict) {
			t.Errorf("With(%q) = %v, want ErrAttributeNameConflict", name, err)
		}
	}
	if _, err := bag.With("", 1); err == nil {
		t.Error("empty attribute name accepted")
	}
}

func TestAttributesRejectOpaqueValues(t *testing.T) {
	var bag cut.Attributes
	if _, err := bag.With("ch", make(chan int)); err == nil {
		t.Fatal("channel value accepted")
	}
	if _, err := bag.With("fn", func() {}); err == nil {
		t.Fatal("function value accepted")
	}
}

func TestAttributesCopyOnWrite(t *testing.T) {
	var base cut.Attributes
	base, err := base.With("speaker", "A")
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}
	derived, err := base.With("snr", 17.5)
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}
	if base.Has("snr") {
		t.Fatal("With mutated the receiver")
	}
	if !derived.Has("speaker") || !derived.Has("snr") {
		t.Fatal("derived bag lost entries")
	}

	names := derived.Names()
	if len(names) != 2 || names[0] != "snr" || names[1] != "speaker" {
		t.Fatalf("Names = %v, want sorted [snr speaker]", names)
	}
}

func TestAttributesRecognizeManifestMaps(t *testing.T) {
	m := manifest.TemporalArray{
		Array: manifest.Array{
			StorageKey:      "k",
			StorageLocation: "loc",
			StorageKind:     storage.KindMemory,
			Shape:           []int{10},
		},
		FrameShift: 0.4,
	}

	var bag cut.Attributes
	bag, err := bag.With("alignment", m.AsMap())
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}
	got, err := bag.Get("alignment")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	stored, ok := got.(manifest.TemporalArray)
	if !ok {
		t.Fatalf("Get = %T, want manifest.TemporalArray", got)
	}
	if !stored.Equal(m) {
		t.Fatal("manifest changed through the bag")
	}
}

func TestAttributesEqualAfterNormalization(t *testing.T) {
	var a, b cut.Attributes
	a, _ = a.With("snr", 17)
	a, _ = a.With("tags", []string{"x", "y"})
	b, _ = b.With("snr", float64(17))
	b, _ = b.With("tags", []any{"x", "y"})
	if !a.Equal(b) {
		t.Fatal("normalized bags should compare equal")
	}

	c, _ := b.With("extra", 1)
	if a.Equal(c) {
		t.Fatal("bags with different entries compare equal")
	}
}
